package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aivory/dental-booking/internal/redisclient"
)

const (
	defaultPhone      = "+91 000-000-0000"
	defaultSpeciality = "General Dentistry"
	defaultImageURL   = "/logo.png"
	defaultReason     = "General consultation"

	pastHistoryLimit = 20
)

var (
	ErrMissingBookingFields    = errors.New("doctor, date and time are required")
	ErrInvalidDate             = errors.New("date must be a valid YYYY-MM-DD calendar date")
	ErrInvalidTimeLabel        = errors.New("time must be a valid HH:MM label")
	ErrSlotBeingBooked         = errors.New("slot is currently being booked, please retry")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

type Service struct {
	repo   Repository
	locker redisclient.Locker
	log    zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, locker redisclient.Locker, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		log:    log,
		now:    time.Now,
	}
}

type BookingInput struct {
	DoctorID         string
	DoctorName       string
	DoctorPhone      string
	DoctorSpeciality string
	DoctorImageURL   string
	Date             string
	Time             string
	Reason           string
}

// ListBookedSlots returns the occupied time labels for a doctor on a date.
// Persistence failures degrade to an empty set so the slot picker never
// blocks; Book re-validates under the slot lock.
func (s *Service) ListBookedSlots(ctx context.Context, doctorID, date string) ([]string, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	times, err := s.repo.ListBookedTimes(ctx, doctorID, day)
	if err != nil {
		s.log.Warn().Err(err).Str("doctor_id", doctorID).Str("date", date).
			Msg("booked slot lookup failed, degrading to empty set")
		return []string{}, nil
	}

	if times == nil {
		times = []string{}
	}
	return times, nil
}

// Book reserves a slot for the authenticated user. The doctor may not exist
// locally yet when it was picked from the map source; in that case it is
// materialized from the supplied descriptive fields. A Redis lock per
// (doctor, date, time) serializes concurrent bookings, and the partial unique
// index over active appointments backstops the race if Redis is degraded.
func (s *Service) Book(ctx context.Context, authUserID string, input BookingInput) (*DisplayAppointment, error) {
	if input.DoctorID == "" || input.DoctorName == "" || input.Date == "" || input.Time == "" {
		return nil, ErrMissingBookingFields
	}
	day, err := time.Parse(DateLayout, input.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if _, err := time.Parse("15:04", input.Time); err != nil {
		return nil, ErrInvalidTimeLabel
	}

	user, err := s.repo.GetUserByAuthID(ctx, authUserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	doctor, err := s.resolveDoctor(ctx, input)
	if err != nil {
		return nil, err
	}

	reason := input.Reason
	if reason == "" {
		reason = defaultReason
	}

	var created *AppointmentDetail

	err = s.locker.WithSlotLock(ctx, doctor.ID, input.Date, input.Time, func(lockCtx context.Context) error {
		// Inside the critical section re-check for an active occupant
		existing, err := s.repo.GetActiveAppointmentForSlot(lockCtx, doctor.ID, day, input.Time)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check slot occupancy: %w", err)
		}
		if existing != nil {
			return ErrSlotTaken
		}

		detail, err := s.repo.CreateConfirmedAppointment(lockCtx, user.ID, doctor.ID, day, input.Time, reason)
		if err != nil {
			if errors.Is(err, ErrSlotTaken) {
				return err
			}
			return fmt.Errorf("create appointment: %w", err)
		}

		created = detail
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	s.log.Info().Str("doctor_id", doctor.ID).Str("date", input.Date).Str("time", input.Time).
		Stringer("appointment_id", created.ID).Msg("appointment booked")

	out := Transform(*created)
	return &out, nil
}

func (s *Service) resolveDoctor(ctx context.Context, input BookingInput) (*Doctor, error) {
	doctor, err := s.repo.GetDoctorByID(ctx, input.DoctorID)
	if err == nil {
		return doctor, nil
	}
	if !errors.Is(err, ErrDoctorNotFound) {
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	// De-duplication fallback: the same external dentist may have been
	// materialized before under a different synthesized id.
	doctor, err = s.repo.FindDoctorByNamePhone(ctx, input.DoctorName, input.DoctorPhone)
	if err == nil {
		return doctor, nil
	}
	if !errors.Is(err, ErrDoctorNotFound) {
		return nil, fmt.Errorf("find doctor by name and phone: %w", err)
	}

	d := Doctor{
		ID:         input.DoctorID,
		Name:       input.DoctorName,
		Phone:      orDefault(input.DoctorPhone, defaultPhone),
		Speciality: orDefault(input.DoctorSpeciality, defaultSpeciality),
		Gender:     GenderMale,
		IsActive:   true,
	}
	imageURL := orDefault(input.DoctorImageURL, defaultImageURL)
	d.ImageURL = &imageURL

	doctor, err = s.repo.CreateDoctor(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("materialize doctor: %w", err)
	}

	s.log.Info().Str("doctor_id", doctor.ID).Str("name", doctor.Name).
		Msg("materialized doctor from external record")
	return doctor, nil
}

// Cancel sets the appointment to CANCELLED. Only the owning user may cancel;
// a missing appointment and someone else's appointment are indistinguishable
// to the caller. Cancelling an already-cancelled appointment succeeds without
// effect, cancelling a completed one is rejected.
func (s *Service) Cancel(ctx context.Context, authUserID string, appointmentID string) (*DisplayAppointment, error) {
	id, err := parseAppointmentID(appointmentID)
	if err != nil {
		return nil, ErrAppointmentNotFound
	}

	user, err := s.repo.GetUserByAuthID(ctx, authUserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if appt.UserID != user.ID {
		// Uniform not-found to the caller so existence is not leaked.
		s.log.Debug().Stringer("appointment_id", id).Stringer("user_id", user.ID).
			Msg("cancel denied, appointment owned by another user")
		return nil, ErrAppointmentNotFound
	}

	if appt.Status == StatusCancelled {
		detail, err := s.repo.GetAppointmentDetail(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load appointment detail: %w", err)
		}
		out := Transform(*detail)
		return &out, nil
	}

	if !appt.Status.CanTransitionTo(StatusCancelled) {
		return nil, ErrInvalidStatusTransition
	}

	detail, err := s.repo.UpdateAppointmentStatus(ctx, id, appt.Status, StatusCancelled)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Status moved concurrently between read and update.
			return nil, ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	s.log.Info().Stringer("appointment_id", id).Msg("appointment cancelled")

	out := Transform(*detail)
	return &out, nil
}

// ListUpcoming returns the user's appointments from today onward that are
// still PENDING or CONFIRMED, soonest first. The day boundary is local server
// time at the instant of the query.
func (s *Service) ListUpcoming(ctx context.Context, authUserID string) ([]DisplayAppointment, error) {
	user, err := s.repo.GetUserByAuthID(ctx, authUserID)
	if err != nil {
		return nil, err
	}

	details, err := s.repo.ListUpcomingForUser(ctx, user.ID, startOfToday(s.now()))
	if err != nil {
		return nil, fmt.Errorf("list upcoming appointments: %w", err)
	}
	return transformAll(details), nil
}

// ListPast returns the user's most recent 20 appointments before today,
// newest first.
func (s *Service) ListPast(ctx context.Context, authUserID string) ([]DisplayAppointment, error) {
	user, err := s.repo.GetUserByAuthID(ctx, authUserID)
	if err != nil {
		return nil, err
	}

	details, err := s.repo.ListPastForUser(ctx, user.ID, startOfToday(s.now()), pastHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list past appointments: %w", err)
	}
	return transformAll(details), nil
}

// ListAll returns every appointment for the user, oldest first.
func (s *Service) ListAll(ctx context.Context, authUserID string) ([]DisplayAppointment, error) {
	user, err := s.repo.GetUserByAuthID(ctx, authUserID)
	if err != nil {
		return nil, err
	}

	details, err := s.repo.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return transformAll(details), nil
}

type Stats struct {
	TotalAppointments     int `json:"totalAppointments"`
	CompletedAppointments int `json:"completedAppointments"`
}

// UserStats counts the user's appointments. Store failures degrade to zeros
// so the dashboard widget renders rather than erroring.
func (s *Service) UserStats(ctx context.Context, authUserID string) (Stats, error) {
	user, err := s.repo.GetUserByAuthID(ctx, authUserID)
	if err != nil {
		return Stats{}, err
	}

	total, completed, err := s.repo.CountForUser(ctx, user.ID)
	if err != nil {
		s.log.Warn().Err(err).Stringer("user_id", user.ID).
			Msg("appointment stats lookup failed, degrading to zeros")
		return Stats{}, nil
	}

	return Stats{TotalAppointments: total, CompletedAppointments: completed}, nil
}

// ListDoctors returns the curated active roster.
func (s *Service) ListDoctors(ctx context.Context) ([]Doctor, error) {
	doctors, err := s.repo.ListActiveDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

func parseAppointmentID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

func startOfToday(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
