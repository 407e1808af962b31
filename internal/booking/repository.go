package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotTaken is returned when the partial unique index over active
	// appointments rejects an insert, or a conflict check finds an occupant.
	ErrSlotTaken = errors.New("slot already has an active appointment")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetUserByAuthID(ctx context.Context, authID string) (*User, error)

	GetDoctorByID(ctx context.Context, id string) (*Doctor, error)
	FindDoctorByNamePhone(ctx context.Context, name, phone string) (*Doctor, error)
	CreateDoctor(ctx context.Context, d Doctor) (*Doctor, error)
	ListActiveDoctors(ctx context.Context) ([]Doctor, error)

	// Slot queries and conflict checks
	ListBookedTimes(ctx context.Context, doctorID string, date time.Time) ([]string, error)
	GetActiveAppointmentForSlot(ctx context.Context, doctorID string, date time.Time, timeLabel string) (*Appointment, error)

	// Creation and updates
	CreateConfirmedAppointment(ctx context.Context, userID uuid.UUID, doctorID string, date time.Time, timeLabel, reason string) (*AppointmentDetail, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to Status) (*AppointmentDetail, error)

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error)

	// Per-user history
	ListUpcomingForUser(ctx context.Context, userID uuid.UUID, today time.Time) ([]AppointmentDetail, error)
	ListPastForUser(ctx context.Context, userID uuid.UUID, today time.Time, limit int) ([]AppointmentDetail, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]AppointmentDetail, error)
	CountForUser(ctx context.Context, userID uuid.UUID) (total, completed int, err error)
}
