package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aivory/dental-booking/internal/redisclient"
)

// fakeRepo is an in-memory Repository. CreateConfirmedAppointment enforces
// the same active-slot uniqueness the partial index provides in Postgres.
type fakeRepo struct {
	users        map[string]*User // keyed by auth id
	doctors      map[string]*Doctor
	appointments map[uuid.UUID]*Appointment

	listBookedErr error
	countErr      error
	createdDoctor *Doctor

	upcomingSince time.Time
	pastBefore    time.Time
	pastLimit     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:        make(map[string]*User),
		doctors:      make(map[string]*Doctor),
		appointments: make(map[uuid.UUID]*Appointment),
	}
}

func (f *fakeRepo) addUser(authID string) *User {
	first, last := "Ada", "Lovelace"
	u := &User{ID: uuid.New(), AuthID: authID, FirstName: &first, LastName: &last, Email: authID + "@example.com"}
	f.users[authID] = u
	return u
}

func (f *fakeRepo) addDoctor(id, name string) *Doctor {
	d := &Doctor{ID: id, Name: name, Phone: "+1 (555) 111-2222", Speciality: "General Dentistry", IsActive: true}
	f.doctors[id] = d
	return d
}

func (f *fakeRepo) GetUserByAuthID(_ context.Context, authID string) (*User, error) {
	if u, ok := f.users[authID]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (f *fakeRepo) GetDoctorByID(_ context.Context, id string) (*Doctor, error) {
	if d, ok := f.doctors[id]; ok {
		return d, nil
	}
	return nil, ErrDoctorNotFound
}

func (f *fakeRepo) FindDoctorByNamePhone(_ context.Context, name, phone string) (*Doctor, error) {
	for _, d := range f.doctors {
		if d.Name == name && d.Phone == phone {
			return d, nil
		}
	}
	return nil, ErrDoctorNotFound
}

func (f *fakeRepo) CreateDoctor(_ context.Context, d Doctor) (*Doctor, error) {
	f.doctors[d.ID] = &d
	f.createdDoctor = &d
	return &d, nil
}

func (f *fakeRepo) ListActiveDoctors(_ context.Context) ([]Doctor, error) {
	var out []Doctor
	for _, d := range f.doctors {
		if d.IsActive {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListBookedTimes(_ context.Context, doctorID string, date time.Time) ([]string, error) {
	if f.listBookedErr != nil {
		return nil, f.listBookedErr
	}
	var times []string
	for _, a := range f.appointments {
		if a.DoctorID == doctorID && a.Date.Equal(date) && a.Status.Blocking() {
			times = append(times, a.Time)
		}
	}
	return times, nil
}

func (f *fakeRepo) GetActiveAppointmentForSlot(_ context.Context, doctorID string, date time.Time, timeLabel string) (*Appointment, error) {
	for _, a := range f.appointments {
		if a.DoctorID == doctorID && a.Date.Equal(date) && a.Time == timeLabel && a.Status.Blocking() {
			return a, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (f *fakeRepo) CreateConfirmedAppointment(ctx context.Context, userID uuid.UUID, doctorID string, date time.Time, timeLabel, reason string) (*AppointmentDetail, error) {
	if existing, _ := f.GetActiveAppointmentForSlot(ctx, doctorID, date, timeLabel); existing != nil {
		return nil, ErrSlotTaken
	}
	a := &Appointment{
		ID:        uuid.New(),
		UserID:    userID,
		DoctorID:  doctorID,
		Date:      date,
		Time:      timeLabel,
		Reason:    reason,
		Status:    StatusConfirmed,
		CreatedAt: time.Now(),
	}
	f.appointments[a.ID] = a
	return f.detail(a)
}

func (f *fakeRepo) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from, to Status) (*AppointmentDetail, error) {
	a, ok := f.appointments[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}
	a.Status = to
	return f.detail(a)
}

func (f *fakeRepo) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	if a, ok := f.appointments[id]; ok {
		return a, nil
	}
	return nil, ErrAppointmentNotFound
}

func (f *fakeRepo) GetAppointmentDetail(_ context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	a, ok := f.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return f.detail(a)
}

func (f *fakeRepo) ListUpcomingForUser(_ context.Context, userID uuid.UUID, today time.Time) ([]AppointmentDetail, error) {
	f.upcomingSince = today
	var out []AppointmentDetail
	for _, a := range f.appointments {
		if a.UserID == userID && !a.Date.Before(today) && (a.Status == StatusPending || a.Status == StatusConfirmed) {
			d, _ := f.detail(a)
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListPastForUser(_ context.Context, userID uuid.UUID, today time.Time, limit int) ([]AppointmentDetail, error) {
	f.pastBefore = today
	f.pastLimit = limit
	var out []AppointmentDetail
	for _, a := range f.appointments {
		if a.UserID == userID && a.Date.Before(today) {
			d, _ := f.detail(a)
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]AppointmentDetail, error) {
	var out []AppointmentDetail
	for _, a := range f.appointments {
		if a.UserID == userID {
			d, _ := f.detail(a)
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountForUser(_ context.Context, userID uuid.UUID) (int, int, error) {
	if f.countErr != nil {
		return 0, 0, f.countErr
	}
	total, completed := 0, 0
	for _, a := range f.appointments {
		if a.UserID == userID {
			total++
			if a.Status == StatusCompleted {
				completed++
			}
		}
	}
	return total, completed, nil
}

func (f *fakeRepo) detail(a *Appointment) (*AppointmentDetail, error) {
	d := &AppointmentDetail{Appointment: *a}
	for _, u := range f.users {
		if u.ID == a.UserID {
			d.User = u
		}
	}
	d.Doctor = f.doctors[a.DoctorID]
	return d, nil
}

type fakeLocker struct {
	err      error
	lastSlot string
}

func (l *fakeLocker) WithSlotLock(ctx context.Context, doctorID, date, timeLabel string, fn func(ctx context.Context) error) error {
	if l.err != nil {
		return l.err
	}
	l.lastSlot = fmt.Sprintf("%s:%s:%s", doctorID, date, timeLabel)
	return fn(ctx)
}

func newTestService(repo Repository, locker redisclient.Locker) *Service {
	return NewService(repo, locker, zerolog.Nop())
}

func validInput() BookingInput {
	return BookingInput{
		DoctorID:   "d1",
		DoctorName: "Test Dental",
		Date:       "2025-06-01",
		Time:       "10:00",
	}
}

func TestBookThenListBookedSlots(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser("u1")
	repo.addDoctor("d1", "Test Dental")
	locker := &fakeLocker{}
	svc := newTestService(repo, locker)

	appt, err := svc.Book(context.Background(), "u1", validInput())
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, appt.Status)
	assert.Equal(t, "2025-06-01", appt.Date)
	assert.Equal(t, "Ada Lovelace", appt.PatientName)
	assert.Equal(t, "d1:2025-06-01:10:00", locker.lastSlot)

	times, err := svc.ListBookedSlots(context.Background(), "d1", "2025-06-01")
	require.NoError(t, err)
	assert.Contains(t, times, "10:00")
}

func TestBookSlotConflict(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser("u1")
	repo.addUser("u2")
	repo.addDoctor("d1", "Test Dental")
	svc := newTestService(repo, &fakeLocker{})

	_, err := svc.Book(context.Background(), "u1", validInput())
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), "u2", validInput())
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestBookCancelledSlotIsFree(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser("u1")
	repo.addUser("u2")
	repo.addDoctor("d1", "Test Dental")
	svc := newTestService(repo, &fakeLocker{})

	first, err := svc.Book(context.Background(), "u1", validInput())
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), "u1", first.ID.String())
	require.NoError(t, err)

	// Cancelled appointments do not block the slot
	_, err = svc.Book(context.Background(), "u2", validInput())
	assert.NoError(t, err)
}

func TestBookValidation(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser("u1")
	svc := newTestService(repo, &fakeLocker{})

	cases := []struct {
		name   string
		mutate func(*BookingInput)
		want   error
	}{
		{"missing doctor id", func(i *BookingInput) { i.DoctorID = "" }, ErrMissingBookingFields},
		{"missing doctor name", func(i *BookingInput) { i.DoctorName = "" }, ErrMissingBookingFields},
		{"missing date", func(i *BookingInput) { i.Date = "" }, ErrMissingBookingFields},
		{"missing time", func(i *BookingInput) { i.Time = "" }, ErrMissingBookingFields},
		{"bad date", func(i *BookingInput) { i.Date = "06/01/2025" }, ErrInvalidDate},
		{"impossible date", func(i *BookingInput) { i.Date = "2025-02-30" }, ErrInvalidDate},
		{"bad time", func(i *BookingInput) { i.Time = "25:99" }, ErrInvalidTimeLabel},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			input := validInput()
			c.mutate(&input)
			_, err := svc.Book(context.Background(), "u1", input)
			assert.ErrorIs(t, err, c.want)
		})
	}
}

func TestBookMaterializesExternalDoctor(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser("u1")
	svc := newTestService(repo, &fakeLocker{})

	input := validInput()
	input.DoctorID = "osm-42"
	input.DoctorName = "Map Dental"

	appt, err := svc.Book(context.Background(), "u1", input)
	require.NoError(t, err)
	assert.Equal(t, "osm-42", appt.DoctorID)

	require.NotNil(t, repo.createdDoctor)
	assert.Equal(t, "+91 000-000-0000", repo.createdDoctor.Phone)
	assert.Equal(t, "General Dentistry", repo.createdDoctor.Speciality)
	assert.Equal(t, "/logo.png", *repo.createdDoctor.ImageURL)
	assert.True(t, repo.createdDoctor.IsActive)
}

func TestBookDeduplicatesDoctorByNamePhone(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser("u1")
	existing := repo.addDoctor("osm-1", "Map Dental")
	svc := newTestService(repo, &fakeLocker{})

	// Same dentist re-queried under a new synthesized id
	input := validInput()
	input.DoctorID = "osm-2"
	input.DoctorName = existing.Name
	input.DoctorPhone = existing.Phone

	appt, err := svc.Book(context.Background(), "u1", input)
	require.NoError(t, err)
	assert.Equal(t, "osm-1", appt.DoctorID)
	assert.Nil(t, repo.createdDoctor)
}

func TestBookLockContention(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser("u1")
	repo.addDoctor("d1", "Test Dental")
	svc := newTestService(repo, &fakeLocker{err: redisclient.ErrLockNotAcquired})

	_, err := svc.Book(context.Background(), "u1", validInput())
	assert.ErrorIs(t, err, ErrSlotBeingBooked)
}

func TestBookUnknownUser(t *testing.T) {
	repo := newFakeRepo()
	repo.addDoctor("d1", "Test Dental")
	svc := newTestService(repo, &fakeLocker{})

	_, err := svc.Book(context.Background(), "nobody", validInput())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestBookDefaultsReason(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser("u1")
	repo.addDoctor("d1", "Test Dental")
	svc := newTestService(repo, &fakeLocker{})

	appt, err := svc.Book(context.Background(), "u1", validInput())
	require.NoError(t, err)
	assert.Equal(t, "General consultation", appt.Reason)
}

func TestCancelIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser("u1")
	repo.addDoctor("d1", "Test Dental")
	svc := newTestService(repo, &fakeLocker{})

	appt, err := svc.Book(context.Background(), "u1", validInput())
	require.NoError(t, err)

	first, err := svc.Cancel(context.Background(), "u1", appt.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, first.Status)

	second, err := svc.Cancel(context.Background(), "u1", appt.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, second.Status)
}

func TestCancelCompletedRejected(t *testing.T) {
	repo := newFakeRepo()
	user := repo.addUser("u1")
	repo.addDoctor("d1", "Test Dental")
	svc := newTestService(repo, &fakeLocker{})

	a := &Appointment{ID: uuid.New(), UserID: user.ID, DoctorID: "d1", Status: StatusCompleted}
	repo.appointments[a.ID] = a

	_, err := svc.Cancel(context.Background(), "u1", a.ID.String())
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestCancelOwnershipConflatedWithNotFound(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser("u1")
	repo.addUser("u2")
	repo.addDoctor("d1", "Test Dental")
	svc := newTestService(repo, &fakeLocker{})

	appt, err := svc.Book(context.Background(), "u1", validInput())
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), "u2", appt.ID.String())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	_, err = svc.Cancel(context.Background(), "u1", uuid.NewString())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	_, err = svc.Cancel(context.Background(), "u1", "not-a-uuid")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestListBookedSlotsDegradesOnStoreFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.listBookedErr = errors.New("connection refused")
	svc := newTestService(repo, &fakeLocker{})

	times, err := svc.ListBookedSlots(context.Background(), "d1", "2025-06-01")
	require.NoError(t, err)
	assert.Empty(t, times)
	assert.NotNil(t, times)
}

func TestListBookedSlotsInvalidDate(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeLocker{})

	_, err := svc.ListBookedSlots(context.Background(), "d1", "June 1st")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestListBookedSlotsExcludesNonBlocking(t *testing.T) {
	repo := newFakeRepo()
	user := repo.addUser("u1")
	repo.addDoctor("d1", "Test Dental")
	svc := newTestService(repo, &fakeLocker{})

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, st := range []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled} {
		a := &Appointment{
			ID: uuid.New(), UserID: user.ID, DoctorID: "d1",
			Date: day, Time: fmt.Sprintf("1%d:00", i), Status: st,
		}
		repo.appointments[a.ID] = a
	}

	times, err := svc.ListBookedSlots(context.Background(), "d1", "2025-06-01")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"11:00", "12:00"}, times)
}

func TestUpcomingAndPastBoundaries(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser("u1")
	svc := newTestService(repo, &fakeLocker{})

	loc := time.FixedZone("IST", 5*3600+1800)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 14, 30, 0, 0, loc) }

	_, err := svc.ListUpcoming(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, loc), repo.upcomingSince)

	_, err = svc.ListPast(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, loc), repo.pastBefore)
	assert.Equal(t, 20, repo.pastLimit)
}

func TestUserStatsDegradesToZeros(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser("u1")
	repo.countErr = errors.New("connection refused")
	svc := newTestService(repo, &fakeLocker{})

	stats, err := svc.UserStats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestUserStatsCounts(t *testing.T) {
	repo := newFakeRepo()
	user := repo.addUser("u1")
	svc := newTestService(repo, &fakeLocker{})

	for _, st := range []Status{StatusConfirmed, StatusCompleted, StatusCompleted, StatusCancelled} {
		a := &Appointment{ID: uuid.New(), UserID: user.ID, DoctorID: "d1", Status: st}
		repo.appointments[a.ID] = a
	}

	stats, err := svc.UserStats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalAppointments: 4, CompletedAppointments: 2}, stats)
}
