package booking

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date wire form used for appointment dates.
const DateLayout = "2006-01-02"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// transitions is the closed set of allowed status changes. CANCELLED and
// COMPLETED are terminal.
var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCompleted: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusCompleted: true,
		StatusCancelled: true,
	},
	StatusCompleted: {},
	StatusCancelled: {},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) Terminal() bool {
	allowed, ok := transitions[s]
	return ok && len(allowed) == 0
}

// CanTransitionTo reports whether the status change s -> to is allowed.
func (s Status) CanTransitionTo(to Status) bool {
	return transitions[s][to]
}

// Blocking reports whether an appointment in this status occupies its slot.
func (s Status) Blocking() bool {
	return s == StatusConfirmed || s == StatusCompleted
}

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

type User struct {
	ID        uuid.UUID
	AuthID    string
	FirstName *string
	LastName  *string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Doctor ids are text, not UUIDs: dentists materialized from the map source
// keep their synthesized external id (for example "osm-123456") so that
// appointments referencing them stay valid across re-queries.
type Doctor struct {
	ID         string
	Name       string
	Email      *string
	Phone      string
	ImageURL   *string
	Speciality string
	Bio        string
	Gender     Gender
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Appointment struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	DoctorID  string
	Date      time.Time // date-only, midnight UTC
	Time      string    // slot label, e.g. "14:00"
	Reason    string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

type AppointmentDetail struct {
	Appointment
	User   *User
	Doctor *Doctor
}
