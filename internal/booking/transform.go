package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DisplayAppointment is the view of an appointment handed to clients, with
// fields derived from the joined user and doctor records.
type DisplayAppointment struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"userId"`
	DoctorID       string    `json:"doctorId"`
	Date           string    `json:"date"` // YYYY-MM-DD
	Time           string    `json:"time"`
	Reason         string    `json:"reason,omitempty"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	PatientName    string    `json:"patientName"`
	PatientEmail   string    `json:"patientEmail"`
	DoctorName     string    `json:"doctorName"`
	DoctorImageURL string    `json:"doctorImageUrl"`
}

// Transform derives the display record for a hydrated appointment. It is pure
// and never mutates its input.
func Transform(d AppointmentDetail) DisplayAppointment {
	out := DisplayAppointment{
		ID:        d.ID,
		UserID:    d.UserID,
		DoctorID:  d.DoctorID,
		Date:      d.Date.UTC().Format(DateLayout),
		Time:      d.Time,
		Reason:    d.Reason,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
	}

	if d.User != nil {
		out.PatientName = strings.TrimSpace(deref(d.User.FirstName) + " " + deref(d.User.LastName))
		out.PatientEmail = d.User.Email
	}

	if d.Doctor != nil {
		out.DoctorName = d.Doctor.Name
		out.DoctorImageURL = deref(d.Doctor.ImageURL)
	}

	return out
}

func transformAll(details []AppointmentDetail) []DisplayAppointment {
	out := make([]DisplayAppointment, 0, len(details))
	for _, d := range details {
		out = append(out, Transform(d))
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
