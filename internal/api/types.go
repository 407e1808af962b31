package api

type BookAppointmentRequest struct {
	DoctorID         string `json:"doctorId"`
	DoctorName       string `json:"doctorName"`
	DoctorPhone      string `json:"doctorPhone,omitempty"`
	DoctorSpeciality string `json:"doctorSpeciality,omitempty"`
	DoctorImageURL   string `json:"doctorImageUrl,omitempty"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	Reason           string `json:"reason,omitempty"`
}

type BookedSlotsResponse struct {
	DoctorID string   `json:"doctorId"`
	Date     string   `json:"date"`
	Times    []string `json:"times"`
}

type DoctorResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone"`
	ImageURL   string `json:"imageUrl,omitempty"`
	Speciality string `json:"speciality"`
	Bio        string `json:"bio"`
	Gender     string `json:"gender"`
	IsActive   bool   `json:"isActive"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
