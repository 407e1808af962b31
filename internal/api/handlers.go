package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aivory/dental-booking/internal/booking"
	"github.com/aivory/dental-booking/internal/nearby"
)

// BookingService is the slice of the booking engine the handlers use.
type BookingService interface {
	ListBookedSlots(ctx context.Context, doctorID, date string) ([]string, error)
	Book(ctx context.Context, authUserID string, input booking.BookingInput) (*booking.DisplayAppointment, error)
	Cancel(ctx context.Context, authUserID, appointmentID string) (*booking.DisplayAppointment, error)
	ListUpcoming(ctx context.Context, authUserID string) ([]booking.DisplayAppointment, error)
	ListPast(ctx context.Context, authUserID string) ([]booking.DisplayAppointment, error)
	ListAll(ctx context.Context, authUserID string) ([]booking.DisplayAppointment, error)
	UserStats(ctx context.Context, authUserID string) (booking.Stats, error)
	ListDoctors(ctx context.Context) ([]booking.Doctor, error)
}

// NearbyService ranks dentists around a point. It never fails; degraded
// lookups carry source "sample".
type NearbyService interface {
	Nearby(ctx context.Context, lat, lon float64, radiusM int) nearby.Result
}

func nearbyDentistsHandler(svc NearbyService, defaultRadiusM int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		latStr := q.Get("lat")
		lonStr := q.Get("lon")
		if latStr == "" || lonStr == "" {
			writeError(w, http.StatusBadRequest, "missing_coordinates", "lat and lon are required")
			return
		}

		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_lat", "lat must be decimal degrees")
			return
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_lon", "lon must be decimal degrees")
			return
		}

		radius := defaultRadiusM
		if v := q.Get("radius"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				radius = n
			}
		}

		writeJSON(w, http.StatusOK, svc.Nearby(r.Context(), lat, lon, radius))
	}
}

func listDoctorsHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors, err := svc.ListDoctors(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "could not list doctors")
			return
		}

		resp := make([]DoctorResponse, 0, len(doctors))
		for _, d := range doctors {
			resp = append(resp, toDoctorResponse(d))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func bookAppointmentHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authID, ok := GetAuthUserID(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "you must be signed in to book")
			return
		}

		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.Book(r.Context(), authID, booking.BookingInput{
			DoctorID:         req.DoctorID,
			DoctorName:       req.DoctorName,
			DoctorPhone:      req.DoctorPhone,
			DoctorSpeciality: req.DoctorSpeciality,
			DoctorImageURL:   req.DoctorImageURL,
			Date:             req.Date,
			Time:             req.Time,
			Reason:           req.Reason,
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, appt)
	}
}

func cancelAppointmentHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authID, ok := GetAuthUserID(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "you must be signed in")
			return
		}

		appt, err := svc.Cancel(r.Context(), authID, chi.URLParam(r, "id"))
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, appt)
	}
}

func listAppointmentsHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authID, ok := GetAuthUserID(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "you must be signed in")
			return
		}

		var (
			appts []booking.DisplayAppointment
			err   error
		)
		switch scope := r.URL.Query().Get("scope"); scope {
		case "upcoming":
			appts, err = svc.ListUpcoming(r.Context(), authID)
		case "past":
			appts, err = svc.ListPast(r.Context(), authID)
		case "", "all":
			appts, err = svc.ListAll(r.Context(), authID)
		default:
			writeError(w, http.StatusBadRequest, "invalid_scope", "scope must be upcoming, past or all")
			return
		}
		if err != nil {
			handleBookingError(w, err)
			return
		}

		if appts == nil {
			appts = []booking.DisplayAppointment{}
		}
		writeJSON(w, http.StatusOK, appts)
	}
}

func bookedSlotsHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		doctorID := q.Get("doctorId")
		date := q.Get("date")
		if doctorID == "" || date == "" {
			writeError(w, http.StatusBadRequest, "missing_parameters", "doctorId and date are required")
			return
		}

		times, err := svc.ListBookedSlots(r.Context(), doctorID, date)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, BookedSlotsResponse{
			DoctorID: doctorID,
			Date:     date,
			Times:    times,
		})
	}
}

func appointmentStatsHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authID, ok := GetAuthUserID(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "you must be signed in")
			return
		}

		stats, err := svc.UserStats(r.Context(), authID)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, stats)
	}
}

func handleBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrMissingBookingFields),
		errors.Is(err, booking.ErrInvalidDate),
		errors.Is(err, booking.ErrInvalidTimeLabel):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, booking.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", "user not found, please ensure your account is set up")
	case errors.Is(err, booking.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, booking.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, booking.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_already_booked", err.Error())
	case errors.Is(err, booking.ErrSlotBeingBooked):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	case errors.Is(err, booking.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func toDoctorResponse(d booking.Doctor) DoctorResponse {
	resp := DoctorResponse{
		ID:         d.ID,
		Name:       d.Name,
		Phone:      d.Phone,
		Speciality: d.Speciality,
		Bio:        d.Bio,
		Gender:     string(d.Gender),
		IsActive:   d.IsActive,
	}
	if d.Email != nil {
		resp.Email = *d.Email
	}
	if d.ImageURL != nil {
		resp.ImageURL = *d.ImageURL
	}
	return resp
}
