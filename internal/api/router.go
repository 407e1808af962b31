package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	Booking       BookingService
	Nearby        NearbyService
	PgPool        *pgxpool.Pool
	Redis         *redis.Client
	Logger        zerolog.Logger
	JWTSecret     string
	NearbyRadiusM int
	Env           string
	Version       string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Public endpoints
	r.Get("/api/nearby-dentists", nearbyDentistsHandler(cfg.Nearby, cfg.NearbyRadiusM))
	r.Get("/api/doctors", listDoctorsHandler(cfg.Booking))

	// Authenticated endpoints
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.JWTSecret))

		r.Post("/api/appointments", bookAppointmentHandler(cfg.Booking))
		r.Get("/api/appointments", listAppointmentsHandler(cfg.Booking))
		r.Get("/api/appointments/booked-slots", bookedSlotsHandler(cfg.Booking))
		r.Get("/api/appointments/stats", appointmentStatsHandler(cfg.Booking))
		r.Post("/api/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Booking))
	})

	return r
}
