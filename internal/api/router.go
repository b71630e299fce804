package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/carelink/telemed-scheduling/internal/appointment"
	"github.com/carelink/telemed-scheduling/internal/notification"
	"github.com/carelink/telemed-scheduling/internal/schedule"
)

type RouterConfig struct {
	Schedules     *schedule.Service
	Appointments  *appointment.Service
	Notifications *notification.Service
	Roster        *notification.PgDirectory

	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Metrics      *Metrics
	PollInterval time.Duration
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(ActorMiddleware)

	// Health and metrics endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Availability and slots
	r.Put("/doctors/{id}/availability", setAvailabilityHandler(cfg.Schedules))
	r.Get("/doctors/{id}/availability", getAvailabilityHandler(cfg.Schedules))
	r.Get("/doctors/{id}/slots", listSlotsHandler(cfg.Schedules))

	// Appointment lifecycle
	r.Post("/appointments", createAppointmentHandler(cfg.Appointments))
	r.Get("/appointments", listAppointmentsHandler(cfg.Appointments))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Appointments))
	r.Post("/appointments/{id}/confirm", transitionHandler(cfg.Appointments, appointment.ActionConfirm))
	r.Post("/appointments/{id}/cancel", transitionHandler(cfg.Appointments, appointment.ActionCancel))
	r.Post("/appointments/{id}/complete", transitionHandler(cfg.Appointments, appointment.ActionComplete))
	r.Delete("/appointments/{id}", deleteAppointmentHandler(cfg.Appointments))

	// Notifications
	r.Get("/notifications", listNotificationsHandler(cfg.Notifications, cfg.PollInterval))
	r.Post("/notifications/{id}/read", markNotificationReadHandler(cfg.Notifications))
	r.Post("/notifications/read-all", markAllNotificationsReadHandler(cfg.Notifications))

	// Admin fan-out
	r.Post("/admin/broadcast", broadcastHandler(cfg.Notifications, cfg.Roster, notification.TypeBroadcast))
	r.Post("/admin/alert", broadcastHandler(cfg.Notifications, cfg.Roster, notification.TypeAlert))

	return r
}
