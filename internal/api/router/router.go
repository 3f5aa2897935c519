package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lfarias/barberbook/internal/http/handlers"
	httpmiddleware "github.com/lfarias/barberbook/internal/http/middleware"
	"github.com/lfarias/barberbook/internal/messaging"
	"github.com/lfarias/barberbook/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger         *logging.Logger
	Gateway        *messaging.Gateway
	Appointments   *handlers.AppointmentsHandler
	MetricsHandler http.Handler
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.Gateway != nil {
		r.Route("/messaging", func(r chi.Router) {
			r.Post("/whatsapp/webhook", cfg.Gateway.WhatsAppWebhook)
		})
	}
	if cfg.Appointments != nil {
		r.Get("/appointments", cfg.Appointments.List)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
