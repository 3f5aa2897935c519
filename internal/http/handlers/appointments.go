package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lfarias/barberbook/internal/appointments"
	"github.com/lfarias/barberbook/pkg/logging"
)

const dateLayout = "02/01/2006"

// AppointmentsHandler serves the read-only appointment listing the shop staff
// uses to see the day's bookings.
type AppointmentsHandler struct {
	store  appointments.Store
	logger *logging.Logger
}

func NewAppointmentsHandler(store appointments.Store, logger *logging.Logger) *AppointmentsHandler {
	if store == nil {
		panic("handlers: appointment store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentsHandler{store: store, logger: logger}
}

type appointmentResponse struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	Phone        string    `json:"phone"`
	Date         string    `json:"date"`
	TimeSlot     string    `json:"time_slot"`
	Services     []string  `json:"services"`
	Professional string    `json:"professional"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// List handles GET /appointments. Optional query parameters: professional,
// date (DD/MM/AAAA), status, phone.
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := appointments.Filter{
		Professional:  r.URL.Query().Get("professional"),
		Status:        appointments.Status(r.URL.Query().Get("status")),
		CustomerPhone: r.URL.Query().Get("phone"),
	}
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			http.Error(w, "invalid date, expected DD/MM/AAAA", http.StatusBadRequest)
			return
		}
		filter.Date = date
	}

	rows, err := h.store.Query(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		http.Error(w, "appointment store unavailable", http.StatusServiceUnavailable)
		return
	}

	out := make([]appointmentResponse, 0, len(rows))
	for _, appt := range rows {
		out = append(out, appointmentResponse{
			ID:           appt.ID.String(),
			CustomerName: appt.CustomerName,
			Phone:        appt.CustomerPhone,
			Date:         appt.Date.Format(dateLayout),
			TimeSlot:     appt.TimeSlot,
			Services:     appt.Services,
			Professional: appt.Professional,
			Status:       string(appt.Status),
			CreatedAt:    appt.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"appointments": out}); err != nil {
		h.logger.Error("failed to encode appointments", "error", err)
	}
}
