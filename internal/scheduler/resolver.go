package scheduler

import (
	"context"
	"fmt"

	"github.com/lfarias/barberbook/internal/appointments"
	"github.com/lfarias/barberbook/pkg/logging"
)

// Resolver applies a customer's confirmation answer to their pending
// appointment.
type Resolver struct {
	store  appointments.Store
	logger *logging.Logger
}

// NewResolver constructs a resolver over the appointment store.
func NewResolver(store appointments.Store, logger *logging.Logger) *Resolver {
	if store == nil {
		panic("scheduler: appointment store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{store: store, logger: logger}
}

// ResolveReply finds the customer's most recent appointment awaiting
// confirmation and transitions it. handled=false means nothing was pending,
// so the caller should treat the message as ordinary dialogue input.
func (r *Resolver) ResolveReply(ctx context.Context, phone string, confirmed bool) (string, bool, error) {
	rows, err := r.store.Query(ctx, appointments.Filter{
		CustomerPhone: phone,
		Status:        appointments.StatusPending,
	})
	if err != nil {
		return "", false, fmt.Errorf("scheduler: query pending appointments: %w", err)
	}
	if len(rows) == 0 {
		return "", false, nil
	}

	next := appointments.StatusConfirmed
	ack := msgConfirmedAck
	if !confirmed {
		next = appointments.StatusCancelled
		ack = msgCancelledAck
	}

	// rows come most recent first; the CAS loses only if the status moved
	// under us, in which case the next row (if any) gets the answer
	for _, appt := range rows {
		ok, err := r.store.UpdateStatus(ctx, appt.ID, appointments.StatusPending, next)
		if err != nil {
			return "", false, fmt.Errorf("scheduler: apply confirmation: %w", err)
		}
		if ok {
			r.logger.Info("confirmation resolved",
				"appointment_id", appt.ID,
				"status", next,
			)
			return ack, true, nil
		}
	}
	return "", false, nil
}
