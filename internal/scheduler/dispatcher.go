package scheduler

import (
	"context"
	"time"

	"github.com/lfarias/barberbook/internal/appointments"
	"github.com/lfarias/barberbook/internal/messaging"
	"github.com/lfarias/barberbook/internal/observability/metrics"
	"github.com/lfarias/barberbook/pkg/logging"
)

// Dispatcher polls the reminder store and delivers due reminders. Because
// reminders are rows, not timers, a restart picks up exactly where the
// previous process stopped.
type Dispatcher struct {
	reminders ReminderStore
	store     appointments.Store
	messenger messaging.Messenger
	interval  time.Duration
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
}

// NewDispatcher constructs the reminder dispatcher.
func NewDispatcher(reminders ReminderStore, store appointments.Store, messenger messaging.Messenger, interval time.Duration, m *metrics.BookingMetrics, logger *logging.Logger) *Dispatcher {
	if reminders == nil {
		panic("scheduler: reminder store required")
	}
	if store == nil {
		panic("scheduler: appointment store required")
	}
	if messenger == nil {
		panic("scheduler: messenger required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Dispatcher{
		reminders: reminders,
		store:     store,
		messenger: messenger,
		interval:  interval,
		metrics:   m,
		logger:    logger,
	}
}

// Run polls until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("reminder dispatcher started", "interval", d.interval)
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("reminder dispatcher stopped")
			return
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick delivers everything currently due. Exported so tests and the sweep can
// drive it without the ticker.
func (d *Dispatcher) Tick(ctx context.Context) {
	due, err := d.reminders.FetchDue(ctx, time.Now())
	if err != nil {
		d.logger.Error("failed to fetch due reminders", "error", err)
		return
	}

	for _, reminder := range due {
		if err := d.deliver(ctx, reminder); err != nil {
			d.logger.Error("failed to deliver reminder", "error", err, "reminder_id", reminder.ID)
			d.metrics.ObserveReminder("error")
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, reminder Reminder) error {
	// claim before sending so concurrent dispatchers never double-deliver
	ok, err := d.reminders.MarkSent(ctx, reminder.ID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if d.cancelled(ctx, reminder) {
		d.metrics.ObserveReminder("skipped_cancelled")
		d.logger.Info("reminder skipped, appointment cancelled", "appointment_id", reminder.AppointmentID)
		return nil
	}

	if err := d.messenger.Send(ctx, reminder.Phone, reminder.Body); err != nil {
		return err
	}
	d.metrics.ObserveReminder("sent")
	return nil
}

func (d *Dispatcher) cancelled(ctx context.Context, reminder Reminder) bool {
	rows, err := d.store.Query(ctx, appointments.Filter{CustomerPhone: reminder.Phone})
	if err != nil {
		// when in doubt, send; a spurious reminder beats a missed one
		d.logger.Warn("failed to check appointment status", "error", err, "appointment_id", reminder.AppointmentID)
		return false
	}
	for _, appt := range rows {
		if appt.ID == reminder.AppointmentID {
			return appt.Status == appointments.StatusCancelled
		}
	}
	return false
}
