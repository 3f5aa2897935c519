package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/lfarias/barberbook/internal/appointments"
	"github.com/lfarias/barberbook/internal/messaging"
	"github.com/lfarias/barberbook/internal/observability/metrics"
	"github.com/lfarias/barberbook/pkg/logging"
)

// Sweeper asks customers to confirm their upcoming appointments. Each sweep
// picks up appointments that never got a confirmation request, sends one, and
// schedules the reminder for later delivery. When the reminder window has
// already elapsed the customer gets a past-due notice instead. The status
// transition is a CAS, so two overlapping sweeps never double-message a
// customer.
type Sweeper struct {
	store     appointments.Store
	reminders ReminderStore
	messenger messaging.Messenger
	lead      time.Duration
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
	now       func() time.Time

	cron *cron.Cron
}

// NewSweeper constructs the sweeper. lead is how long before the appointment
// the reminder should fire.
func NewSweeper(store appointments.Store, reminders ReminderStore, messenger messaging.Messenger, lead time.Duration, m *metrics.BookingMetrics, logger *logging.Logger) *Sweeper {
	if store == nil {
		panic("scheduler: appointment store required")
	}
	if reminders == nil {
		panic("scheduler: reminder store required")
	}
	if messenger == nil {
		panic("scheduler: messenger required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Sweeper{
		store:     store,
		reminders: reminders,
		messenger: messenger,
		lead:      lead,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the sweeper's notion of "now".
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	if now != nil {
		s.now = now
	}
	return s
}

// Start runs Sweep on the given cron schedule until Stop is called.
func (s *Sweeper) Start(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := s.Sweep(context.Background()); err != nil {
			s.logger.Error("confirmation sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduler: invalid sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("confirmation sweep scheduled", "schedule", schedule)
	return nil
}

// Stop halts the cron loop. Safe to call when Start was never called.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep processes every appointment still awaiting its confirmation request.
func (s *Sweeper) Sweep(ctx context.Context) error {
	pending, err := s.store.Query(ctx, appointments.Filter{Status: appointments.StatusUnset})
	if err != nil {
		s.metrics.ObserveSweep("error")
		return fmt.Errorf("scheduler: query unconfirmed appointments: %w", err)
	}

	now := s.now()
	var swept int
	for i := range pending {
		if err := s.sweepOne(ctx, &pending[i], now); err != nil {
			s.logger.Error("failed to process appointment in sweep", "error", err, "appointment_id", pending[i].ID)
			continue
		}
		swept++
	}

	s.metrics.ObserveSweep("ok")
	s.logger.Info("confirmation sweep finished", "candidates", len(pending), "swept", swept)
	return nil
}

func (s *Sweeper) sweepOne(ctx context.Context, appt *appointments.Appointment, now time.Time) error {
	// claim the appointment first so a concurrent sweep skips it
	ok, err := s.store.UpdateStatus(ctx, appt.ID, appointments.StatusUnset, appointments.StatusPending)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	fireAt := appt.StartAt().Add(-s.lead)
	if fireAt.Before(now) {
		// the reminder window already elapsed; the customer hears that the
		// appointment passed instead of being asked to confirm it
		if err := s.messenger.Send(ctx, appt.CustomerPhone, msgAppointmentPassed); err != nil {
			s.release(ctx, appt.ID)
			return fmt.Errorf("send past-due notice: %w", err)
		}
		sentAt := now
		reminder := &Reminder{
			AppointmentID: appt.ID,
			Phone:         appt.CustomerPhone,
			Body:          msgAppointmentPassed,
			FireAt:        fireAt,
			SentAt:        &sentAt,
		}
		if err := s.reminders.Insert(ctx, reminder); err != nil {
			return fmt.Errorf("record past-due notice: %w", err)
		}
		return nil
	}

	request := confirmationRequest(appt.CustomerName, appt.Date, appt.TimeSlot, appt.Professional)
	if err := s.messenger.Send(ctx, appt.CustomerPhone, request); err != nil {
		s.release(ctx, appt.ID)
		return fmt.Errorf("send confirmation request: %w", err)
	}

	reminder := &Reminder{
		AppointmentID: appt.ID,
		Phone:         appt.CustomerPhone,
		Body:          reminderBody(appt.CustomerName, appt.TimeSlot, appt.Professional),
		FireAt:        fireAt,
	}
	if err := s.reminders.Insert(ctx, reminder); err != nil {
		s.release(ctx, appt.ID)
		return fmt.Errorf("schedule reminder: %w", err)
	}
	return nil
}

// release undoes the claim after a failure, so the next sweep retries the
// appointment from scratch.
func (s *Sweeper) release(ctx context.Context, id uuid.UUID) {
	if _, err := s.store.UpdateStatus(ctx, id, appointments.StatusPending, appointments.StatusUnset); err != nil {
		s.logger.Error("failed to release claimed appointment", "error", err, "appointment_id", id)
	}
}
