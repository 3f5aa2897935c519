package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Reminder is a persisted one-shot notification. Reminders survive process
// restarts; a dispatcher polls for due rows instead of holding in-memory
// timers.
type Reminder struct {
	ID            uuid.UUID
	AppointmentID uuid.UUID
	Phone         string
	Body          string
	FireAt        time.Time
	SentAt        *time.Time
	CreatedAt     time.Time
}

// ReminderStore persists reminders and hands out due ones.
type ReminderStore interface {
	Insert(ctx context.Context, r *Reminder) error
	// FetchDue returns unsent reminders with fire_at <= now, oldest first.
	FetchDue(ctx context.Context, now time.Time) ([]Reminder, error)
	// MarkSent flips the reminder to sent. Returns false when it was already
	// sent, so concurrent dispatchers never double-deliver.
	MarkSent(ctx context.Context, id uuid.UUID) (bool, error)
}
