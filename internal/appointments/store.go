package appointments

import (
	"context"

	"github.com/google/uuid"
)

// Store is the only shared mutable resource in the system. Insert is an
// atomic check-and-insert; UpdateStatus is a compare-and-swap on status.
type Store interface {
	// Insert persists a new appointment, assigning ID and CreatedAt.
	// Concurrent inserts targeting the same (professional, date, time) yield
	// at most one success; the rest fail with ErrSlotTaken.
	Insert(ctx context.Context, appt *Appointment) error

	// Query returns appointments matching the filter, most recent first.
	Query(ctx context.Context, filter Filter) ([]Appointment, error)

	// UpdateStatus applies next only if the record currently has expected.
	// It reports whether the swap happened; a false return is a no-op, not
	// an error.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, next Status) (bool, error)
}
