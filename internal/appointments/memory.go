package appointments

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for development (USE_MEMORY_STORE=true)
// and tests. It enforces the same slot invariant under a single mutex.
type MemoryStore struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]*Appointment
	order []uuid.UUID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[uuid.UUID]*Appointment)}
}

var _ Store = (*MemoryStore)(nil)

// Insert adds a row, rejecting named-professional slot collisions.
func (s *MemoryStore) Insert(ctx context.Context, appt *Appointment) error {
	if appt.Status == "" {
		appt.Status = StatusUnset
	}
	if err := appt.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if occupiesNamedSlot(appt.Professional, appt.Status) {
		for _, row := range s.rows {
			if row.Professional == appt.Professional &&
				sameDay(row.Date, appt.Date) &&
				row.TimeSlot == appt.TimeSlot &&
				occupiesNamedSlot(row.Professional, row.Status) {
				return ErrSlotTaken
			}
		}
	}

	appt.ID = uuid.New()
	appt.CreatedAt = time.Now()
	stored := *appt
	stored.Services = append([]string(nil), appt.Services...)
	s.rows[stored.ID] = &stored
	s.order = append(s.order, stored.ID)
	return nil
}

// Query returns matching rows, most recent first.
func (s *MemoryStore) Query(ctx context.Context, filter Filter) ([]Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []Appointment
	for i := len(s.order) - 1; i >= 0; i-- {
		row := s.rows[s.order[i]]
		if filter.Professional != "" && row.Professional != filter.Professional {
			continue
		}
		if !filter.Date.IsZero() && !sameDay(row.Date, filter.Date) {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		if filter.CustomerPhone != "" && row.CustomerPhone != filter.CustomerPhone {
			continue
		}
		copied := *row
		copied.Services = append([]string(nil), row.Services...)
		result = append(result, copied)
	}
	return result, nil
}

// UpdateStatus swaps status when the current value matches expected.
func (s *MemoryStore) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok || row.Status != expected {
		return false, nil
	}
	row.Status = next
	return true, nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
