package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryReminderStore is the in-process ReminderStore used in dev mode and in
// tests.
type MemoryReminderStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*Reminder
}

func NewMemoryReminderStore() *MemoryReminderStore {
	return &MemoryReminderStore{rows: make(map[uuid.UUID]*Reminder)}
}

var _ ReminderStore = (*MemoryReminderStore)(nil)

func (s *MemoryReminderStore) Insert(_ context.Context, r *Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	clone := *r
	s.rows[r.ID] = &clone
	return nil
}

func (s *MemoryReminderStore) FetchDue(_ context.Context, now time.Time) ([]Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []Reminder
	for _, r := range s.rows {
		if r.SentAt == nil && !r.FireAt.After(now) {
			due = append(due, *r)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].FireAt.Before(due[j].FireAt) })
	return due, nil
}

func (s *MemoryReminderStore) MarkSent(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok || r.SentAt != nil {
		return false, nil
	}
	now := time.Now()
	r.SentAt = &now
	return true, nil
}
