package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/lfarias/barberbook/internal/appointments"
)

// Engine computes bookable time slots for a professional on a date. It is a
// pure function of store state at call time: no caching, no staleness
// tolerance. The store's atomic insert, not this engine, closes the gap
// between showing a slot and booking it.
type Engine struct {
	store appointments.Store
	slots []string
}

// NewEngine builds an engine over the given slot catalog.
func NewEngine(store appointments.Store, slots []string) *Engine {
	if store == nil {
		panic("availability: store required")
	}
	if len(slots) == 0 {
		panic("availability: slot catalog required")
	}
	return &Engine{store: store, slots: slots}
}

// SlotCatalog generates the ordered daily slot grid from opening hours, e.g.
// ("09:00", "19:00", 30m) yields 09:00, 09:30, ..., 18:30. Close is exclusive.
func SlotCatalog(open, close string, interval time.Duration) ([]string, error) {
	openAt, err := time.Parse("15:04", open)
	if err != nil {
		return nil, fmt.Errorf("availability: invalid opening time %q: %w", open, err)
	}
	closeAt, err := time.Parse("15:04", close)
	if err != nil {
		return nil, fmt.Errorf("availability: invalid closing time %q: %w", close, err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("availability: interval must be positive, got %s", interval)
	}
	if !openAt.Before(closeAt) {
		return nil, fmt.Errorf("availability: opening %q must precede closing %q", open, close)
	}

	var slots []string
	for t := openAt; t.Before(closeAt); t = t.Add(interval) {
		slots = append(slots, t.Format("15:04"))
	}
	return slots, nil
}

// Slots returns the full catalog.
func (e *Engine) Slots() []string {
	return e.slots
}

// Contains reports whether the given time is a catalog slot.
func (e *Engine) Contains(slot string) bool {
	for _, s := range e.slots {
		if s == slot {
			return true
		}
	}
	return false
}

// Available returns the ordered catalog slots not occupied by a non-cancelled
// appointment for (professional, date).
func (e *Engine) Available(ctx context.Context, professional string, date time.Time) ([]string, error) {
	booked, err := e.store.Query(ctx, appointments.Filter{
		Professional: professional,
		Date:         date,
	})
	if err != nil {
		return nil, fmt.Errorf("availability: query booked slots: %w", err)
	}

	taken := make(map[string]bool, len(booked))
	for _, appt := range booked {
		if appt.Status != appointments.StatusCancelled {
			taken[appt.TimeSlot] = true
		}
	}

	var free []string
	for _, slot := range e.slots {
		if !taken[slot] {
			free = append(free, slot)
		}
	}
	return free, nil
}
