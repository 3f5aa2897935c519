package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfarias/barberbook/internal/appointments"
)

func mustCatalog(t *testing.T) []string {
	t.Helper()
	slots, err := SlotCatalog("09:00", "19:00", 30*time.Minute)
	require.NoError(t, err)
	return slots
}

func book(t *testing.T, store appointments.Store, professional, slot string, date time.Time) *appointments.Appointment {
	t.Helper()
	appt := &appointments.Appointment{
		CustomerName:  "Maria",
		CustomerPhone: "+5511999990001",
		Date:          date,
		TimeSlot:      slot,
		Services:      []string{"Corte de cabelo"},
		Professional:  professional,
	}
	require.NoError(t, store.Insert(context.Background(), appt))
	return appt
}

func TestSlotCatalog(t *testing.T) {
	slots := mustCatalog(t)
	assert.Len(t, slots, 20)
	assert.Equal(t, "09:00", slots[0])
	assert.Equal(t, "18:30", slots[len(slots)-1])
	assert.Contains(t, slots, "11:00")

	_, err := SlotCatalog("19:00", "09:00", 30*time.Minute)
	assert.Error(t, err)
	_, err = SlotCatalog("9am", "19:00", 30*time.Minute)
	assert.Error(t, err)
	_, err = SlotCatalog("09:00", "19:00", 0)
	assert.Error(t, err)
}

func TestAvailableReturnsFullCatalogWhenStoreEmpty(t *testing.T) {
	store := appointments.NewMemoryStore()
	engine := NewEngine(store, mustCatalog(t))

	date := time.Date(2025, 5, 20, 0, 0, 0, 0, time.Local)
	free, err := engine.Available(context.Background(), "Carlos", date)
	require.NoError(t, err)
	assert.Equal(t, engine.Slots(), free)
}

func TestAvailableExcludesBookedSlots(t *testing.T) {
	store := appointments.NewMemoryStore()
	engine := NewEngine(store, mustCatalog(t))
	date := time.Date(2025, 5, 20, 0, 0, 0, 0, time.Local)

	book(t, store, "Carlos", "11:00", date)
	book(t, store, "Carlos", "14:30", date)
	// another professional's booking does not reduce Carlos's availability
	book(t, store, "Emanuele", "09:00", date)
	// neither does another day
	book(t, store, "Carlos", "10:00", date.AddDate(0, 0, 1))

	free, err := engine.Available(context.Background(), "Carlos", date)
	require.NoError(t, err)
	assert.NotContains(t, free, "11:00")
	assert.NotContains(t, free, "14:30")
	assert.Contains(t, free, "09:00")
	assert.Contains(t, free, "10:00")
	assert.Len(t, free, len(engine.Slots())-2)
}

func TestAvailablePlusBookedCoversCatalogDisjointly(t *testing.T) {
	store := appointments.NewMemoryStore()
	engine := NewEngine(store, mustCatalog(t))
	date := time.Date(2025, 5, 20, 0, 0, 0, 0, time.Local)

	book(t, store, "Carlos", "09:30", date)
	book(t, store, "Carlos", "16:00", date)
	cancelled := book(t, store, "Carlos", "12:00", date)
	ok, err := store.UpdateStatus(context.Background(), cancelled.ID, appointments.StatusUnset, appointments.StatusCancelled)
	require.NoError(t, err)
	require.True(t, ok)

	free, err := engine.Available(context.Background(), "Carlos", date)
	require.NoError(t, err)

	booked, err := store.Query(context.Background(), appointments.Filter{Professional: "Carlos", Date: date})
	require.NoError(t, err)

	occupied := make(map[string]bool)
	for _, appt := range booked {
		if appt.Status != appointments.StatusCancelled {
			occupied[appt.TimeSlot] = true
		}
	}

	// union equals the catalog, intersection is empty
	seen := make(map[string]bool)
	for _, slot := range free {
		assert.False(t, occupied[slot], "slot %s is both free and occupied", slot)
		seen[slot] = true
	}
	for slot := range occupied {
		seen[slot] = true
	}
	assert.Len(t, seen, len(engine.Slots()))

	// the cancelled slot is bookable again
	assert.Contains(t, free, "12:00")
}

func TestContains(t *testing.T) {
	engine := NewEngine(appointments.NewMemoryStore(), mustCatalog(t))
	assert.True(t, engine.Contains("11:00"))
	assert.False(t, engine.Contains("11:15"))
	assert.False(t, engine.Contains(""))
}
