package appointments

import "errors"

var (
	// ErrSlotTaken is returned when an insert would give the same named
	// professional two appointments in one slot.
	ErrSlotTaken = errors.New("appointments: slot already taken")

	// ErrNotFound is returned when a lookup matches no appointment.
	ErrNotFound = errors.New("appointments: not found")
)
