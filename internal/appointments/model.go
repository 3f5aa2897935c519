package appointments

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Status tracks the confirmation lifecycle of an appointment. Transitions
// after creation happen only through Store.UpdateStatus.
type Status string

const (
	StatusUnset     Status = "unset"
	StatusPending   Status = "pending_confirmation"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Appointment is the durable booking record. Cancellation is a status, never
// a row deletion.
type Appointment struct {
	ID            uuid.UUID `json:"id"`
	CustomerName  string    `json:"customer_name" validate:"required"`
	CustomerPhone string    `json:"customer_phone" validate:"required"`
	Date          time.Time `json:"date" validate:"required"`
	TimeSlot      string    `json:"time_slot" validate:"required"`
	Services      []string  `json:"services" validate:"required,min=1,dive,required"`
	Professional  string    `json:"professional" validate:"required"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

var validate = validator.New()

// Validate checks the record before persistence. A partially collected
// appointment must never reach the store.
func (a *Appointment) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("appointments: invalid record: %w", err)
	}
	if _, err := time.Parse("15:04", a.TimeSlot); err != nil {
		return fmt.Errorf("appointments: invalid time slot %q: %w", a.TimeSlot, err)
	}
	return nil
}

// StartAt combines the appointment date and time slot into a single instant
// in the process-local zone.
func (a *Appointment) StartAt() time.Time {
	slot, err := time.Parse("15:04", a.TimeSlot)
	if err != nil {
		return a.Date
	}
	return time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(),
		slot.Hour(), slot.Minute(), 0, 0, time.Local)
}

// Filter selects appointments by any subset of its fields. Zero values mean
// "no constraint".
type Filter struct {
	Professional  string
	Date          time.Time
	Status        Status
	CustomerPhone string
}
