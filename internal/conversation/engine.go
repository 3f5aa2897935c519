package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lfarias/barberbook/internal/appointments"
	"github.com/lfarias/barberbook/internal/availability"
	"github.com/lfarias/barberbook/internal/catalog"
	"github.com/lfarias/barberbook/internal/observability/metrics"
	"github.com/lfarias/barberbook/pkg/logging"
)

const dateLayout = "02/01/2006"

// Engine drives the multi-turn booking dialogue. One session per customer
// identity; each answer is validated before the step advances, and invalid
// input reprompts the same step with no retry ceiling.
type Engine struct {
	sessions *SessionStore
	store    appointments.Store
	slots    *availability.Engine
	catalog  *catalog.Catalog
	logger   *logging.Logger
	metrics  *metrics.BookingMetrics
	now      func() time.Time
}

// NewEngine constructs the conversation engine.
func NewEngine(store appointments.Store, slots *availability.Engine, cat *catalog.Catalog, logger *logging.Logger) *Engine {
	if store == nil {
		panic("conversation: store required")
	}
	if slots == nil {
		panic("conversation: availability engine required")
	}
	if cat == nil {
		panic("conversation: catalog required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		sessions: NewSessionStore(),
		store:    store,
		slots:    slots,
		catalog:  cat,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the engine's notion of "now". Tests use it to pin the
// past-date check.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	if now != nil {
		e.now = now
	}
	return e
}

// WithMetrics attaches booking metrics. A nil receiver on the metrics side is
// safe, so this is optional.
func (e *Engine) WithMetrics(m *metrics.BookingMetrics) *Engine {
	e.metrics = m
	return e
}

// Handle processes one inbound message and returns the replies to send, in
// order. An empty slice means deliberate silence (unknown input outside a
// dialogue).
func (e *Engine) Handle(ctx context.Context, identity, body string) []string {
	mu := e.sessions.lock(identity)
	mu.Lock()
	defer mu.Unlock()

	normalized := strings.ToLower(strings.TrimSpace(body))

	if containsFarewell(normalized) {
		e.sessions.Clear(identity)
		return []string{msgFarewell}
	}

	if strings.Contains(normalized, keywordBooking) {
		e.sessions.Put(identity, &Session{Step: StepChooseProfessional})
		return []string{rosterPrompt(e.catalog.RosterMenu())}
	}

	session := e.sessions.Get(identity)
	if session == nil {
		// not in a dialogue and no keyword: stay silent
		return nil
	}

	switch session.Step {
	case StepChooseProfessional:
		return e.chooseProfessional(session, body)
	case StepChooseDate:
		return e.chooseDate(ctx, session, body)
	case StepChooseTime:
		return e.chooseTime(session, body)
	case StepChooseServices:
		return e.chooseServices(session, body)
	case StepGetName:
		return e.finishBooking(ctx, identity, session, body)
	default:
		e.logger.Error("session in unknown step", "identity", identity, "step", session.Step)
		e.sessions.Clear(identity)
		return nil
	}
}

func (e *Engine) chooseProfessional(session *Session, body string) []string {
	name, ok := e.catalog.ProfessionalByCode(body)
	if !ok {
		return []string{invalidProfessionalPrompt(e.catalog.RosterMenu())}
	}
	session.Professional = name
	session.Step = StepChooseDate
	return []string{msgAskDate}
}

func (e *Engine) chooseDate(ctx context.Context, session *Session, body string) []string {
	date, err := time.ParseInLocation(dateLayout, strings.TrimSpace(body), time.Local)
	if err != nil {
		return []string{msgInvalidDate}
	}
	now := e.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if date.Before(today) {
		return []string{msgPastDate}
	}

	free, err := e.slots.Available(ctx, session.Professional, date)
	if err != nil {
		e.logger.Error("availability lookup failed", "error", err, "professional", session.Professional)
		return []string{msgTryAgain}
	}
	if len(free) == 0 {
		return []string{msgNoAvailability}
	}

	session.Date = date
	session.Offered = free
	session.Step = StepChooseTime
	return []string{slotsPrompt(free)}
}

func (e *Engine) chooseTime(session *Session, body string) []string {
	slot := strings.TrimSpace(body)
	for _, offered := range session.Offered {
		if offered == slot {
			session.TimeSlot = slot
			session.Step = StepChooseServices
			return []string{servicesPrompt(e.catalog.ServicesMenu())}
		}
	}
	return []string{invalidSlotPrompt(session.Offered)}
}

func (e *Engine) chooseServices(session *Session, body string) []string {
	services, ok := e.catalog.ServicesByCodes(body)
	if !ok {
		return []string{msgInvalidServices}
	}
	session.Services = services
	session.Step = StepGetName
	return []string{msgAskName}
}

func (e *Engine) finishBooking(ctx context.Context, identity string, session *Session, body string) []string {
	name := strings.TrimSpace(body)
	if name == "" {
		return []string{msgAskName}
	}

	appt := &appointments.Appointment{
		CustomerName:  name,
		CustomerPhone: identity,
		Date:          session.Date,
		TimeSlot:      session.TimeSlot,
		Services:      session.Services,
		Professional:  session.Professional,
		Status:        appointments.StatusUnset,
	}

	err := e.store.Insert(ctx, appt)
	switch {
	case err == nil:
		e.sessions.Clear(identity)
		e.metrics.ObserveBooking()
		e.logger.Info("appointment booked",
			"appointment_id", appt.ID,
			"professional", appt.Professional,
			"date", appt.Date.Format(dateLayout),
			"time_slot", appt.TimeSlot,
		)
		return []string{bookingConfirmed(name, appt.Professional, appt.Date, appt.TimeSlot, appt.Services)}

	case errors.Is(err, appointments.ErrSlotTaken):
		// someone else won the slot between the list and the insert; offer a
		// fresh availability computation
		e.metrics.ObserveSlotConflict()
		free, availErr := e.slots.Available(ctx, session.Professional, session.Date)
		if availErr != nil {
			e.logger.Error("availability refresh failed", "error", availErr)
			return []string{msgTryAgain}
		}
		if len(free) == 0 {
			session.Step = StepChooseDate
			return []string{msgNoAvailability}
		}
		session.Offered = free
		session.TimeSlot = ""
		session.Step = StepChooseTime
		return []string{slotJustTakenPrompt(free)}

	default:
		e.logger.Error("appointment insert failed", "error", err, "identity", identity)
		return []string{msgTryAgain}
	}
}
