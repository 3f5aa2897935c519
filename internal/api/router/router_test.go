package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfarias/barberbook/internal/appointments"
	"github.com/lfarias/barberbook/internal/availability"
	"github.com/lfarias/barberbook/internal/catalog"
	"github.com/lfarias/barberbook/internal/conversation"
	"github.com/lfarias/barberbook/internal/http/handlers"
	"github.com/lfarias/barberbook/internal/messaging"
	"github.com/lfarias/barberbook/internal/scheduler"
	"github.com/lfarias/barberbook/pkg/logging"
)

func newTestServer(t *testing.T) (http.Handler, *appointments.MemoryStore, *messaging.MemoryMessenger) {
	t.Helper()
	logger := logging.Default()
	store := appointments.NewMemoryStore()

	slots, err := availability.SlotCatalog("09:00", "19:00", 30*time.Minute)
	require.NoError(t, err)
	engine := conversation.NewEngine(store, availability.NewEngine(store, slots), catalog.New(nil, nil), logger).
		WithClock(func() time.Time { return time.Date(2025, 5, 1, 10, 0, 0, 0, time.Local) })

	messenger := messaging.NewMemoryMessenger()
	gateway := messaging.NewGateway(engine, scheduler.NewResolver(store, logger), messenger, nil, nil, logger)

	handler := New(&Config{
		Logger:       logger,
		Gateway:      gateway,
		Appointments: handlers.NewAppointmentsHandler(store, logger),
	})
	return handler, store, messenger
}

func postMessage(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{}
	form.Set("From", "whatsapp:+5511999990001")
	form.Set("Body", body)
	req := httptest.NewRequest(http.MethodPost, "/messaging/whatsapp/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestBookingThroughWebhookShowsUpInListing(t *testing.T) {
	h, _, messenger := newTestServer(t)

	for _, msg := range []string{"agendar", "2", "20/05/2025", "11:00", "1,3", "Maria"} {
		rec := postMessage(t, h, msg)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// the last outbound message is the booking confirmation
	sent := messenger.Sent()
	require.NotEmpty(t, sent)
	assert.Contains(t, sent[len(sent)-1].Body, "Agendamento confirmado")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/appointments?professional=Carlos", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Appointments []struct {
			CustomerName string `json:"customer_name"`
			TimeSlot     string `json:"time_slot"`
		} `json:"appointments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Appointments, 1)
	assert.Equal(t, "Maria", resp.Appointments[0].CustomerName)
	assert.Equal(t, "11:00", resp.Appointments[0].TimeSlot)
}

func TestUnknownRouteIs404(t *testing.T) {
	h, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
