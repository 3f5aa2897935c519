package messaging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfarias/barberbook/pkg/logging"
)

func newTestSender(baseURL string) *TwilioSender {
	s := NewTwilioSender("AC123", "token", "+5511888880000", logging.Default())
	s.baseURL = baseURL
	return s
}

func TestTwilioSendPostsWhatsAppForm(t *testing.T) {
	var got struct {
		path, to, from, body string
		user, pass           string
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got.path = r.URL.Path
		got.to = r.PostFormValue("To")
		got.from = r.PostFormValue("From")
		got.body = r.PostFormValue("Body")
		got.user, got.pass, _ = r.BasicAuth()
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM1","status":"queued"}`))
	}))
	defer server.Close()

	sender := newTestSender(server.URL)
	err := sender.Send(context.Background(), "+5511999990001", "Olá")
	require.NoError(t, err)

	assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", got.path)
	assert.Equal(t, "whatsapp:+5511999990001", got.to)
	assert.Equal(t, "whatsapp:+5511888880000", got.from)
	assert.Equal(t, "Olá", got.body)
	assert.Equal(t, "AC123", got.user)
	assert.Equal(t, "token", got.pass)
}

func TestTwilioSendRetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	err := newTestSender(server.URL).Send(context.Background(), "+5511999990001", "oi")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestTwilioSendDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number","status":400}`))
	}))
	defer server.Close()

	err := newTestSender(server.URL).Send(context.Background(), "+5511999990001", "oi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code 21211")
	assert.Equal(t, 1, calls)
}

func TestTwilioSendValidatesInput(t *testing.T) {
	sender := NewTwilioSender("", "", "+5511888880000", nil)
	assert.Error(t, sender.Send(context.Background(), "+5511999990001", "oi"))

	sender = NewTwilioSender("AC123", "token", "+5511888880000", nil)
	assert.Error(t, sender.Send(context.Background(), "", "oi"))
	assert.Error(t, sender.Send(context.Background(), "+5511999990001", "   "))
}

func TestStripWhatsAppPrefix(t *testing.T) {
	assert.Equal(t, "+5511999990001", StripWhatsAppPrefix("whatsapp:+5511999990001"))
	assert.Equal(t, "+5511999990001", StripWhatsAppPrefix("+5511999990001"))
}
