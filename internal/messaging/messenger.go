package messaging

import (
	"context"
	"sync"
)

// Messenger delivers one outbound WhatsApp message to a customer.
type Messenger interface {
	Send(ctx context.Context, to, body string) error
}

// SentMessage is one message recorded by the MemoryMessenger.
type SentMessage struct {
	To   string
	Body string
}

// MemoryMessenger records sends instead of delivering them. Used in tests and
// as the dev-mode messenger when Twilio credentials are absent.
type MemoryMessenger struct {
	mu   sync.Mutex
	sent []SentMessage
	// Err, when set, is returned by every Send.
	Err error
}

func NewMemoryMessenger() *MemoryMessenger {
	return &MemoryMessenger{}
}

func (m *MemoryMessenger) Send(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, SentMessage{To: to, Body: body})
	return nil
}

// Sent returns a copy of everything sent so far.
func (m *MemoryMessenger) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}
