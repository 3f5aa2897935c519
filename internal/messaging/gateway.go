package messaging

import (
	"context"
	"net/http"
	"strings"

	"github.com/lfarias/barberbook/internal/observability/metrics"
	"github.com/lfarias/barberbook/pkg/logging"
)

// dialogueEngine is the conversational surface the gateway forwards to.
type dialogueEngine interface {
	Handle(ctx context.Context, identity, body string) []string
}

// replyResolver resolves confirmation answers against pending appointments.
// handled=false means no pending appointment matched and the message should
// fall through to the dialogue engine.
type replyResolver interface {
	ResolveReply(ctx context.Context, phone string, confirmed bool) (reply string, handled bool, err error)
}

// transcriptRecorder persists the raw message flow per customer.
type transcriptRecorder interface {
	Append(ctx context.Context, phone, direction, body string) error
}

// Gateway receives Twilio WhatsApp webhooks and routes each inbound message:
// confirmation answers go to the resolver first, everything else to the
// dialogue engine. Replies are sent back through the Messenger.
type Gateway struct {
	engine     dialogueEngine
	resolver   replyResolver
	messenger  Messenger
	transcript transcriptRecorder
	metrics    *metrics.BookingMetrics
	logger     *logging.Logger
}

// NewGateway constructs the gateway. The transcript recorder and metrics may
// be nil; the engine, resolver and messenger may not.
func NewGateway(engine dialogueEngine, resolver replyResolver, messenger Messenger, transcript transcriptRecorder, m *metrics.BookingMetrics, logger *logging.Logger) *Gateway {
	if engine == nil {
		panic("messaging: engine cannot be nil")
	}
	if resolver == nil {
		panic("messaging: resolver cannot be nil")
	}
	if messenger == nil {
		panic("messaging: messenger cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Gateway{
		engine:     engine,
		resolver:   resolver,
		messenger:  messenger,
		transcript: transcript,
		metrics:    m,
		logger:     logger,
	}
}

// WhatsAppWebhook handles POST /messaging/whatsapp/webhook requests.
func (g *Gateway) WhatsAppWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		g.logger.Error("failed to parse twilio webhook", "error", err)
		g.metrics.ObserveInbound("bad_request")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	from := StripWhatsAppPrefix(strings.TrimSpace(r.PostFormValue("From")))
	body := r.PostFormValue("Body")
	if from == "" || strings.TrimSpace(body) == "" {
		g.logger.Warn("webhook missing From or Body")
		g.metrics.ObserveInbound("bad_request")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	g.metrics.ObserveInbound("handled")
	g.record(r.Context(), from, "in", body)

	replies := g.route(r.Context(), from, body)
	for _, reply := range replies {
		if err := g.messenger.Send(r.Context(), from, reply); err != nil {
			g.logger.Error("failed to send reply", "error", err, "to", from)
			g.metrics.ObserveOutbound("error")
			continue
		}
		g.metrics.ObserveOutbound("sent")
		g.record(r.Context(), from, "out", reply)
	}

	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Response></Response>`))
}

// route decides who answers the message. Confirmation answers are checked
// before the dialogue engine so that "confirmo" mid-dialogue still resolves
// the pending appointment.
func (g *Gateway) route(ctx context.Context, from, body string) []string {
	if confirmed, isAnswer := parseConfirmation(body); isAnswer {
		reply, handled, err := g.resolver.ResolveReply(ctx, from, confirmed)
		if err != nil {
			g.logger.Error("failed to resolve confirmation", "error", err, "from", from)
			return nil
		}
		if handled {
			if reply == "" {
				return nil
			}
			return []string{reply}
		}
	}
	return g.engine.Handle(ctx, from, body)
}

// parseConfirmation recognizes the confirmation answers. The negative form is
// checked first because it contains the positive one.
func parseConfirmation(body string) (confirmed, isAnswer bool) {
	normalized := strings.ToLower(strings.TrimSpace(body))
	switch {
	case strings.Contains(normalized, "não confirmo"), strings.Contains(normalized, "nao confirmo"):
		return false, true
	case strings.Contains(normalized, "confirmo"):
		return true, true
	default:
		return false, false
	}
}

func (g *Gateway) record(ctx context.Context, phone, direction, body string) {
	if g.transcript == nil {
		return
	}
	if err := g.transcript.Append(ctx, phone, direction, body); err != nil {
		g.logger.Warn("failed to record transcript", "error", err, "phone", phone)
	}
}
