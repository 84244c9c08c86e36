// Package gateway handles inbound chat-event webhooks: handshake, message
// validation, duplicate suppression, command routing and the outbound reply.
package gateway

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"lark-base-gateway/internal/dedup"
	"lark-base-gateway/internal/metrics"
)

// InboundEvent is the normalized webhook payload. Content is the platform's
// raw content string, itself a JSON document of shape {"text": ...}.
type InboundEvent struct {
	Challenge string
	ChatID    string
	MessageID string
	Content   string
}

// Status classifies the result of handling one event.
type Status string

const (
	StatusVerified Status = "verified"
	StatusReplied  Status = "replied"
	StatusSkipped  Status = "skipped"
	StatusRejected Status = "rejected"
	StatusFailed   Status = "failed"
)

// Outcome is always well-formed: whatever happens inside, the transport
// layer gets something it can acknowledge cleanly so the platform does not
// retry the delivery.
type Outcome struct {
	Status    Status
	Reason    string
	Challenge string
}

// Replier delivers reply text to a chat.
type Replier interface {
	Send(ctx context.Context, chatID, text string) error
}

// Router produces the reply body for normalized message text.
type Router interface {
	Route(ctx context.Context, text string) string
}

// History is the durable processed-message ledger, consulted best-effort to
// cover restarts that outlive the in-memory cache.
type History interface {
	Seen(id string) bool
	Record(id string)
}

// Gateway is the webhook entry point.
type Gateway struct {
	dedup   *dedup.Cache
	router  Router
	replier Replier
	history History
	metrics *metrics.Metrics
}

// New creates a gateway. replier may be nil when messaging is not
// configured; history may be nil when no ledger is wired.
func New(cache *dedup.Cache, router Router, replier Replier, history History, m *metrics.Metrics) *Gateway {
	return &Gateway{
		dedup:   cache,
		router:  router,
		replier: replier,
		history: history,
		metrics: m,
	}
}

type messageContent struct {
	Text string `json:"text"`
}

// Handle processes one inbound event end to end. The handshake check comes
// first, before any dedup or auth work. Within the dedup horizon at most
// one reply is sent per message id; marking happens atomically with the
// duplicate check, before any downstream call.
func (g *Gateway) Handle(ctx context.Context, ev InboundEvent) Outcome {
	if ev.Challenge != "" {
		g.metrics.HandshakeCount.Inc()
		return Outcome{Status: StatusVerified, Challenge: ev.Challenge}
	}

	g.metrics.EventCount.Inc()
	start := time.Now()
	defer func() {
		g.metrics.ProcessingTime.Observe(time.Since(start).Seconds())
	}()

	text, reason := normalize(ev)
	if reason != "" {
		g.metrics.RejectedCount.Inc()
		return Outcome{Status: StatusRejected, Reason: reason}
	}

	if g.dedup.CheckAndMark(ev.MessageID) {
		logrus.Infof("Skipping duplicate message %s", ev.MessageID)
		g.metrics.DuplicateCount.Inc()
		return Outcome{Status: StatusSkipped, Reason: "duplicate"}
	}
	if g.history != nil && g.history.Seen(ev.MessageID) {
		logrus.Infof("Skipping message %s already in ledger", ev.MessageID)
		g.metrics.DuplicateCount.Inc()
		return Outcome{Status: StatusSkipped, Reason: "duplicate"}
	}

	reply := g.router.Route(ctx, text)

	if g.replier == nil {
		logrus.Warnf("Messaging not configured, dropping reply for message %s", ev.MessageID)
		return Outcome{Status: StatusFailed, Reason: "messaging not configured"}
	}

	// The id stays marked even if the send fails: retrying a reply risks
	// duplicate delivery to the end user, so this is at-most-once.
	if err := g.replier.Send(ctx, ev.ChatID, reply); err != nil {
		logrus.Errorf("Failed to send reply for message %s: %v", ev.MessageID, err)
		g.metrics.ReplyFailures.Inc()
		if g.history != nil {
			g.history.Record(ev.MessageID)
		}
		return Outcome{Status: StatusFailed, Reason: "reply send failed"}
	}

	g.metrics.ReplySuccesses.Inc()
	if g.history != nil {
		g.history.Record(ev.MessageID)
	}
	return Outcome{Status: StatusReplied}
}

// normalize validates the event and extracts the trimmed message text.
// A non-empty reason means the event is rejected without side effects.
func normalize(ev InboundEvent) (string, string) {
	if ev.MessageID == "" {
		return "", "missing message id"
	}
	if ev.Content == "" {
		return "", "empty message content"
	}

	var content messageContent
	if err := json.Unmarshal([]byte(ev.Content), &content); err != nil {
		return "", "unparsable message content"
	}

	text := strings.TrimSpace(content.Text)
	if text == "" {
		return "", "empty message text"
	}
	return text, ""
}
