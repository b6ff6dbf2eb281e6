package bus

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/autostream-ai/concierge/internal/convstate"
)

// LeadCapturedEvent is the payload published on SubjectLeadCaptured. The
// conversation id doubles as an idempotency key for consumers that want
// at-least-once semantics on top of this fire-and-forget publish.
type LeadCapturedEvent struct {
	LeadID         string `json:"lead_id"`
	ConversationID string `json:"conversation_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Platform       string `json:"platform"`
	CapturedAt     string `json:"captured_at"`
}

// LeadPublisher emits completed leads onto the bus.
type LeadPublisher struct {
	bus    *Client
	logger *slog.Logger
}

func NewLeadPublisher(bus *Client, logger *slog.Logger) *LeadPublisher {
	return &LeadPublisher{bus: bus, logger: logger}
}

func (p *LeadPublisher) Capture(_ context.Context, conversationID string, lead convstate.LeadData) error {
	evt := LeadCapturedEvent{
		LeadID:         uuid.NewString(),
		ConversationID: conversationID,
		Name:           lead.Name,
		Email:          lead.Email,
		Platform:       lead.Platform,
		CapturedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := p.bus.Publish(SubjectLeadCaptured, evt); err != nil {
		return err
	}
	p.logger.Info("lead event published",
		"lead_id", evt.LeadID,
		"conversation_id", conversationID,
	)
	return nil
}
