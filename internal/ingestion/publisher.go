package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"FanPredix/internal/engine"
	"FanPredix/internal/event"

	"github.com/nats-io/nats.go/jetstream"
)

// OutboundPublisher publishes engine events to NATS for downstream
// consumers (market data feeds, UIs, analytics). It reads from the engine's
// best-effort projection channel; a drop there never stalls trading, and
// consumers needing a complete history read the event log instead.
// Subjects follow the pattern: fanpredix.events.{event_type}[.{market_id}]
type OutboundPublisher struct {
	js        jetstream.JetStream
	inputChan <-chan engine.Output
}

// publishedEvent is the outbound JSON wire format.
type publishedEvent struct {
	Sequence  int64         `json:"sequence"`
	EventType string        `json:"event_type"`
	MarketID  *uint64       `json:"market_id,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Payload   event.Payload `json:"payload"`
}

func NewOutboundPublisher(js jetstream.JetStream, inputChan <-chan engine.Output) *OutboundPublisher {
	return &OutboundPublisher{
		js:        js,
		inputChan: inputChan,
	}
}

// Run starts the outbound publisher loop.
func (op *OutboundPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case out, ok := <-op.inputChan:
			if !ok {
				return nil
			}

			if err := op.publish(ctx, out.Envelope); err != nil {
				log.Printf("WARN: outbound publish failed seq=%d: %v", out.Envelope.Sequence, err)
				// Non-fatal: downstream consumers can query the event log directly
			}
		}
	}
}

func (op *OutboundPublisher) publish(ctx context.Context, env *event.Envelope) error {
	data, err := json.Marshal(publishedEvent{
		Sequence:  env.Sequence,
		EventType: env.Type.String(),
		MarketID:  env.MarketID,
		Timestamp: env.Timestamp,
		Payload:   env.Payload,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	subject := fmt.Sprintf("fanpredix.events.%s", env.Type)
	if env.MarketID != nil {
		subject = fmt.Sprintf("%s.%d", subject, *env.MarketID)
	}

	_, err = op.js.Publish(ctx, subject, data)
	return err
}

// EnsureOutboundStream creates the outbound events stream.
func EnsureOutboundStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      "FANPREDIX_EVENTS",
		Subjects:  []string{"fanpredix.events.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create outbound stream: %w", err)
	}
	log.Println("INFO: ensured outbound stream FANPREDIX_EVENTS")
	return nil
}
