package messaging

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"litgb/contexts/contest-core/competition-service/ports"
)

// Topics mirror the competition event types the notification outbox emits
// (competition.state_changed, competition.member_outcome, ...): the relay
// publishes every envelope to the topic named after its event type, so a
// consumer subscribes to exactly the lifecycle moments it cares about.
const subscriberBuffer = 128

// Bus is the event bus behind the outbox relay. It runs in-process while the
// deployment has a single worker; the Publish/Subscribe contract is already
// shaped for a broker so the swap stays inside this package.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan ports.EventEnvelope
	logger      *slog.Logger
}

func NewKafka(_ []string, logger *slog.Logger) (*Bus, error) {
	return &Bus{
		subscribers: make(map[string][]chan ports.EventEnvelope),
		logger:      logger,
	}, nil
}

// Publish fans the envelope out to every subscriber of the topic. Delivery is
// at-most-once per subscriber: a full subscriber buffer drops the event for
// that subscriber rather than blocking the relay, which must keep draining
// the outbox.
func (b *Bus) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	topic = strings.TrimSpace(topic)

	b.mu.RLock()
	subs := append([]chan ports.EventEnvelope(nil), b.subscribers[topic]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- event:
		default:
			if b.logger != nil {
				b.logger.Warn("dropping competition event for slow subscriber",
					"event", "bus_publish_drop",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", topic,
					"event_id", event.EventID,
				)
			}
		}
	}

	if b.logger != nil {
		b.logger.Info("competition event published",
			"event", "bus_publish",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
	}
	return nil
}

// Subscribe registers a handler for one event-type topic. The handler runs on
// its own goroutine until ctx is canceled; a handler error is logged and the
// subscription keeps consuming, matching the best-effort notification
// contract.
func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	ch := make(chan ports.EventEnvelope, subscriberBuffer)
	topic = strings.TrimSpace(topic)

	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				b.removeSubscriber(topic, ch)
				return
			case event := <-ch:
				if err := handler(ctx, event); err != nil && b.logger != nil {
					b.logger.Error("competition event handler failed",
						"event", "bus_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (b *Bus) removeSubscriber(topic string, target chan ports.EventEnvelope) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]chan ports.EventEnvelope, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	b.subscribers[topic] = filtered
}
