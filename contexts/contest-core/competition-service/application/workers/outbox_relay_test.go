package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"litgb/contexts/contest-core/competition-service/adapters/memory"
	"litgb/contexts/contest-core/competition-service/ports"
	contractsv1 "litgb/contracts/gen/events/v1"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.EventEnvelope
	fail   bool
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.events = append(p.events, event)
	return nil
}

func appendEnvelope(t *testing.T, store *memory.Store, eventID string) {
	t.Helper()
	envelope := contractsv1.NewEnvelope(eventID, "competition.started", "42", time.Now().UTC(), []byte(`{"competition_id":42}`))
	if err := store.AppendOutbox(context.Background(), envelope); err != nil {
		t.Fatalf("append failed: %v", err)
	}
}

func TestOutboxRelayPublishesAndMarks(t *testing.T) {
	store := memory.NewStore(nil)
	publisher := &recordingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, BatchSize: 10}
	ctx := context.Background()

	appendEnvelope(t, store, "evt-1")
	appendEnvelope(t, store, "evt-2")

	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}
	if len(publisher.events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.events))
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected an empty outbox after the run, got %d rows", len(pending))
	}

	// A second run over an empty outbox is a no-op.
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("empty relay run failed: %v", err)
	}
	if len(publisher.events) != 2 {
		t.Fatalf("an empty run must not republish, got %d events", len(publisher.events))
	}
}

func TestOutboxRelayKeepsRowsOnPublishFailure(t *testing.T) {
	store := memory.NewStore(nil)
	publisher := &recordingPublisher{fail: true}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, BatchSize: 10}
	ctx := context.Background()

	appendEnvelope(t, store, "evt-1")

	if err := relay.RunOnce(ctx); err == nil {
		t.Fatal("expected the relay to surface the publish failure")
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("a failed publish must keep the row pending, got %d rows", len(pending))
	}

	publisher.fail = false
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("retry run failed: %v", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected the retried event to publish once, got %d", len(publisher.events))
	}
}
