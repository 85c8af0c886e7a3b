package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"litgb/contexts/contest-core/competition-service/domain/entities"
	domainerrors "litgb/contexts/contest-core/competition-service/domain/errors"
	contractsv1 "litgb/contracts/gen/events/v1"
)

func newCompetition(t *testing.T, store *Store) entities.Competition {
	t.Helper()
	comp, err := store.CreateCompetition(context.Background(), entities.Competition{
		CreatedBy:           1,
		Created:             time.Now().UTC(),
		AcceptFilesDeadline: time.Now().Add(time.Hour).UTC(),
		PollingDeadline:     time.Now().Add(2 * time.Hour).UTC(),
		MinTextSize:         0,
		MaxTextSize:         10000,
		MaxFilesPerMember:   1,
		Subject:             "spring story",
		PollingSchemeID:     1,
	})
	if err != nil {
		t.Fatalf("expected competition, got error: %v", err)
	}
	return comp
}

func TestConfirmCompetitionIsConditional(t *testing.T) {
	store := NewStore(nil)
	comp := newCompetition(t, store)

	confirmed, err := store.ConfirmCompetition(context.Background(), comp.ID)
	if err != nil {
		t.Fatalf("expected confirmation, got error: %v", err)
	}
	if !confirmed.IsConfirmed() {
		t.Fatal("expected the confirmed timestamp to be set")
	}

	if _, err := store.ConfirmCompetition(context.Background(), comp.ID); !errors.Is(err, domainerrors.ErrStageConflict) {
		t.Fatalf("expected stage conflict on repeated confirmation, got %v", err)
	}
	if _, err := store.ConfirmCompetition(context.Background(), 999); !errors.Is(err, domainerrors.ErrCompetitionNotFound) {
		t.Fatalf("expected not-found for an unknown id, got %v", err)
	}
}

func TestStartRequiresConfirmation(t *testing.T) {
	store := NewStore(nil)
	comp := newCompetition(t, store)

	if _, err := store.StartCompetition(context.Background(), comp.ID); !errors.Is(err, domainerrors.ErrStageConflict) {
		t.Fatalf("expected stage conflict before confirmation, got %v", err)
	}
}

func TestLifecycleTimestampsAreMonotonic(t *testing.T) {
	store := NewStore(nil)
	comp := newCompetition(t, store)
	ctx := context.Background()

	confirmed, err := store.ConfirmCompetition(ctx, comp.ID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	started, err := store.StartCompetition(ctx, comp.ID)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	polling, err := store.SwitchToPollingStage(ctx, comp.ID)
	if err != nil {
		t.Fatalf("switch failed: %v", err)
	}
	finished, err := store.FinishCompetition(ctx, comp.ID, false)
	if err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	if started.Started.Before(*confirmed.Confirmed) {
		t.Fatal("started must not precede confirmed")
	}
	if polling.PollingStarted.Before(*started.Started) {
		t.Fatal("polling start must not precede started")
	}
	if finished.Finished.Before(*polling.PollingStarted) {
		t.Fatal("finished must not precede polling start")
	}
	if finished.Stage() != entities.StageFinished {
		t.Fatalf("expected finished stage, got %s", finished.Stage())
	}
}

func TestFinishIsTerminal(t *testing.T) {
	store := NewStore(nil)
	comp := newCompetition(t, store)
	ctx := context.Background()

	if _, err := store.FinishCompetition(ctx, comp.ID, true); err != nil {
		t.Fatalf("finish failed: %v", err)
	}
	if _, err := store.FinishCompetition(ctx, comp.ID, true); !errors.Is(err, domainerrors.ErrStageConflict) {
		t.Fatalf("expected stage conflict on double finish, got %v", err)
	}
	if _, err := store.ConfirmCompetition(ctx, comp.ID); !errors.Is(err, domainerrors.ErrStageConflict) {
		t.Fatalf("expected stage conflict confirming a finished competition, got %v", err)
	}
}

func TestJoinIsIdempotentPerUser(t *testing.T) {
	store := NewStore(nil)
	comp := newCompetition(t, store)
	ctx := context.Background()

	member := entities.UserInfo{ID: 10, Title: "alice"}
	if err := store.JoinToCompetition(ctx, comp.ID, member); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if err := store.JoinToCompetition(ctx, comp.ID, member); err != nil {
		t.Fatalf("repeated join must be a no-op, got %v", err)
	}

	stat, err := store.GetCompetitionStat(ctx, comp.ID)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if len(stat.RegisteredMembers) != 1 {
		t.Fatalf("expected 1 registered member, got %d", len(stat.RegisteredMembers))
	}
}

func TestRemoveMembersWithoutFiles(t *testing.T) {
	store := NewStore(nil)
	comp := newCompetition(t, store)
	ctx := context.Background()

	if err := store.JoinToCompetition(ctx, comp.ID, entities.UserInfo{ID: 10}); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if err := store.JoinToCompetition(ctx, comp.ID, entities.UserInfo{ID: 20}); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	file := entities.SubmittedFile{ID: 100, OwnerID: 10, Title: "mine", TextSize: 500, Loaded: time.Now().UTC()}
	if err := store.SubmitFile(ctx, comp.ID, file); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	stat, err := store.RemoveMembersWithoutFiles(ctx, comp.ID)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if len(stat.RegisteredMembers) != 1 || stat.RegisteredMembers[0].ID != 10 {
		t.Fatalf("expected only member 10 to survive, got %+v", stat.RegisteredMembers)
	}
}

func TestSubmitFileRejectsDuplicateID(t *testing.T) {
	store := NewStore(nil)
	comp := newCompetition(t, store)
	ctx := context.Background()

	file := entities.SubmittedFile{ID: 100, OwnerID: 10, Title: "mine", TextSize: 500}
	if err := store.SubmitFile(ctx, comp.ID, file); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := store.SubmitFile(ctx, comp.ID, file); !errors.Is(err, domainerrors.ErrStageConflict) {
		t.Fatalf("expected stage conflict on duplicate file id, got %v", err)
	}
}

func TestUnregUserRequiresMembership(t *testing.T) {
	store := NewStore(nil)
	comp := newCompetition(t, store)

	err := store.UnregUser(context.Background(), comp.ID, 77)
	if !errors.Is(err, domainerrors.ErrMemberNotFound) {
		t.Fatalf("expected member-not-found, got %v", err)
	}
}

func TestUpdatePropertiesFrozenAfterStart(t *testing.T) {
	store := NewStore(nil)
	comp := newCompetition(t, store)
	ctx := context.Background()

	if _, err := store.ConfirmCompetition(ctx, comp.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := store.StartCompetition(ctx, comp.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	comp.Subject = "changed"
	if err := store.UpdateProperties(ctx, comp); !errors.Is(err, domainerrors.ErrStageConflict) {
		t.Fatalf("expected stage conflict after start, got %v", err)
	}
}

func TestSelectReadyToPollingStageCompetitions(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	now := time.Now().UTC()

	ready := newCompetition(t, store)
	pending := newCompetition(t, store)
	for _, id := range []int64{ready.ID, pending.ID} {
		if _, err := store.ConfirmCompetition(ctx, id); err != nil {
			t.Fatalf("confirm failed: %v", err)
		}
		if _, err := store.StartCompetition(ctx, id); err != nil {
			t.Fatalf("start failed: %v", err)
		}
	}
	newCompetition(t, store) // stays unstarted, must never be selected

	items, err := store.SelectReadyToPollingStageCompetitions(ctx, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("selection failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected both started competitions past the deadline, got %d", len(items))
	}

	items, err = store.SelectReadyToPollingStageCompetitions(ctx, now)
	if err != nil {
		t.Fatalf("selection failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected nothing before the deadline, got %d", len(items))
	}
}

func TestSelectPollingDeadlinedCompetitions(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	now := time.Now().UTC()

	comp := newCompetition(t, store)
	if _, err := store.ConfirmCompetition(ctx, comp.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := store.StartCompetition(ctx, comp.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := store.SwitchToPollingStage(ctx, comp.ID); err != nil {
		t.Fatalf("switch failed: %v", err)
	}

	items, err := store.SelectPollingDeadlinedCompetitions(ctx, now.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("selection failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != comp.ID {
		t.Fatalf("expected the polling competition, got %+v", items)
	}

	items, err = store.SelectPollingDeadlinedCompetitions(ctx, now)
	if err != nil {
		t.Fatalf("selection failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected nothing before the polling deadline, got %d", len(items))
	}
}

func TestUserStatsCounters(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	if err := store.IncreaseUserWins(ctx, 10); err != nil {
		t.Fatalf("win bump failed: %v", err)
	}
	if err := store.IncreaseUserHalfWins(ctx, 10); err != nil {
		t.Fatalf("half-win bump failed: %v", err)
	}
	if err := store.IncreaseUserLosses(ctx, 10); err != nil {
		t.Fatalf("loss bump failed: %v", err)
	}
	if err := store.IncreaseUserLosses(ctx, 10); err != nil {
		t.Fatalf("loss bump failed: %v", err)
	}

	stats, err := store.GetUserStats(ctx, 10)
	if err != nil {
		t.Fatalf("stats lookup failed: %v", err)
	}
	if stats.Wins != 1 || stats.HalfWins != 1 || stats.Losses != 2 {
		t.Fatalf("unexpected counters: %+v", stats)
	}
}

func TestOutboxAppendListAndMark(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	envelope := contractsv1.NewEnvelope("evt-1", "competition.started", "42", time.Now().UTC(), []byte(`{"competition_id":42}`))
	if err := store.AppendOutbox(ctx, envelope); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	// Same envelope again is deduplicated, not duplicated.
	if err := store.AppendOutbox(ctx, envelope); err != nil {
		t.Fatalf("repeated append failed: %v", err)
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending message, got %d", len(pending))
	}
	if pending[0].EventType != "competition.started" {
		t.Fatalf("unexpected event type: %s", pending[0].EventType)
	}

	if err := store.MarkOutboxPublished(ctx, pending[0].OutboxID, time.Now().UTC()); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	pending, err = store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending messages after publish, got %d", len(pending))
	}
}
