package competitionservice

import (
	"context"
	"strconv"
	"testing"
	"time"

	"litgb/contexts/contest-core/competition-service/adapters/memory"
	"litgb/contexts/contest-core/competition-service/application/commands"
	"litgb/contexts/contest-core/competition-service/domain/entities"
	domainerrors "litgb/contexts/contest-core/competition-service/domain/errors"
	pollingengine "litgb/contexts/contest-core/polling-engine"
	"litgb/contexts/contest-core/polling-engine/adapters/contest"
	pollcommands "litgb/contexts/contest-core/polling-engine/application/commands"
)

// stepClock drives both services' view of time in tests.
type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func (c *stepClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testRig struct {
	store  *memory.Store
	clock  *stepClock
	module Module
	poll   pollingengine.Module
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	store := memory.NewStore(nil)
	clock := &stepClock{now: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)}
	pollModule, err := pollingengine.NewInMemoryModule(contest.Source{Competitions: store}, clock, nil)
	if err != nil {
		t.Fatalf("polling module wiring failed: %v", err)
	}
	module := NewModule(Dependencies{
		Competitions: store,
		UserStats:    store,
		Polling:      contest.Bridge{Engine: pollModule.Engine},
		Outbox:       store,
		Clock:        clock,
		IDGen:        store,
	})
	module.Store = store
	return &testRig{store: store, clock: clock, module: module, poll: pollModule}
}

func (r *testRig) createClosed(t *testing.T, declared int, schemeID int64) entities.Competition {
	t.Helper()
	chatID := int64(500)
	created, err := r.module.Handler.Create.Execute(context.Background(), commands.CreateCompetitionCommand{
		CreatedBy:           1,
		ChatID:              &chatID,
		DeclaredMemberCount: &declared,
		AcceptFilesDeadline: r.clock.now.Add(time.Hour),
		PollingDeadline:     r.clock.now.Add(2 * time.Hour),
		MaxTextSize:         20000,
		MaxFilesPerMember:   1,
		Subject:             "a spring story",
		PollingSchemeID:     schemeID,
	})
	if err != nil {
		t.Fatalf("creating a closed competition failed: %v", err)
	}
	return created
}

func (r *testRig) createOpen(t *testing.T, schemeID int64) entities.Competition {
	t.Helper()
	chatID := int64(600)
	created, err := r.module.Handler.Create.Execute(context.Background(), commands.CreateCompetitionCommand{
		CreatedBy:           1,
		ChatID:              &chatID,
		AcceptFilesDeadline: r.clock.now.Add(time.Hour),
		PollingDeadline:     r.clock.now.Add(2 * time.Hour),
		MaxTextSize:         20000,
		MaxFilesPerMember:   1,
		Subject:             "an open call",
		PollingSchemeID:     schemeID,
	})
	if err != nil {
		t.Fatalf("creating an open competition failed: %v", err)
	}
	return created
}

func (r *testRig) join(t *testing.T, comp entities.Competition, userID int64) {
	t.Helper()
	_, err := r.module.Handler.Join.Execute(context.Background(), commands.JoinCompetitionCommand{
		CompetitionID: comp.ID,
		UserID:        userID,
		UserTitle:     "member",
		EntryToken:    comp.EntryToken,
	})
	if err != nil {
		t.Fatalf("join of user %d failed: %v", userID, err)
	}
}

func (r *testRig) submit(t *testing.T, compID, userID, fileID int64) {
	t.Helper()
	err := r.module.Handler.Submit.Execute(context.Background(), commands.SubmitFileCommand{
		CompetitionID: compID,
		UserID:        userID,
		FileID:        fileID,
		Title:         "story " + strconv.FormatInt(fileID, 10),
		TextSize:      1500,
	})
	if err != nil {
		t.Fatalf("submit by user %d failed: %v", userID, err)
	}
}

func (r *testRig) find(t *testing.T, compID int64) entities.Competition {
	t.Helper()
	comp, err := r.store.FindCompetition(context.Background(), compID)
	if err != nil {
		t.Fatalf("competition lookup failed: %v", err)
	}
	return comp
}

func (r *testRig) stats(t *testing.T, userID int64) (wins, halfWins, losses int) {
	t.Helper()
	stats, err := r.store.GetUserStats(context.Background(), userID)
	if err != nil {
		t.Fatalf("stats lookup failed: %v", err)
	}
	return stats.Wins, stats.HalfWins, stats.Losses
}

func TestClosedDuelFullLifecycle(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	created := rig.createClosed(t, 2, 1)
	if created.Stage() != entities.StageCreated {
		t.Fatalf("expected created stage before the roster fills, got %s", created.Stage())
	}
	if created.EntryToken == "" {
		t.Fatal("a closed competition must carry an entry token")
	}

	rig.join(t, created, 10)
	if comp := rig.find(t, created.ID); comp.IsConfirmed() {
		t.Fatal("one join of two must not confirm the competition")
	}
	rig.join(t, created, 20)
	comp := rig.find(t, created.ID)
	if !comp.IsConfirmed() || !comp.IsStarted() {
		t.Fatalf("a full roster must confirm and start, got stage %s", comp.Stage())
	}

	rig.submit(t, comp.ID, 10, 101)
	rig.submit(t, comp.ID, 20, 102)

	rig.clock.Advance(90 * time.Minute)
	if err := rig.module.Sweeper.RunOnce(ctx); err != nil {
		t.Fatalf("sweeper run failed: %v", err)
	}
	comp = rig.find(t, created.ID)
	if !comp.IsPollingStarted() {
		t.Fatalf("the submission deadline must open polling, got stage %s", comp.Stage())
	}
	if err := rig.module.Machine.SwitchToPollingStage(ctx, comp); !domainerrors.IsRule(err) {
		t.Fatalf("a repeated polling switch must fail as already polling, got %v", err)
	}

	for _, voterID := range []int64{501, 502, 503} {
		err := rig.poll.Handler.Cast.Execute(ctx, pollcommands.CastBallotCommand{
			CompetitionID: comp.ID, VoterID: voterID, FileID: 101,
		})
		if err != nil {
			t.Fatalf("vote of %d failed: %v", voterID, err)
		}
	}
	err := rig.poll.Handler.Cast.Execute(ctx, pollcommands.CastBallotCommand{
		CompetitionID: comp.ID, VoterID: 504, FileID: 102,
	})
	if err != nil {
		t.Fatalf("vote of 504 failed: %v", err)
	}

	rig.clock.Advance(2 * time.Hour)
	if err := rig.module.Sweeper.RunOnce(ctx); err != nil {
		t.Fatalf("sweeper run failed: %v", err)
	}
	comp = rig.find(t, created.ID)
	if !comp.IsFinished() || comp.Canceled {
		t.Fatalf("the polling deadline must finish the competition, got stage %s canceled=%t", comp.Stage(), comp.Canceled)
	}

	if wins, _, losses := rig.stats(t, 10); wins != 1 || losses != 0 {
		t.Fatalf("expected user 10 to win, got wins=%d losses=%d", wins, losses)
	}
	if wins, _, losses := rig.stats(t, 20); wins != 0 || losses != 1 {
		t.Fatalf("expected user 20 to lose, got wins=%d losses=%d", wins, losses)
	}

	results, err := rig.poll.Handler.Results.Execute(ctx, comp.ID)
	if err != nil {
		t.Fatalf("expected a persisted rating table, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 rating rows, got %d", len(results))
	}
	if results[0].FileID != 101 || results[0].Position != 1 || results[0].Score != 3 {
		t.Fatalf("unexpected top row: %+v", results[0])
	}

	pending, err := rig.store.ListPendingOutbox(ctx, 100)
	if err != nil {
		t.Fatalf("outbox listing failed: %v", err)
	}
	if len(pending) == 0 {
		t.Fatal("lifecycle notifications must land in the outbox")
	}
}

func TestClosedCompetitionSingleSubmitterWinsOutright(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	created := rig.createClosed(t, 2, 1)
	rig.join(t, created, 10)
	rig.join(t, created, 20)
	rig.submit(t, created.ID, 10, 101)

	rig.clock.Advance(90 * time.Minute)
	if err := rig.module.Sweeper.RunOnce(ctx); err != nil {
		t.Fatalf("sweeper run failed: %v", err)
	}

	comp := rig.find(t, created.ID)
	if !comp.IsFinished() || comp.Canceled {
		t.Fatalf("a lone submitter must finish the competition with a win, got stage %s canceled=%t", comp.Stage(), comp.Canceled)
	}
	if wins, _, _ := rig.stats(t, 10); wins != 1 {
		t.Fatalf("expected user 10 to win by default, got wins=%d", wins)
	}
	if _, _, losses := rig.stats(t, 20); losses != 1 {
		t.Fatalf("expected user 20 to carry the loss, got losses=%d", losses)
	}
}

func TestClosedCompetitionWithoutSubmissionsIsCanceled(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	created := rig.createClosed(t, 2, 1)
	rig.join(t, created, 10)
	rig.join(t, created, 20)

	rig.clock.Advance(90 * time.Minute)
	if err := rig.module.Sweeper.RunOnce(ctx); err != nil {
		t.Fatalf("sweeper run failed: %v", err)
	}

	comp := rig.find(t, created.ID)
	if !comp.IsFinished() || !comp.Canceled {
		t.Fatalf("no submissions must cancel the competition, got stage %s canceled=%t", comp.Stage(), comp.Canceled)
	}
	if _, _, losses := rig.stats(t, 10); losses != 1 {
		t.Fatalf("expected a loss for user 10, got %d", losses)
	}
	if _, _, losses := rig.stats(t, 20); losses != 1 {
		t.Fatalf("expected a loss for user 20, got %d", losses)
	}
}

func TestOpenCompetitionBelowThresholdIsCanceled(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	created := rig.createOpen(t, 4)
	if !created.IsConfirmed() || !created.IsStarted() {
		t.Fatalf("an attached open competition must start immediately, got stage %s", created.Stage())
	}

	rig.join(t, created, 10)
	rig.join(t, created, 20)
	rig.submit(t, created.ID, 10, 101)
	rig.submit(t, created.ID, 20, 102)

	rig.clock.Advance(90 * time.Minute)
	if err := rig.module.Sweeper.RunOnce(ctx); err != nil {
		t.Fatalf("sweeper run failed: %v", err)
	}

	comp := rig.find(t, created.ID)
	if !comp.IsFinished() || !comp.Canceled {
		t.Fatalf("two open submitters are below the threshold, got stage %s canceled=%t", comp.Stage(), comp.Canceled)
	}
}

func TestOpenCompetitionRankedPollingLifecycle(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	created := rig.createOpen(t, 4)
	for _, userID := range []int64{10, 20, 30} {
		rig.join(t, created, userID)
	}
	rig.submit(t, created.ID, 10, 101)
	rig.submit(t, created.ID, 20, 102)
	rig.submit(t, created.ID, 30, 103)

	rig.clock.Advance(90 * time.Minute)
	if err := rig.module.Sweeper.RunOnce(ctx); err != nil {
		t.Fatalf("sweeper run failed: %v", err)
	}
	comp := rig.find(t, created.ID)
	if !comp.IsPollingStarted() {
		t.Fatalf("expected polling to open, got stage %s", comp.Stage())
	}

	setSlot := rig.poll.Handler.SetSlot
	apply := rig.poll.Handler.Apply
	if _, err := setSlot.Execute(ctx, pollcommands.SetDraftSlotCommand{CompetitionID: comp.ID, VoterID: 601, Slot: 1, FileID: 101}); err != nil {
		t.Fatalf("slot 1 failed: %v", err)
	}
	if _, err := setSlot.Execute(ctx, pollcommands.SetDraftSlotCommand{CompetitionID: comp.ID, VoterID: 601, Slot: 2, FileID: 102}); err != nil {
		t.Fatalf("slot 2 failed: %v", err)
	}
	if err := apply.Execute(ctx, pollcommands.ApplyDraftCommand{CompetitionID: comp.ID, VoterID: 601}); err != nil {
		t.Fatalf("applying the draft failed: %v", err)
	}

	rig.clock.Advance(2 * time.Hour)
	if err := rig.module.Sweeper.RunOnce(ctx); err != nil {
		t.Fatalf("sweeper run failed: %v", err)
	}
	comp = rig.find(t, created.ID)
	if !comp.IsFinished() || comp.Canceled {
		t.Fatalf("expected a regular finish, got stage %s canceled=%t", comp.Stage(), comp.Canceled)
	}

	if wins, _, _ := rig.stats(t, 10); wins != 1 {
		t.Fatalf("expected user 10 to win, got wins=%d", wins)
	}
	if _, _, losses := rig.stats(t, 20); losses != 1 {
		t.Fatalf("expected user 20 to lose, got losses=%d", losses)
	}
	if _, _, losses := rig.stats(t, 30); losses != 1 {
		t.Fatalf("expected user 30 to lose, got losses=%d", losses)
	}
}

func TestSchemaReplacedWhenRosterShrinks(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	created := rig.createClosed(t, 3, 2)
	for _, userID := range []int64{10, 20, 30} {
		rig.join(t, created, userID)
	}
	rig.submit(t, created.ID, 10, 101)
	rig.submit(t, created.ID, 20, 102)

	rig.clock.Advance(90 * time.Minute)
	if err := rig.module.Sweeper.RunOnce(ctx); err != nil {
		t.Fatalf("sweeper run failed: %v", err)
	}

	comp := rig.find(t, created.ID)
	if !comp.IsPollingStarted() {
		t.Fatalf("two submitters keep a closed competition alive, got stage %s", comp.Stage())
	}
	if comp.PollingSchemeID != 1 {
		t.Fatalf("expected a fallback to the duel schema, got schema %d", comp.PollingSchemeID)
	}
	if _, _, losses := rig.stats(t, 30); losses != 1 {
		t.Fatalf("the silent member must carry a loss, got %d", losses)
	}
}

func TestSweeperProcessesCompetitionsIndependently(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	healthy := rig.createOpen(t, 4)
	starved := rig.createOpen(t, 4)
	for _, userID := range []int64{10, 20, 30} {
		rig.join(t, healthy, userID)
		rig.submit(t, healthy.ID, userID, userID*10)
	}
	rig.join(t, starved, 40)
	rig.submit(t, starved.ID, 40, 400)

	rig.clock.Advance(90 * time.Minute)
	if err := rig.module.Sweeper.RunOnce(ctx); err != nil {
		t.Fatalf("sweeper run failed: %v", err)
	}

	// The starved competition is canceled; the healthy one still enters
	// polling in the same tick.
	starvedComp := rig.find(t, starved.ID)
	if !starvedComp.IsFinished() || !starvedComp.Canceled {
		t.Fatalf("expected the starved competition to cancel, got stage %s canceled=%t", starvedComp.Stage(), starvedComp.Canceled)
	}
	healthyComp := rig.find(t, healthy.ID)
	if !healthyComp.IsPollingStarted() || healthyComp.IsFinished() {
		t.Fatalf("expected the healthy competition to poll, got stage %s", healthyComp.Stage())
	}
}

func TestJoinClosedCompetitionRequiresEntryToken(t *testing.T) {
	rig := newTestRig(t)

	created := rig.createClosed(t, 2, 1)
	_, err := rig.module.Handler.Join.Execute(context.Background(), commands.JoinCompetitionCommand{
		CompetitionID: created.ID,
		UserID:        10,
		EntryToken:    "wrong",
	})
	if !domainerrors.IsRule(err) {
		t.Fatalf("expected rule violation for a wrong token, got %v", err)
	}
}

func TestJoinClosedCompetitionAfterRosterFullIsRejected(t *testing.T) {
	rig := newTestRig(t)

	created := rig.createClosed(t, 2, 1)
	rig.join(t, created, 10)
	rig.join(t, created, 20)

	_, err := rig.module.Handler.Join.Execute(context.Background(), commands.JoinCompetitionCommand{
		CompetitionID: created.ID,
		UserID:        30,
		EntryToken:    created.EntryToken,
	})
	if !domainerrors.IsRule(err) {
		t.Fatalf("expected rule violation once the roster is collected, got %v", err)
	}
}

func TestLeaveOpenCompetitionUnregistersMember(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	created := rig.createOpen(t, 4)
	rig.join(t, created, 10)
	rig.join(t, created, 20)

	err := rig.module.Handler.Leave.Execute(ctx, commands.LeaveCompetitionCommand{
		CompetitionID: created.ID,
		UserID:        10,
	})
	if err != nil {
		t.Fatalf("leave failed: %v", err)
	}

	stat, err := rig.store.GetCompetitionStat(ctx, created.ID)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if len(stat.RegisteredMembers) != 1 || stat.RegisteredMembers[0].ID != 20 {
		t.Fatalf("expected only member 20 to remain, got %+v", stat.RegisteredMembers)
	}
}

func TestUpdatePropertiesOnlyBeforeStart(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	created := rig.createClosed(t, 2, 1)
	_, err := rig.module.Handler.Update.Execute(ctx, commands.UpdatePropertiesCommand{
		CompetitionID: created.ID,
		CallerID:      1,
		Subject:       strPtr("a better subject"),
	})
	if err != nil {
		t.Fatalf("property update failed: %v", err)
	}
	if comp := rig.find(t, created.ID); comp.Subject != "a better subject" {
		t.Fatalf("expected the subject to change, got %q", comp.Subject)
	}

	rig.join(t, created, 10)
	rig.join(t, created, 20) // roster full, competition starts

	_, err = rig.module.Handler.Update.Execute(ctx, commands.UpdatePropertiesCommand{
		CompetitionID: created.ID,
		CallerID:      1,
		Subject:       strPtr("too late"),
	})
	if !domainerrors.IsRule(err) {
		t.Fatalf("expected rule violation after start, got %v", err)
	}
}

func strPtr(value string) *string { return &value }

func TestCancelIsCreatorOnly(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	created := rig.createClosed(t, 2, 1)
	err := rig.module.Handler.Cancel.Execute(ctx, commands.CancelCompetitionCommand{
		CompetitionID: created.ID,
		CallerID:      99,
		Reason:        "changed my mind",
	})
	if !domainerrors.IsRule(err) {
		t.Fatalf("expected rule violation for a non-creator, got %v", err)
	}

	err = rig.module.Handler.Cancel.Execute(ctx, commands.CancelCompetitionCommand{
		CompetitionID: created.ID,
		CallerID:      1,
		Reason:        "changed my mind",
	})
	if err != nil {
		t.Fatalf("creator cancellation failed: %v", err)
	}
	comp := rig.find(t, created.ID)
	if !comp.IsFinished() || !comp.Canceled {
		t.Fatalf("expected a canceled competition, got stage %s canceled=%t", comp.Stage(), comp.Canceled)
	}
}

func TestCreateRejectsPastDeadline(t *testing.T) {
	rig := newTestRig(t)

	_, err := rig.module.Handler.Create.Execute(context.Background(), commands.CreateCompetitionCommand{
		CreatedBy:           1,
		AcceptFilesDeadline: rig.clock.now.Add(-time.Hour),
		PollingDeadline:     rig.clock.now.Add(time.Hour),
		MaxTextSize:         20000,
		MaxFilesPerMember:   1,
		Subject:             "late",
		PollingSchemeID:     4,
	})
	if !domainerrors.IsRule(err) {
		t.Fatalf("expected rule violation for a past deadline, got %v", err)
	}
}

func TestSubmitRejectsOversizedText(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	created := rig.createClosed(t, 2, 1)
	rig.join(t, created, 10)
	rig.join(t, created, 20)

	err := rig.module.Handler.Submit.Execute(ctx, commands.SubmitFileCommand{
		CompetitionID: created.ID,
		UserID:        10,
		FileID:        101,
		Title:         "too long",
		TextSize:      30000,
	})
	if !domainerrors.IsRule(err) {
		t.Fatalf("expected rule violation for oversized text, got %v", err)
	}
}
