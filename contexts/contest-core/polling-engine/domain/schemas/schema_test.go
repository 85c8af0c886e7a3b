package schemas

import (
	"errors"
	"testing"

	"litgb/contexts/contest-core/polling-engine/domain/entities"
	domainerrors "litgb/contexts/contest-core/polling-engine/domain/errors"
)

func statOf(files ...entities.SubmissionView) entities.SubmissionStat {
	return entities.SubmissionStat{Files: files}
}

func ballot(voterID, fileID int64, points int) entities.Ballot {
	return entities.Ballot{CompetitionID: 1, VoterID: voterID, FileID: fileID, Points: points}
}

func testConfigs() []entities.SchemaInfo {
	return []entities.SchemaInfo{
		{ID: 1, HandlerName: DuelHandlerName, MinimumMemberCount: 2, MaximumMemberCount: 2},
		{ID: 2, HandlerName: TrielHandlerName, MinimumMemberCount: 3, MaximumMemberCount: 3},
		{ID: 3, HandlerName: Closed4HandlerName, MinimumMemberCount: 4},
		{ID: 4, HandlerName: OpenHandlerName, ForOpenType: true, MinimumMemberCount: 3},
	}
}

func TestDuelClearWinnerAndLoser(t *testing.T) {
	duel := NewDuel(entities.SchemaInfo{ID: 1, HandlerName: DuelHandlerName})
	stat := statOf(
		entities.SubmissionView{FileID: 1, OwnerID: 10},
		entities.SubmissionView{FileID: 2, OwnerID: 20},
	)
	ballots := []entities.Ballot{
		ballot(51, 1, MemberVotePoints),
		ballot(52, 1, MemberVotePoints),
		ballot(53, 1, MemberVotePoints),
		ballot(54, 2, MemberVotePoints),
	}

	results, err := duel.CalcPollingResults(stat, ballots)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(results.Winners) != 1 || results.Winners[0] != 10 {
		t.Fatalf("expected winner 10, got %v", results.Winners)
	}
	if len(results.HalfWinners) != 0 {
		t.Fatalf("expected no half-winners, got %v", results.HalfWinners)
	}
	if len(results.Losers) != 1 || results.Losers[0] != 20 {
		t.Fatalf("expected loser 20, got %v", results.Losers)
	}
	if len(results.RatingTable) != 2 {
		t.Fatalf("expected 2 rating rows, got %d", len(results.RatingTable))
	}
	first := results.RatingTable[0]
	if first.FileID != 1 || first.Position != 1 || first.Score != 3 {
		t.Fatalf("unexpected top row: %+v", first)
	}
	second := results.RatingTable[1]
	if second.FileID != 2 || second.Position != 2 || second.Score != 1 {
		t.Fatalf("unexpected second row: %+v", second)
	}
}

func TestDuelTieMakesBothHalfWinners(t *testing.T) {
	duel := NewDuel(entities.SchemaInfo{ID: 1, HandlerName: DuelHandlerName})
	stat := statOf(
		entities.SubmissionView{FileID: 1, OwnerID: 10},
		entities.SubmissionView{FileID: 2, OwnerID: 20},
	)
	ballots := []entities.Ballot{
		ballot(51, 1, MemberVotePoints),
		ballot(52, 1, MemberVotePoints),
		ballot(53, 2, MemberVotePoints),
		ballot(54, 2, MemberVotePoints),
	}

	results, err := duel.CalcPollingResults(stat, ballots)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(results.Winners) != 0 {
		t.Fatalf("expected no outright winner, got %v", results.Winners)
	}
	if len(results.HalfWinners) != 2 {
		t.Fatalf("expected 2 half-winners, got %v", results.HalfWinners)
	}
	if len(results.Losers) != 0 {
		t.Fatalf("expected no losers in a tie, got %v", results.Losers)
	}
	if results.RatingTable[0].Position != 1 || results.RatingTable[1].Position != 1 {
		t.Fatalf("tied files must share position 1, got %+v", results.RatingTable)
	}
}

func TestZeroTopScoreYieldsNobody(t *testing.T) {
	duel := NewDuel(entities.SchemaInfo{ID: 1, HandlerName: DuelHandlerName})
	stat := statOf(
		entities.SubmissionView{FileID: 1, OwnerID: 10},
		entities.SubmissionView{FileID: 2, OwnerID: 20},
	)

	results, err := duel.CalcPollingResults(stat, nil)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(results.Winners) != 0 || len(results.HalfWinners) != 0 || len(results.Losers) != 0 {
		t.Fatalf("expected empty outcome without votes, got %+v", results)
	}
	if len(results.RatingTable) != 2 {
		t.Fatalf("rating table must still list every file, got %d rows", len(results.RatingTable))
	}
}

func TestDuelRejectsWrongFileCount(t *testing.T) {
	duel := NewDuel(entities.SchemaInfo{ID: 1, HandlerName: DuelHandlerName})
	stat := statOf(entities.SubmissionView{FileID: 1, OwnerID: 10})

	_, err := duel.CalcPollingResults(stat, nil)
	if !domainerrors.IsRule(err) {
		t.Fatalf("expected rule violation, got %v", err)
	}
}

func TestTrielWeightedScoring(t *testing.T) {
	triel := NewTriel(entities.SchemaInfo{ID: 2, HandlerName: TrielHandlerName})
	stat := statOf(
		entities.SubmissionView{FileID: 1, OwnerID: 10},
		entities.SubmissionView{FileID: 2, OwnerID: 20},
		entities.SubmissionView{FileID: 3, OwnerID: 30},
	)
	ballots := []entities.Ballot{
		ballot(51, 1, FirstSlotPoints),
		ballot(51, 2, SecondSlotPoints),
		ballot(52, 2, FirstSlotPoints),
		ballot(52, 3, SecondSlotPoints),
	}

	results, err := triel.CalcPollingResults(stat, ballots)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(results.Winners) != 1 || results.Winners[0] != 20 {
		t.Fatalf("expected winner 20 with 3 points, got %v", results.Winners)
	}
	if len(results.Losers) != 2 || results.Losers[0] != 10 || results.Losers[1] != 30 {
		t.Fatalf("expected losers [10 30], got %v", results.Losers)
	}
	if results.RatingTable[0].FileID != 2 || results.RatingTable[0].Score != 3 {
		t.Fatalf("unexpected top row: %+v", results.RatingTable[0])
	}
}

func TestTrielRejectsWrongFileCount(t *testing.T) {
	triel := NewTriel(entities.SchemaInfo{ID: 2, HandlerName: TrielHandlerName})
	stat := statOf(
		entities.SubmissionView{FileID: 1, OwnerID: 10},
		entities.SubmissionView{FileID: 2, OwnerID: 20},
	)

	_, err := triel.CalcPollingResults(stat, nil)
	if !domainerrors.IsRule(err) {
		t.Fatalf("expected rule violation, got %v", err)
	}
}

func TestClosed4RequiresAtLeastFourFiles(t *testing.T) {
	schema := NewClosed4(entities.SchemaInfo{ID: 3, HandlerName: Closed4HandlerName, MinimumMemberCount: 4})
	stat := statOf(
		entities.SubmissionView{FileID: 1, OwnerID: 10},
		entities.SubmissionView{FileID: 2, OwnerID: 20},
		entities.SubmissionView{FileID: 3, OwnerID: 30},
	)

	if _, err := schema.CalcPollingResults(stat, nil); !domainerrors.IsRule(err) {
		t.Fatalf("expected rule violation for 3 files, got %v", err)
	}
}

func TestOpenRequiresThreeSubmitters(t *testing.T) {
	schema := NewOpen(entities.SchemaInfo{ID: 4, HandlerName: OpenHandlerName, ForOpenType: true, MinimumMemberCount: 3})
	stat := statOf(
		entities.SubmissionView{FileID: 1, OwnerID: 10},
		entities.SubmissionView{FileID: 2, OwnerID: 10},
		entities.SubmissionView{FileID: 3, OwnerID: 20},
	)

	if _, err := schema.CalcPollingResults(stat, nil); !domainerrors.IsRule(err) {
		t.Fatalf("expected rule violation for 2 submitters, got %v", err)
	}
}

func TestRankingSharesTiedPositions(t *testing.T) {
	schema := NewClosed4(entities.SchemaInfo{ID: 3, HandlerName: Closed4HandlerName, MinimumMemberCount: 4})
	stat := statOf(
		entities.SubmissionView{FileID: 1, OwnerID: 10},
		entities.SubmissionView{FileID: 2, OwnerID: 20},
		entities.SubmissionView{FileID: 3, OwnerID: 30},
		entities.SubmissionView{FileID: 4, OwnerID: 40},
	)
	ballots := []entities.Ballot{
		ballot(51, 1, FirstSlotPoints),
		ballot(52, 2, FirstSlotPoints),
		ballot(53, 3, SecondSlotPoints),
	}

	results, err := schema.CalcPollingResults(stat, ballots)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	positions := make(map[int64]int, len(results.RatingTable))
	for _, row := range results.RatingTable {
		positions[row.FileID] = row.Position
	}
	if positions[1] != 1 || positions[2] != 1 {
		t.Fatalf("files 1 and 2 must share position 1, got %v", positions)
	}
	if positions[3] != 3 {
		t.Fatalf("file 3 must rank third after a shared top, got %v", positions)
	}
	if positions[4] != 4 {
		t.Fatalf("file 4 must rank fourth, got %v", positions)
	}
	if len(results.HalfWinners) != 2 {
		t.Fatalf("expected 2 half-winners for the shared top, got %v", results.HalfWinners)
	}
}

func TestOwnerWithTopFileIsNeverALoser(t *testing.T) {
	schema := NewOpen(entities.SchemaInfo{ID: 4, HandlerName: OpenHandlerName, ForOpenType: true, MinimumMemberCount: 3})
	stat := statOf(
		entities.SubmissionView{FileID: 1, OwnerID: 10},
		entities.SubmissionView{FileID: 2, OwnerID: 10},
		entities.SubmissionView{FileID: 3, OwnerID: 20},
		entities.SubmissionView{FileID: 4, OwnerID: 30},
	)
	ballots := []entities.Ballot{
		ballot(51, 1, FirstSlotPoints),
		ballot(52, 3, SecondSlotPoints),
	}

	results, err := schema.CalcPollingResults(stat, ballots)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(results.Winners) != 1 || results.Winners[0] != 10 {
		t.Fatalf("expected winner 10, got %v", results.Winners)
	}
	for _, loserID := range results.Losers {
		if loserID == 10 {
			t.Fatalf("owner 10 holds the top file and must not be a loser: %v", results.Losers)
		}
	}
	if len(results.Losers) != 2 {
		t.Fatalf("expected losers [20 30], got %v", results.Losers)
	}
}

func TestRegistryChoosesFirstApplicableSchema(t *testing.T) {
	registry, err := NewRegistry(testConfigs())
	if err != nil {
		t.Fatalf("expected registry, got error: %v", err)
	}

	cases := []struct {
		openType  bool
		submitted int
		wantID    int64
	}{
		{false, 2, 1},
		{false, 3, 2},
		{false, 4, 3},
		{false, 12, 3},
		{true, 3, 4},
		{true, 500, 4},
	}
	for _, tc := range cases {
		schema, err := registry.Choose(tc.openType, tc.submitted)
		if err != nil {
			t.Fatalf("choose(open=%t, submitted=%d): unexpected error %v", tc.openType, tc.submitted, err)
		}
		if schema.Info().ID != tc.wantID {
			t.Fatalf("choose(open=%t, submitted=%d): expected schema %d, got %d",
				tc.openType, tc.submitted, tc.wantID, schema.Info().ID)
		}
	}
}

func TestRegistryChooseRejectsUnservableCounts(t *testing.T) {
	registry, err := NewRegistry(testConfigs())
	if err != nil {
		t.Fatalf("expected registry, got error: %v", err)
	}

	if _, err := registry.Choose(false, 1); !domainerrors.IsRule(err) {
		t.Fatalf("expected rule violation for a single closed member, got %v", err)
	}
	if _, err := registry.Choose(true, 2); !domainerrors.IsRule(err) {
		t.Fatalf("expected rule violation for two open submitters, got %v", err)
	}
}

func TestRegistryByIDMissing(t *testing.T) {
	registry, err := NewRegistry(testConfigs())
	if err != nil {
		t.Fatalf("expected registry, got error: %v", err)
	}

	if _, err := registry.ByID(99); !errors.Is(err, domainerrors.ErrSchemaNotFound) {
		t.Fatalf("expected schema-not-found, got %v", err)
	}
}

func TestNewRejectsUnknownHandler(t *testing.T) {
	_, err := New(entities.SchemaInfo{ID: 9, HandlerName: "default_quintel"})
	if !errors.Is(err, domainerrors.ErrUnknownHandler) {
		t.Fatalf("expected unknown-handler error, got %v", err)
	}
}

func TestMemberWindowComesFromConfig(t *testing.T) {
	// A config row may widen a variant's window; the schema must report the
	// configured bounds, not its stock ones.
	wide, err := New(entities.SchemaInfo{ID: 3, HandlerName: Closed4HandlerName, MinimumMemberCount: 5, MaximumMemberCount: 16})
	if err != nil {
		t.Fatalf("expected schema, got error: %v", err)
	}
	if got := wide.MinimumMemberCount(); got != 5 {
		t.Fatalf("expected configured minimum 5, got %d", got)
	}
	if got := wide.MaximumMemberCount(); got != 16 {
		t.Fatalf("expected configured maximum 16, got %d", got)
	}

	// A sparse row falls back to each variant's stock window.
	cases := []struct {
		handler  string
		min, max int
	}{
		{DuelHandlerName, 2, 2},
		{TrielHandlerName, 3, 3},
		{Closed4HandlerName, 4, 0},
		{OpenHandlerName, 3, 0},
	}
	for _, tc := range cases {
		schema, err := New(entities.SchemaInfo{ID: 1, HandlerName: tc.handler})
		if err != nil {
			t.Fatalf("expected %s schema, got error: %v", tc.handler, err)
		}
		if got := schema.MinimumMemberCount(); got != tc.min {
			t.Fatalf("%s: expected default minimum %d, got %d", tc.handler, tc.min, got)
		}
		if got := schema.MaximumMemberCount(); got != tc.max {
			t.Fatalf("%s: expected default maximum %d, got %d", tc.handler, tc.max, got)
		}
	}
}
