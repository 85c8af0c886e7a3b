package entities

import "time"

// Ballot is one voter's point allocation to one submitted file. A voter holds
// at most one row per (competition, file); schemas with split ballots insert
// several rows with fixed per-rank weights.
type Ballot struct {
	CompetitionID int64
	VoterID       int64
	FileID        int64
	Points        int
	CreatedAt     time.Time
}

// FileResult is one persisted rating-table row, written once per competition
// at finalization.
type FileResult struct {
	FileID   int64
	Position int
	Score    int
}

// PollingResults is the outcome of scoring a competition's final ballot set.
type PollingResults struct {
	Winners     []int64
	HalfWinners []int64
	Losers      []int64
	RatingTable []FileResult
}

// SchemaInfo is an immutable polling-schema configuration row. HandlerName
// selects the scoring variant; Minimum/MaximumMemberCount is the
// applicability window (maximum 0 means unbounded).
type SchemaInfo struct {
	ID                 int64
	HandlerName        string
	Title              string
	Description        string
	ForOpenType        bool
	MinimumMemberCount int
	MaximumMemberCount int
}

// RankedDraft is a persisted two-slot ranked selection built by a voter
// before it is applied as weighted ballots. Keyed by (competition, voter) so
// it survives process restarts.
type RankedDraft struct {
	CompetitionID int64
	VoterID       int64
	FirstFileID   int64
	SecondFileID  *int64
	UpdatedAt     time.Time
}
