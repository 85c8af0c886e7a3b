package ports

import (
	"context"
	"time"

	"litgb/contexts/contest-core/polling-engine/domain/entities"
)

// BallotRepository stores cast ballots. A revote replaces the voter's whole
// ballot set for the competition in one call, so readers never observe a
// voter with a partial set.
type BallotRepository interface {
	SelectCompetitionBallots(ctx context.Context, compID int64) ([]entities.Ballot, error)
	SelectUserBallots(ctx context.Context, compID int64, voterID int64) ([]entities.Ballot, error)
	ReplaceUserBallots(ctx context.Context, compID int64, voterID int64, ballots []entities.Ballot) error
	DeleteUserBallots(ctx context.Context, compID int64, voterID int64) error
	CountDistinctVoters(ctx context.Context, compID int64) (int, error)
}

// DraftRepository keeps the per-voter two-slot ranked draft while the voter
// assembles it.
type DraftRepository interface {
	GetDraft(ctx context.Context, compID int64, voterID int64) (entities.RankedDraft, error)
	SaveDraft(ctx context.Context, draft entities.RankedDraft) error
	DeleteDraft(ctx context.Context, compID int64, voterID int64) error
}

// ResultRepository persists the final rating table once a competition's
// polling is finalized.
type ResultRepository interface {
	SaveFileResults(ctx context.Context, compID int64, results []entities.FileResult) error
	GetFileResults(ctx context.Context, compID int64) ([]entities.FileResult, error)
}

// SchemaConfigSource lists the configured schema rows the registry is built
// from.
type SchemaConfigSource interface {
	ListSchemaConfigs(ctx context.Context) ([]entities.SchemaInfo, error)
}

// CompetitionSource is the engine's read-only view of the competition
// aggregate owned by the competition service.
type CompetitionSource interface {
	GetCompetitionView(ctx context.Context, compID int64) (entities.CompetitionView, error)
	GetSubmissionStat(ctx context.Context, compID int64) (entities.SubmissionStat, error)
}

type Clock interface {
	Now() time.Time
}
