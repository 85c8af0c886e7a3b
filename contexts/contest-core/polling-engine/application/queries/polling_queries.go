package queries

import (
	"context"

	"litgb/contexts/contest-core/polling-engine/domain/entities"
	"litgb/contexts/contest-core/polling-engine/domain/schemas"
	"litgb/contexts/contest-core/polling-engine/ports"
)

// GetFileResultsUseCase returns the persisted rating table of a finalized
// competition.
type GetFileResultsUseCase struct {
	Results ports.ResultRepository
}

func (uc GetFileResultsUseCase) Execute(ctx context.Context, compID int64) ([]entities.FileResult, error) {
	return uc.Results.GetFileResults(ctx, compID)
}

// ListSchemasUseCase enumerates the configured schema variants in selection
// order.
type ListSchemasUseCase struct {
	Registry *schemas.Registry
}

func (uc ListSchemasUseCase) Execute(ctx context.Context) ([]entities.SchemaInfo, error) {
	all := uc.Registry.All()
	infos := make([]entities.SchemaInfo, 0, len(all))
	for _, schema := range all {
		infos = append(infos, schema.Info())
	}
	return infos, nil
}

// GetDraftUseCase returns the voter's current ranked draft.
type GetDraftUseCase struct {
	Drafts ports.DraftRepository
}

func (uc GetDraftUseCase) Execute(ctx context.Context, compID, voterID int64) (entities.RankedDraft, error) {
	return uc.Drafts.GetDraft(ctx, compID, voterID)
}

// CountVotersUseCase reports how many distinct voters have cast ballots.
type CountVotersUseCase struct {
	Ballots ports.BallotRepository
}

func (uc CountVotersUseCase) Execute(ctx context.Context, compID int64) (int, error) {
	return uc.Ballots.CountDistinctVoters(ctx, compID)
}
