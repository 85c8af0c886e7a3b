package contest

import (
	"context"

	compports "litgb/contexts/contest-core/competition-service/ports"
	"litgb/contexts/contest-core/polling-engine/domain/entities"
	"litgb/contexts/contest-core/polling-engine/ports"
)

// Source exposes the competition aggregate to the engine as read-only
// projections.
type Source struct {
	Competitions compports.CompetitionRepository
}

func (s Source) GetCompetitionView(ctx context.Context, compID int64) (entities.CompetitionView, error) {
	comp, err := s.Competitions.FindCompetition(ctx, compID)
	if err != nil {
		return entities.CompetitionView{}, err
	}
	return viewFromCompetition(comp), nil
}

func (s Source) GetSubmissionStat(ctx context.Context, compID int64) (entities.SubmissionStat, error) {
	stat, err := s.Competitions.GetCompetitionStat(ctx, compID)
	if err != nil {
		return entities.SubmissionStat{}, err
	}
	return statProjection(stat), nil
}

var _ ports.CompetitionSource = Source{}
