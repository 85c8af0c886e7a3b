package application

import (
	"context"
	"log/slog"

	"litgb/contexts/contest-core/polling-engine/domain/entities"
	"litgb/contexts/contest-core/polling-engine/domain/schemas"
	"litgb/contexts/contest-core/polling-engine/ports"
)

// Engine is the scoring facade the competition service consumes. It is pure
// with respect to the competition aggregate: it reads projections, tallies
// ballots and persists rating tables, nothing else.
type Engine struct {
	Ballots  ports.BallotRepository
	Results  ports.ResultRepository
	Registry *schemas.Registry
	Logger   *slog.Logger
}

func (e Engine) SchemaMinimumMemberCount(ctx context.Context, schemaID int64) (int, error) {
	schema, err := e.Registry.ByID(schemaID)
	if err != nil {
		return 0, err
	}
	return schema.MinimumMemberCount(), nil
}

func (e Engine) ChooseNewPollingSchema(ctx context.Context, openType bool, submittedMemberCount int) (int64, error) {
	schema, err := e.Registry.Choose(openType, submittedMemberCount)
	if err != nil {
		return 0, err
	}
	return schema.Info().ID, nil
}

func (e Engine) CalcPollingResults(ctx context.Context, view entities.CompetitionView, stat entities.SubmissionStat) (entities.PollingResults, error) {
	logger := ResolveLogger(e.Logger)
	schema, err := e.Registry.ByID(view.PollingSchemeID)
	if err != nil {
		return entities.PollingResults{}, err
	}
	ballots, err := e.Ballots.SelectCompetitionBallots(ctx, view.CompetitionID)
	if err != nil {
		return entities.PollingResults{}, err
	}
	results, err := schema.CalcPollingResults(stat, ballots)
	if err != nil {
		return entities.PollingResults{}, err
	}
	logger.Info("polling results calculated",
		"event", "polling_results_calculated",
		"module", "contest-core/polling-engine",
		"layer", "application",
		"competition_id", view.CompetitionID,
		"schema", schema.HandlerName(),
		"ballots", len(ballots),
		"winners", len(results.Winners),
		"half_winners", len(results.HalfWinners),
		"losers", len(results.Losers),
	)
	return results, nil
}

func (e Engine) SetFileResults(ctx context.Context, compID int64, results []entities.FileResult) error {
	return e.Results.SaveFileResults(ctx, compID, results)
}
