// Package contest adapts the polling engine to the scoring contract the
// competition service consumes. The dependency points this way only: the
// competition service never imports the engine.
package contest

import (
	"context"
	"errors"

	compentities "litgb/contexts/contest-core/competition-service/domain/entities"
	comperrors "litgb/contexts/contest-core/competition-service/domain/errors"
	compports "litgb/contexts/contest-core/competition-service/ports"
	"litgb/contexts/contest-core/polling-engine/application"
	"litgb/contexts/contest-core/polling-engine/domain/entities"
	pollerrors "litgb/contexts/contest-core/polling-engine/domain/errors"
)

// Bridge translates competition aggregates into engine projections and
// engine results back into the consumer's outcome shape.
type Bridge struct {
	Engine application.Engine
}

func (b Bridge) SchemaMinimumMemberCount(ctx context.Context, schemaID int64) (int, error) {
	count, err := b.Engine.SchemaMinimumMemberCount(ctx, schemaID)
	if err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

func (b Bridge) ChooseNewPollingSchema(ctx context.Context, openType bool, submittedMemberCount int) (int64, error) {
	schemaID, err := b.Engine.ChooseNewPollingSchema(ctx, openType, submittedMemberCount)
	if err != nil {
		return 0, translateError(err)
	}
	return schemaID, nil
}

func (b Bridge) CalcPollingResults(ctx context.Context, comp compentities.Competition, stat compentities.CompetitionStat) (compports.PollingOutcome, error) {
	results, err := b.Engine.CalcPollingResults(ctx, viewFromCompetition(comp), statProjection(stat))
	if err != nil {
		return compports.PollingOutcome{}, translateError(err)
	}
	outcome := compports.PollingOutcome{
		Winners:     results.Winners,
		HalfWinners: results.HalfWinners,
		Losers:      results.Losers,
		RatingTable: make([]compports.FileResult, 0, len(results.RatingTable)),
	}
	for _, row := range results.RatingTable {
		outcome.RatingTable = append(outcome.RatingTable, compports.FileResult{
			FileID:   row.FileID,
			Position: row.Position,
			Score:    row.Score,
		})
	}
	return outcome, nil
}

func (b Bridge) SetFileResults(ctx context.Context, compID int64, results []compports.FileResult) error {
	rows := make([]entities.FileResult, 0, len(results))
	for _, row := range results {
		rows = append(rows, entities.FileResult{
			FileID:   row.FileID,
			Position: row.Position,
			Score:    row.Score,
		})
	}
	return b.Engine.SetFileResults(ctx, compID, rows)
}

// translateError maps engine errors into the consumer's error vocabulary so
// rule violations keep their cancel-with-reason semantics across the
// context boundary.
func translateError(err error) error {
	switch {
	case pollerrors.IsRule(err):
		return comperrors.Rule("%s", err.Error())
	case errors.Is(err, pollerrors.ErrSchemaNotFound), errors.Is(err, pollerrors.ErrUnknownHandler):
		return comperrors.ErrSchemaNotFound
	default:
		return err
	}
}

func viewFromCompetition(comp compentities.Competition) entities.CompetitionView {
	return entities.CompetitionView{
		CompetitionID:   comp.ID,
		OpenType:        comp.IsOpenType(),
		PollingSchemeID: comp.PollingSchemeID,
		PollingStarted:  comp.IsPollingStarted(),
		Finished:        comp.IsFinished(),
	}
}

func statProjection(stat compentities.CompetitionStat) entities.SubmissionStat {
	projection := entities.SubmissionStat{}
	for ownerID, files := range stat.SubmittedFiles {
		for _, file := range files {
			projection.Files = append(projection.Files, entities.SubmissionView{
				FileID:  file.ID,
				OwnerID: ownerID,
				Title:   file.Title,
			})
		}
	}
	return projection
}

var _ compports.PollingPort = Bridge{}
