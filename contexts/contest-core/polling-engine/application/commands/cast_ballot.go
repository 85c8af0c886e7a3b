package commands

import (
	"context"
	"log/slog"

	application "litgb/contexts/contest-core/polling-engine/application"
	"litgb/contexts/contest-core/polling-engine/domain/entities"
	domainerrors "litgb/contexts/contest-core/polling-engine/domain/errors"
	"litgb/contexts/contest-core/polling-engine/domain/schemas"
	"litgb/contexts/contest-core/polling-engine/ports"
)

type CastBallotCommand struct {
	CompetitionID int64
	VoterID       int64
	FileID        int64
}

// CastBallotUseCase records a single-choice ballot for schemas without a
// ranked draft. A repeat cast from the same voter replaces the previous
// ballot, so each voter contributes exactly one point.
type CastBallotUseCase struct {
	Competitions ports.CompetitionSource
	Ballots      ports.BallotRepository
	Registry     *schemas.Registry
	Clock        ports.Clock
	Logger       *slog.Logger
}

func (uc CastBallotUseCase) Execute(ctx context.Context, cmd CastBallotCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	view, stat, schema, err := loadPollingContext(ctx, uc.Competitions, uc.Registry, cmd.CompetitionID)
	if err != nil {
		return err
	}
	if schema.RankedBallot() {
		return domainerrors.Rule(
			"schema %q takes a ranked draft, not a single-choice ballot", schema.HandlerName())
	}
	if err := checkVoterEligibility(view, stat, cmd.VoterID, cmd.FileID); err != nil {
		return err
	}

	existing, err := uc.Ballots.SelectUserBallots(ctx, cmd.CompetitionID, cmd.VoterID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		voters, err := uc.Ballots.CountDistinctVoters(ctx, cmd.CompetitionID)
		if err != nil {
			return err
		}
		if voters >= schemas.DuelMaxDistinctVoters {
			return domainerrors.Rule(
				"competition #%d already has %d voters, no more are accepted",
				cmd.CompetitionID, voters)
		}
	}

	ballot := entities.Ballot{
		CompetitionID: cmd.CompetitionID,
		VoterID:       cmd.VoterID,
		FileID:        cmd.FileID,
		Points:        schemas.MemberVotePoints,
		CreatedAt:     uc.Clock.Now().UTC(),
	}
	if err := uc.Ballots.ReplaceUserBallots(ctx, cmd.CompetitionID, cmd.VoterID, []entities.Ballot{ballot}); err != nil {
		return err
	}
	logger.Info("ballot cast",
		"event", "polling_ballot_cast",
		"module", "contest-core/polling-engine",
		"layer", "application",
		"competition_id", cmd.CompetitionID,
		"voter_id", cmd.VoterID,
		"file_id", cmd.FileID,
	)
	return nil
}

// loadPollingContext resolves the competition view, its submission stat and
// the active schema, checking that polling is open.
func loadPollingContext(
	ctx context.Context,
	competitions ports.CompetitionSource,
	registry *schemas.Registry,
	compID int64,
) (entities.CompetitionView, entities.SubmissionStat, schemas.PollingSchema, error) {
	view, err := competitions.GetCompetitionView(ctx, compID)
	if err != nil {
		return entities.CompetitionView{}, entities.SubmissionStat{}, nil, err
	}
	if view.Finished {
		return view, entities.SubmissionStat{}, nil,
			domainerrors.Rule("competition #%d polling is already finished", compID)
	}
	if !view.PollingStarted {
		return view, entities.SubmissionStat{}, nil,
			domainerrors.Rule("competition #%d polling has not started", compID)
	}
	schema, err := registry.ByID(view.PollingSchemeID)
	if err != nil {
		return view, entities.SubmissionStat{}, nil, err
	}
	stat, err := competitions.GetSubmissionStat(ctx, compID)
	if err != nil {
		return view, entities.SubmissionStat{}, nil, err
	}
	return view, stat, schema, nil
}

// checkVoterEligibility rejects votes for unknown files, self-votes, and for
// closed competitions any vote cast by a submitting member.
func checkVoterEligibility(view entities.CompetitionView, stat entities.SubmissionStat, voterID, fileID int64) error {
	file, ok := stat.File(fileID)
	if !ok {
		return domainerrors.Rule(
			"file #%d is not submitted to competition #%d", fileID, view.CompetitionID)
	}
	if file.OwnerID == voterID {
		return domainerrors.Rule("voting for an own file is not allowed")
	}
	if !view.OpenType && stat.HasSubmitted(voterID) {
		return domainerrors.Rule(
			"members of a closed competition do not vote in their own polling")
	}
	return nil
}
