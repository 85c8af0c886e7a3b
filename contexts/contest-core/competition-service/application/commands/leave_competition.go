package commands

import (
	"context"
	"log/slog"

	application "litgb/contexts/contest-core/competition-service/application"
	"litgb/contexts/contest-core/competition-service/ports"
)

type LeaveCompetitionCommand struct {
	CompetitionID int64
	UserID        int64
}

type LeaveCompetitionUseCase struct {
	Competitions ports.CompetitionRepository
	Logger       *slog.Logger
}

func (uc LeaveCompetitionUseCase) Execute(ctx context.Context, cmd LeaveCompetitionCommand) error {
	comp, err := uc.Competitions.FindCompetition(ctx, cmd.CompetitionID)
	if err != nil {
		return err
	}
	if err := comp.CheckLeaveable(); err != nil {
		return err
	}

	// Unlock whatever the member already submitted before dropping the
	// registration row.
	if err := uc.Competitions.ReleaseUserFiles(ctx, comp.ID, cmd.UserID); err != nil {
		return err
	}
	if err := uc.Competitions.UnregUser(ctx, comp.ID, cmd.UserID); err != nil {
		return err
	}
	application.ResolveLogger(uc.Logger).Info("member left competition",
		"event", "competition_member_left",
		"module", "contest-core/competition-service",
		"layer", "application",
		"competition_id", comp.ID,
		"user_id", cmd.UserID,
	)
	return nil
}
