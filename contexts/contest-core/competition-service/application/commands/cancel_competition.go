package commands

import (
	"context"
	"log/slog"
	"strings"

	"litgb/contexts/contest-core/competition-service/application/lifecycle"
	domainerrors "litgb/contexts/contest-core/competition-service/domain/errors"
	"litgb/contexts/contest-core/competition-service/ports"
)

type CancelCompetitionCommand struct {
	CompetitionID int64
	CallerID      int64
	Reason        string
}

type CancelCompetitionUseCase struct {
	Competitions ports.CompetitionRepository
	Machine      lifecycle.Machine
	Logger       *slog.Logger
}

func (uc CancelCompetitionUseCase) Execute(ctx context.Context, cmd CancelCompetitionCommand) error {
	comp, err := uc.Competitions.FindCompetition(ctx, cmd.CompetitionID)
	if err != nil {
		return err
	}
	if cmd.CallerID != comp.CreatedBy {
		return domainerrors.Rule("only the creator may cancel competition #%d", comp.ID)
	}
	if err := comp.CheckCancelable(); err != nil {
		return err
	}
	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		reason = "canceled by the creator"
	}
	return uc.Machine.CancelWithReason(ctx, comp, reason)
}
