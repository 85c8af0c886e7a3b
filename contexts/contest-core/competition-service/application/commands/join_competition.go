package commands

import (
	"context"
	"log/slog"
	"strings"

	application "litgb/contexts/contest-core/competition-service/application"
	"litgb/contexts/contest-core/competition-service/application/lifecycle"
	"litgb/contexts/contest-core/competition-service/domain/entities"
	domainerrors "litgb/contexts/contest-core/competition-service/domain/errors"
	"litgb/contexts/contest-core/competition-service/ports"
)

type JoinCompetitionCommand struct {
	CompetitionID int64
	UserID        int64
	UserTitle     string
	EntryToken    string
}

type JoinCompetitionUseCase struct {
	Competitions ports.CompetitionRepository
	Machine      lifecycle.Machine
	Clock        ports.Clock
	Logger       *slog.Logger
}

func (uc JoinCompetitionUseCase) Execute(ctx context.Context, cmd JoinCompetitionCommand) (entities.Competition, error) {
	logger := application.ResolveLogger(uc.Logger)
	comp, err := uc.Competitions.FindCompetition(ctx, cmd.CompetitionID)
	if err != nil {
		return entities.Competition{}, err
	}
	if err := comp.CheckJoinable(uc.Clock.Now().UTC()); err != nil {
		return entities.Competition{}, err
	}
	if comp.IsClosedType() && strings.TrimSpace(cmd.EntryToken) != comp.EntryToken {
		return entities.Competition{}, domainerrors.Rule("entry token does not match for competition #%d", comp.ID)
	}

	member := entities.UserInfo{ID: cmd.UserID, Title: strings.TrimSpace(cmd.UserTitle)}
	if err := uc.Competitions.JoinToCompetition(ctx, comp.ID, member); err != nil {
		return entities.Competition{}, err
	}
	stat, err := uc.Competitions.GetCompetitionStat(ctx, comp.ID)
	if err != nil {
		return entities.Competition{}, err
	}
	logger.Info("member joined competition",
		"event", "competition_member_joined",
		"module", "contest-core/competition-service",
		"layer", "application",
		"competition_id", comp.ID,
		"user_id", cmd.UserID,
		"registered_members", len(stat.RegisteredMembers),
	)

	return uc.Machine.AfterJoin(ctx, comp, stat)
}
