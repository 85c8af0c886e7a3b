package queries

import (
	"context"
	"log/slog"

	"litgb/contexts/contest-core/competition-service/domain/entities"
	"litgb/contexts/contest-core/competition-service/ports"
)

type GetCompetitionUseCase struct {
	Competitions ports.CompetitionRepository
	Logger       *slog.Logger
}

func (uc GetCompetitionUseCase) Execute(ctx context.Context, compID int64) (entities.Competition, error) {
	return uc.Competitions.FindCompetition(ctx, compID)
}

type GetCompetitionStatUseCase struct {
	Competitions ports.CompetitionRepository
	Logger       *slog.Logger
}

func (uc GetCompetitionStatUseCase) Execute(ctx context.Context, compID int64) (entities.CompetitionStat, error) {
	if _, err := uc.Competitions.FindCompetition(ctx, compID); err != nil {
		return entities.CompetitionStat{}, err
	}
	return uc.Competitions.GetCompetitionStat(ctx, compID)
}

type ListChatCompetitionsUseCase struct {
	Competitions ports.CompetitionRepository
	Logger       *slog.Logger
}

func (uc ListChatCompetitionsUseCase) Execute(ctx context.Context, chatID int64) ([]entities.Competition, error) {
	return uc.Competitions.ListChatCompetitions(ctx, chatID)
}

type GetUserStatsUseCase struct {
	UserStats ports.UserStatsRepository
	Logger    *slog.Logger
}

func (uc GetUserStatsUseCase) Execute(ctx context.Context, userID int64) (ports.UserStats, error) {
	return uc.UserStats.GetUserStats(ctx, userID)
}
