package commands

import (
	"context"
	"log/slog"

	application "litgb/contexts/contest-core/competition-service/application"
	"litgb/contexts/contest-core/competition-service/application/lifecycle"
	"litgb/contexts/contest-core/competition-service/domain/entities"
	"litgb/contexts/contest-core/competition-service/ports"
)

type AttachChatCommand struct {
	CompetitionID int64
	ChatID        int64
}

type AttachChatUseCase struct {
	Competitions ports.CompetitionRepository
	Machine      lifecycle.Machine
	Logger       *slog.Logger
}

func (uc AttachChatUseCase) Execute(ctx context.Context, cmd AttachChatCommand) (entities.Competition, error) {
	comp, err := uc.Competitions.FindCompetition(ctx, cmd.CompetitionID)
	if err != nil {
		return entities.Competition{}, err
	}
	if err := comp.CheckAttachable(); err != nil {
		return entities.Competition{}, err
	}
	attached, err := uc.Competitions.AttachToChat(ctx, comp.ID, cmd.ChatID)
	if err != nil {
		return entities.Competition{}, err
	}
	application.ResolveLogger(uc.Logger).Info("competition attached to chat",
		"event", "competition_attached",
		"module", "contest-core/competition-service",
		"layer", "application",
		"competition_id", attached.ID,
		"chat_id", cmd.ChatID,
	)
	return uc.Machine.AfterAttach(ctx, attached)
}
