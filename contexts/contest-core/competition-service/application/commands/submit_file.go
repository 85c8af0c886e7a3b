package commands

import (
	"context"
	"log/slog"
	"strings"

	application "litgb/contexts/contest-core/competition-service/application"
	"litgb/contexts/contest-core/competition-service/domain/entities"
	domainerrors "litgb/contexts/contest-core/competition-service/domain/errors"
	"litgb/contexts/contest-core/competition-service/ports"
)

type SubmitFileCommand struct {
	CompetitionID int64
	UserID        int64
	FileID        int64
	Title         string
	TextSize      int
}

type SubmitFileUseCase struct {
	Competitions ports.CompetitionRepository
	Clock        ports.Clock
	Logger       *slog.Logger
}

func (uc SubmitFileUseCase) Execute(ctx context.Context, cmd SubmitFileCommand) error {
	title := strings.TrimSpace(cmd.Title)
	if title == "" || cmd.FileID == 0 {
		return domainerrors.ErrInvalidInput
	}
	comp, err := uc.Competitions.FindCompetition(ctx, cmd.CompetitionID)
	if err != nil {
		return err
	}
	stat, err := uc.Competitions.GetCompetitionStat(ctx, comp.ID)
	if err != nil {
		return err
	}
	if err := comp.CheckFileAcceptable(stat, cmd.UserID, title, cmd.TextSize); err != nil {
		return err
	}

	file := entities.SubmittedFile{
		ID:       cmd.FileID,
		OwnerID:  cmd.UserID,
		Title:    title,
		TextSize: cmd.TextSize,
		Locked:   true,
		Loaded:   uc.Clock.Now().UTC(),
	}
	if err := uc.Competitions.SubmitFile(ctx, comp.ID, file); err != nil {
		return err
	}
	application.ResolveLogger(uc.Logger).Info("file submitted",
		"event", "competition_file_submitted",
		"module", "contest-core/competition-service",
		"layer", "application",
		"competition_id", comp.ID,
		"user_id", cmd.UserID,
		"file_id", cmd.FileID,
		"text_size", cmd.TextSize,
	)
	return nil
}
