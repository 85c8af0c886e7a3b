package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "litgb/contexts/contest-core/competition-service/application"
	"litgb/contexts/contest-core/competition-service/application/lifecycle"
	"litgb/contexts/contest-core/competition-service/domain/entities"
	domainerrors "litgb/contexts/contest-core/competition-service/domain/errors"
	"litgb/contexts/contest-core/competition-service/ports"
)

type CreateCompetitionCommand struct {
	CreatedBy           int64
	ChatID              *int64
	DeclaredMemberCount *int
	AcceptFilesDeadline time.Time
	PollingDeadline     time.Time
	MinTextSize         int
	MaxTextSize         int
	MaxFilesPerMember   int
	Subject             string
	SubjectExt          string
	PollingSchemeID     int64
}

type CreateCompetitionUseCase struct {
	Competitions ports.CompetitionRepository
	Machine      lifecycle.Machine
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func (uc CreateCompetitionUseCase) Execute(ctx context.Context, cmd CreateCompetitionCommand) (entities.Competition, error) {
	logger := application.ResolveLogger(uc.Logger)
	now := uc.Clock.Now().UTC()

	comp := entities.Competition{
		CreatedBy:           cmd.CreatedBy,
		ChatID:              cmd.ChatID,
		Created:             now,
		AcceptFilesDeadline: cmd.AcceptFilesDeadline.UTC(),
		PollingDeadline:     cmd.PollingDeadline.UTC(),
		MinTextSize:         cmd.MinTextSize,
		MaxTextSize:         cmd.MaxTextSize,
		MaxFilesPerMember:   cmd.MaxFilesPerMember,
		DeclaredMemberCount: cmd.DeclaredMemberCount,
		Subject:             strings.TrimSpace(cmd.Subject),
		SubjectExt:          strings.TrimSpace(cmd.SubjectExt),
		PollingSchemeID:     cmd.PollingSchemeID,
		UpdatedAt:           now,
	}
	if cmd.CreatedBy == 0 || !comp.ValidateBasics() {
		return entities.Competition{}, domainerrors.ErrInvalidInput
	}
	if !comp.AcceptFilesDeadline.After(now) {
		return entities.Competition{}, domainerrors.Rule("the file submission deadline must be in the future")
	}

	if comp.IsClosedType() {
		token, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.Competition{}, err
		}
		// The entry token gates closed-type joins; the short prefix is
		// enough for a shareable secret.
		comp.EntryToken = strings.ReplaceAll(token, "-", "")[:8]
	}

	created, err := uc.Competitions.CreateCompetition(ctx, comp)
	if err != nil {
		return entities.Competition{}, err
	}
	logger.Info("competition created",
		"event", "competition_created",
		"module", "contest-core/competition-service",
		"layer", "application",
		"competition_id", created.ID,
		"created_by", created.CreatedBy,
		"open_type", created.IsOpenType(),
	)

	if created.IsAttached() {
		created, err = uc.Machine.AfterAttach(ctx, created)
		if err != nil {
			return entities.Competition{}, err
		}
	}
	return created, nil
}
