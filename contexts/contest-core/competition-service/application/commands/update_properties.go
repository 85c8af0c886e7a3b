package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "litgb/contexts/contest-core/competition-service/application"
	"litgb/contexts/contest-core/competition-service/domain/entities"
	domainerrors "litgb/contexts/contest-core/competition-service/domain/errors"
	"litgb/contexts/contest-core/competition-service/ports"
)

// UpdatePropertiesCommand carries the mutable pre-start properties. Nil
// pointers leave the property unchanged.
type UpdatePropertiesCommand struct {
	CompetitionID       int64
	CallerID            int64
	Subject             *string
	SubjectExt          *string
	MinTextSize         *int
	MaxTextSize         *int
	MaxFilesPerMember   *int
	AcceptFilesDeadline *time.Time
	PollingDeadline     *time.Time
}

type UpdatePropertiesUseCase struct {
	Competitions ports.CompetitionRepository
	Clock        ports.Clock
	Logger       *slog.Logger
}

func (uc UpdatePropertiesUseCase) Execute(ctx context.Context, cmd UpdatePropertiesCommand) (entities.Competition, error) {
	comp, err := uc.Competitions.FindCompetition(ctx, cmd.CompetitionID)
	if err != nil {
		return entities.Competition{}, err
	}
	if err := comp.CheckPropertyChangable(cmd.CallerID); err != nil {
		return entities.Competition{}, err
	}

	if cmd.Subject != nil {
		comp.Subject = strings.TrimSpace(*cmd.Subject)
	}
	if cmd.SubjectExt != nil {
		comp.SubjectExt = strings.TrimSpace(*cmd.SubjectExt)
	}
	if cmd.MinTextSize != nil {
		comp.MinTextSize = *cmd.MinTextSize
	}
	if cmd.MaxTextSize != nil {
		comp.MaxTextSize = *cmd.MaxTextSize
	}
	if cmd.MaxFilesPerMember != nil {
		comp.MaxFilesPerMember = *cmd.MaxFilesPerMember
	}
	if cmd.AcceptFilesDeadline != nil {
		comp.AcceptFilesDeadline = cmd.AcceptFilesDeadline.UTC()
	}
	if cmd.PollingDeadline != nil {
		comp.PollingDeadline = cmd.PollingDeadline.UTC()
	}
	comp.UpdatedAt = uc.Clock.Now().UTC()

	if !comp.ValidateBasics() {
		return entities.Competition{}, domainerrors.ErrInvalidInput
	}
	if err := uc.Competitions.UpdateProperties(ctx, comp); err != nil {
		return entities.Competition{}, err
	}
	application.ResolveLogger(uc.Logger).Info("competition properties changed",
		"event", "competition_properties_changed",
		"module", "contest-core/competition-service",
		"layer", "application",
		"competition_id", comp.ID,
		"caller_id", cmd.CallerID,
	)
	return comp, nil
}
