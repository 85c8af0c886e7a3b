package workers

import (
	"context"
	"log/slog"
	"time"

	application "litgb/contexts/contest-core/competition-service/application"
	"litgb/contexts/contest-core/competition-service/application/lifecycle"
	"litgb/contexts/contest-core/competition-service/domain/entities"
	domainerrors "litgb/contexts/contest-core/competition-service/domain/errors"
	"litgb/contexts/contest-core/competition-service/ports"
)

// DeadlineSweeper drives competitions past a deadline through the state
// machine. Each competition is processed in isolation: a business-rule
// failure cancels that one competition with the reason attached, anything
// else is logged and retried on the next tick.
type DeadlineSweeper struct {
	Competitions ports.CompetitionRepository
	Machine      lifecycle.Machine
	Clock        ports.Clock
	Logger       *slog.Logger
}

func (j DeadlineSweeper) RunOnce(ctx context.Context) error {
	now := time.Now().UTC()
	if j.Clock != nil {
		now = j.Clock.Now().UTC()
	}
	j.checkPollingStageStart(ctx, now)
	j.checkPollingStageEnd(ctx, now)
	return nil
}

func (j DeadlineSweeper) checkPollingStageStart(ctx context.Context, now time.Time) {
	logger := application.ResolveLogger(j.Logger)
	comps, err := j.Competitions.SelectReadyToPollingStageCompetitions(ctx, now)
	if err != nil {
		logger.Error("ready-to-poll selection failed",
			"event", "sweeper_ready_select_failed",
			"module", "contest-core/competition-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return
	}
	for _, comp := range comps {
		if err := j.Machine.SwitchToPollingStage(ctx, comp); err != nil {
			j.handleFailure(ctx, comp, "switch to polling stage", err)
		}
	}
}

func (j DeadlineSweeper) checkPollingStageEnd(ctx context.Context, now time.Time) {
	logger := application.ResolveLogger(j.Logger)
	comps, err := j.Competitions.SelectPollingDeadlinedCompetitions(ctx, now)
	if err != nil {
		logger.Error("polling-deadline selection failed",
			"event", "sweeper_deadline_select_failed",
			"module", "contest-core/competition-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return
	}
	for _, comp := range comps {
		if err := j.Machine.FinalizeCompetitionPolling(ctx, comp); err != nil {
			j.handleFailure(ctx, comp, "finalize polling", err)
		}
	}
}

func (j DeadlineSweeper) handleFailure(ctx context.Context, comp entities.Competition, op string, err error) {
	logger := application.ResolveLogger(j.Logger)
	if domainerrors.IsRule(err) {
		logger.Error("competition transition rejected, canceling competition",
			"event", "sweeper_transition_rejected",
			"module", "contest-core/competition-service",
			"layer", "worker",
			"competition_id", comp.ID,
			"operation", op,
			"reason", domainerrors.RuleReason(err),
		)
		if cancelErr := j.Machine.CancelWithReason(ctx, comp, domainerrors.RuleReason(err)); cancelErr != nil {
			logger.Error("forced cancellation failed",
				"event", "sweeper_cancel_failed",
				"module", "contest-core/competition-service",
				"layer", "worker",
				"competition_id", comp.ID,
				"error", cancelErr.Error(),
			)
		}
		return
	}
	// Unexpected failure: leave the competition untouched, the next tick
	// retries it.
	logger.Error("competition transition failed",
		"event", "sweeper_transition_failed",
		"module", "contest-core/competition-service",
		"layer", "worker",
		"competition_id", comp.ID,
		"operation", op,
		"error", err.Error(),
	)
}
