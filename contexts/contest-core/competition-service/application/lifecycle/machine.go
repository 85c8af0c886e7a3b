package lifecycle

import (
	"context"
	"log/slog"

	application "litgb/contexts/contest-core/competition-service/application"
	"litgb/contexts/contest-core/competition-service/domain/entities"
	domainerrors "litgb/contexts/contest-core/competition-service/domain/errors"
	"litgb/contexts/contest-core/competition-service/ports"
)

// Continuation thresholds applied once, at submission close, after pruning.
const (
	closedMinimumSubmitted = 2
	openMinimumSubmitted   = 3
)

// Machine owns every stage transition of a competition. Commands validate
// guards first and then drive the transition through here; the repository's
// conditional updates serialize concurrent attempts per competition.
type Machine struct {
	Competitions ports.CompetitionRepository
	UserStats    ports.UserStatsRepository
	Polling      ports.PollingPort
	Notifier     ports.Notifier
	Logger       *slog.Logger
}

// ReportState pushes the current stage to the attached chat. Notification
// failures never roll back a committed transition; they are logged and
// dropped.
func (m Machine) ReportState(ctx context.Context, comp entities.Competition, message string) {
	if m.Notifier == nil || !comp.IsAttached() {
		return
	}
	if err := m.Notifier.ReportCompetitionState(ctx, comp, message); err != nil {
		application.ResolveLogger(m.Logger).Error("state notification failed",
			"event", "competition_state_notify_failed",
			"module", "contest-core/competition-service",
			"layer", "application",
			"competition_id", comp.ID,
			"error", err.Error(),
		)
	}
}

// AfterAttach confirms an open-type competition immediately; a closed one
// waits for its roster and is re-checked here in case it filled up before the
// chat was attached.
func (m Machine) AfterAttach(ctx context.Context, comp entities.Competition) (entities.Competition, error) {
	m.ReportState(ctx, comp, "")
	if comp.IsOpenType() {
		confirmed, err := m.Competitions.ConfirmCompetition(ctx, comp.ID)
		if err != nil {
			return comp, err
		}
		return m.afterConfirm(ctx, confirmed)
	}
	stat, err := m.Competitions.GetCompetitionStat(ctx, comp.ID)
	if err != nil {
		return comp, err
	}
	return m.CheckClosedConfirmation(ctx, comp, stat)
}

// AfterJoin re-checks closed-type auto-confirmation after every join.
func (m Machine) AfterJoin(ctx context.Context, comp entities.Competition, stat entities.CompetitionStat) (entities.Competition, error) {
	if comp.IsClosedType() {
		return m.CheckClosedConfirmation(ctx, comp, stat)
	}
	return comp, nil
}

// CheckClosedConfirmation runs the Created->Confirmed->Started sequence for a
// closed competition whose roster is full and which has a chat. Closed
// contests are not reviewed before starting.
func (m Machine) CheckClosedConfirmation(ctx context.Context, comp entities.Competition, stat entities.CompetitionStat) (entities.Competition, error) {
	if !comp.RosterFull(len(stat.RegisteredMembers)) || !comp.IsAttached() {
		return comp, nil
	}
	confirmed, err := m.Competitions.ConfirmCompetition(ctx, comp.ID)
	if err != nil {
		return comp, err
	}
	return m.afterConfirm(ctx, confirmed)
}

func (m Machine) afterConfirm(ctx context.Context, comp entities.Competition) (entities.Competition, error) {
	m.ReportState(ctx, comp, "")
	if comp.IsClosedType() && !comp.IsAttached() {
		return comp, nil
	}
	started, err := m.Competitions.StartCompetition(ctx, comp.ID)
	if err != nil {
		return comp, err
	}
	m.ReportState(ctx, started, "")
	application.ResolveLogger(m.Logger).Info("competition started",
		"event", "competition_started",
		"module", "contest-core/competition-service",
		"layer", "application",
		"competition_id", started.ID,
		"open_type", started.IsOpenType(),
	)
	return started, nil
}

// SwitchToPollingStage is the end-of-submission-window transition. A
// competition that reached its deadline without being confirmed and started
// indicates a prior bug; the rule error is surfaced so the sweeper cancels
// it with the reason instead of retrying.
func (m Machine) SwitchToPollingStage(ctx context.Context, comp entities.Competition) error {
	logger := application.ResolveLogger(m.Logger)
	if !comp.IsConfirmed() {
		return domainerrors.Rule("competition #%d reached its submission deadline without being confirmed", comp.ID)
	}
	if !comp.IsStarted() {
		return domainerrors.Rule("competition #%d reached its submission deadline without being started", comp.ID)
	}
	if comp.IsPollingStarted() {
		return domainerrors.Rule("competition #%d is already polling", comp.ID)
	}

	comp, err := m.Competitions.SwitchToPollingStage(ctx, comp.ID)
	if err != nil {
		return err
	}

	if comp.IsClosedType() {
		if err := m.processFailedMembers(ctx, comp); err != nil {
			return err
		}
	}

	stat, err := m.Competitions.RemoveMembersWithoutFiles(ctx, comp.ID)
	if err != nil {
		return err
	}

	if done, err := m.checkEndCondition(ctx, comp, stat); err != nil || done {
		return err
	}

	if err := m.ensureApplicableSchema(ctx, comp, stat); err != nil {
		return err
	}

	m.ReportState(ctx, comp, "")
	if m.Notifier != nil && comp.IsAttached() {
		if err := m.Notifier.SendSubmittedFiles(ctx, *comp.ChatID, stat); err != nil {
			logger.Error("submitted files broadcast failed",
				"event", "competition_files_broadcast_failed",
				"module", "contest-core/competition-service",
				"layer", "application",
				"competition_id", comp.ID,
				"error", err.Error(),
			)
		}
		if err := m.Notifier.SendMergedSubmittedFiles(ctx, *comp.ChatID, comp.ID, stat); err != nil {
			logger.Error("merged files broadcast failed",
				"event", "competition_merged_broadcast_failed",
				"module", "contest-core/competition-service",
				"layer", "application",
				"competition_id", comp.ID,
				"error", err.Error(),
			)
		}
	}

	logger.Info("competition entered polling stage",
		"event", "competition_polling_started",
		"module", "contest-core/competition-service",
		"layer", "application",
		"competition_id", comp.ID,
		"submitted_members", stat.SubmittedMemberCount(),
		"submitted_files", stat.SubmittedFileCount(),
	)
	return nil
}

// processFailedMembers records a loss for every closed-type registrant who
// submitted nothing before the deadline.
func (m Machine) processFailedMembers(ctx context.Context, comp entities.Competition) error {
	stat, err := m.Competitions.GetCompetitionStat(ctx, comp.ID)
	if err != nil {
		return err
	}
	for _, member := range stat.RegisteredMembers {
		if stat.IsSubmitted(member.ID) {
			continue
		}
		if err := m.applyOutcome(ctx, comp, member, entities.OutcomeLoss); err != nil {
			return err
		}
	}
	return nil
}

// checkEndCondition finalizes or cancels a competition whose submitter count
// fell below the continuation threshold after pruning. Returns true when the
// competition was terminated here.
func (m Machine) checkEndCondition(ctx context.Context, comp entities.Competition, stat entities.CompetitionStat) (bool, error) {
	submitted := stat.SubmittedMemberCount()
	if comp.IsClosedType() {
		switch {
		case submitted >= closedMinimumSubmitted:
			return false, nil
		case submitted == 1:
			return true, m.finalizeSingleAuthorWin(ctx, comp, stat)
		default:
			return true, m.CancelWithReason(ctx, comp, "nobody submitted a file before the deadline")
		}
	}
	if submitted >= openMinimumSubmitted {
		return false, nil
	}
	return true, m.CancelWithReason(ctx, comp, "not enough submitted members to continue an open competition")
}

func (m Machine) finalizeSingleAuthorWin(ctx context.Context, comp entities.Competition, stat entities.CompetitionStat) error {
	finished, err := m.Competitions.FinishCompetition(ctx, comp.ID, false)
	if err != nil {
		return err
	}
	for _, member := range stat.RegisteredMembers {
		if !stat.IsSubmitted(member.ID) {
			continue
		}
		if err := m.applyOutcome(ctx, finished, member, entities.OutcomeWin); err != nil {
			return err
		}
	}
	m.ReportState(ctx, finished, "")
	m.announceAuthors(ctx, finished, stat)
	return nil
}

// ensureApplicableSchema replaces the assigned polling schema when the
// remaining submitted-member count no longer satisfies its minimum.
func (m Machine) ensureApplicableSchema(ctx context.Context, comp entities.Competition, stat entities.CompetitionStat) error {
	submitted := stat.SubmittedMemberCount()
	minimum, err := m.Polling.SchemaMinimumMemberCount(ctx, comp.PollingSchemeID)
	if err == nil && submitted >= minimum {
		return nil
	}
	schemaID, err := m.Polling.ChooseNewPollingSchema(ctx, comp.IsOpenType(), submitted)
	if err != nil {
		return err
	}
	if err := m.Competitions.SetPollingSchema(ctx, comp.ID, schemaID); err != nil {
		return err
	}
	application.ResolveLogger(m.Logger).Info("polling schema replaced",
		"event", "competition_schema_replaced",
		"module", "contest-core/competition-service",
		"layer", "application",
		"competition_id", comp.ID,
		"old_schema_id", comp.PollingSchemeID,
		"new_schema_id", schemaID,
		"submitted_members", submitted,
	)
	return nil
}

// FinalizeCompetitionPolling is the end-of-voting transition: compute and
// persist results, then the win/half-win/loss bookkeeping.
func (m Machine) FinalizeCompetitionPolling(ctx context.Context, comp entities.Competition) error {
	if !comp.IsPollingStarted() {
		return domainerrors.Rule("competition #%d reached its polling deadline without entering the polling stage", comp.ID)
	}
	if !comp.IsConfirmed() {
		return domainerrors.Rule("competition #%d reached its polling deadline without being confirmed", comp.ID)
	}
	if !comp.IsStarted() {
		return domainerrors.Rule("competition #%d reached its polling deadline without being started", comp.ID)
	}

	stat, err := m.Competitions.GetCompetitionStat(ctx, comp.ID)
	if err != nil {
		return err
	}
	outcome, err := m.Polling.CalcPollingResults(ctx, comp, stat)
	if err != nil {
		return err
	}

	finished, err := m.Competitions.FinishCompetition(ctx, comp.ID, false)
	if err != nil {
		return err
	}
	if err := m.Polling.SetFileResults(ctx, finished.ID, outcome.RatingTable); err != nil {
		return err
	}

	if err := m.applyOutcomes(ctx, finished, stat, outcome.Winners, entities.OutcomeWin); err != nil {
		return err
	}
	if err := m.applyOutcomes(ctx, finished, stat, outcome.HalfWinners, entities.OutcomeHalfWin); err != nil {
		return err
	}
	if err := m.applyOutcomes(ctx, finished, stat, outcome.Losers, entities.OutcomeLoss); err != nil {
		return err
	}

	m.ReportState(ctx, finished, "")
	m.announceAuthors(ctx, finished, stat)

	application.ResolveLogger(m.Logger).Info("competition finished",
		"event", "competition_finished",
		"module", "contest-core/competition-service",
		"layer", "application",
		"competition_id", finished.ID,
		"winners", len(outcome.Winners),
		"half_winners", len(outcome.HalfWinners),
		"losers", len(outcome.Losers),
	)
	return nil
}

// CancelWithReason force-finishes a competition, unlocking every member's
// files, and reports the reason to the attached chat.
func (m Machine) CancelWithReason(ctx context.Context, comp entities.Competition, reason string) error {
	stat, err := m.Competitions.GetCompetitionStat(ctx, comp.ID)
	if err != nil {
		return err
	}
	finished, err := m.Competitions.FinishCompetition(ctx, comp.ID, true)
	if err != nil {
		return err
	}
	for _, member := range stat.RegisteredMembers {
		if err := m.Competitions.ReleaseUserFiles(ctx, finished.ID, member.ID); err != nil {
			return err
		}
	}
	m.ReportState(ctx, finished, reason)
	application.ResolveLogger(m.Logger).Info("competition canceled",
		"event", "competition_canceled",
		"module", "contest-core/competition-service",
		"layer", "application",
		"competition_id", finished.ID,
		"reason", reason,
	)
	return nil
}

func (m Machine) applyOutcomes(ctx context.Context, comp entities.Competition, stat entities.CompetitionStat, userIDs []int64, outcome entities.MemberOutcome) error {
	for _, userID := range userIDs {
		member, ok := stat.Member(userID)
		if !ok {
			member = entities.UserInfo{ID: userID}
		}
		if err := m.applyOutcome(ctx, comp, member, outcome); err != nil {
			return err
		}
	}
	return nil
}

func (m Machine) applyOutcome(ctx context.Context, comp entities.Competition, member entities.UserInfo, outcome entities.MemberOutcome) error {
	var err error
	switch outcome {
	case entities.OutcomeWin:
		err = m.UserStats.IncreaseUserWins(ctx, member.ID)
	case entities.OutcomeHalfWin:
		err = m.UserStats.IncreaseUserHalfWins(ctx, member.ID)
	case entities.OutcomeLoss:
		err = m.UserStats.IncreaseUserLosses(ctx, member.ID)
	}
	if err != nil {
		return err
	}
	if m.Notifier != nil && comp.IsAttached() {
		if err := m.Notifier.AnnounceMemberOutcome(ctx, comp, member, outcome); err != nil {
			application.ResolveLogger(m.Logger).Error("member outcome announcement failed",
				"event", "competition_outcome_notify_failed",
				"module", "contest-core/competition-service",
				"layer", "application",
				"competition_id", comp.ID,
				"user_id", member.ID,
				"error", err.Error(),
			)
		}
	}
	return nil
}

func (m Machine) announceAuthors(ctx context.Context, comp entities.Competition, stat entities.CompetitionStat) {
	if m.Notifier == nil || !comp.IsAttached() {
		return
	}
	if err := m.Notifier.AnnounceFileAuthors(ctx, comp, stat); err != nil {
		application.ResolveLogger(m.Logger).Error("file authors announcement failed",
			"event", "competition_authors_notify_failed",
			"module", "contest-core/competition-service",
			"layer", "application",
			"competition_id", comp.ID,
			"error", err.Error(),
		)
	}
}
