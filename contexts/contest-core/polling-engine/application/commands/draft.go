package commands

import (
	"context"
	"errors"
	"log/slog"

	application "litgb/contexts/contest-core/polling-engine/application"
	"litgb/contexts/contest-core/polling-engine/domain/entities"
	domainerrors "litgb/contexts/contest-core/polling-engine/domain/errors"
	"litgb/contexts/contest-core/polling-engine/domain/schemas"
	"litgb/contexts/contest-core/polling-engine/ports"
)

type SetDraftSlotCommand struct {
	CompetitionID int64
	VoterID       int64
	Slot          int
	FileID        int64
}

// SetDraftSlotUseCase fills one slot of the voter's ranked draft. Slot 1 is
// the two-point pick, slot 2 the one-point pick. The draft is only turned
// into ballots by ApplyDraftUseCase.
type SetDraftSlotUseCase struct {
	Competitions ports.CompetitionSource
	Drafts       ports.DraftRepository
	Registry     *schemas.Registry
	Clock        ports.Clock
	Logger       *slog.Logger
}

func (uc SetDraftSlotUseCase) Execute(ctx context.Context, cmd SetDraftSlotCommand) (entities.RankedDraft, error) {
	logger := application.ResolveLogger(uc.Logger)
	view, stat, schema, err := loadPollingContext(ctx, uc.Competitions, uc.Registry, cmd.CompetitionID)
	if err != nil {
		return entities.RankedDraft{}, err
	}
	if !schema.RankedBallot() {
		return entities.RankedDraft{}, domainerrors.Rule(
			"schema %q takes a single-choice ballot, not a ranked draft", schema.HandlerName())
	}
	if cmd.Slot != 1 && cmd.Slot != 2 {
		return entities.RankedDraft{}, domainerrors.Rule("draft slot must be 1 or 2, got %d", cmd.Slot)
	}
	if err := checkVoterEligibility(view, stat, cmd.VoterID, cmd.FileID); err != nil {
		return entities.RankedDraft{}, err
	}

	draft, err := uc.Drafts.GetDraft(ctx, cmd.CompetitionID, cmd.VoterID)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrDraftNotFound) {
			return entities.RankedDraft{}, err
		}
		draft = entities.RankedDraft{CompetitionID: cmd.CompetitionID, VoterID: cmd.VoterID}
	}
	switch cmd.Slot {
	case 1:
		if draft.SecondFileID != nil && *draft.SecondFileID == cmd.FileID {
			return entities.RankedDraft{}, domainerrors.Rule(
				"file #%d already occupies the second slot", cmd.FileID)
		}
		draft.FirstFileID = cmd.FileID
	case 2:
		if draft.FirstFileID == cmd.FileID {
			return entities.RankedDraft{}, domainerrors.Rule(
				"file #%d already occupies the first slot", cmd.FileID)
		}
		fileID := cmd.FileID
		draft.SecondFileID = &fileID
	}
	draft.UpdatedAt = uc.Clock.Now().UTC()
	if err := uc.Drafts.SaveDraft(ctx, draft); err != nil {
		return entities.RankedDraft{}, err
	}
	logger.Info("draft slot set",
		"event", "polling_draft_slot_set",
		"module", "contest-core/polling-engine",
		"layer", "application",
		"competition_id", cmd.CompetitionID,
		"voter_id", cmd.VoterID,
		"slot", cmd.Slot,
		"file_id", cmd.FileID,
	)
	return draft, nil
}

type ApplyDraftCommand struct {
	CompetitionID int64
	VoterID       int64
}

// ApplyDraftUseCase converts the voter's draft into ballots, replacing any
// ballots the voter applied before. A full two-slot draft becomes a weighted
// 2/1-point pair; a first choice alone becomes a single one-point ballot.
// Submitting members of an open competition may only fill the first slot.
type ApplyDraftUseCase struct {
	Competitions ports.CompetitionSource
	Ballots      ports.BallotRepository
	Drafts       ports.DraftRepository
	Registry     *schemas.Registry
	Clock        ports.Clock
	Logger       *slog.Logger
}

func (uc ApplyDraftUseCase) Execute(ctx context.Context, cmd ApplyDraftCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	view, stat, schema, err := loadPollingContext(ctx, uc.Competitions, uc.Registry, cmd.CompetitionID)
	if err != nil {
		return err
	}
	if !schema.RankedBallot() {
		return domainerrors.Rule(
			"schema %q takes a single-choice ballot, not a ranked draft", schema.HandlerName())
	}
	draft, err := uc.Drafts.GetDraft(ctx, cmd.CompetitionID, cmd.VoterID)
	if err != nil {
		return err
	}
	if draft.FirstFileID == 0 {
		return domainerrors.Rule("the first draft slot must be filled before applying")
	}
	if err := checkVoterEligibility(view, stat, cmd.VoterID, draft.FirstFileID); err != nil {
		return err
	}

	now := uc.Clock.Now().UTC()
	memberVoter := stat.HasSubmitted(cmd.VoterID)
	if memberVoter && draft.SecondFileID != nil {
		return domainerrors.Rule(
			"a submitting member fills only the first draft slot")
	}

	// Only a full two-slot draft carries the ranked weights; a lone first
	// choice counts as a plain member-weight ballot no matter who cast it.
	ballots := make([]entities.Ballot, 0, 2)
	firstPoints := schemas.FirstSlotPoints
	if draft.SecondFileID == nil {
		firstPoints = schemas.MemberVotePoints
	}
	ballots = append(ballots, entities.Ballot{
		CompetitionID: cmd.CompetitionID,
		VoterID:       cmd.VoterID,
		FileID:        draft.FirstFileID,
		Points:        firstPoints,
		CreatedAt:     now,
	})
	if draft.SecondFileID != nil {
		if err := checkVoterEligibility(view, stat, cmd.VoterID, *draft.SecondFileID); err != nil {
			return err
		}
		ballots = append(ballots, entities.Ballot{
			CompetitionID: cmd.CompetitionID,
			VoterID:       cmd.VoterID,
			FileID:        *draft.SecondFileID,
			Points:        schemas.SecondSlotPoints,
			CreatedAt:     now,
		})
	}
	if err := uc.Ballots.ReplaceUserBallots(ctx, cmd.CompetitionID, cmd.VoterID, ballots); err != nil {
		return err
	}
	logger.Info("draft applied",
		"event", "polling_draft_applied",
		"module", "contest-core/polling-engine",
		"layer", "application",
		"competition_id", cmd.CompetitionID,
		"voter_id", cmd.VoterID,
		"ballots", len(ballots),
	)
	return nil
}

type RetractBallotsCommand struct {
	CompetitionID int64
	VoterID       int64
}

// RetractBallotsUseCase removes the voter's ballots and draft while polling
// is still open.
type RetractBallotsUseCase struct {
	Competitions ports.CompetitionSource
	Ballots      ports.BallotRepository
	Drafts       ports.DraftRepository
	Registry     *schemas.Registry
	Logger       *slog.Logger
}

func (uc RetractBallotsUseCase) Execute(ctx context.Context, cmd RetractBallotsCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	if _, _, _, err := loadPollingContext(ctx, uc.Competitions, uc.Registry, cmd.CompetitionID); err != nil {
		return err
	}
	if err := uc.Ballots.DeleteUserBallots(ctx, cmd.CompetitionID, cmd.VoterID); err != nil {
		return err
	}
	if err := uc.Drafts.DeleteDraft(ctx, cmd.CompetitionID, cmd.VoterID); err != nil &&
		!errors.Is(err, domainerrors.ErrDraftNotFound) {
		return err
	}
	logger.Info("ballots retracted",
		"event", "polling_ballots_retracted",
		"module", "contest-core/polling-engine",
		"layer", "application",
		"competition_id", cmd.CompetitionID,
		"voter_id", cmd.VoterID,
	)
	return nil
}
