package entities

import (
	"time"

	domainerrors "litgb/contexts/contest-core/competition-service/domain/errors"
)

// Legality checks gating every mutating operation. Each guard either returns
// nil or a RuleError with the user-facing reason; no generic failures.

func (c Competition) CheckJoinable(now time.Time) error {
	if c.IsFinished() {
		return domainerrors.Rule("competition #%d is already finished", c.ID)
	}
	if c.IsPollingStarted() {
		return domainerrors.Rule("competition #%d is already in the polling stage, joining is closed", c.ID)
	}
	if c.IsOpenType() {
		if !c.IsConfirmed() {
			return domainerrors.Rule("open competition #%d is not confirmed yet, wait until it is attached to a chat", c.ID)
		}
		if !now.Before(c.AcceptFilesDeadline) {
			return domainerrors.Rule("competition #%d no longer accepts members, the file submission deadline has passed", c.ID)
		}
		return nil
	}
	if c.IsConfirmed() {
		return domainerrors.Rule("closed competition #%d already collected its roster", c.ID)
	}
	return nil
}

func (c Competition) CheckPropertyChangable(callerID int64) error {
	if c.IsStarted() {
		return domainerrors.Rule("competition #%d is already started, its properties are frozen", c.ID)
	}
	if callerID != 0 && callerID != c.CreatedBy {
		return domainerrors.Rule("only the creator may change competition #%d", c.ID)
	}
	return nil
}

func (c Competition) CheckFileAcceptable(stat CompetitionStat, userID int64, title string, textSize int) error {
	if c.IsFinished() {
		return domainerrors.Rule("competition #%d is already finished", c.ID)
	}
	if c.IsPollingStarted() {
		return domainerrors.Rule("competition #%d is in the polling stage, files are no longer accepted", c.ID)
	}
	if !c.IsStarted() {
		return domainerrors.Rule("competition #%d has not started yet, files are not accepted", c.ID)
	}
	if !stat.IsRegistered(userID) {
		return domainerrors.Rule("you are not registered in competition #%d", c.ID)
	}
	if len(stat.SubmittedFiles[userID]) >= c.MaxFilesPerMember {
		return domainerrors.Rule("file limit reached: competition #%d accepts at most %d file(s) per member", c.ID, c.MaxFilesPerMember)
	}
	if stat.HasFileTitled(userID, title) {
		return domainerrors.Rule("a file titled %q is already submitted to competition #%d", title, c.ID)
	}
	if textSize < c.MinTextSize {
		return domainerrors.Rule("text is too short: competition #%d requires at least %d characters", c.ID, c.MinTextSize)
	}
	if c.MaxTextSize > 0 && textSize > c.MaxTextSize {
		return domainerrors.Rule("text is too long: competition #%d allows at most %d characters", c.ID, c.MaxTextSize)
	}
	return nil
}

func (c Competition) CheckLeaveable() error {
	if c.IsFinished() {
		return domainerrors.Rule("competition #%d is already finished", c.ID)
	}
	if c.IsPollingStarted() {
		return domainerrors.Rule("competition #%d is in the polling stage, leaving is not possible", c.ID)
	}
	if c.IsClosedType() && c.IsStarted() {
		return domainerrors.Rule("closed competition #%d is already started, leaving is not possible", c.ID)
	}
	return nil
}

func (c Competition) CheckCancelable() error {
	if c.IsFinished() {
		return domainerrors.Rule("competition #%d is already finished", c.ID)
	}
	if c.IsPollingStarted() {
		return domainerrors.Rule("competition #%d is in the polling stage and cannot be canceled", c.ID)
	}
	if c.IsClosedType() && c.IsConfirmed() {
		return domainerrors.Rule("closed competition #%d is confirmed and cannot be canceled", c.ID)
	}
	return nil
}

func (c Competition) CheckAttachable() error {
	if c.IsAttached() {
		return domainerrors.Rule("competition #%d is already attached to a chat", c.ID)
	}
	if c.IsStarted() {
		return domainerrors.Rule("competition #%d is already started and cannot be attached", c.ID)
	}
	return nil
}
