package entities

import (
	"strings"
	"time"
)

// Stage is the derived lifecycle stage of a competition. Stages are totally
// ordered; Finished is terminal.
type Stage string

const (
	StageCreated        Stage = "created"
	StageConfirmed      Stage = "confirmed"
	StageStarted        Stage = "started"
	StagePollingStarted Stage = "polling_started"
	StageFinished       Stage = "finished"
)

// Competition is the aggregate root. Lifecycle timestamps are set exactly
// once, monotonically increasing, and nil until reached. Nobody outside this
// package may inspect the raw timestamps; always go through the predicates.
type Competition struct {
	ID                  int64
	ChatID              *int64
	CreatedBy           int64
	Created             time.Time
	Confirmed           *time.Time
	Started             *time.Time
	PollingStarted      *time.Time
	Finished            *time.Time
	Canceled            bool
	AcceptFilesDeadline time.Time
	PollingDeadline     time.Time
	EntryToken          string
	MinTextSize         int
	MaxTextSize         int
	MaxFilesPerMember   int
	DeclaredMemberCount *int
	Subject             string
	SubjectExt          string
	PollingSchemeID     int64
	UpdatedAt           time.Time
}

func (c Competition) IsOpenType() bool {
	return c.DeclaredMemberCount == nil
}

func (c Competition) IsClosedType() bool {
	return !c.IsOpenType()
}

func (c Competition) IsAttached() bool {
	return c.ChatID != nil
}

func (c Competition) IsConfirmed() bool {
	return c.Confirmed != nil
}

func (c Competition) IsStarted() bool {
	return c.Started != nil
}

func (c Competition) IsPollingStarted() bool {
	return c.PollingStarted != nil
}

func (c Competition) IsFinished() bool {
	return c.Finished != nil
}

func (c Competition) Stage() Stage {
	switch {
	case c.IsFinished():
		return StageFinished
	case c.IsPollingStarted():
		return StagePollingStarted
	case c.IsStarted():
		return StageStarted
	case c.IsConfirmed():
		return StageConfirmed
	default:
		return StageCreated
	}
}

// RosterFull reports whether a closed-type competition collected its declared
// member count. Always false for open-type competitions.
func (c Competition) RosterFull(registeredCount int) bool {
	if c.IsOpenType() {
		return false
	}
	return registeredCount >= *c.DeclaredMemberCount
}

func (c Competition) ValidateBasics() bool {
	subject := strings.TrimSpace(c.Subject)
	return subject != "" &&
		len(subject) <= 200 &&
		c.MinTextSize >= 0 &&
		c.MaxTextSize > 0 &&
		c.MaxTextSize >= c.MinTextSize &&
		c.MaxFilesPerMember >= 1 &&
		(c.DeclaredMemberCount == nil || *c.DeclaredMemberCount >= 2) &&
		c.AcceptFilesDeadline.Before(c.PollingDeadline)
}

// UserInfo identifies a registered member.
type UserInfo struct {
	ID    int64
	Title string
}

// SubmittedFile is one locked file attached to a competition by a member.
type SubmittedFile struct {
	ID       int64
	OwnerID  int64
	Title    string
	TextSize int
	Locked   bool
	Loaded   time.Time
}

// MemberOutcome is the per-user bookkeeping result of a finished competition.
type MemberOutcome string

const (
	OutcomeWin     MemberOutcome = "win"
	OutcomeHalfWin MemberOutcome = "half_win"
	OutcomeLoss    MemberOutcome = "loss"
)
