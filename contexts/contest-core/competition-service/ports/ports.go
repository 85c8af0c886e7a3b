package ports

import (
	"context"
	"time"

	"litgb/contexts/contest-core/competition-service/domain/entities"
	contractsv1 "litgb/contracts/gen/events/v1"
)

// CompetitionRepository owns the persisted Competition aggregate and its
// membership rows. Every stage-advancing call is conditional on the current
// stage and returns ErrStageConflict when a concurrent caller won the race;
// that conditional update is the serialization point for transitions.
type CompetitionRepository interface {
	CreateCompetition(ctx context.Context, comp entities.Competition) (entities.Competition, error)
	FindCompetition(ctx context.Context, id int64) (entities.Competition, error)
	UpdateProperties(ctx context.Context, comp entities.Competition) error
	AttachToChat(ctx context.Context, id int64, chatID int64) (entities.Competition, error)
	ConfirmCompetition(ctx context.Context, id int64) (entities.Competition, error)
	StartCompetition(ctx context.Context, id int64) (entities.Competition, error)
	SwitchToPollingStage(ctx context.Context, id int64) (entities.Competition, error)
	FinishCompetition(ctx context.Context, id int64, canceled bool) (entities.Competition, error)
	SetPollingSchema(ctx context.Context, id int64, schemaID int64) error

	GetCompetitionStat(ctx context.Context, id int64) (entities.CompetitionStat, error)
	JoinToCompetition(ctx context.Context, compID int64, member entities.UserInfo) error
	UnregUser(ctx context.Context, compID int64, userID int64) error
	ReleaseUserFiles(ctx context.Context, compID int64, userID int64) error
	RemoveMembersWithoutFiles(ctx context.Context, compID int64) (entities.CompetitionStat, error)
	SubmitFile(ctx context.Context, compID int64, file entities.SubmittedFile) error

	SelectReadyToPollingStageCompetitions(ctx context.Context, now time.Time) ([]entities.Competition, error)
	SelectPollingDeadlinedCompetitions(ctx context.Context, now time.Time) ([]entities.Competition, error)
	ListChatCompetitions(ctx context.Context, chatID int64) ([]entities.Competition, error)
}

// UserStatsRepository keeps per-user win/half-win/loss counters.
type UserStatsRepository interface {
	IncreaseUserWins(ctx context.Context, userID int64) error
	IncreaseUserHalfWins(ctx context.Context, userID int64) error
	IncreaseUserLosses(ctx context.Context, userID int64) error
	GetUserStats(ctx context.Context, userID int64) (UserStats, error)
}

type UserStats struct {
	UserID   int64
	Wins     int
	HalfWins int
	Losses   int
}

// FileResult is a scored rating-table row produced by the polling engine.
type FileResult struct {
	FileID   int64
	Position int
	Score    int
}

// PollingOutcome is what the polling engine computes for a finished
// competition.
type PollingOutcome struct {
	Winners     []int64
	HalfWinners []int64
	Losers      []int64
	RatingTable []FileResult
}

// PollingPort is the consumed contract of the polling engine. Implementations
// never mutate the competition.
type PollingPort interface {
	SchemaMinimumMemberCount(ctx context.Context, schemaID int64) (int, error)
	// ChooseNewPollingSchema returns the id of the first configured schema
	// applicable to the competition type and submitted member count, or a
	// rule error when none qualifies.
	ChooseNewPollingSchema(ctx context.Context, openType bool, submittedMemberCount int) (int64, error)
	CalcPollingResults(ctx context.Context, comp entities.Competition, stat entities.CompetitionStat) (PollingOutcome, error)
	SetFileResults(ctx context.Context, compID int64, results []FileResult) error
}

// Notifier is the produced notification contract: chat delivery, file
// broadcasting and rendering live behind it. Calls are best-effort and must
// never roll back an already committed stage change.
type Notifier interface {
	ReportCompetitionState(ctx context.Context, comp entities.Competition, message string) error
	SendSubmittedFiles(ctx context.Context, chatID int64, stat entities.CompetitionStat) error
	SendMergedSubmittedFiles(ctx context.Context, chatID int64, compID int64, stat entities.CompetitionStat) error
	AnnounceFileAuthors(ctx context.Context, comp entities.Competition, stat entities.CompetitionStat) error
	AnnounceMemberOutcome(ctx context.Context, comp entities.Competition, member entities.UserInfo, outcome entities.MemberOutcome) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
