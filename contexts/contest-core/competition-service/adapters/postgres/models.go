package postgresadapter

import (
	"errors"
	"time"

	"litgb/contexts/contest-core/competition-service/domain/entities"

	"github.com/jackc/pgx/v5/pgconn"
)

type competitionModel struct {
	ID                  int64      `gorm:"column:id;primaryKey;autoIncrement"`
	ChatID              *int64     `gorm:"column:chat_id"`
	CreatedBy           int64      `gorm:"column:created_by"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	Confirmed           *time.Time `gorm:"column:confirmed"`
	Started             *time.Time `gorm:"column:started"`
	PollingStarted      *time.Time `gorm:"column:polling_started"`
	Finished            *time.Time `gorm:"column:finished"`
	Canceled            bool       `gorm:"column:canceled"`
	AcceptFilesDeadline time.Time  `gorm:"column:accept_files_deadline"`
	PollingDeadline     time.Time  `gorm:"column:polling_deadline"`
	EntryToken          string     `gorm:"column:entry_token"`
	MinTextSize         int        `gorm:"column:min_text_size"`
	MaxTextSize         int        `gorm:"column:max_text_size"`
	MaxFilesPerMember   int        `gorm:"column:max_files_per_member"`
	DeclaredMemberCount *int       `gorm:"column:declared_member_count"`
	Subject             string     `gorm:"column:subject"`
	SubjectExt          string     `gorm:"column:subject_ext"`
	PollingSchemeID     int64      `gorm:"column:polling_scheme_id"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
}

func (competitionModel) TableName() string {
	return "competitions"
}

func competitionModelFromEntity(comp entities.Competition) competitionModel {
	row := competitionModel{
		ID:                  comp.ID,
		ChatID:              comp.ChatID,
		CreatedBy:           comp.CreatedBy,
		CreatedAt:           comp.Created.UTC(),
		Confirmed:           normalizeOptionalTime(comp.Confirmed),
		Started:             normalizeOptionalTime(comp.Started),
		PollingStarted:      normalizeOptionalTime(comp.PollingStarted),
		Finished:            normalizeOptionalTime(comp.Finished),
		Canceled:            comp.Canceled,
		AcceptFilesDeadline: comp.AcceptFilesDeadline.UTC(),
		PollingDeadline:     comp.PollingDeadline.UTC(),
		EntryToken:          comp.EntryToken,
		MinTextSize:         comp.MinTextSize,
		MaxTextSize:         comp.MaxTextSize,
		MaxFilesPerMember:   comp.MaxFilesPerMember,
		DeclaredMemberCount: comp.DeclaredMemberCount,
		Subject:             comp.Subject,
		SubjectExt:          comp.SubjectExt,
		PollingSchemeID:     comp.PollingSchemeID,
		UpdatedAt:           comp.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m competitionModel) toEntity() entities.Competition {
	return entities.Competition{
		ID:                  m.ID,
		ChatID:              m.ChatID,
		CreatedBy:           m.CreatedBy,
		Created:             m.CreatedAt.UTC(),
		Confirmed:           normalizeOptionalTime(m.Confirmed),
		Started:             normalizeOptionalTime(m.Started),
		PollingStarted:      normalizeOptionalTime(m.PollingStarted),
		Finished:            normalizeOptionalTime(m.Finished),
		Canceled:            m.Canceled,
		AcceptFilesDeadline: m.AcceptFilesDeadline.UTC(),
		PollingDeadline:     m.PollingDeadline.UTC(),
		EntryToken:          m.EntryToken,
		MinTextSize:         m.MinTextSize,
		MaxTextSize:         m.MaxTextSize,
		MaxFilesPerMember:   m.MaxFilesPerMember,
		DeclaredMemberCount: m.DeclaredMemberCount,
		Subject:             m.Subject,
		SubjectExt:          m.SubjectExt,
		PollingSchemeID:     m.PollingSchemeID,
		UpdatedAt:           m.UpdatedAt.UTC(),
	}
}

type memberModel struct {
	CompetitionID int64     `gorm:"column:competition_id;primaryKey"`
	UserID        int64     `gorm:"column:user_id;primaryKey"`
	UserTitle     string    `gorm:"column:user_title"`
	JoinedAt      time.Time `gorm:"column:joined_at"`
}

func (memberModel) TableName() string {
	return "competition_members"
}

type fileModel struct {
	FileID        int64     `gorm:"column:file_id;primaryKey"`
	CompetitionID int64     `gorm:"column:competition_id"`
	OwnerID       int64     `gorm:"column:owner_id"`
	Title         string    `gorm:"column:title"`
	TextSize      int       `gorm:"column:text_size"`
	Locked        bool      `gorm:"column:locked"`
	LoadedAt      time.Time `gorm:"column:loaded_at"`
}

func (fileModel) TableName() string {
	return "competition_files"
}

func (m fileModel) toEntity() entities.SubmittedFile {
	return entities.SubmittedFile{
		ID:       m.FileID,
		OwnerID:  m.OwnerID,
		Title:    m.Title,
		TextSize: m.TextSize,
		Locked:   m.Locked,
		Loaded:   m.LoadedAt.UTC(),
	}
}

type userStatsModel struct {
	UserID   int64 `gorm:"column:user_id;primaryKey"`
	Wins     int   `gorm:"column:wins"`
	HalfWins int   `gorm:"column:half_wins"`
	Losses   int   `gorm:"column:losses"`
}

func (userStatsModel) TableName() string {
	return "user_stats"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "competition_outbox"
}

func toCompetitionEntities(rows []competitionModel) []entities.Competition {
	items := make([]entities.Competition, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
