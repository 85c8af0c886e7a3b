package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"litgb/contexts/contest-core/polling-engine/domain/entities"
	domainerrors "litgb/contexts/contest-core/polling-engine/domain/errors"
	"litgb/contexts/contest-core/polling-engine/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) SelectCompetitionBallots(ctx context.Context, compID int64) ([]entities.Ballot, error) {
	var rows []ballotModel
	if err := r.db.WithContext(ctx).
		Where("competition_id = ?", compID).
		Order("voter_id ASC, file_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("polling_repo_select_ballots_failed", err, "competition_id", compID)
	}
	items := make([]entities.Ballot, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SelectUserBallots(ctx context.Context, compID int64, voterID int64) ([]entities.Ballot, error) {
	var rows []ballotModel
	if err := r.db.WithContext(ctx).
		Where("competition_id = ? AND voter_id = ?", compID, voterID).
		Order("file_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("polling_repo_select_user_ballots_failed", err,
			"competition_id", compID,
			"voter_id", voterID,
		)
	}
	items := make([]entities.Ballot, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// ReplaceUserBallots swaps the voter's ballot set in one transaction so a
// concurrent tally never sees a half-applied revote.
func (r *Repository) ReplaceUserBallots(ctx context.Context, compID int64, voterID int64, ballots []entities.Ballot) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("competition_id = ? AND voter_id = ?", compID, voterID).
			Delete(&ballotModel{}).Error; err != nil {
			return err
		}
		for _, ballot := range ballots {
			row := ballotModelFromEntity(ballot)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("polling_repo_replace_ballots_failed", err,
			"competition_id", compID,
			"voter_id", voterID,
		)
	}
	return nil
}

func (r *Repository) DeleteUserBallots(ctx context.Context, compID int64, voterID int64) error {
	if err := r.db.WithContext(ctx).
		Where("competition_id = ? AND voter_id = ?", compID, voterID).
		Delete(&ballotModel{}).Error; err != nil {
		return r.logError("polling_repo_delete_ballots_failed", err,
			"competition_id", compID,
			"voter_id", voterID,
		)
	}
	return nil
}

func (r *Repository) CountDistinctVoters(ctx context.Context, compID int64) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&ballotModel{}).
		Where("competition_id = ?", compID).
		Distinct("voter_id").
		Count(&count).Error; err != nil {
		return 0, r.logError("polling_repo_count_voters_failed", err, "competition_id", compID)
	}
	return int(count), nil
}

func (r *Repository) GetDraft(ctx context.Context, compID int64, voterID int64) (entities.RankedDraft, error) {
	var row draftModel
	err := r.db.WithContext(ctx).
		Where("competition_id = ? AND voter_id = ?", compID, voterID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.RankedDraft{}, domainerrors.ErrDraftNotFound
		}
		return entities.RankedDraft{}, r.logError("polling_repo_get_draft_failed", err,
			"competition_id", compID,
			"voter_id", voterID,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveDraft(ctx context.Context, draft entities.RankedDraft) error {
	row := draftModelFromEntity(draft)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "competition_id"}, {Name: "voter_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"first_file_id":  row.FirstFileID,
			"second_file_id": row.SecondFileID,
			"updated_at":     row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("polling_repo_save_draft_failed", create.Error,
			"competition_id", draft.CompetitionID,
			"voter_id", draft.VoterID,
		)
	}
	return nil
}

func (r *Repository) DeleteDraft(ctx context.Context, compID int64, voterID int64) error {
	if err := r.db.WithContext(ctx).
		Where("competition_id = ? AND voter_id = ?", compID, voterID).
		Delete(&draftModel{}).Error; err != nil {
		return r.logError("polling_repo_delete_draft_failed", err,
			"competition_id", compID,
			"voter_id", voterID,
		)
	}
	return nil
}

// SaveFileResults is write-once per competition: a second call after
// finalization is a conflict.
func (r *Repository) SaveFileResults(ctx context.Context, compID int64, results []entities.FileResult) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&fileResultModel{}).
			Where("competition_id = ?", compID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domainerrors.ErrConflict
		}
		for _, result := range results {
			row := fileResultModel{
				CompetitionID: compID,
				FileID:        result.FileID,
				Position:      result.Position,
				Score:         result.Score,
				CreatedAt:     time.Now().UTC(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrConflict) || isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("polling_repo_save_results_failed", err, "competition_id", compID)
	}
	return nil
}

func (r *Repository) GetFileResults(ctx context.Context, compID int64) ([]entities.FileResult, error) {
	var rows []fileResultModel
	if err := r.db.WithContext(ctx).
		Where("competition_id = ?", compID).
		Order("position ASC, file_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("polling_repo_get_results_failed", err, "competition_id", compID)
	}
	if len(rows) == 0 {
		return nil, domainerrors.ErrResultsNotFound
	}
	items := make([]entities.FileResult, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.FileResult{
			FileID:   row.FileID,
			Position: row.Position,
			Score:    row.Score,
		})
	}
	return items, nil
}

func (r *Repository) ListSchemaConfigs(ctx context.Context) ([]entities.SchemaInfo, error) {
	var rows []schemaConfigModel
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("polling_repo_list_schemas_failed", err)
	}
	items := make([]entities.SchemaInfo, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "contest-core/polling-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("polling repository operation failed", fields...)
	return err
}

type ballotModel struct {
	CompetitionID int64     `gorm:"column:competition_id;primaryKey"`
	VoterID       int64     `gorm:"column:voter_id;primaryKey"`
	FileID        int64     `gorm:"column:file_id;primaryKey"`
	Points        int       `gorm:"column:points"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (ballotModel) TableName() string {
	return "polling_ballots"
}

func ballotModelFromEntity(ballot entities.Ballot) ballotModel {
	row := ballotModel{
		CompetitionID: ballot.CompetitionID,
		VoterID:       ballot.VoterID,
		FileID:        ballot.FileID,
		Points:        ballot.Points,
		CreatedAt:     ballot.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m ballotModel) toEntity() entities.Ballot {
	return entities.Ballot{
		CompetitionID: m.CompetitionID,
		VoterID:       m.VoterID,
		FileID:        m.FileID,
		Points:        m.Points,
		CreatedAt:     m.CreatedAt.UTC(),
	}
}

type draftModel struct {
	CompetitionID int64     `gorm:"column:competition_id;primaryKey"`
	VoterID       int64     `gorm:"column:voter_id;primaryKey"`
	FirstFileID   int64     `gorm:"column:first_file_id"`
	SecondFileID  *int64    `gorm:"column:second_file_id"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (draftModel) TableName() string {
	return "polling_drafts"
}

func draftModelFromEntity(draft entities.RankedDraft) draftModel {
	row := draftModel{
		CompetitionID: draft.CompetitionID,
		VoterID:       draft.VoterID,
		FirstFileID:   draft.FirstFileID,
		SecondFileID:  draft.SecondFileID,
		UpdatedAt:     draft.UpdatedAt.UTC(),
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now().UTC()
	}
	return row
}

func (m draftModel) toEntity() entities.RankedDraft {
	return entities.RankedDraft{
		CompetitionID: m.CompetitionID,
		VoterID:       m.VoterID,
		FirstFileID:   m.FirstFileID,
		SecondFileID:  m.SecondFileID,
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type fileResultModel struct {
	CompetitionID int64     `gorm:"column:competition_id;primaryKey"`
	FileID        int64     `gorm:"column:file_id;primaryKey"`
	Position      int       `gorm:"column:position"`
	Score         int       `gorm:"column:score"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (fileResultModel) TableName() string {
	return "polling_file_results"
}

type schemaConfigModel struct {
	ID                 int64  `gorm:"column:id;primaryKey"`
	HandlerName        string `gorm:"column:handler_name"`
	Title              string `gorm:"column:title"`
	Description        string `gorm:"column:description"`
	ForOpenType        bool   `gorm:"column:for_open_type"`
	MinimumMemberCount int    `gorm:"column:minimum_member_count"`
	MaximumMemberCount int    `gorm:"column:maximum_member_count"`
}

func (schemaConfigModel) TableName() string {
	return "polling_schemas"
}

func (m schemaConfigModel) toEntity() entities.SchemaInfo {
	return entities.SchemaInfo{
		ID:                 m.ID,
		HandlerName:        m.HandlerName,
		Title:              m.Title,
		Description:        m.Description,
		ForOpenType:        m.ForOpenType,
		MinimumMemberCount: m.MinimumMemberCount,
		MaximumMemberCount: m.MaximumMemberCount,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var (
	_ ports.BallotRepository   = (*Repository)(nil)
	_ ports.DraftRepository    = (*Repository)(nil)
	_ ports.ResultRepository   = (*Repository)(nil)
	_ ports.SchemaConfigSource = (*Repository)(nil)
)
