package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"litgb/contexts/contest-core/competition-service/domain/entities"
	domainerrors "litgb/contexts/contest-core/competition-service/domain/errors"
	"litgb/contexts/contest-core/competition-service/ports"

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

func (r *Repository) CreateCompetition(ctx context.Context, comp entities.Competition) (entities.Competition, error) {
	row := competitionModelFromEntity(comp)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.Competition{}, r.logError("competition_repo_create_failed", err,
			"created_by", comp.CreatedBy,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) FindCompetition(ctx context.Context, id int64) (entities.Competition, error) {
	var row competitionModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Competition{}, domainerrors.ErrCompetitionNotFound
		}
		return entities.Competition{}, r.logError("competition_repo_find_failed", err, "competition_id", id)
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateProperties(ctx context.Context, comp entities.Competition) error {
	result := r.db.WithContext(ctx).Model(&competitionModel{}).
		Where("id = ? AND started IS NULL", comp.ID).
		Updates(map[string]any{
			"accept_files_deadline": comp.AcceptFilesDeadline.UTC(),
			"polling_deadline":      comp.PollingDeadline.UTC(),
			"min_text_size":         comp.MinTextSize,
			"max_text_size":         comp.MaxTextSize,
			"max_files_per_member":  comp.MaxFilesPerMember,
			"declared_member_count": comp.DeclaredMemberCount,
			"subject":               comp.Subject,
			"subject_ext":           comp.SubjectExt,
			"updated_at":            time.Now().UTC(),
		})
	if result.Error != nil {
		return r.logError("competition_repo_update_properties_failed", result.Error, "competition_id", comp.ID)
	}
	if result.RowsAffected == 0 {
		return r.resolveConflict(ctx, comp.ID)
	}
	return nil
}

func (r *Repository) AttachToChat(ctx context.Context, id int64, chatID int64) (entities.Competition, error) {
	return r.transition(ctx, id, "competition_repo_attach_failed",
		"id = ? AND chat_id IS NULL AND started IS NULL",
		map[string]any{"chat_id": chatID})
}

func (r *Repository) ConfirmCompetition(ctx context.Context, id int64) (entities.Competition, error) {
	now := time.Now().UTC()
	return r.transition(ctx, id, "competition_repo_confirm_failed",
		"id = ? AND confirmed IS NULL AND finished IS NULL",
		map[string]any{"confirmed": now})
}

func (r *Repository) StartCompetition(ctx context.Context, id int64) (entities.Competition, error) {
	now := time.Now().UTC()
	return r.transition(ctx, id, "competition_repo_start_failed",
		"id = ? AND confirmed IS NOT NULL AND started IS NULL AND finished IS NULL",
		map[string]any{"started": now})
}

func (r *Repository) SwitchToPollingStage(ctx context.Context, id int64) (entities.Competition, error) {
	now := time.Now().UTC()
	return r.transition(ctx, id, "competition_repo_switch_polling_failed",
		"id = ? AND started IS NOT NULL AND polling_started IS NULL AND finished IS NULL",
		map[string]any{"polling_started": now})
}

func (r *Repository) FinishCompetition(ctx context.Context, id int64, canceled bool) (entities.Competition, error) {
	now := time.Now().UTC()
	return r.transition(ctx, id, "competition_repo_finish_failed",
		"id = ? AND finished IS NULL",
		map[string]any{"finished": now, "canceled": canceled})
}

// transition performs a conditional stage update. A zero row count means
// either the competition is gone or a concurrent caller advanced the stage
// first; resolveConflict tells the two apart.
func (r *Repository) transition(
	ctx context.Context,
	id int64,
	failureEvent string,
	condition string,
	assignments map[string]any,
) (entities.Competition, error) {
	assignments["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&competitionModel{}).
		Where(condition, id).
		Updates(assignments)
	if result.Error != nil {
		return entities.Competition{}, r.logError(failureEvent, result.Error, "competition_id", id)
	}
	if result.RowsAffected == 0 {
		return entities.Competition{}, r.resolveConflict(ctx, id)
	}
	return r.FindCompetition(ctx, id)
}

func (r *Repository) resolveConflict(ctx context.Context, id int64) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&competitionModel{}).
		Where("id = ?", id).Count(&count).Error; err != nil {
		return r.logError("competition_repo_resolve_conflict_failed", err, "competition_id", id)
	}
	if count == 0 {
		return domainerrors.ErrCompetitionNotFound
	}
	return domainerrors.ErrStageConflict
}

func (r *Repository) SetPollingSchema(ctx context.Context, id int64, schemaID int64) error {
	result := r.db.WithContext(ctx).Model(&competitionModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"polling_scheme_id": schemaID, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return r.logError("competition_repo_set_schema_failed", result.Error, "competition_id", id)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCompetitionNotFound
	}
	return nil
}

func (r *Repository) GetCompetitionStat(ctx context.Context, id int64) (entities.CompetitionStat, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&competitionModel{}).
		Where("id = ?", id).Count(&count).Error; err != nil {
		return entities.CompetitionStat{}, r.logError("competition_repo_stat_failed", err, "competition_id", id)
	}
	if count == 0 {
		return entities.CompetitionStat{}, domainerrors.ErrCompetitionNotFound
	}

	var memberRows []memberModel
	if err := r.db.WithContext(ctx).
		Where("competition_id = ?", id).
		Order("joined_at ASC").
		Find(&memberRows).Error; err != nil {
		return entities.CompetitionStat{}, r.logError("competition_repo_stat_members_failed", err, "competition_id", id)
	}
	var fileRows []fileModel
	if err := r.db.WithContext(ctx).
		Where("competition_id = ?", id).
		Order("loaded_at ASC").
		Find(&fileRows).Error; err != nil {
		return entities.CompetitionStat{}, r.logError("competition_repo_stat_files_failed", err, "competition_id", id)
	}

	stat := entities.CompetitionStat{
		CompetitionID:  id,
		SubmittedFiles: make(map[int64][]entities.SubmittedFile),
	}
	for _, row := range memberRows {
		stat.RegisteredMembers = append(stat.RegisteredMembers, entities.UserInfo{
			ID:    row.UserID,
			Title: row.UserTitle,
		})
	}
	for _, row := range fileRows {
		stat.SubmittedFiles[row.OwnerID] = append(stat.SubmittedFiles[row.OwnerID], row.toEntity())
	}
	return stat, nil
}

func (r *Repository) JoinToCompetition(ctx context.Context, compID int64, member entities.UserInfo) error {
	row := memberModel{
		CompetitionID: compID,
		UserID:        member.ID,
		UserTitle:     member.Title,
		JoinedAt:      time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "competition_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("competition_repo_join_failed", create.Error,
			"competition_id", compID,
			"user_id", member.ID,
		)
	}
	return nil
}

func (r *Repository) UnregUser(ctx context.Context, compID int64, userID int64) error {
	result := r.db.WithContext(ctx).
		Where("competition_id = ? AND user_id = ?", compID, userID).
		Delete(&memberModel{})
	if result.Error != nil {
		return r.logError("competition_repo_unreg_failed", result.Error,
			"competition_id", compID,
			"user_id", userID,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMemberNotFound
	}
	return nil
}

func (r *Repository) ReleaseUserFiles(ctx context.Context, compID int64, userID int64) error {
	result := r.db.WithContext(ctx).
		Where("competition_id = ? AND owner_id = ?", compID, userID).
		Delete(&fileModel{})
	if result.Error != nil {
		return r.logError("competition_repo_release_files_failed", result.Error,
			"competition_id", compID,
			"user_id", userID,
		)
	}
	return nil
}

func (r *Repository) RemoveMembersWithoutFiles(ctx context.Context, compID int64) (entities.CompetitionStat, error) {
	result := r.db.WithContext(ctx).
		Where("competition_id = ?", compID).
		Where("user_id NOT IN (?)", r.db.Model(&fileModel{}).
			Select("owner_id").
			Where("competition_id = ?", compID)).
		Delete(&memberModel{})
	if result.Error != nil {
		return entities.CompetitionStat{}, r.logError("competition_repo_remove_idle_members_failed", result.Error,
			"competition_id", compID,
		)
	}
	return r.GetCompetitionStat(ctx, compID)
}

func (r *Repository) SubmitFile(ctx context.Context, compID int64, file entities.SubmittedFile) error {
	row := fileModel{
		FileID:        file.ID,
		CompetitionID: compID,
		OwnerID:       file.OwnerID,
		Title:         file.Title,
		TextSize:      file.TextSize,
		Locked:        file.Locked,
		LoadedAt:      file.Loaded.UTC(),
	}
	if row.LoadedAt.IsZero() {
		row.LoadedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrStageConflict
		}
		return r.logError("competition_repo_submit_file_failed", err,
			"competition_id", compID,
			"file_id", file.ID,
		)
	}
	return nil
}

func (r *Repository) SelectReadyToPollingStageCompetitions(ctx context.Context, now time.Time) ([]entities.Competition, error) {
	var rows []competitionModel
	err := r.db.WithContext(ctx).
		Where("started IS NOT NULL AND polling_started IS NULL AND finished IS NULL").
		Where("accept_files_deadline <= ?", now.UTC()).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("competition_repo_select_ready_failed", err)
	}
	return toCompetitionEntities(rows), nil
}

func (r *Repository) SelectPollingDeadlinedCompetitions(ctx context.Context, now time.Time) ([]entities.Competition, error) {
	var rows []competitionModel
	err := r.db.WithContext(ctx).
		Where("polling_started IS NOT NULL AND finished IS NULL").
		Where("polling_deadline <= ?", now.UTC()).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("competition_repo_select_deadlined_failed", err)
	}
	return toCompetitionEntities(rows), nil
}

func (r *Repository) ListChatCompetitions(ctx context.Context, chatID int64) ([]entities.Competition, error) {
	var rows []competitionModel
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("competition_repo_list_chat_failed", err, "chat_id", chatID)
	}
	return toCompetitionEntities(rows), nil
}

func (r *Repository) IncreaseUserWins(ctx context.Context, userID int64) error {
	return r.bumpStats(ctx, userID, "wins")
}

func (r *Repository) IncreaseUserHalfWins(ctx context.Context, userID int64) error {
	return r.bumpStats(ctx, userID, "half_wins")
}

func (r *Repository) IncreaseUserLosses(ctx context.Context, userID int64) error {
	return r.bumpStats(ctx, userID, "losses")
}

func (r *Repository) bumpStats(ctx context.Context, userID int64, column string) error {
	row := userStatsModel{UserID: userID}
	switch column {
	case "wins":
		row.Wins = 1
	case "half_wins":
		row.HalfWins = 1
	case "losses":
		row.Losses = 1
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			column: gorm.Expr(column+" + ?", 1),
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("competition_repo_bump_stats_failed", create.Error,
			"user_id", userID,
			"column", column,
		)
	}
	return nil
}

func (r *Repository) GetUserStats(ctx context.Context, userID int64) (ports.UserStats, error) {
	var row userStatsModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.UserStats{UserID: userID}, nil
		}
		return ports.UserStats{}, r.logError("competition_repo_get_stats_failed", err, "user_id", userID)
	}
	return ports.UserStats{
		UserID:   row.UserID,
		Wins:     row.Wins,
		HalfWins: row.HalfWins,
		Losses:   row.Losses,
	}, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "contest-core/competition-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("competition repository operation failed", fields...)
	return err
}

var (
	_ ports.CompetitionRepository = (*Repository)(nil)
	_ ports.UserStatsRepository   = (*Repository)(nil)
)
