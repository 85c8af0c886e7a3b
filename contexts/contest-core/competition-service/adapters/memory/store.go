package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"litgb/contexts/contest-core/competition-service/domain/entities"
	domainerrors "litgb/contexts/contest-core/competition-service/domain/errors"
	"litgb/contexts/contest-core/competition-service/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory competition repository used by tests and the
// in-memory module wiring. Stage transitions follow the same conditional
// semantics as the postgres adapter: a transition whose precondition row
// state is gone returns ErrStageConflict.
type Store struct {
	mu sync.RWMutex

	nextID       int64
	competitions map[int64]entities.Competition
	members      map[int64][]entities.UserInfo
	files        map[int64]map[int64][]entities.SubmittedFile
	userStats    map[int64]ports.UserStats
	outbox       map[string]outboxRecord
}

func NewStore(seed []entities.Competition) *Store {
	store := &Store{
		nextID:       1,
		competitions: make(map[int64]entities.Competition, len(seed)),
		members:      make(map[int64][]entities.UserInfo),
		files:        make(map[int64]map[int64][]entities.SubmittedFile),
		userStats:    make(map[int64]ports.UserStats),
		outbox:       make(map[string]outboxRecord),
	}
	for _, comp := range seed {
		store.competitions[comp.ID] = comp
		if comp.ID >= store.nextID {
			store.nextID = comp.ID + 1
		}
	}
	return store
}

func (s *Store) CreateCompetition(_ context.Context, comp entities.Competition) (entities.Competition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comp.ID = s.nextID
	s.nextID++
	s.competitions[comp.ID] = comp
	return comp, nil
}

func (s *Store) FindCompetition(_ context.Context, id int64) (entities.Competition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comp, ok := s.competitions[id]
	if !ok {
		return entities.Competition{}, domainerrors.ErrCompetitionNotFound
	}
	return comp, nil
}

func (s *Store) UpdateProperties(_ context.Context, comp entities.Competition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.competitions[comp.ID]
	if !ok {
		return domainerrors.ErrCompetitionNotFound
	}
	if existing.IsStarted() {
		return domainerrors.ErrStageConflict
	}
	existing.AcceptFilesDeadline = comp.AcceptFilesDeadline.UTC()
	existing.PollingDeadline = comp.PollingDeadline.UTC()
	existing.MinTextSize = comp.MinTextSize
	existing.MaxTextSize = comp.MaxTextSize
	existing.MaxFilesPerMember = comp.MaxFilesPerMember
	existing.DeclaredMemberCount = comp.DeclaredMemberCount
	existing.Subject = comp.Subject
	existing.SubjectExt = comp.SubjectExt
	existing.UpdatedAt = comp.UpdatedAt.UTC()
	s.competitions[comp.ID] = existing
	return nil
}

func (s *Store) AttachToChat(_ context.Context, id int64, chatID int64) (entities.Competition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comp, ok := s.competitions[id]
	if !ok {
		return entities.Competition{}, domainerrors.ErrCompetitionNotFound
	}
	if comp.IsAttached() || comp.IsStarted() {
		return entities.Competition{}, domainerrors.ErrStageConflict
	}
	comp.ChatID = &chatID
	comp.UpdatedAt = time.Now().UTC()
	s.competitions[id] = comp
	return comp, nil
}

func (s *Store) ConfirmCompetition(_ context.Context, id int64) (entities.Competition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comp, ok := s.competitions[id]
	if !ok {
		return entities.Competition{}, domainerrors.ErrCompetitionNotFound
	}
	if comp.IsConfirmed() || comp.IsFinished() {
		return entities.Competition{}, domainerrors.ErrStageConflict
	}
	now := time.Now().UTC()
	comp.Confirmed = &now
	comp.UpdatedAt = now
	s.competitions[id] = comp
	return comp, nil
}

func (s *Store) StartCompetition(_ context.Context, id int64) (entities.Competition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comp, ok := s.competitions[id]
	if !ok {
		return entities.Competition{}, domainerrors.ErrCompetitionNotFound
	}
	if !comp.IsConfirmed() || comp.IsStarted() || comp.IsFinished() {
		return entities.Competition{}, domainerrors.ErrStageConflict
	}
	now := time.Now().UTC()
	comp.Started = &now
	comp.UpdatedAt = now
	s.competitions[id] = comp
	return comp, nil
}

func (s *Store) SwitchToPollingStage(_ context.Context, id int64) (entities.Competition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comp, ok := s.competitions[id]
	if !ok {
		return entities.Competition{}, domainerrors.ErrCompetitionNotFound
	}
	if !comp.IsStarted() || comp.IsPollingStarted() || comp.IsFinished() {
		return entities.Competition{}, domainerrors.ErrStageConflict
	}
	now := time.Now().UTC()
	comp.PollingStarted = &now
	comp.UpdatedAt = now
	s.competitions[id] = comp
	return comp, nil
}

func (s *Store) FinishCompetition(_ context.Context, id int64, canceled bool) (entities.Competition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comp, ok := s.competitions[id]
	if !ok {
		return entities.Competition{}, domainerrors.ErrCompetitionNotFound
	}
	if comp.IsFinished() {
		return entities.Competition{}, domainerrors.ErrStageConflict
	}
	now := time.Now().UTC()
	comp.Finished = &now
	comp.Canceled = canceled
	comp.UpdatedAt = now
	s.competitions[id] = comp
	return comp, nil
}

func (s *Store) SetPollingSchema(_ context.Context, id int64, schemaID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comp, ok := s.competitions[id]
	if !ok {
		return domainerrors.ErrCompetitionNotFound
	}
	comp.PollingSchemeID = schemaID
	comp.UpdatedAt = time.Now().UTC()
	s.competitions[id] = comp
	return nil
}

func (s *Store) GetCompetitionStat(_ context.Context, id int64) (entities.CompetitionStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.competitions[id]; !ok {
		return entities.CompetitionStat{}, domainerrors.ErrCompetitionNotFound
	}
	return s.statLocked(id), nil
}

func (s *Store) statLocked(id int64) entities.CompetitionStat {
	stat := entities.CompetitionStat{
		CompetitionID:  id,
		SubmittedFiles: make(map[int64][]entities.SubmittedFile),
	}
	stat.RegisteredMembers = append(stat.RegisteredMembers, s.members[id]...)
	for ownerID, files := range s.files[id] {
		stat.SubmittedFiles[ownerID] = append([]entities.SubmittedFile(nil), files...)
	}
	return stat
}

func (s *Store) JoinToCompetition(_ context.Context, compID int64, member entities.UserInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.competitions[compID]; !ok {
		return domainerrors.ErrCompetitionNotFound
	}
	for _, existing := range s.members[compID] {
		if existing.ID == member.ID {
			return nil
		}
	}
	s.members[compID] = append(s.members[compID], member)
	return nil
}

func (s *Store) UnregUser(_ context.Context, compID int64, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := s.members[compID]
	for index, member := range members {
		if member.ID == userID {
			s.members[compID] = append(members[:index], members[index+1:]...)
			return nil
		}
	}
	return domainerrors.ErrMemberNotFound
}

func (s *Store) ReleaseUserFiles(_ context.Context, compID int64, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owners, ok := s.files[compID]; ok {
		delete(owners, userID)
	}
	return nil
}

func (s *Store) RemoveMembersWithoutFiles(_ context.Context, compID int64) (entities.CompetitionStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.competitions[compID]; !ok {
		return entities.CompetitionStat{}, domainerrors.ErrCompetitionNotFound
	}
	kept := make([]entities.UserInfo, 0, len(s.members[compID]))
	for _, member := range s.members[compID] {
		if len(s.files[compID][member.ID]) > 0 {
			kept = append(kept, member)
		}
	}
	s.members[compID] = kept
	return s.statLocked(compID), nil
}

func (s *Store) SubmitFile(_ context.Context, compID int64, file entities.SubmittedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.competitions[compID]; !ok {
		return domainerrors.ErrCompetitionNotFound
	}
	if s.files[compID] == nil {
		s.files[compID] = make(map[int64][]entities.SubmittedFile)
	}
	for _, existing := range s.files[compID][file.OwnerID] {
		if existing.ID == file.ID {
			return domainerrors.ErrStageConflict
		}
	}
	s.files[compID][file.OwnerID] = append(s.files[compID][file.OwnerID], file)
	return nil
}

func (s *Store) SelectReadyToPollingStageCompetitions(_ context.Context, now time.Time) ([]entities.Competition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Competition, 0)
	for _, comp := range s.competitions {
		if comp.IsStarted() && !comp.IsPollingStarted() && !comp.IsFinished() &&
			!comp.AcceptFilesDeadline.After(now.UTC()) {
			items = append(items, comp)
		}
	}
	sortByID(items)
	return items, nil
}

func (s *Store) SelectPollingDeadlinedCompetitions(_ context.Context, now time.Time) ([]entities.Competition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Competition, 0)
	for _, comp := range s.competitions {
		if comp.IsPollingStarted() && !comp.IsFinished() &&
			!comp.PollingDeadline.After(now.UTC()) {
			items = append(items, comp)
		}
	}
	sortByID(items)
	return items, nil
}

func (s *Store) ListChatCompetitions(_ context.Context, chatID int64) ([]entities.Competition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Competition, 0)
	for _, comp := range s.competitions {
		if comp.ChatID != nil && *comp.ChatID == chatID {
			items = append(items, comp)
		}
	}
	sortByID(items)
	return items, nil
}

func (s *Store) IncreaseUserWins(_ context.Context, userID int64) error {
	return s.bumpStats(userID, func(stats *ports.UserStats) { stats.Wins++ })
}

func (s *Store) IncreaseUserHalfWins(_ context.Context, userID int64) error {
	return s.bumpStats(userID, func(stats *ports.UserStats) { stats.HalfWins++ })
}

func (s *Store) IncreaseUserLosses(_ context.Context, userID int64) error {
	return s.bumpStats(userID, func(stats *ports.UserStats) { stats.Losses++ })
}

func (s *Store) bumpStats(userID int64, apply func(*ports.UserStats)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.userStats[userID]
	stats.UserID = userID
	apply(&stats)
	s.userStats[userID] = stats
	return nil
}

func (s *Store) GetUserStats(_ context.Context, userID int64) (ports.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.userStats[userID]
	if !ok {
		return ports.UserStats{UserID: userID}, nil
	}
	return stats, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrStageConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrStageConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func sortByID(items []entities.Competition) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
}

var (
	_ ports.CompetitionRepository = (*Store)(nil)
	_ ports.UserStatsRepository   = (*Store)(nil)
	_ ports.OutboxWriter          = (*Store)(nil)
	_ ports.OutboxRepository      = (*Store)(nil)
	_ ports.Clock                 = (*Store)(nil)
	_ ports.IDGenerator           = (*Store)(nil)
)
