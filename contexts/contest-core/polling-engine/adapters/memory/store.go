package memory

import (
	"context"
	"sort"
	"sync"

	"litgb/contexts/contest-core/polling-engine/domain/entities"
	domainerrors "litgb/contexts/contest-core/polling-engine/domain/errors"
	"litgb/contexts/contest-core/polling-engine/domain/schemas"
	"litgb/contexts/contest-core/polling-engine/ports"
)

type ballotKey struct {
	compID  int64
	voterID int64
}

// Store is the in-memory ballot store used by tests and the in-memory module
// wiring.
type Store struct {
	mu sync.RWMutex

	ballots map[ballotKey][]entities.Ballot
	drafts  map[ballotKey]entities.RankedDraft
	results map[int64][]entities.FileResult
	configs []entities.SchemaInfo
}

// DefaultSchemaConfigs is the stock schema set: one variant per handler, in
// selection order.
func DefaultSchemaConfigs() []entities.SchemaInfo {
	return []entities.SchemaInfo{
		{ID: 1, HandlerName: schemas.DuelHandlerName, Title: "Duel", Description: "two members, single-choice audience vote", MinimumMemberCount: 2, MaximumMemberCount: 2},
		{ID: 2, HandlerName: schemas.TrielHandlerName, Title: "Triel", Description: "three members, two-slot ranked vote", MinimumMemberCount: 3, MaximumMemberCount: 3},
		{ID: 3, HandlerName: schemas.Closed4HandlerName, Title: "Closed 4+", Description: "four or more members, two-slot ranked vote", MinimumMemberCount: 4},
		{ID: 4, HandlerName: schemas.OpenHandlerName, Title: "Open", Description: "open competition, two-slot ranked vote", ForOpenType: true, MinimumMemberCount: 3},
	}
}

func NewStore(configs []entities.SchemaInfo) *Store {
	if len(configs) == 0 {
		configs = DefaultSchemaConfigs()
	}
	return &Store{
		ballots: make(map[ballotKey][]entities.Ballot),
		drafts:  make(map[ballotKey]entities.RankedDraft),
		results: make(map[int64][]entities.FileResult),
		configs: configs,
	}
}

func (s *Store) SelectCompetitionBallots(_ context.Context, compID int64) ([]entities.Ballot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Ballot, 0)
	for key, ballots := range s.ballots {
		if key.compID == compID {
			items = append(items, ballots...)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].VoterID != items[j].VoterID {
			return items[i].VoterID < items[j].VoterID
		}
		return items[i].FileID < items[j].FileID
	})
	return items, nil
}

func (s *Store) SelectUserBallots(_ context.Context, compID int64, voterID int64) ([]entities.Ballot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ballots := s.ballots[ballotKey{compID, voterID}]
	return append([]entities.Ballot(nil), ballots...), nil
}

func (s *Store) ReplaceUserBallots(_ context.Context, compID int64, voterID int64, ballots []entities.Ballot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ballots[ballotKey{compID, voterID}] = append([]entities.Ballot(nil), ballots...)
	return nil
}

func (s *Store) DeleteUserBallots(_ context.Context, compID int64, voterID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ballots, ballotKey{compID, voterID})
	return nil
}

func (s *Store) CountDistinctVoters(_ context.Context, compID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for key, ballots := range s.ballots {
		if key.compID == compID && len(ballots) > 0 {
			count++
		}
	}
	return count, nil
}

func (s *Store) GetDraft(_ context.Context, compID int64, voterID int64) (entities.RankedDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.drafts[ballotKey{compID, voterID}]
	if !ok {
		return entities.RankedDraft{}, domainerrors.ErrDraftNotFound
	}
	return draft, nil
}

func (s *Store) SaveDraft(_ context.Context, draft entities.RankedDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[ballotKey{draft.CompetitionID, draft.VoterID}] = draft
	return nil
}

func (s *Store) DeleteDraft(_ context.Context, compID int64, voterID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, ballotKey{compID, voterID})
	return nil
}

func (s *Store) SaveFileResults(_ context.Context, compID int64, results []entities.FileResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.results[compID]; exists {
		return domainerrors.ErrConflict
	}
	s.results[compID] = append([]entities.FileResult(nil), results...)
	return nil
}

func (s *Store) GetFileResults(_ context.Context, compID int64) ([]entities.FileResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results, ok := s.results[compID]
	if !ok {
		return nil, domainerrors.ErrResultsNotFound
	}
	return append([]entities.FileResult(nil), results...), nil
}

func (s *Store) ListSchemaConfigs(_ context.Context) ([]entities.SchemaInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.SchemaInfo(nil), s.configs...), nil
}

var (
	_ ports.BallotRepository   = (*Store)(nil)
	_ ports.DraftRepository    = (*Store)(nil)
	_ ports.ResultRepository   = (*Store)(nil)
	_ ports.SchemaConfigSource = (*Store)(nil)
)
