package schemas

import (
	"sort"

	"litgb/contexts/contest-core/polling-engine/domain/entities"
)

// Fixed ballot weights for the ranked (two-slot) schemas and the distinct
// voter cap that bounds duel tally cost.
const (
	FirstSlotPoints  = 2
	SecondSlotPoints = 1
	MemberVotePoints = 1

	DuelMaxDistinctVoters = 100
)

// PollingSchema is the common scoring contract. Implementations are pure:
// they read the supplied ballots and submission stat and never mutate the
// competition.
type PollingSchema interface {
	HandlerName() string
	Info() entities.SchemaInfo
	MinimumMemberCount() int
	MaximumMemberCount() int
	ForOpenType() bool
	// RankedBallot reports whether voters build a two-slot ranked draft
	// instead of a single-choice ballot.
	RankedBallot() bool
	CalcPollingResults(stat entities.SubmissionStat, ballots []entities.Ballot) (entities.PollingResults, error)
}

// tallyAndRank sums ballot points per submitted file and derives the rating
// table plus the winner/half-winner/loser split. Files with equal scores
// share a rating position. A zero top score yields no winners and no losers.
func tallyAndRank(stat entities.SubmissionStat, ballots []entities.Ballot) entities.PollingResults {
	scores := make(map[int64]int, len(stat.Files))
	for _, file := range stat.Files {
		scores[file.FileID] = 0
	}
	for _, ballot := range ballots {
		if _, known := scores[ballot.FileID]; known {
			scores[ballot.FileID] += ballot.Points
		}
	}

	ranked := make([]entities.SubmissionView, len(stat.Files))
	copy(ranked, stat.Files)
	sort.SliceStable(ranked, func(i, j int) bool {
		if scores[ranked[i].FileID] != scores[ranked[j].FileID] {
			return scores[ranked[i].FileID] > scores[ranked[j].FileID]
		}
		return ranked[i].FileID < ranked[j].FileID
	})

	results := entities.PollingResults{
		RatingTable: make([]entities.FileResult, 0, len(ranked)),
	}
	position := 0
	previousScore := 0
	for index, file := range ranked {
		score := scores[file.FileID]
		if index == 0 || score != previousScore {
			position = index + 1
			previousScore = score
		}
		results.RatingTable = append(results.RatingTable, entities.FileResult{
			FileID:   file.FileID,
			Position: position,
			Score:    score,
		})
	}

	if len(ranked) == 0 {
		return results
	}
	topScore := scores[ranked[0].FileID]
	if topScore <= 0 {
		return results
	}

	topOwners := map[int64]struct{}{}
	for _, file := range ranked {
		if scores[file.FileID] == topScore {
			topOwners[file.OwnerID] = struct{}{}
		}
	}
	seen := map[int64]struct{}{}
	for _, file := range ranked {
		if _, dup := seen[file.OwnerID]; dup {
			continue
		}
		seen[file.OwnerID] = struct{}{}
		if _, top := topOwners[file.OwnerID]; top {
			continue
		}
		results.Losers = append(results.Losers, file.OwnerID)
	}
	winners := make([]int64, 0, len(topOwners))
	for _, file := range ranked {
		if scores[file.FileID] != topScore {
			continue
		}
		if containsID(winners, file.OwnerID) {
			continue
		}
		winners = append(winners, file.OwnerID)
	}
	if len(winners) == 1 {
		results.Winners = winners
	} else {
		results.HalfWinners = winners
	}
	return results
}

func containsID(items []int64, id int64) bool {
	for _, item := range items {
		if item == id {
			return true
		}
	}
	return false
}
