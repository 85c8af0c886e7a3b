package schemas

import (
	"litgb/contexts/contest-core/polling-engine/domain/entities"
	domainerrors "litgb/contexts/contest-core/polling-engine/domain/errors"
)

const TrielHandlerName = "default_triel"

// Triel scores a three-member closed competition. Voters fill a two-slot
// ranked draft; the first slot is worth two points, the second one point.
// A voter who is itself a member casts a single one-point ballot instead.
type Triel struct {
	config entities.SchemaInfo
}

func NewTriel(config entities.SchemaInfo) Triel {
	if config.MinimumMemberCount == 0 {
		config.MinimumMemberCount = 3
	}
	if config.MaximumMemberCount == 0 {
		config.MaximumMemberCount = 3
	}
	return Triel{config: config}
}

func (Triel) HandlerName() string { return TrielHandlerName }

func (t Triel) Info() entities.SchemaInfo { return t.config }

func (t Triel) MinimumMemberCount() int { return t.config.MinimumMemberCount }

func (t Triel) MaximumMemberCount() int { return t.config.MaximumMemberCount }

func (Triel) ForOpenType() bool { return false }

func (Triel) RankedBallot() bool { return true }

func (t Triel) CalcPollingResults(stat entities.SubmissionStat, ballots []entities.Ballot) (entities.PollingResults, error) {
	if len(stat.Files) != 3 {
		return entities.PollingResults{}, domainerrors.Rule(
			"triel requires exactly three submitted files, got %d", len(stat.Files))
	}
	return tallyAndRank(stat, ballots), nil
}

var _ PollingSchema = Triel{}
