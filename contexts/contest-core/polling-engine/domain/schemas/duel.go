package schemas

import (
	"litgb/contexts/contest-core/polling-engine/domain/entities"
	domainerrors "litgb/contexts/contest-core/polling-engine/domain/errors"
)

const DuelHandlerName = "default_duel"

// Duel scores a two-member closed competition. Every voter casts a single
// one-point ballot for one of the two files.
type Duel struct {
	config entities.SchemaInfo
}

// NewDuel fills the applicability window from the config row; an unset
// bound falls back to the duel's fixed pair.
func NewDuel(config entities.SchemaInfo) Duel {
	if config.MinimumMemberCount == 0 {
		config.MinimumMemberCount = 2
	}
	if config.MaximumMemberCount == 0 {
		config.MaximumMemberCount = 2
	}
	return Duel{config: config}
}

func (Duel) HandlerName() string { return DuelHandlerName }

func (d Duel) Info() entities.SchemaInfo { return d.config }

func (d Duel) MinimumMemberCount() int { return d.config.MinimumMemberCount }

func (d Duel) MaximumMemberCount() int { return d.config.MaximumMemberCount }

func (Duel) ForOpenType() bool { return false }

func (Duel) RankedBallot() bool { return false }

func (d Duel) CalcPollingResults(stat entities.SubmissionStat, ballots []entities.Ballot) (entities.PollingResults, error) {
	if len(stat.Files) != 2 {
		return entities.PollingResults{}, domainerrors.Rule(
			"duel requires exactly two submitted files, got %d", len(stat.Files))
	}
	return tallyAndRank(stat, ballots), nil
}

var _ PollingSchema = Duel{}
