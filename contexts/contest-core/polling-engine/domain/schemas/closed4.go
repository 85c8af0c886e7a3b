package schemas

import (
	"litgb/contexts/contest-core/polling-engine/domain/entities"
	domainerrors "litgb/contexts/contest-core/polling-engine/domain/errors"
)

const Closed4HandlerName = "default_closed4"

// Closed4 scores closed competitions of four or more members with the same
// two-slot ranked draft as Triel.
type Closed4 struct {
	config entities.SchemaInfo
}

// NewClosed4 fills the window from the config row; maximum 0 stays
// unbounded.
func NewClosed4(config entities.SchemaInfo) Closed4 {
	if config.MinimumMemberCount == 0 {
		config.MinimumMemberCount = 4
	}
	return Closed4{config: config}
}

func (Closed4) HandlerName() string { return Closed4HandlerName }

func (c Closed4) Info() entities.SchemaInfo { return c.config }

func (c Closed4) MinimumMemberCount() int { return c.config.MinimumMemberCount }

func (c Closed4) MaximumMemberCount() int { return c.config.MaximumMemberCount }

func (Closed4) ForOpenType() bool { return false }

func (Closed4) RankedBallot() bool { return true }

func (c Closed4) CalcPollingResults(stat entities.SubmissionStat, ballots []entities.Ballot) (entities.PollingResults, error) {
	if len(stat.Files) < 4 {
		return entities.PollingResults{}, domainerrors.Rule(
			"closed4 requires at least four submitted files, got %d", len(stat.Files))
	}
	return tallyAndRank(stat, ballots), nil
}

var _ PollingSchema = Closed4{}
