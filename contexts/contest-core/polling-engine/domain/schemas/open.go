package schemas

import (
	"litgb/contexts/contest-core/polling-engine/domain/entities"
	domainerrors "litgb/contexts/contest-core/polling-engine/domain/errors"
)

const OpenHandlerName = "default_open"

// Open scores open-type competitions with no upper member bound. Submitters
// may vote too, but never for their own file and never with both draft
// slots filled.
type Open struct {
	config entities.SchemaInfo
}

// NewOpen fills the applicability window from the config row; a zero
// maximum keeps the roster unbounded.
func NewOpen(config entities.SchemaInfo) Open {
	if config.MinimumMemberCount == 0 {
		config.MinimumMemberCount = 3
	}
	return Open{config: config}
}

func (Open) HandlerName() string { return OpenHandlerName }

func (o Open) Info() entities.SchemaInfo { return o.config }

func (o Open) MinimumMemberCount() int { return o.config.MinimumMemberCount }

func (o Open) MaximumMemberCount() int { return o.config.MaximumMemberCount }

func (Open) ForOpenType() bool { return true }

func (Open) RankedBallot() bool { return true }

func (o Open) CalcPollingResults(stat entities.SubmissionStat, ballots []entities.Ballot) (entities.PollingResults, error) {
	if stat.SubmittedMemberCount() < 3 {
		return entities.PollingResults{}, domainerrors.Rule(
			"open polling requires at least three submitting members, got %d", stat.SubmittedMemberCount())
	}
	return tallyAndRank(stat, ballots), nil
}

var _ PollingSchema = Open{}
