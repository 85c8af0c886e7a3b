// Package pollingengine implements ballot collection and scoring inside the
// contest-core context.
//
// The module owns cast ballots, two-slot ranked drafts, the configured
// scoring schema variants (duel, triel, closed4, open) and the persisted
// rating tables. It never mutates the competition aggregate: it reads
// projections supplied by the competition service and serves scoring results
// back through a bridge adapter.
package pollingengine
