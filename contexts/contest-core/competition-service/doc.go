// Package competitionservice implements the competition lifecycle inside the
// contest-core context.
//
// The module owns competition creation, chat attachment, membership,
// submission intake and the staged lifecycle
// (created/confirmed/started/polling_started/finished), plus per-user
// win/half-win/loss bookkeeping. Scoring is delegated to the polling engine
// through the PollingPort contract; chat delivery happens through
// outbox-backed notification events. Business rules live in application and
// domain layers, infrastructure stays behind ports and adapters.
package competitionservice
