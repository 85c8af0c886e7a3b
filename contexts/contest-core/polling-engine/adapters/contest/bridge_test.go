package contest

import (
	"errors"
	"testing"
	"time"

	compentities "litgb/contexts/contest-core/competition-service/domain/entities"
	comperrors "litgb/contexts/contest-core/competition-service/domain/errors"
	pollerrors "litgb/contexts/contest-core/polling-engine/domain/errors"
)

func TestTranslateErrorKeepsRuleSemantics(t *testing.T) {
	err := translateError(pollerrors.Rule("no applicable schema"))
	if !comperrors.IsRule(err) {
		t.Fatalf("engine rule violations must stay rule violations for the consumer, got %v", err)
	}
	if comperrors.RuleReason(err) != "no applicable schema" {
		t.Fatalf("the reason must survive translation, got %q", comperrors.RuleReason(err))
	}
}

func TestTranslateErrorMapsSchemaLookups(t *testing.T) {
	if err := translateError(pollerrors.ErrSchemaNotFound); !errors.Is(err, comperrors.ErrSchemaNotFound) {
		t.Fatalf("expected the consumer's schema-not-found, got %v", err)
	}
	if err := translateError(pollerrors.ErrUnknownHandler); !errors.Is(err, comperrors.ErrSchemaNotFound) {
		t.Fatalf("expected the consumer's schema-not-found, got %v", err)
	}
}

func TestTranslateErrorPassesUnknownErrorsThrough(t *testing.T) {
	sentinel := errors.New("storage down")
	if err := translateError(sentinel); !errors.Is(err, sentinel) {
		t.Fatalf("unexpected translation of an infrastructure error: %v", err)
	}
}

func TestViewFromCompetition(t *testing.T) {
	now := time.Date(2026, 4, 1, 11, 0, 0, 0, time.UTC)
	comp := compentities.Competition{
		ID:              42,
		PollingSchemeID: 3,
		PollingStarted:  &now,
	}

	view := viewFromCompetition(comp)
	if view.CompetitionID != 42 || view.PollingSchemeID != 3 {
		t.Fatalf("unexpected projection: %+v", view)
	}
	if !view.OpenType {
		t.Fatal("a competition without a declared roster is open-type")
	}
	if !view.PollingStarted || view.Finished {
		t.Fatalf("unexpected stage flags: %+v", view)
	}
}

func TestStatProjectionFlattensOwnership(t *testing.T) {
	stat := compentities.CompetitionStat{
		CompetitionID: 42,
		SubmittedFiles: map[int64][]compentities.SubmittedFile{
			10: {{ID: 101, OwnerID: 10, Title: "first"}},
			20: {{ID: 102, OwnerID: 20, Title: "second"}, {ID: 103, OwnerID: 20, Title: "third"}},
		},
	}

	projection := statProjection(stat)
	if len(projection.Files) != 3 {
		t.Fatalf("expected 3 projected files, got %d", len(projection.Files))
	}
	if projection.SubmittedMemberCount() != 2 {
		t.Fatalf("expected 2 submitters, got %d", projection.SubmittedMemberCount())
	}
	if !projection.IsOwner(20, 103) {
		t.Fatal("ownership must survive projection")
	}
}
