package pollingengine

import (
	"context"
	"log/slog"

	httpadapter "litgb/contexts/contest-core/polling-engine/adapters/http"
	"litgb/contexts/contest-core/polling-engine/adapters/memory"
	"litgb/contexts/contest-core/polling-engine/application"
	"litgb/contexts/contest-core/polling-engine/application/commands"
	"litgb/contexts/contest-core/polling-engine/application/queries"
	"litgb/contexts/contest-core/polling-engine/domain/schemas"
	"litgb/contexts/contest-core/polling-engine/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Engine   application.Engine
	Registry *schemas.Registry
	Store    *memory.Store
}

type Dependencies struct {
	Ballots      ports.BallotRepository
	Drafts       ports.DraftRepository
	Results      ports.ResultRepository
	Competitions ports.CompetitionSource
	Registry     *schemas.Registry
	Clock        ports.Clock
	Logger       *slog.Logger
}

// BuildRegistry loads the configured schema rows and instantiates the
// variants. Call it once at composition time.
func BuildRegistry(ctx context.Context, source ports.SchemaConfigSource) (*schemas.Registry, error) {
	configs, err := source.ListSchemaConfigs(ctx)
	if err != nil {
		return nil, err
	}
	return schemas.NewRegistry(configs)
}

func NewModule(deps Dependencies) Module {
	engine := application.Engine{
		Ballots:  deps.Ballots,
		Results:  deps.Results,
		Registry: deps.Registry,
		Logger:   deps.Logger,
	}
	handler := httpadapter.Handler{
		Cast: commands.CastBallotUseCase{
			Competitions: deps.Competitions,
			Ballots:      deps.Ballots,
			Registry:     deps.Registry,
			Clock:        deps.Clock,
			Logger:       deps.Logger,
		},
		SetSlot: commands.SetDraftSlotUseCase{
			Competitions: deps.Competitions,
			Drafts:       deps.Drafts,
			Registry:     deps.Registry,
			Clock:        deps.Clock,
			Logger:       deps.Logger,
		},
		Apply: commands.ApplyDraftUseCase{
			Competitions: deps.Competitions,
			Ballots:      deps.Ballots,
			Drafts:       deps.Drafts,
			Registry:     deps.Registry,
			Clock:        deps.Clock,
			Logger:       deps.Logger,
		},
		Retract: commands.RetractBallotsUseCase{
			Competitions: deps.Competitions,
			Ballots:      deps.Ballots,
			Drafts:       deps.Drafts,
			Registry:     deps.Registry,
			Logger:       deps.Logger,
		},
		Results:    queries.GetFileResultsUseCase{Results: deps.Results},
		Schemas:    queries.ListSchemasUseCase{Registry: deps.Registry},
		Draft:      queries.GetDraftUseCase{Drafts: deps.Drafts},
		VoterCount: queries.CountVotersUseCase{Ballots: deps.Ballots},
		Logger:     deps.Logger,
	}
	return Module{
		Handler:  handler,
		Engine:   engine,
		Registry: deps.Registry,
	}
}

func NewInMemoryModule(competitions ports.CompetitionSource, clock ports.Clock, logger *slog.Logger) (Module, error) {
	store := memory.NewStore(nil)
	registry, err := BuildRegistry(context.Background(), store)
	if err != nil {
		return Module{}, err
	}
	module := NewModule(Dependencies{
		Ballots:      store,
		Drafts:       store,
		Results:      store,
		Competitions: competitions,
		Registry:     registry,
		Clock:        clock,
		Logger:       logger,
	})
	module.Store = store
	return module, nil
}
