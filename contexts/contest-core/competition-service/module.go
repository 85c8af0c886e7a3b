package competitionservice

import (
	"log/slog"

	httpadapter "litgb/contexts/contest-core/competition-service/adapters/http"
	"litgb/contexts/contest-core/competition-service/adapters/memory"
	"litgb/contexts/contest-core/competition-service/adapters/notify"
	"litgb/contexts/contest-core/competition-service/application/commands"
	"litgb/contexts/contest-core/competition-service/application/lifecycle"
	"litgb/contexts/contest-core/competition-service/application/queries"
	"litgb/contexts/contest-core/competition-service/application/workers"
	"litgb/contexts/contest-core/competition-service/domain/entities"
	"litgb/contexts/contest-core/competition-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Machine lifecycle.Machine
	Sweeper workers.DeadlineSweeper
	Store   *memory.Store
}

type Dependencies struct {
	Competitions ports.CompetitionRepository
	UserStats    ports.UserStatsRepository
	Polling      ports.PollingPort
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	notifier := notify.OutboxNotifier{
		Outbox: deps.Outbox,
		IDGen:  deps.IDGen,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	machine := lifecycle.Machine{
		Competitions: deps.Competitions,
		UserStats:    deps.UserStats,
		Polling:      deps.Polling,
		Notifier:     notifier,
		Logger:       deps.Logger,
	}
	handler := httpadapter.Handler{
		Create: commands.CreateCompetitionUseCase{
			Competitions: deps.Competitions,
			Machine:      machine,
			Clock:        deps.Clock,
			IDGen:        deps.IDGen,
			Logger:       deps.Logger,
		},
		Update: commands.UpdatePropertiesUseCase{
			Competitions: deps.Competitions,
			Clock:        deps.Clock,
			Logger:       deps.Logger,
		},
		Join: commands.JoinCompetitionUseCase{
			Competitions: deps.Competitions,
			Machine:      machine,
			Clock:        deps.Clock,
			Logger:       deps.Logger,
		},
		Leave: commands.LeaveCompetitionUseCase{
			Competitions: deps.Competitions,
			Logger:       deps.Logger,
		},
		Submit: commands.SubmitFileUseCase{
			Competitions: deps.Competitions,
			Clock:        deps.Clock,
			Logger:       deps.Logger,
		},
		Attach: commands.AttachChatUseCase{
			Competitions: deps.Competitions,
			Machine:      machine,
			Logger:       deps.Logger,
		},
		Cancel: commands.CancelCompetitionUseCase{
			Competitions: deps.Competitions,
			Machine:      machine,
			Logger:       deps.Logger,
		},
		Get:       queries.GetCompetitionUseCase{Competitions: deps.Competitions},
		Stat:      queries.GetCompetitionStatUseCase{Competitions: deps.Competitions},
		ChatList:  queries.ListChatCompetitionsUseCase{Competitions: deps.Competitions},
		UserStats: queries.GetUserStatsUseCase{UserStats: deps.UserStats},
		Logger:    deps.Logger,
	}
	return Module{
		Handler: handler,
		Machine: machine,
		Sweeper: workers.DeadlineSweeper{
			Competitions: deps.Competitions,
			Machine:      machine,
			Clock:        deps.Clock,
			Logger:       deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Competition, polling ports.PollingPort, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Competitions: store,
		UserStats:    store,
		Polling:      polling,
		Outbox:       store,
		Clock:        store,
		IDGen:        store,
		Logger:       logger,
	})
	module.Store = store
	return module
}
