package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	competitionservice "litgb/contexts/contest-core/competition-service"
	comppostgres "litgb/contexts/contest-core/competition-service/adapters/postgres"
	compworkers "litgb/contexts/contest-core/competition-service/application/workers"
	pollingengine "litgb/contexts/contest-core/polling-engine"
	"litgb/contexts/contest-core/polling-engine/adapters/contest"
	pollpostgres "litgb/contexts/contest-core/polling-engine/adapters/postgres"
	"litgb/internal/platform/config"
	"litgb/internal/platform/db"
	"litgb/internal/platform/httpserver"
	"litgb/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	sweeper      compworkers.DeadlineSweeper
	outboxRelay  compworkers.OutboxRelay
	sweepEnabled bool
	relayEnabled bool
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	compModule, pollModule, err := buildModules(pg, logger)
	if err != nil {
		return nil, err
	}

	server := httpserver.New(compModule, pollModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	compModule, _, err := buildModules(pg, logger)
	if err != nil {
		return nil, err
	}

	compRepo := comppostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		sweeper:  compModule.Sweeper,
		outboxRelay: compworkers.OutboxRelay{
			Outbox:    compRepo,
			Publisher: kafka,
			Clock:     comppostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		sweepEnabled: cfg.EnableDeadlineSweeper,
		relayEnabled: cfg.EnableOutboxRelay,
		pollInterval: cfg.SweepInterval,
		logger:       logger,
	}, nil
}

// buildModules wires both bounded contexts against one postgres handle. The
// polling engine consumes the competition aggregate through a read-only
// projection source and serves scoring back through the bridge.
func buildModules(pg *db.Postgres, logger *slog.Logger) (competitionservice.Module, pollingengine.Module, error) {
	compRepo := comppostgres.NewRepository(pg.DB, logger)
	pollRepo := pollpostgres.NewRepository(pg.DB, logger)

	registry, err := pollingengine.BuildRegistry(context.Background(), pollRepo)
	if err != nil {
		return competitionservice.Module{}, pollingengine.Module{}, err
	}

	pollModule := pollingengine.NewModule(pollingengine.Dependencies{
		Ballots:      pollRepo,
		Drafts:       pollRepo,
		Results:      pollRepo,
		Competitions: contest.Source{Competitions: compRepo},
		Registry:     registry,
		Clock:        pollpostgres.SystemClock{},
		Logger:       logger,
	})

	compModule := competitionservice.NewModule(competitionservice.Dependencies{
		Competitions: compRepo,
		UserStats:    compRepo,
		Polling:      contest.Bridge{Engine: pollModule.Engine},
		Outbox:       compRepo,
		Clock:        comppostgres.SystemClock{},
		IDGen:        comppostgres.UUIDGenerator{},
		Logger:       logger,
	})
	return compModule, pollModule, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if w.sweepEnabled {
			if err := w.sweeper.RunOnce(ctx); err != nil {
				return err
			}
		}
		if w.relayEnabled {
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
