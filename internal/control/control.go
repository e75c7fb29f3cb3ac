// Package control wires configuration into a running application.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
	"golang.org/x/sync/errgroup"

	"github.com/codewithdpk/fetch-network-event-poller/internal/core/config"
	"github.com/codewithdpk/fetch-network-event-poller/internal/core/domain"
	"github.com/codewithdpk/fetch-network-event-poller/internal/fetching/emitter"
	"github.com/codewithdpk/fetch-network-event-poller/internal/fetching/health"
	"github.com/codewithdpk/fetch-network-event-poller/internal/fetching/poller"
	"github.com/codewithdpk/fetch-network-event-poller/internal/fetching/retriever"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/redis"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/rpc/provider"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/storage"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/storage/file"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/storage/memory"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/storage/postgres"
	"github.com/codewithdpk/fetch-network-event-poller/migrations"
)

// App holds the assembled application.
type App struct {
	cfg    *config.AppConfig
	logger *slog.Logger

	providers    []provider.Provider
	poller       *poller.Poller
	healthServer *health.Server
	monitor      *health.Monitor

	db          *postgres.DB
	redisClient *redis.Client

	cancel context.CancelFunc
	group  *errgroup.Group
}

// New builds the application from configuration. Backends are connected
// and migrated here so Start can launch cleanly.
func New(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*App, error) {
	app := &App{
		cfg:     cfg,
		logger:  logger,
		monitor: health.NewMonitor(),
	}

	if err := app.connectBackends(ctx); err != nil {
		return nil, err
	}

	if err := app.buildProviders(ctx); err != nil {
		app.closeBackends()
		return nil, err
	}

	contracts, err := app.buildContracts()
	if err != nil {
		for _, p := range app.providers {
			_ = p.Close()
		}
		app.closeBackends()
		return nil, err
	}

	sink := emitter.NewLogEmitter(logger)
	app.poller = poller.New(contracts, sink, app.monitor, logger)
	app.healthServer = health.NewServer(cfg.Server.Port, app.monitor, logger)

	return app, nil
}

// connectBackends opens the stores the configuration asks for. Postgres
// is also opened when only the event archive needs it.
func (a *App) connectBackends(ctx context.Context) error {
	backend := a.cfg.Store.Backend

	if backend == config.StorePostgres || a.cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, a.cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect postgres: %w", err)
		}
		a.db = db

		goose.SetBaseFS(migrations.FS)
		if err := goose.SetDialect("postgres"); err != nil {
			a.closeBackends()
			return fmt.Errorf("failed to set goose dialect: %w", err)
		}
		if err := goose.Up(db.DB.DB, "."); err != nil {
			a.closeBackends()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		db.StartMetricsCollector(ctx)
	}

	if backend == config.StoreRedis {
		client, err := redis.NewClient(ctx, a.cfg.Redis)
		if err != nil {
			a.closeBackends()
			return fmt.Errorf("failed to connect redis: %w", err)
		}
		a.redisClient = client
	}

	return nil
}

func (a *App) buildProviders(ctx context.Context) error {
	for _, ep := range a.cfg.GRPC.Endpoints {
		p, err := provider.NewGRPCProvider(ctx, ep.Name, ep.URL, a.cfg.GRPC.DialTimeout)
		if err != nil {
			return fmt.Errorf("failed to connect provider %s: %w", ep.Name, err)
		}
		a.providers = append(a.providers, p)
		a.logger.Info("provider connected", "name", ep.Name, "url", ep.URL)
	}
	return nil
}

func (a *App) buildContracts() ([]*poller.Contract, error) {
	contracts := make([]*poller.Contract, 0, len(a.cfg.Contracts))

	for _, cc := range a.cfg.Contracts {
		processed, err := a.processedRepo(cc.Address)
		if err != nil {
			return nil, err
		}

		actions := make([]domain.ActionType, 0, len(cc.Actions))
		for _, raw := range cc.Actions {
			action, err := domain.ParseActionType(raw)
			if err != nil {
				return nil, fmt.Errorf("contract %s: %w", cc.Address, err)
			}
			actions = append(actions, action)
		}

		var archive storage.EventRepository
		if a.db != nil {
			archive = postgres.NewEventRepo(a.db)
		}

		contracts = append(contracts, &poller.Contract{
			Address:      cc.Address,
			Name:         cc.Name,
			PollInterval: cc.PollInterval,
			Fetcher: retriever.New(
				cc.Address, cc.PageLimit, a.providers, processed, a.logger,
			),
			Options: retriever.Options{
				DiscardProcessed: cc.DiscardProcessed,
				ActionTypes:      actions,
				WalletAddress:    cc.WalletAddress,
			},
			Archive: archive,
		})
	}

	return contracts, nil
}

// processedRepo builds the per-contract processed set on the configured
// backend.
func (a *App) processedRepo(contract string) (storage.ProcessedRepository, error) {
	switch a.cfg.Store.Backend {
	case config.StoreMemory:
		return memory.NewProcessedRepo(), nil
	case config.StoreFile:
		return file.NewProcessedRepo(file.ContractPath(a.cfg.Store.Path, contract)), nil
	case config.StoreRedis:
		return redis.NewProcessedRepo(a.redisClient, contract), nil
	case config.StorePostgres:
		return postgres.NewProcessedRepo(a.db, contract), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", a.cfg.Store.Backend)
	}
}

// Start launches the health server and the poll loops.
func (a *App) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	g, ctx := errgroup.WithContext(ctx)
	a.group = g

	g.Go(func() error {
		return a.healthServer.Start()
	})

	g.Go(func() error {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = a.healthServer.Shutdown(shutdownCtx)
		}()
		return a.poller.Run(ctx)
	})

	a.logger.Info("poller started",
		"contracts", len(a.cfg.Contracts),
		"providers", len(a.providers),
	)
	return nil
}

// Stop cancels the loops and waits for them to drain, then releases
// providers and backend connections.
func (a *App) Stop(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}

	done := make(chan error, 1)
	go func() {
		if a.group != nil {
			done <- a.group.Wait()
		} else {
			done <- nil
		}
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	for _, p := range a.providers {
		if cerr := p.Close(); cerr != nil {
			a.logger.Warn("failed to close provider", "name", p.GetName(), "error", cerr)
		}
	}
	a.closeBackends()

	return err
}

func (a *App) closeBackends() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
}
