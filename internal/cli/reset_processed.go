package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/codewithdpk/fetch-network-event-poller/internal/core/config"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/redis"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/storage"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/storage/file"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/storage/postgres"
)

var resetProcessedCmd = &cobra.Command{
	Use:   "reset-processed [contract_address]",
	Short: "Clear the processed-event set for a contract so its history replays",
	Args:  cobra.ExactArgs(1),
	Run:   runResetProcessed,
}

func init() {
	rootCmd.AddCommand(resetProcessedCmd)
}

func runResetProcessed(cmd *cobra.Command, args []string) {
	contract := args[0]

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	repo, cleanup, err := openProcessedRepo(ctx, cfg, contract)
	if err != nil {
		slog.Error("Failed to open processed store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := repo.Clear(ctx); err != nil {
		slog.Error("Failed to clear processed events", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully cleared processed events for %s\n", contract)
}

func openProcessedRepo(
	ctx context.Context,
	cfg *config.AppConfig,
	contract string,
) (storage.ProcessedRepository, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.StoreFile:
		return file.NewProcessedRepo(file.ContractPath(cfg.Store.Path, contract)), noop, nil

	case config.StoreRedis:
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		return redis.NewProcessedRepo(client, contract), func() { _ = client.Close() }, nil

	case config.StorePostgres:
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, noop, err
		}
		return postgres.NewProcessedRepo(db, contract), func() { _ = db.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("store backend %q has nothing to reset", cfg.Store.Backend)
	}
}
