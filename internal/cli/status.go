package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codewithdpk/fetch-network-event-poller/internal/core/config"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show archived event counts for all watched contracts",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		slog.Error("status requires a configured database")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	rows, err := db.QueryContext(ctx, `
		SELECT contract_address, action, COUNT(*), MAX(created_at)
		FROM events
		GROUP BY contract_address, action
		ORDER BY contract_address, action`)
	if err != nil {
		slog.Error("Failed to query events", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = rows.Close()
	}()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "CONTRACT\tACTION\tEVENTS\tLAST SEEN")

	for rows.Next() {
		var contract, action, lastSeen string
		var count int64
		if err := rows.Scan(&contract, &action, &count, &lastSeen); err != nil {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", contract, action, count, lastSeen)
	}
	_ = w.Flush()
}
