// Package poller runs the periodic fetch loop for each contract.
package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/codewithdpk/fetch-network-event-poller/internal/core/domain"
	"github.com/codewithdpk/fetch-network-event-poller/internal/fetching/emitter"
	"github.com/codewithdpk/fetch-network-event-poller/internal/fetching/health"
	"github.com/codewithdpk/fetch-network-event-poller/internal/fetching/metrics"
	"github.com/codewithdpk/fetch-network-event-poller/internal/fetching/retriever"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/storage"
)

// Fetcher runs one fetch cycle. *retriever.Retriever is the production
// implementation.
type Fetcher interface {
	FetchEvents(ctx context.Context, opts retriever.Options) (*retriever.Result, error)
}

// Contract binds one contract's fetcher to its polling settings.
type Contract struct {
	Address      string
	Name         string
	PollInterval time.Duration

	Fetcher Fetcher
	Options retriever.Options

	// Archive is optional; matched events are persisted when set.
	Archive storage.EventRepository
}

// Poller drives all contract loops until the context is cancelled.
type Poller struct {
	contracts []*Contract
	emitter   emitter.Emitter
	monitor   *health.Monitor
	logger    *slog.Logger
}

// New creates a poller over the configured contracts.
func New(
	contracts []*Contract,
	sink emitter.Emitter,
	monitor *health.Monitor,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		contracts: contracts,
		emitter:   sink,
		monitor:   monitor,
		logger:    logger,
	}
}

// Run polls every contract on its own interval. It blocks until the
// context is cancelled or a loop fails terminally.
func (p *Poller) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, c := range p.contracts {
		g.Go(func() error {
			return p.runContract(ctx, c)
		})
	}

	return g.Wait()
}

func (p *Poller) runContract(ctx context.Context, c *Contract) error {
	logger := p.logger.With("contract", c.Address, "name", c.Name)
	logger.Info("poll loop starting", "interval", c.PollInterval)

	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	// First cycle runs immediately, then on the ticker.
	p.cycle(ctx, c, logger)

	for {
		select {
		case <-ctx.Done():
			logger.Info("poll loop stopping")
			return nil
		case <-ticker.C:
			p.cycle(ctx, c, logger)
		}
	}
}

// cycle runs one fetch for a contract. Failures are recorded and the loop
// keeps going; only cancellation stops polling.
func (p *Poller) cycle(ctx context.Context, c *Contract, logger *slog.Logger) {
	runID := uuid.New().String()
	logger = logger.With("run_id", runID)

	start := time.Now()
	metrics.FetchTotal.WithLabelValues(c.Address).Inc()

	result, err := c.Fetcher.FetchEvents(ctx, c.Options)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		metrics.FetchErrors.WithLabelValues(c.Address).Inc()
		p.monitor.RecordFailure(c.Address, err)
		logger.Error("fetch failed", "error", err)
		return
	}

	if err := p.deliver(ctx, c, result.Events, logger); err != nil {
		metrics.FetchErrors.WithLabelValues(c.Address).Inc()
		p.monitor.RecordFailure(c.Address, err)
		return
	}

	took := time.Since(start)
	metrics.FetchDuration.WithLabelValues(c.Address).Observe(took.Seconds())
	metrics.LastSuccessfulFetch.WithLabelValues(c.Address).SetToCurrentTime()
	p.monitor.RecordSuccess(c.Address, len(result.Events), took)

	if len(result.Events) > 0 {
		logger.Info("cycle complete",
			"events", len(result.Events),
			"txs_scanned", result.TxsScanned,
			"took", took,
		)
	}
}

func (p *Poller) deliver(ctx context.Context, c *Contract, events []*domain.Event, logger *slog.Logger) error {
	if len(events) == 0 {
		return nil
	}

	if c.Archive != nil {
		if err := c.Archive.SaveBatch(ctx, c.Address, events); err != nil {
			logger.Error("failed to archive events", "error", err)
			return err
		}
	}

	if err := p.emitter.Emit(ctx, c.Address, events); err != nil {
		logger.Error("failed to emit events", "error", err)
		return err
	}
	return nil
}
