// Package retriever fetches and filters contract events from the chain.
package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"

	"github.com/codewithdpk/fetch-network-event-poller/internal/core/domain"
	"github.com/codewithdpk/fetch-network-event-poller/internal/fetching/filter"
	"github.com/codewithdpk/fetch-network-event-poller/internal/fetching/metrics"
	"github.com/codewithdpk/fetch-network-event-poller/internal/fetching/parse"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/chain/cosmos"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/rpc/provider"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/rpc/routing"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/storage"
)

// Options control a single fetch.
type Options struct {
	// DiscardProcessed drops events whose tx hash is in the processed set
	// and records the new hashes afterwards.
	DiscardProcessed bool

	// ActionTypes filters events to these actions; empty means all.
	ActionTypes []domain.ActionType

	// WalletAddress filters events to this sender; empty means all.
	WalletAddress string
}

// Result carries the outcome of one fetch cycle.
type Result struct {
	Events       []*domain.Event
	TxsScanned   int
	TxsDiscarded int
	Duration     time.Duration
}

// Retriever fetches events for one contract through the provider pool.
type Retriever struct {
	contract  string
	pageLimit uint64
	providers []provider.Provider
	processed storage.ProcessedRepository
	retry     routing.RetryConfig
	logger    *slog.Logger
}

// New creates a retriever for a contract.
func New(
	contract string,
	pageLimit uint64,
	providers []provider.Provider,
	processed storage.ProcessedRepository,
	logger *slog.Logger,
) *Retriever {
	if pageLimit == 0 {
		pageLimit = 100
	}
	return &Retriever{
		contract:  contract,
		pageLimit: pageLimit,
		providers: providers,
		processed: processed,
		retry:     routing.DefaultRetryConfig,
		logger:    logger.With("contract", contract),
	}
}

// buildQueries assembles the server-side event queries. A single requested
// action is pushed down to the server; multiple actions are filtered
// client-side because the tx service ANDs its query terms.
func (r *Retriever) buildQueries(opts Options) []string {
	queries := []string{cosmos.ContractQuery(r.contract)}
	if len(opts.ActionTypes) == 1 {
		queries = append(queries, cosmos.ActionQuery(string(opts.ActionTypes[0])))
	}
	return queries
}

// FetchEvents retrieves all matching events for the contract.
func (r *Retriever) FetchEvents(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	queries := r.buildQueries(opts)

	op := provider.Operation{
		Name: "GetTxsEvent",
		Cost: 1,
		Invoke: func(ctx context.Context, conn grpc.ClientConnInterface) (any, error) {
			return cosmos.NewTxClient(conn).QueryTxsByEvents(ctx, queries, r.pageLimit)
		},
	}

	raw, err := routing.ExecuteWithFailover(ctx, r.providers, op, r.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to query txs for %s: %w", r.contract, err)
	}
	txs := raw.([]*cosmos.TxResponse)

	if opts.DiscardProcessed {
		txs, err = r.dropProcessed(ctx, txs)
		if err != nil {
			return nil, err
		}
	}

	var events []*domain.Event
	for _, tx := range txs {
		for _, set := range parse.FlattenWasmEvents(tx) {
			events = append(events, parse.BuildEvent(set))
		}
	}

	events = filter.Apply(events, filter.Criteria{
		Actions: opts.ActionTypes,
		Wallet:  opts.WalletAddress,
	})

	// Only delivered events count as processed. A tx whose events were
	// all filtered out stays fetchable for later calls with different
	// predicates.
	if opts.DiscardProcessed {
		if err := r.markProcessed(ctx, eventTxHashes(events)); err != nil {
			return nil, err
		}
	}

	for _, e := range events {
		metrics.EventsMatched.WithLabelValues(r.contract, string(e.Action)).Inc()
	}
	metrics.TransactionsScanned.WithLabelValues(r.contract).Add(float64(len(txs)))

	result := &Result{
		Events:     events,
		TxsScanned: len(txs),
		Duration:   time.Since(start),
	}

	r.logger.Debug("fetch complete",
		"events", len(events),
		"txs", len(txs),
		"duration", result.Duration,
	)

	return result, nil
}

// dropProcessed removes transactions whose hash was already handled.
func (r *Retriever) dropProcessed(ctx context.Context, txs []*cosmos.TxResponse) ([]*cosmos.TxResponse, error) {
	if len(txs) == 0 {
		return txs, nil
	}

	hashes := make([]string, len(txs))
	byHash := make(map[string]*cosmos.TxResponse, len(txs))
	for i, tx := range txs {
		hashes[i] = tx.TxHash
		byHash[tx.TxHash] = tx
	}

	fresh, err := r.processed.FilterNew(ctx, hashes)
	if err != nil {
		return nil, fmt.Errorf("failed to filter processed txs: %w", err)
	}

	discarded := len(txs) - len(fresh)
	if discarded > 0 {
		metrics.EventsDiscarded.WithLabelValues(r.contract).Add(float64(discarded))
	}

	out := make([]*cosmos.TxResponse, 0, len(fresh))
	for _, h := range fresh {
		out = append(out, byHash[h])
	}
	return out, nil
}

// eventTxHashes returns the distinct tx hashes of events, in order.
func eventTxHashes(events []*domain.Event) []string {
	seen := make(map[string]struct{}, len(events))
	hashes := make([]string, 0, len(events))
	for _, e := range events {
		if _, ok := seen[e.TxHash]; ok {
			continue
		}
		seen[e.TxHash] = struct{}{}
		hashes = append(hashes, e.TxHash)
	}
	return hashes
}

// markProcessed records delivered tx hashes so the next cycle skips them.
func (r *Retriever) markProcessed(ctx context.Context, hashes []string) error {
	if len(hashes) == 0 {
		return nil
	}

	if err := r.processed.AddBatch(ctx, hashes); err != nil {
		return fmt.Errorf("failed to record processed txs: %w", err)
	}

	if n, err := r.processed.Count(ctx); err == nil {
		metrics.ProcessedSetSize.WithLabelValues(r.contract).Set(float64(n))
	}
	return nil
}
