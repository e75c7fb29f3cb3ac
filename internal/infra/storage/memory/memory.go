// Package memory provides in-memory storage for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/codewithdpk/fetch-network-event-poller/internal/core/domain"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/storage"
)

// ProcessedRepo implements storage.ProcessedRepository with a map.
type ProcessedRepo struct {
	mu     sync.RWMutex
	hashes map[string]struct{}
}

// NewProcessedRepo creates an empty in-memory processed set.
func NewProcessedRepo() *ProcessedRepo {
	return &ProcessedRepo{hashes: make(map[string]struct{})}
}

// Contains checks whether a tx hash was already processed.
func (r *ProcessedRepo) Contains(ctx context.Context, txHash string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.hashes[txHash]
	return ok, nil
}

// FilterNew returns the hashes not yet processed, preserving order.
func (r *ProcessedRepo) FilterNew(ctx context.Context, txHashes []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fresh := make([]string, 0, len(txHashes))
	for _, h := range txHashes {
		if _, ok := r.hashes[h]; !ok {
			fresh = append(fresh, h)
		}
	}
	return fresh, nil
}

// AddBatch marks hashes as processed.
func (r *ProcessedRepo) AddBatch(ctx context.Context, txHashes []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range txHashes {
		r.hashes[h] = struct{}{}
	}
	return nil
}

// Count returns the size of the processed set.
func (r *ProcessedRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hashes), nil
}

// Clear removes every processed hash.
func (r *ProcessedRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hashes = make(map[string]struct{})
	return nil
}

// EventRepo implements storage.EventRepository in memory.
type EventRepo struct {
	mu     sync.RWMutex
	events map[string][]*domain.Event          // contract -> events in save order
	byHash map[string]map[string]*domain.Event // contract -> txHash -> event
}

// NewEventRepo creates an empty in-memory event archive.
func NewEventRepo() *EventRepo {
	return &EventRepo{
		events: make(map[string][]*domain.Event),
		byHash: make(map[string]map[string]*domain.Event),
	}
}

// SaveBatch archives events for a contract.
func (r *EventRepo) SaveBatch(ctx context.Context, contract string, events []*domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byHash[contract] == nil {
		r.byHash[contract] = make(map[string]*domain.Event)
	}
	for _, e := range events {
		if _, seen := r.byHash[contract][e.TxHash+"/"+e.ID]; seen {
			continue
		}
		copied := *e
		r.events[contract] = append(r.events[contract], &copied)
		r.byHash[contract][e.TxHash+"/"+e.ID] = &copied
		r.byHash[contract][e.TxHash] = &copied
	}
	return nil
}

// GetByTxHash retrieves an archived event.
func (r *EventRepo) GetByTxHash(ctx context.Context, contract, txHash string) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byHash[contract][txHash]
	if !ok {
		return nil, storage.ErrEventNotFound
	}
	copied := *e
	return &copied, nil
}

// ListByContract returns the most recently archived events.
func (r *EventRepo) ListByContract(ctx context.Context, contract string, limit int) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.events[contract]
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}

	out := make([]*domain.Event, 0, limit)
	for i := len(all) - 1; i >= len(all)-limit; i-- {
		copied := *all[i]
		out = append(out, &copied)
	}
	return out, nil
}

// CountByAction returns archived event counts per action.
func (r *EventRepo) CountByAction(ctx context.Context, contract string) (map[domain.ActionType]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.ActionType]int)
	for _, e := range r.events[contract] {
		counts[e.Action]++
	}
	return counts, nil
}
