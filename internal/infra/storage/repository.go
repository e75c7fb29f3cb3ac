package storage

import (
	"context"
	"errors"

	"github.com/codewithdpk/fetch-network-event-poller/internal/core/domain"
)

var (
	// ErrEventNotFound is returned when an archived event doesn't exist
	ErrEventNotFound = errors.New("event not found")
)

// ProcessedRepository tracks transaction hashes already handed to consumers.
// Implementations are scoped to a single contract.
type ProcessedRepository interface {
	// Contains checks whether a tx hash was already processed
	Contains(ctx context.Context, txHash string) (bool, error)

	// FilterNew returns the subset of hashes not yet processed, preserving order
	FilterNew(ctx context.Context, txHashes []string) ([]string, error)

	// AddBatch marks hashes as processed and persists the set
	AddBatch(ctx context.Context, txHashes []string) error

	// Count returns the size of the processed set
	Count(ctx context.Context) (int, error)

	// Clear removes every processed hash
	Clear(ctx context.Context) error
}

// EventRepository archives matched events for later querying.
type EventRepository interface {
	// SaveBatch archives events for a contract (idempotent on replays)
	SaveBatch(ctx context.Context, contract string, events []*domain.Event) error

	// GetByTxHash retrieves an archived event
	GetByTxHash(ctx context.Context, contract, txHash string) (*domain.Event, error)

	// ListByContract returns the most recently archived events
	ListByContract(ctx context.Context, contract string, limit int) ([]*domain.Event, error)

	// CountByAction returns archived event counts per action
	CountByAction(ctx context.Context, contract string) (map[domain.ActionType]int, error)
}
