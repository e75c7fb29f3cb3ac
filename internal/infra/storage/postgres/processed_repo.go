package postgres

import (
	"context"
	"fmt"
)

// ProcessedRepo implements storage.ProcessedRepository on PostgreSQL,
// scoped to a single contract.
type ProcessedRepo struct {
	db       *DB
	contract string
}

// NewProcessedRepo creates a PostgreSQL-backed processed set for a contract.
func NewProcessedRepo(db *DB, contract string) *ProcessedRepo {
	return &ProcessedRepo{db: db, contract: contract}
}

// Contains checks whether a tx hash was already processed.
func (r *ProcessedRepo) Contains(ctx context.Context, txHash string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM processed_events
			WHERE contract_address = $1 AND tx_hash = $2
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, r.contract, txHash); err != nil {
		return false, fmt.Errorf("failed to check processed event: %w", err)
	}
	return exists, nil
}

// FilterNew returns the hashes not yet processed, preserving order.
func (r *ProcessedRepo) FilterNew(ctx context.Context, txHashes []string) ([]string, error) {
	if len(txHashes) == 0 {
		return nil, nil
	}

	const query = `
		SELECT tx_hash FROM processed_events
		WHERE contract_address = $1 AND tx_hash = ANY($2)`

	var seen []string
	if err := r.db.SelectContext(ctx, &seen, query, r.contract, txHashes); err != nil {
		return nil, fmt.Errorf("failed to filter processed events: %w", err)
	}

	seenSet := make(map[string]struct{}, len(seen))
	for _, h := range seen {
		seenSet[h] = struct{}{}
	}

	fresh := make([]string, 0, len(txHashes))
	for _, h := range txHashes {
		if _, ok := seenSet[h]; !ok {
			fresh = append(fresh, h)
		}
	}
	return fresh, nil
}

// AddBatch marks hashes as processed.
func (r *ProcessedRepo) AddBatch(ctx context.Context, txHashes []string) error {
	if len(txHashes) == 0 {
		return nil
	}

	const query = `
		INSERT INTO processed_events (contract_address, tx_hash)
		SELECT $1, unnest($2::text[])
		ON CONFLICT (contract_address, tx_hash) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, r.contract, txHashes); err != nil {
		return fmt.Errorf("failed to add processed events: %w", err)
	}
	return nil
}

// Count returns the size of the processed set.
func (r *ProcessedRepo) Count(ctx context.Context) (int, error) {
	const query = `
		SELECT COUNT(*) FROM processed_events
		WHERE contract_address = $1`

	var n int
	if err := r.db.GetContext(ctx, &n, query, r.contract); err != nil {
		return 0, fmt.Errorf("failed to count processed events: %w", err)
	}
	return n, nil
}

// Clear removes every processed hash for the contract.
func (r *ProcessedRepo) Clear(ctx context.Context) error {
	const query = `DELETE FROM processed_events WHERE contract_address = $1`

	if _, err := r.db.ExecContext(ctx, query, r.contract); err != nil {
		return fmt.Errorf("failed to clear processed events: %w", err)
	}
	return nil
}
