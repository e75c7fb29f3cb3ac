package redis

import (
	"context"
	"fmt"
)

// ProcessedRepo implements storage.ProcessedRepository on a Redis set,
// scoped to a single contract.
type ProcessedRepo struct {
	client *Client
	key    string
}

// NewProcessedRepo creates a Redis-backed processed set for a contract.
func NewProcessedRepo(client *Client, contract string) *ProcessedRepo {
	return &ProcessedRepo{
		client: client,
		key:    fmt.Sprintf("processed_events:%s", contract),
	}
}

// Contains checks whether a tx hash was already processed.
func (r *ProcessedRepo) Contains(ctx context.Context, txHash string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, r.key, txHash).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check processed event: %w", err)
	}
	return ok, nil
}

// FilterNew returns the hashes not yet processed, preserving order.
func (r *ProcessedRepo) FilterNew(ctx context.Context, txHashes []string) ([]string, error) {
	if len(txHashes) == 0 {
		return nil, nil
	}

	members := make([]interface{}, len(txHashes))
	for i, h := range txHashes {
		members[i] = h
	}

	seen, err := r.client.SMIsMember(ctx, r.key, members...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to filter processed events: %w", err)
	}

	fresh := make([]string, 0, len(txHashes))
	for i, h := range txHashes {
		if !seen[i] {
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

	members := make([]interface{}, len(txHashes))
	for i, h := range txHashes {
		members[i] = h
	}

	if err := r.client.SAdd(ctx, r.key, members...).Err(); err != nil {
		return fmt.Errorf("failed to add processed events: %w", err)
	}
	return nil
}

// Count returns the size of the processed set.
func (r *ProcessedRepo) Count(ctx context.Context) (int, error) {
	n, err := r.client.SCard(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count processed events: %w", err)
	}
	return int(n), nil
}

// Clear removes every processed hash for the contract.
func (r *ProcessedRepo) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to clear processed events: %w", err)
	}
	return nil
}
