// Package file persists the processed-event set as a JSON array on disk.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ProcessedRepo implements storage.ProcessedRepository backed by a JSON
// file holding a flat array of tx hashes. A missing file is treated as an
// empty set so first runs need no setup.
type ProcessedRepo struct {
	path string

	mu     sync.Mutex
	loaded bool
	hashes map[string]struct{}
}

// ContractPath scopes a processed-set path to one contract by inserting
// the address before the extension.
func ContractPath(base, contract string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "." + contract + ext
}

// NewProcessedRepo creates a file-backed processed set at the given path.
func NewProcessedRepo(path string) *ProcessedRepo {
	return &ProcessedRepo{
		path:   path,
		hashes: make(map[string]struct{}),
	}
}

// load reads the file once. Caller holds the lock.
func (r *ProcessedRepo) load() error {
	if r.loaded {
		return nil
	}

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		r.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read processed events file: %w", err)
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("failed to parse processed events file: %w", err)
	}
	for _, h := range list {
		r.hashes[h] = struct{}{}
	}
	r.loaded = true
	return nil
}

// flush writes the full set back to disk. Caller holds the lock.
func (r *ProcessedRepo) flush() error {
	list := make([]string, 0, len(r.hashes))
	for h := range r.hashes {
		list = append(list, h)
	}
	sort.Strings(list) // stable files diff nicely

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode processed events: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write processed events file: %w", err)
	}
	return nil
}

// Contains checks whether a tx hash was already processed.
func (r *ProcessedRepo) Contains(ctx context.Context, txHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return false, err
	}
	_, ok := r.hashes[txHash]
	return ok, nil
}

// FilterNew returns the hashes not yet processed, preserving order.
func (r *ProcessedRepo) FilterNew(ctx context.Context, txHashes []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return nil, err
	}

	fresh := make([]string, 0, len(txHashes))
	for _, h := range txHashes {
		if _, ok := r.hashes[h]; !ok {
			fresh = append(fresh, h)
		}
	}
	return fresh, nil
}

// AddBatch marks hashes as processed and persists the set.
func (r *ProcessedRepo) AddBatch(ctx context.Context, txHashes []string) error {
	if len(txHashes) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return err
	}
	for _, h := range txHashes {
		r.hashes[h] = struct{}{}
	}
	return r.flush()
}

// Count returns the size of the processed set.
func (r *ProcessedRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return 0, err
	}
	return len(r.hashes), nil
}

// Clear removes every processed hash and deletes the file.
func (r *ProcessedRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hashes = make(map[string]struct{})
	r.loaded = true

	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove processed events file: %w", err)
	}
	return nil
}
