package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func repoPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "processed_events.json")
}

func TestMissingFileIsEmptySet(t *testing.T) {
	r := NewProcessedRepo(repoPath(t))
	ctx := context.Background()

	ok, err := r.Contains(ctx, "T1")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if ok {
		t.Error("Empty set should not contain T1")
	}

	n, err := r.Count(ctx)
	if err != nil || n != 0 {
		t.Errorf("Count = %d, %v", n, err)
	}
}

func TestAddBatchPersists(t *testing.T) {
	path := repoPath(t)
	ctx := context.Background()

	r := NewProcessedRepo(path)
	if err := r.AddBatch(ctx, []string{"T1", "T2"}); err != nil {
		t.Fatalf("AddBatch failed: %v", err)
	}

	// A fresh repo on the same path must see the persisted set.
	r2 := NewProcessedRepo(path)
	ok, err := r2.Contains(ctx, "T1")
	if err != nil || !ok {
		t.Errorf("Contains(T1) = %v, %v", ok, err)
	}

	fresh, err := r2.FilterNew(ctx, []string{"T1", "T3", "T2", "T4"})
	if err != nil {
		t.Fatalf("FilterNew failed: %v", err)
	}
	if len(fresh) != 2 || fresh[0] != "T3" || fresh[1] != "T4" {
		t.Errorf("FilterNew = %v", fresh)
	}
}

func TestFileFormatIsFlatArray(t *testing.T) {
	path := repoPath(t)
	ctx := context.Background()

	r := NewProcessedRepo(path)
	if err := r.AddBatch(ctx, []string{"B", "A"}); err != nil {
		t.Fatalf("AddBatch failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatalf("File is not a JSON string array: %v", err)
	}
	if len(list) != 2 || list[0] != "A" || list[1] != "B" {
		t.Errorf("Expected sorted [A B], got %v", list)
	}
}

func TestClearRemovesFile(t *testing.T) {
	path := repoPath(t)
	ctx := context.Background()

	r := NewProcessedRepo(path)
	if err := r.AddBatch(ctx, []string{"T1"}); err != nil {
		t.Fatalf("AddBatch failed: %v", err)
	}
	if err := r.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected file to be removed")
	}
	n, err := r.Count(ctx)
	if err != nil || n != 0 {
		t.Errorf("Count after clear = %d, %v", n, err)
	}

	// Clearing an already-missing file is fine.
	if err := r.Clear(ctx); err != nil {
		t.Errorf("Second clear failed: %v", err)
	}
}

func TestCorruptFileFails(t *testing.T) {
	path := repoPath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewProcessedRepo(path)
	if _, err := r.Contains(context.Background(), "T1"); err == nil {
		t.Error("Expected error for corrupt file")
	}
}
