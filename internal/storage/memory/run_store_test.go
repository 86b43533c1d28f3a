package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/storage"
)

func TestRunStore_InsertAndGet(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	run := &domain.RunRecord{
		RunID:      "abc",
		Symbol:     "SPX",
		Strategies: 28,
		Periods:    40,
		Config:     []byte(`{"top_n":3}`),
		Summary:    domain.PerformanceSummary{Sharpe: 1.2},
		CreatedAt:  time.Now().UTC(),
	}
	if err := store.Insert(ctx, run); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	run.Config[0] = 'X'

	got, err := store.GetByID(ctx, "abc")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Strategies != 28 || got.Summary.Sharpe != 1.2 {
		t.Errorf("Unexpected run %+v", got)
	}
	if string(got.Config) != `{"top_n":3}` {
		t.Errorf("Config = %s", got.Config)
	}
}

func TestRunStore_DuplicateAndNotFound(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	run := &domain.RunRecord{RunID: "abc"}
	if err := store.Insert(ctx, run); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, run); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := store.Insert(ctx, &domain.RunRecord{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestRunStore_ListNewestFirst(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		run := &domain.RunRecord{RunID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.Insert(ctx, run); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != "r3" || runs[1].RunID != "r2" {
		t.Errorf("Unexpected order: %s, %s", runs[0].RunID, runs[1].RunID)
	}

	all, _ := store.List(ctx, 0)
	if len(all) != 3 {
		t.Errorf("Expected 3 runs with no limit, got %d", len(all))
	}
}
