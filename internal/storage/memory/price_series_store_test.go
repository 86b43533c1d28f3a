package memory

import (
	"context"
	"errors"
	"testing"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/storage"
)

func pts(prices ...float64) []domain.PricePoint {
	dates := domain.BusinessDays(domain.MustDate("2020-01-01"), len(prices))
	out := make([]domain.PricePoint, len(prices))
	for i, p := range prices {
		out[i] = domain.PricePoint{Date: dates[i], Price: p}
	}
	return out
}

func TestPriceSeriesStore_InsertBulkAndGet(t *testing.T) {
	store := NewPriceSeriesStore()
	ctx := context.Background()

	points := pts(100, 101, 102)
	// Insert out of order; reads come back sorted.
	shuffled := []domain.PricePoint{points[2], points[0], points[1]}
	if err := store.InsertBulk(ctx, "SPX", shuffled); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	ps, err := store.GetBySymbol(ctx, "SPX")
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}
	if ps.Len() != 3 {
		t.Fatalf("Expected 3 points, got %d", ps.Len())
	}
	for i, want := range []float64{100, 101, 102} {
		if ps.Prices[i] != want {
			t.Errorf("Prices[%d] = %v, want %v", i, ps.Prices[i], want)
		}
	}
	if ps.Symbol != "SPX" {
		t.Errorf("Symbol = %q", ps.Symbol)
	}
}

func TestPriceSeriesStore_DuplicateKey(t *testing.T) {
	store := NewPriceSeriesStore()
	ctx := context.Background()

	points := pts(100)
	if err := store.InsertBulk(ctx, "SPX", points); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, "SPX", points)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Same date under another symbol is fine.
	if err := store.InsertBulk(ctx, "NDX", points); err != nil {
		t.Errorf("Insert under other symbol failed: %v", err)
	}
}

func TestPriceSeriesStore_IntraBatchDuplicate(t *testing.T) {
	store := NewPriceSeriesStore()
	ctx := context.Background()

	p := pts(100, 101)
	p[1].Date = p[0].Date

	err := store.InsertBulk(ctx, "SPX", p)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Nothing from the failed batch is visible.
	if _, err := store.GetBySymbol(ctx, "SPX"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after failed batch, got %v", err)
	}
}

func TestPriceSeriesStore_GetByDateRange(t *testing.T) {
	store := NewPriceSeriesStore()
	ctx := context.Background()

	points := pts(100, 101, 102, 103, 104)
	if err := store.InsertBulk(ctx, "SPX", points); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	ps, err := store.GetByDateRange(ctx, "SPX", points[1].Date, points[3].Date)
	if err != nil {
		t.Fatalf("GetByDateRange failed: %v", err)
	}
	if ps.Len() != 3 {
		t.Fatalf("Expected 3 points (inclusive range), got %d", ps.Len())
	}
	if ps.Prices[0] != 101 || ps.Prices[2] != 103 {
		t.Errorf("Unexpected prices %v", ps.Prices)
	}

	_, err = store.GetByDateRange(ctx, "SPX", domain.MustDate("2030-01-01"), domain.MustDate("2030-12-31"))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPriceSeriesStore_ListSymbols(t *testing.T) {
	store := NewPriceSeriesStore()
	ctx := context.Background()

	for _, s := range []string{"NDX", "SPX", "DAX"} {
		if err := store.InsertBulk(ctx, s, pts(1)); err != nil {
			t.Fatalf("InsertBulk %s failed: %v", s, err)
		}
	}

	got, err := store.ListSymbols(ctx)
	if err != nil {
		t.Fatalf("ListSymbols failed: %v", err)
	}
	want := []string{"DAX", "NDX", "SPX"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("symbols[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPriceSeriesStore_InvalidInput(t *testing.T) {
	store := NewPriceSeriesStore()

	err := store.InsertBulk(context.Background(), "", pts(1))
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
