package risk

import (
	"testing"

	"walkforward-lab/internal/domain"
)

func TestGate_UsesPreviousRegime(t *testing.T) {
	position := domain.Series{1, 1, -1, -1, 1}
	regime := []bool{true, false, true, true, false}
	got, err := Gate(position, regime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.Series{0, 1, 0, -1, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestGate_NoSameDayLookahead(t *testing.T) {
	position := domain.Series{1, 1, 1, 1}
	regime := []bool{true, true, true, true}
	base, _ := Gate(position, regime)

	regime[3] = false // flipping today's regime must not change today's output
	mutated, _ := Gate(position, regime)
	for i := range base {
		if base[i] != mutated[i] {
			t.Errorf("index %d changed: %v -> %v", i, base[i], mutated[i])
		}
	}
}

func TestTrending_UndefinedSMAIsNotTrending(t *testing.T) {
	prices := domain.Series{1, 2, 3, 4, 3, 1}
	got := Trending(prices, 3)
	want := []bool{false, false, true, true, false, false}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	side := Sideways(prices, 3)
	for i := range want {
		if side[i] == want[i] {
			t.Errorf("index %d: sideways should complement trending", i)
		}
	}
}

func TestClassify_AnyPermitsAll(t *testing.T) {
	for i, v := range Classify(RegimeAny, domain.Series{1, 2, 3}, 2) {
		if !v {
			t.Errorf("index %d: expected permitted", i)
		}
	}
}

func TestLag(t *testing.T) {
	got := Lag([]bool{true, false, true})
	want := []bool{false, true, false}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}
