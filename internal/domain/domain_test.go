package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestIndexValidate(t *testing.T) {
	ok := Index{MustDate("2024-01-01"), MustDate("2024-01-02")}
	if err := ok.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	dup := Index{MustDate("2024-01-02"), MustDate("2024-01-02")}
	if err := dup.Validate(); !errors.Is(err, ErrUnorderedIndex) {
		t.Errorf("expected ErrUnorderedIndex, got %v", err)
	}
}

func TestIndexFirstLastEmpty(t *testing.T) {
	var ix Index
	if !ix.First().IsZero() || !ix.Last().IsZero() {
		t.Error("empty index should return zero times")
	}
}

func TestSeriesDefined(t *testing.T) {
	s := Series{Undefined, 1, Undefined, 2}
	if got := s.CountDefined(); got != 2 {
		t.Errorf("CountDefined = %d, want 2", got)
	}
	d := s.Defined()
	if len(d) != 2 || d[0] != 1 || d[1] != 2 {
		t.Errorf("Defined = %v", d)
	}
}

func TestBusinessDaysSkipsWeekends(t *testing.T) {
	// 2024-01-06 is a Saturday.
	ix := BusinessDays(MustDate("2024-01-06"), 3)
	want := []string{"2024-01-08", "2024-01-09", "2024-01-10"}
	for i, d := range ix {
		if d.Format(DateLayout) != want[i] {
			t.Errorf("day %d = %s, want %s", i, d.Format(DateLayout), want[i])
		}
	}
}

func TestTruncate(t *testing.T) {
	loc := time.FixedZone("x", 3600)
	got := Truncate(time.Date(2024, 3, 1, 0, 30, 0, 0, loc))
	if !got.Equal(MustDate("2024-02-29")) {
		t.Errorf("Truncate = %v", got)
	}
}

func TestPriceSeriesReturns(t *testing.T) {
	ps, err := NewPriceSeries("X", []PricePoint{
		{Date: MustDate("2024-01-01"), Price: 100},
		{Date: MustDate("2024-01-02"), Price: 110},
		{Date: MustDate("2024-01-03"), Price: Undefined},
		{Date: MustDate("2024-01-04"), Price: 121},
	})
	if err != nil {
		t.Fatalf("NewPriceSeries: %v", err)
	}
	r := ps.Returns()
	if IsDefined(r[0]) {
		t.Error("first return must be undefined")
	}
	if math.Abs(r[1]-0.1) > 1e-12 {
		t.Errorf("r[1] = %v, want 0.1", r[1])
	}
	if IsDefined(r[2]) || IsDefined(r[3]) {
		t.Error("returns touching a missing price must be undefined")
	}
}

func TestNewPriceSeriesRejectsUnordered(t *testing.T) {
	_, err := NewPriceSeries("X", []PricePoint{
		{Date: MustDate("2024-01-02"), Price: 1},
		{Date: MustDate("2024-01-01"), Price: 1},
	})
	if !errors.Is(err, ErrUnorderedIndex) {
		t.Errorf("expected ErrUnorderedIndex, got %v", err)
	}
	if _, err := NewPriceSeries("X", nil); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries, got %v", err)
	}
}

func TestFingerprintStable(t *testing.T) {
	pts := []PricePoint{{Date: MustDate("2024-01-01"), Price: 1.5}}
	a, _ := NewPriceSeries("X", pts)
	b, _ := NewPriceSeries("X", pts)
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("fingerprints differ for equal series")
	}
	c, _ := NewPriceSeries("Y", pts)
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("fingerprint ignores symbol")
	}
}

func TestNewUniverse(t *testing.T) {
	ix := BusinessDays(MustDate("2024-01-01"), 3)
	in := []StrategyPnL{
		{Name: "b", Family: "momentum", Returns: Series{Undefined, 0.1, 0.2}},
		{Name: "a", Family: "mean_reversion", Returns: Series{0, 0, 0}},
	}
	u, err := NewUniverse(ix, in)
	if err != nil {
		t.Fatalf("NewUniverse: %v", err)
	}
	names := u.Names()
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Errorf("Names = %v, want insertion order", names)
	}
	if u.Family("a") != "mean_reversion" || u.Family("zzz") != "" {
		t.Error("unexpected Family result")
	}

	// The universe owns its data.
	in[0].Returns[1] = 99
	got, err := u.PnL("b")
	if err != nil {
		t.Fatalf("PnL: %v", err)
	}
	if got[1] != 0.1 {
		t.Errorf("universe aliased caller series: %v", got)
	}

	if _, err := u.PnL("zzz"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestNewUniverseErrors(t *testing.T) {
	ix := BusinessDays(MustDate("2024-01-01"), 2)
	_, err := NewUniverse(ix, []StrategyPnL{{Name: "a", Returns: Series{0}}})
	if !errors.Is(err, ErrMisalignedSeries) {
		t.Errorf("expected ErrMisalignedSeries, got %v", err)
	}
	_, err = NewUniverse(ix, []StrategyPnL{
		{Name: "a", Returns: Series{0, 0}},
		{Name: "a", Returns: Series{0, 0}},
	})
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
}

func TestScoreOf(t *testing.T) {
	r := RebalanceRecord{Scores: []StrategyScore{{Name: "a", Score: 1.5}}}
	if v, ok := r.ScoreOf("a"); !ok || v != 1.5 {
		t.Errorf("ScoreOf(a) = %v, %v", v, ok)
	}
	if _, ok := r.ScoreOf("b"); ok {
		t.Error("ScoreOf(b) should be absent")
	}
}
