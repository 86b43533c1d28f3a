package idhash

import (
	"strings"
	"testing"

	"github.com/mr-tron/base58"

	"walkforward-lab/internal/domain"
)

func testPrices(prices ...float64) *domain.PriceSeries {
	return &domain.PriceSeries{
		Symbol: "SPX",
		Index:  domain.BusinessDays(domain.MustDate("2020-01-01"), len(prices)),
		Prices: domain.Series(prices),
	}
}

func TestComputeRunID_Determinism(t *testing.T) {
	cfg := []byte(`{"top_n":3}`)
	prices := testPrices(100, 101, 102)

	first := ComputeRunID(cfg, prices)
	for i := 0; i < 10; i++ {
		if got := ComputeRunID(cfg, prices); got != first {
			t.Fatalf("ComputeRunID() not deterministic: %s != %s", got, first)
		}
	}

	raw, err := base58.Decode(first)
	if err != nil {
		t.Fatalf("run id is not base58: %v", err)
	}
	if len(raw) != 32 {
		t.Errorf("decoded run id length = %d, want 32", len(raw))
	}
}

func TestComputeRunID_Sensitivity(t *testing.T) {
	cfg := []byte(`{"top_n":3}`)
	base := ComputeRunID(cfg, testPrices(100, 101, 102))

	tests := []struct {
		name   string
		cfg    []byte
		prices *domain.PriceSeries
	}{
		{"config change", []byte(`{"top_n":4}`), testPrices(100, 101, 102)},
		{"price change", cfg, testPrices(100, 101, 102.5)},
		{"extra observation", cfg, testPrices(100, 101, 102, 103)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeRunID(tt.cfg, tt.prices); got == base {
				t.Errorf("expected a different run id for %s", tt.name)
			}
		})
	}
}

func TestComputeUniverseKey(t *testing.T) {
	cfg := []byte(`{"tcost":0.00015}`)
	prices := testPrices(100, 101)

	key := ComputeUniverseKey(cfg, prices)
	if !strings.HasPrefix(key, "universe:") {
		t.Errorf("key %q missing prefix", key)
	}
	if strings.TrimPrefix(key, "universe:") == ComputeRunID(cfg, prices) {
		t.Error("universe key must not collide with the run id of the same inputs")
	}
}
