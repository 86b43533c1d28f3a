package strategy

import (
	"errors"
	"testing"

	"walkforward-lab/internal/domain"
)

func intP(v int) *int           { return &v }
func floatP(v float64) *float64 { return &v }

func TestFromConfig_Momentum(t *testing.T) {
	s, err := FromConfig(domain.StrategyConfig{
		StrategyType: domain.StrategyTypeMomentum,
		Lookback:     intP(20),
	})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	m, ok := s.(*MomentumStrategy)
	if !ok {
		t.Fatalf("expected *MomentumStrategy, got %T", s)
	}
	if m.Inverted {
		t.Errorf("expected non-inverted momentum")
	}
	if s.ID() != "20D_momentum" {
		t.Errorf("expected 20D_momentum, got %s", s.ID())
	}
}

func TestFromConfig_MeanRev(t *testing.T) {
	s, err := FromConfig(domain.StrategyConfig{
		StrategyType: domain.StrategyTypeMeanRev,
		Lookback:     intP(8),
	})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	if s.ID() != "8D_meanrev" {
		t.Errorf("expected 8D_meanrev, got %s", s.ID())
	}
	if s.Family() != FamilyMeanRev {
		t.Errorf("expected meanrev family, got %s", s.Family())
	}
}

func TestFromConfig_MACrossover(t *testing.T) {
	s, err := FromConfig(domain.StrategyConfig{
		StrategyType: domain.StrategyTypeMACrossover,
		ShortWindow:  intP(5),
		LongWindow:   intP(20),
	})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	if s.ID() != "5_20_ma_crossover" {
		t.Errorf("expected 5_20_ma_crossover, got %s", s.ID())
	}
}

func TestFromConfig_BollingerDefaults(t *testing.T) {
	s, err := FromConfig(domain.StrategyConfig{
		StrategyType: domain.StrategyTypeBollinger,
		Window:       intP(20),
	})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	b := s.(*BollingerStrategy)
	if b.BandWidth != DefaultBandWidth {
		t.Errorf("expected default band width %v, got %v", DefaultBandWidth, b.BandWidth)
	}
}

func TestFromConfig_RSIOverrides(t *testing.T) {
	s, err := FromConfig(domain.StrategyConfig{
		StrategyType: domain.StrategyTypeRSI,
		Window:       intP(14),
		Oversold:     floatP(20),
		Overbought:   floatP(80),
	})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	r := s.(*RSIStrategy)
	if r.Oversold != 20 || r.Overbought != 80 {
		t.Errorf("expected 20/80, got %v/%v", r.Oversold, r.Overbought)
	}
}

func TestFromConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  domain.StrategyConfig
		want error
	}{
		{"unknown type", domain.StrategyConfig{StrategyType: "PAIRS"}, ErrUnknownStrategyType},
		{"momentum without lookback", domain.StrategyConfig{StrategyType: domain.StrategyTypeMomentum}, ErrMissingLookback},
		{"momentum zero lookback", domain.StrategyConfig{StrategyType: domain.StrategyTypeMomentum, Lookback: intP(0)}, ErrInvalidWindow},
		{"crossover missing long", domain.StrategyConfig{StrategyType: domain.StrategyTypeMACrossover, ShortWindow: intP(5)}, ErrMissingMAWindows},
		{"crossover inverted", domain.StrategyConfig{StrategyType: domain.StrategyTypeMACrossover, ShortWindow: intP(50), LongWindow: intP(20)}, ErrInvalidMAWindows},
		{"breakout without window", domain.StrategyConfig{StrategyType: domain.StrategyTypeBreakout}, ErrMissingWindow},
		{"bollinger window one", domain.StrategyConfig{StrategyType: domain.StrategyTypeBollinger, Window: intP(1)}, ErrInvalidWindow},
		{"rsi inverted thresholds", domain.StrategyConfig{StrategyType: domain.StrategyTypeRSI, Window: intP(14), Oversold: floatP(80), Overbought: floatP(20)}, ErrInvalidThresholds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromConfig(tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFromConfigs_RejectsDuplicates(t *testing.T) {
	cfg := domain.StrategyConfig{StrategyType: domain.StrategyTypeBreakout, Window: intP(20)}
	_, err := FromConfigs([]domain.StrategyConfig{cfg, cfg})
	if !errors.Is(err, ErrDuplicateStrategy) {
		t.Errorf("expected ErrDuplicateStrategy, got %v", err)
	}
}

func TestDefaultCatalog_OrderAndNames(t *testing.T) {
	catalog := DefaultCatalog()
	if len(catalog) != 28 {
		t.Fatalf("expected 28 strategies, got %d", len(catalog))
	}
	wantPrefix := []string{"2D_momentum", "2D_meanrev", "4D_momentum", "4D_meanrev"}
	for i, want := range wantPrefix {
		if catalog[i].ID() != want {
			t.Errorf("index %d: expected %s, got %s", i, want, catalog[i].ID())
		}
	}
	if got := catalog[16].ID(); got != "2_10_ma_crossover" {
		t.Errorf("expected first crossover at 16, got %s", got)
	}
	if got := catalog[len(catalog)-1].ID(); got != "55D_breakout" {
		t.Errorf("expected 55D_breakout last, got %s", got)
	}
}
