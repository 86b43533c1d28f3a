package strategy

import "walkforward-lab/internal/domain"

// Default catalog parameters.
var (
	DefaultLookbacks        = []int{2, 4, 8, 16, 32, 64, 128, 256}
	DefaultMAPairs          = [][2]int{{2, 10}, {5, 20}, {10, 50}, {20, 100}, {50, 200}, {100, 300}}
	DefaultBollingerWindows = []int{20, 50}
	DefaultRSIWindows       = []int{14, 28}
	DefaultBreakoutWindows  = []int{20, 55}
)

// DefaultConfigs returns the standard strategy catalog in universe order:
// momentum and mean reversion interleaved per lookback, then crossovers,
// Bollinger, RSI and breakout.
func DefaultConfigs() []domain.StrategyConfig {
	var out []domain.StrategyConfig
	for _, m := range DefaultLookbacks {
		out = append(out,
			domain.StrategyConfig{StrategyType: domain.StrategyTypeMomentum, Lookback: intPtr(m)},
			domain.StrategyConfig{StrategyType: domain.StrategyTypeMeanRev, Lookback: intPtr(m)},
		)
	}
	for _, p := range DefaultMAPairs {
		out = append(out, domain.StrategyConfig{
			StrategyType: domain.StrategyTypeMACrossover,
			ShortWindow:  intPtr(p[0]),
			LongWindow:   intPtr(p[1]),
		})
	}
	for _, w := range DefaultBollingerWindows {
		out = append(out, domain.StrategyConfig{StrategyType: domain.StrategyTypeBollinger, Window: intPtr(w)})
	}
	for _, w := range DefaultRSIWindows {
		out = append(out, domain.StrategyConfig{StrategyType: domain.StrategyTypeRSI, Window: intPtr(w)})
	}
	for _, w := range DefaultBreakoutWindows {
		out = append(out, domain.StrategyConfig{StrategyType: domain.StrategyTypeBreakout, Window: intPtr(w)})
	}
	return out
}

// DefaultCatalog builds the strategies of DefaultConfigs.
func DefaultCatalog() []Strategy {
	out, err := FromConfigs(DefaultConfigs())
	if err != nil {
		// DefaultConfigs is static and valid.
		panic(err)
	}
	return out
}

func intPtr(v int) *int {
	return &v
}
