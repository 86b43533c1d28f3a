package domain

// StrategyConfig describes one signal generator. Only the parameters of the
// selected StrategyType are read.
type StrategyConfig struct {
	StrategyType string `yaml:"type" json:"type"` // MOMENTUM | MEANREV | MA_CROSSOVER | BOLLINGER | RSI | BREAKOUT

	// MOMENTUM / MEANREV parameters
	Lookback *int `yaml:"lookback,omitempty" json:"lookback,omitempty"`

	// MA_CROSSOVER parameters
	ShortWindow *int `yaml:"short_window,omitempty" json:"short_window,omitempty"`
	LongWindow  *int `yaml:"long_window,omitempty" json:"long_window,omitempty"`

	// BOLLINGER / RSI / BREAKOUT parameters
	Window *int `yaml:"window,omitempty" json:"window,omitempty"`

	// BOLLINGER band width in standard deviations (default 2)
	BandWidth *float64 `yaml:"band_width,omitempty" json:"band_width,omitempty"`

	// RSI thresholds (default 30 / 70)
	Oversold   *float64 `yaml:"oversold,omitempty" json:"oversold,omitempty"`
	Overbought *float64 `yaml:"overbought,omitempty" json:"overbought,omitempty"`
}

// Strategy type constants
const (
	StrategyTypeMomentum    = "MOMENTUM"
	StrategyTypeMeanRev     = "MEANREV"
	StrategyTypeMACrossover = "MA_CROSSOVER"
	StrategyTypeBollinger   = "BOLLINGER"
	StrategyTypeRSI         = "RSI"
	StrategyTypeBreakout    = "BREAKOUT"
)
