package strategy

import (
	"errors"
	"fmt"

	"walkforward-lab/internal/domain"
)

// Factory errors
var (
	ErrUnknownStrategyType = errors.New("unknown strategy type")
	ErrMissingLookback     = errors.New("MOMENTUM/MEANREV requires Lookback")
	ErrMissingMAWindows    = errors.New("MA_CROSSOVER requires ShortWindow and LongWindow")
	ErrInvalidMAWindows    = errors.New("MA_CROSSOVER requires ShortWindow < LongWindow")
	ErrMissingWindow       = errors.New("BOLLINGER/RSI/BREAKOUT requires Window")
	ErrInvalidWindow       = errors.New("window must be positive")
	ErrInvalidThresholds   = errors.New("RSI requires 0 <= Oversold < Overbought <= 100")
	ErrDuplicateStrategy   = errors.New("duplicate strategy id")
)

// Default parameters used when a config leaves them unset.
const (
	DefaultBandWidth  = 2.0
	DefaultOversold   = 30.0
	DefaultOverbought = 70.0
)

// FromConfig creates a Strategy from domain.StrategyConfig.
// Validates required parameters per strategy type.
func FromConfig(cfg domain.StrategyConfig) (Strategy, error) {
	switch cfg.StrategyType {
	case domain.StrategyTypeMomentum, domain.StrategyTypeMeanRev:
		return fromMomentumConfig(cfg)
	case domain.StrategyTypeMACrossover:
		return fromCrossoverConfig(cfg)
	case domain.StrategyTypeBollinger:
		return fromBollingerConfig(cfg)
	case domain.StrategyTypeRSI:
		return fromRSIConfig(cfg)
	case domain.StrategyTypeBreakout:
		w, err := requireWindow(cfg.Window)
		if err != nil {
			return nil, err
		}
		return NewBreakoutStrategy(w), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategyType, cfg.StrategyType)
	}
}

// FromConfigs builds strategies in order and rejects duplicate ids.
func FromConfigs(cfgs []domain.StrategyConfig) ([]Strategy, error) {
	out := make([]Strategy, 0, len(cfgs))
	seen := make(map[string]struct{}, len(cfgs))
	for i, cfg := range cfgs {
		s, err := FromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("strategy %d: %w", i, err)
		}
		if _, dup := seen[s.ID()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStrategy, s.ID())
		}
		seen[s.ID()] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

func fromMomentumConfig(cfg domain.StrategyConfig) (*MomentumStrategy, error) {
	if cfg.Lookback == nil {
		return nil, ErrMissingLookback
	}
	if *cfg.Lookback < 1 {
		return nil, fmt.Errorf("%w: lookback %d", ErrInvalidWindow, *cfg.Lookback)
	}
	if cfg.StrategyType == domain.StrategyTypeMeanRev {
		return NewMeanReversionStrategy(*cfg.Lookback), nil
	}
	return NewMomentumStrategy(*cfg.Lookback), nil
}

func fromCrossoverConfig(cfg domain.StrategyConfig) (*MACrossoverStrategy, error) {
	if cfg.ShortWindow == nil || cfg.LongWindow == nil {
		return nil, ErrMissingMAWindows
	}
	if *cfg.ShortWindow < 1 {
		return nil, fmt.Errorf("%w: short window %d", ErrInvalidWindow, *cfg.ShortWindow)
	}
	if *cfg.ShortWindow >= *cfg.LongWindow {
		return nil, fmt.Errorf("%w: %d >= %d", ErrInvalidMAWindows, *cfg.ShortWindow, *cfg.LongWindow)
	}
	return NewMACrossoverStrategy(*cfg.ShortWindow, *cfg.LongWindow), nil
}

func fromBollingerConfig(cfg domain.StrategyConfig) (*BollingerStrategy, error) {
	w, err := requireWindow(cfg.Window)
	if err != nil {
		return nil, err
	}
	if w < 2 {
		return nil, fmt.Errorf("%w: bollinger window %d needs at least 2", ErrInvalidWindow, w)
	}
	width := DefaultBandWidth
	if cfg.BandWidth != nil {
		width = *cfg.BandWidth
	}
	return NewBollingerStrategy(w, width), nil
}

func fromRSIConfig(cfg domain.StrategyConfig) (*RSIStrategy, error) {
	w, err := requireWindow(cfg.Window)
	if err != nil {
		return nil, err
	}
	lo, hi := DefaultOversold, DefaultOverbought
	if cfg.Oversold != nil {
		lo = *cfg.Oversold
	}
	if cfg.Overbought != nil {
		hi = *cfg.Overbought
	}
	if lo < 0 || hi > 100 || lo >= hi {
		return nil, fmt.Errorf("%w: %v/%v", ErrInvalidThresholds, lo, hi)
	}
	return NewRSIStrategy(w, lo, hi), nil
}

func requireWindow(w *int) (int, error) {
	if w == nil {
		return 0, ErrMissingWindow
	}
	if *w < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidWindow, *w)
	}
	return *w, nil
}
