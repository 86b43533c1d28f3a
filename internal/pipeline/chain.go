package pipeline

import (
	"fmt"

	"walkforward-lab/internal/config"
	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/pnl"
	"walkforward-lab/internal/position"
	"walkforward-lab/internal/risk"
	"walkforward-lab/internal/strategy"
)

// Chain turns one strategy's raw signal into its cost-adjusted PnL:
// holding gate, then exits with the regime gate, then volatility scaling,
// then turnover cost.
type Chain struct {
	MinHold      int
	Exits        *position.ExitRule // nil skips the exit machine
	RegimeWindow int                // 0 disables regime gating
	Vol          *risk.VolTarget    // nil skips volatility scaling
	TCost        float64
}

// ChainFromConfig builds the chain settings from cfg.
func ChainFromConfig(cfg *config.Config) Chain {
	c := Chain{
		MinHold: cfg.Position.MinHold,
		TCost:   cfg.TCost(),
	}
	if cfg.ExitsEnabled() {
		rule := cfg.ExitRule()
		c.Exits = &rule
	}
	if cfg.RegimeGating() {
		c.RegimeWindow = cfg.Risk.RegimeWindow
	}
	if cfg.VolScaling() {
		vol := cfg.VolTarget()
		c.Vol = &vol
	}
	return c
}

// Validate checks every enabled stage.
func (c Chain) Validate() error {
	if c.Exits != nil {
		if err := c.Exits.Validate(); err != nil {
			return fmt.Errorf("exits: %w", err)
		}
	}
	if c.Vol != nil {
		if err := c.Vol.Validate(); err != nil {
			return fmt.Errorf("vol target: %w", err)
		}
	}
	if c.TCost < 0 {
		return fmt.Errorf("%w: %v", pnl.ErrNegativeCost, c.TCost)
	}
	return nil
}

// Masks precomputes the lagged permission mask of every regime the
// strategies need. RegimeAny and disabled gating map to nil.
func (c Chain) Masks(prices domain.Series, strategies []strategy.Strategy) map[risk.Regime][]bool {
	masks := make(map[risk.Regime][]bool)
	if c.RegimeWindow <= 0 {
		return masks
	}
	for _, s := range strategies {
		r := s.Family().Regime()
		if r == risk.RegimeAny {
			continue
		}
		if _, ok := masks[r]; !ok {
			masks[r] = risk.Lag(risk.Classify(r, prices, c.RegimeWindow))
		}
	}
	return masks
}

// Run computes the PnL of s. permitted is the lagged regime mask, or nil.
func (c Chain) Run(s strategy.Strategy, prices, returns domain.Series, permitted []bool) (domain.StrategyPnL, error) {
	pos := position.Apply(s.Signal(prices), c.MinHold)

	var err error
	switch {
	case c.Exits != nil && permitted != nil:
		pos, err = position.ApplyExitsGated(pos, prices, permitted, *c.Exits)
	case c.Exits != nil:
		pos, err = position.ApplyExits(pos, prices, *c.Exits)
	case permitted != nil:
		pos, err = gate(pos, permitted)
	}
	if err != nil {
		return domain.StrategyPnL{}, fmt.Errorf("%s: position: %w", s.ID(), err)
	}

	if c.Vol != nil {
		if pos, err = risk.Scale(pos, returns, *c.Vol); err != nil {
			return domain.StrategyPnL{}, fmt.Errorf("%s: vol scale: %w", s.ID(), err)
		}
	}

	ret, err := pnl.Compute(pos, returns, c.TCost)
	if err != nil {
		return domain.StrategyPnL{}, fmt.Errorf("%s: pnl: %w", s.ID(), err)
	}

	return domain.StrategyPnL{
		Name:    s.ID(),
		Family:  string(s.Family()),
		Returns: ret,
	}, nil
}

// gate flattens steps an already lagged mask does not permit.
func gate(pos domain.Series, permitted []bool) (domain.Series, error) {
	if len(pos) != len(permitted) {
		return nil, fmt.Errorf("%w: %d positions, %d permission flags",
			risk.ErrLengthMismatch, len(pos), len(permitted))
	}
	out := make(domain.Series, len(pos))
	for t := range pos {
		if permitted[t] {
			out[t] = pos[t]
		}
	}
	return out, nil
}
