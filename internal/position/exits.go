package position

import (
	"errors"
	"fmt"

	"walkforward-lab/internal/domain"
)

// Errors returned by ExitRule validation and the exit fold.
var (
	ErrInvalidStopLoss   = errors.New("stop loss must be negative")
	ErrInvalidTakeProfit = errors.New("take profit must be positive")
	ErrLengthMismatch    = errors.New("position, price and permission series must have equal length")
)

// ExitRule holds stop-loss / take-profit thresholds as fractional P&L from
// entry, plus an optional holding period applied to reversals.
type ExitRule struct {
	StopLoss   float64 // e.g. -0.02
	TakeProfit float64 // e.g. 0.04
	MinHold    int     // steps required between changes before a reversal; 0 disables
}

// Validate checks threshold signs.
func (r ExitRule) Validate() error {
	if !(r.StopLoss < 0) {
		return fmt.Errorf("%w: %v", ErrInvalidStopLoss, r.StopLoss)
	}
	if !(r.TakeProfit > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTakeProfit, r.TakeProfit)
	}
	return nil
}

// Reason labels why a step produced its output.
type Reason string

// Step reasons.
const (
	ReasonCarry      Reason = "carry"
	ReasonUndefined  Reason = "undefined"
	ReasonEnter      Reason = "enter"
	ReasonReverse    Reason = "reverse"
	ReasonSuppressed Reason = "suppressed"
	ReasonStopLoss   Reason = "stop_loss"
	ReasonTakeProfit Reason = "take_profit"
	ReasonStoppedOut Reason = "stopped_out"
	ReasonReenter    Reason = "reenter"
	ReasonRegime     Reason = "regime"
)

// ExitState is the stop-loss / take-profit machine state.
// EntryPrice is meaningful only while HasEntry is set; it is cleared on every
// flattening event.
type ExitState struct {
	Position       float64 // current position in {-1, 0, +1}
	EntryPrice     float64 // price at the last entry, reentry or reversal
	HasEntry       bool    // entry price is set
	BarsSinceTrade int     // steps since the last position change
	StoppedOut     bool    // forced flat by an exit, waiting for a different direction
	ExitedFrom     float64 // direction held immediately before the forced exit
}

// Step advances the machine by one observation. permitted=false is the
// regime gate: it is evaluated before anything else and forces flat,
// clearing entry and stopped-out state for that step.
func (s *ExitState) Step(signal, price float64, permitted bool, rule ExitRule) (float64, Reason) {
	s.BarsSinceTrade++

	if !permitted {
		if s.Position != 0 {
			s.BarsSinceTrade = 0
		}
		s.flatten()
		s.StoppedOut = false
		s.ExitedFrom = 0
		return 0, ReasonRegime
	}

	if !domain.IsDefined(signal) || !domain.IsDefined(price) {
		return s.Position, ReasonUndefined
	}

	if s.StoppedOut {
		if signal != 0 && signal != s.ExitedFrom {
			s.StoppedOut = false
			s.ExitedFrom = 0
			s.enter(signal, price)
			return s.Position, ReasonReenter
		}
		return 0, ReasonStoppedOut
	}

	if s.Position == 0 {
		if signal != 0 {
			s.enter(signal, price)
			return s.Position, ReasonEnter
		}
		return 0, ReasonCarry
	}

	// Entry price 0 disables the exit check.
	if s.HasEntry && s.EntryPrice != 0 {
		pnlPct := s.Position * (price - s.EntryPrice) / s.EntryPrice
		switch {
		case pnlPct <= rule.StopLoss:
			s.forceExit()
			return 0, ReasonStopLoss
		case pnlPct >= rule.TakeProfit:
			s.forceExit()
			return 0, ReasonTakeProfit
		}
	}

	if signal != 0 && signal != s.Position {
		if rule.MinHold > 0 && s.BarsSinceTrade < rule.MinHold {
			return s.Position, ReasonSuppressed
		}
		s.enter(signal, price)
		return s.Position, ReasonReverse
	}

	return s.Position, ReasonCarry
}

func (s *ExitState) enter(direction, price float64) {
	s.Position = direction
	s.EntryPrice = price
	s.HasEntry = true
	s.BarsSinceTrade = 0
}

func (s *ExitState) forceExit() {
	s.ExitedFrom = s.Position
	s.StoppedOut = true
	s.BarsSinceTrade = 0
	s.flatten()
}

func (s *ExitState) flatten() {
	s.Position = 0
	s.EntryPrice = 0
	s.HasEntry = false
}

// Transition is one traced step of the exit machine.
type Transition struct {
	Index    int
	Position float64
	Reason   Reason
}

// ApplyExits runs the stop-loss / take-profit machine over position.
func ApplyExits(position, prices domain.Series, rule ExitRule) (domain.Series, error) {
	out, _, err := run(position, prices, nil, rule, false)
	return out, err
}

// ApplyExitsGated is ApplyExits with a per-step permission mask (already
// lagged by the caller). Steps that are not permitted output flat.
func ApplyExitsGated(position, prices domain.Series, permitted []bool, rule ExitRule) (domain.Series, error) {
	if len(permitted) != len(position) {
		return nil, fmt.Errorf("%w: %d positions, %d permission flags",
			ErrLengthMismatch, len(position), len(permitted))
	}
	out, _, err := run(position, prices, permitted, rule, false)
	return out, err
}

// Trace runs the machine and also returns every step's transition reason.
// permitted may be nil.
func Trace(position, prices domain.Series, permitted []bool, rule ExitRule) (domain.Series, []Transition, error) {
	if permitted != nil && len(permitted) != len(position) {
		return nil, nil, fmt.Errorf("%w: %d positions, %d permission flags",
			ErrLengthMismatch, len(position), len(permitted))
	}
	return run(position, prices, permitted, rule, true)
}

func run(position, prices domain.Series, permitted []bool, rule ExitRule, trace bool) (domain.Series, []Transition, error) {
	if err := rule.Validate(); err != nil {
		return nil, nil, err
	}
	if len(position) != len(prices) {
		return nil, nil, fmt.Errorf("%w: %d positions, %d prices",
			ErrLengthMismatch, len(position), len(prices))
	}

	out := make(domain.Series, len(position))
	var transitions []Transition
	if trace {
		transitions = make([]Transition, 0, len(position))
	}

	var state ExitState
	for t := range position {
		ok := permitted == nil || permitted[t]
		pos, reason := state.Step(position[t], prices[t], ok, rule)
		out[t] = pos
		if trace {
			transitions = append(transitions, Transition{Index: t, Position: pos, Reason: reason})
		}
	}
	return out, transitions, nil
}
