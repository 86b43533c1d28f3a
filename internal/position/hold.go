// Package position turns raw directional signals into executable positions.
//
// Both machines are explicit state structs advanced one step at a time by a
// strict left-to-right fold over the index. No step reads data beyond t.
package position

import "walkforward-lab/internal/domain"

// HoldState is the holding-period gate state.
type HoldState struct {
	Position   float64 // current position in {-1, 0, +1}
	LastChange int     // index of the last honored change
}

// NewHoldState returns a flat state whose first change is always allowed.
func NewHoldState(minHold int) HoldState {
	return HoldState{LastChange: -minHold}
}

// Step advances the gate at index t. An undefined signal holds the current
// position. A change, including a change to flat, is honored only once at
// least minHold steps have passed since the previous change.
func (s *HoldState) Step(t int, signal float64, minHold int) float64 {
	if !domain.IsDefined(signal) {
		return s.Position
	}
	if signal != s.Position && t-s.LastChange >= minHold {
		s.Position = signal
		s.LastChange = t
	}
	return s.Position
}

// Apply runs the holding-period gate over raw. minHold <= 1 lets every
// change through.
func Apply(raw domain.Series, minHold int) domain.Series {
	out := make(domain.Series, len(raw))
	state := NewHoldState(minHold)
	for t, sig := range raw {
		out[t] = state.Step(t, sig, minHold)
	}
	return out
}
