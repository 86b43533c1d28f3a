package position

import (
	"errors"
	"testing"

	"walkforward-lab/internal/domain"
)

var defaultRule = ExitRule{StopLoss: -0.02, TakeProfit: 0.04}

// stopLossScenario is 300 daily prices: a gentle uptrend, a 2.5% drop from
// the entry price on day 10, then a steady climb.
func stopLossScenario() (prices, signal domain.Series) {
	prices = make(domain.Series, 300)
	signal = make(domain.Series, 300)
	for t := range prices {
		switch {
		case t < 10:
			prices[t] = 100 + 0.01*float64(t)
		default:
			prices[t] = 97.5 + 0.1*float64(t-10)
		}
		if t < 150 {
			signal[t] = 1
		} else {
			signal[t] = -1
		}
	}
	return prices, signal
}

func TestApplyExits_StopLossScenario(t *testing.T) {
	prices, signal := stopLossScenario()

	got, err := ApplyExits(signal, prices, defaultRule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 10; i++ {
		if got[i] != 1 {
			t.Errorf("index %d: expected long before the drop, got %v", i, got[i])
		}
	}
	if got[10] != 0 {
		t.Fatalf("expected forced exit at index 10, got %v", got[10])
	}
	for i := 10; i < 150; i++ {
		if got[i] != 0 {
			t.Fatalf("index %d: expected flat while signal keeps pre-exit direction, got %v", i, got[i])
		}
	}
	if got[150] != -1 {
		t.Errorf("expected short reentry at 150, got %v", got[150])
	}
}

func TestApplyExits_ShortStopsOutOnRally(t *testing.T) {
	prices, signal := stopLossScenario()
	got, _, err := Trace(signal, prices, nil, defaultRule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// reentry at 111.5; -2% for a short is crossed at 113.8 (index 173)
	if got[172] != -1 {
		t.Errorf("expected short held at 172, got %v", got[172])
	}
	if got[173] != 0 {
		t.Errorf("expected stop at 173, got %v", got[173])
	}
	for i := 173; i < len(got); i++ {
		if got[i] != 0 {
			t.Fatalf("index %d: expected flat after stop, got %v", i, got[i])
		}
	}
}

func TestApplyExits_TakeProfit(t *testing.T) {
	prices := domain.Series{100, 102, 104, 104, 104}
	signal := domain.Series{1, 1, 1, 1, -1}
	got, trace, err := Trace(signal, prices, nil, defaultRule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.Series{1, 1, 0, 0, -1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if trace[2].Reason != ReasonTakeProfit {
		t.Errorf("expected take_profit at 2, got %s", trace[2].Reason)
	}
	if trace[4].Reason != ReasonReenter {
		t.Errorf("expected reenter at 4, got %s", trace[4].Reason)
	}
}

func TestApplyExits_NeutralSignalDoesNotReenter(t *testing.T) {
	prices := domain.Series{100, 97, 97, 97, 97}
	signal := domain.Series{1, 1, 0, 1, 0}
	got, err := ApplyExits(signal, prices, defaultRule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i] != 0 {
			t.Errorf("index %d: expected flat, got %v", i, got[i])
		}
	}
}

func TestApplyExits_UndefinedHoldsPrevious(t *testing.T) {
	nan := domain.Undefined
	prices := domain.Series{100, nan, 101, 101}
	signal := domain.Series{1, -1, nan, 1}
	got, err := ApplyExits(signal, prices, defaultRule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.Series{1, 1, 1, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestApplyExits_DirectReversal(t *testing.T) {
	prices := domain.Series{100, 100.5, 101}
	signal := domain.Series{1, -1, -1}
	got, trace, err := Trace(signal, prices, nil, defaultRule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[1] != -1 || trace[1].Reason != ReasonReverse {
		t.Errorf("expected reversal at 1, got %v (%s)", got[1], trace[1].Reason)
	}
}

func TestApplyExits_ReversalHonorsMinHold(t *testing.T) {
	rule := defaultRule
	rule.MinHold = 3
	prices := domain.Series{100, 100, 100, 100, 100}
	signal := domain.Series{1, -1, -1, -1, -1}
	got, trace, err := Trace(signal, prices, nil, rule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.Series{1, 1, 1, -1, -1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if trace[1].Reason != ReasonSuppressed {
		t.Errorf("expected suppressed at 1, got %s", trace[1].Reason)
	}
}

func TestApplyExits_ZeroEntryPriceDisablesCheck(t *testing.T) {
	prices := domain.Series{0, 50, 100}
	signal := domain.Series{1, 1, 1}
	got, err := ApplyExits(signal, prices, defaultRule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range got {
		if v != 1 {
			t.Errorf("index %d: expected long carried, got %v", i, v)
		}
	}
}

func TestApplyExitsGated_RegimeFirst(t *testing.T) {
	// the drop at 1 would stop out, but the regime is closed that step
	prices := domain.Series{100, 97, 97, 97}
	signal := domain.Series{1, 1, 1, 1}
	permitted := []bool{true, false, true, true}
	got, trace, err := Trace(signal, prices, permitted, defaultRule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trace[1].Reason != ReasonRegime {
		t.Errorf("expected regime at 1, got %s", trace[1].Reason)
	}
	// stopped-out state was not entered, so the same direction may enter again
	if got[2] != 1 || trace[2].Reason != ReasonEnter {
		t.Errorf("expected fresh entry at 2, got %v (%s)", got[2], trace[2].Reason)
	}
}

func TestApplyExitsGated_LengthMismatch(t *testing.T) {
	_, err := ApplyExitsGated(domain.Series{1, 1}, domain.Series{1, 1}, []bool{true}, defaultRule)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestExitRule_Validate(t *testing.T) {
	tests := []struct {
		name string
		rule ExitRule
		want error
	}{
		{"valid", defaultRule, nil},
		{"positive stop", ExitRule{StopLoss: 0.02, TakeProfit: 0.04}, ErrInvalidStopLoss},
		{"zero take profit", ExitRule{StopLoss: -0.02}, ErrInvalidTakeProfit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestApplyExits_NoLookahead(t *testing.T) {
	prices, signal := stopLossScenario()
	base, err := ApplyExits(signal, prices, defaultRule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const cut = 120
	mutatedPrices := prices.Clone()
	mutatedSignal := signal.Clone()
	for i := cut + 1; i < len(prices); i++ {
		mutatedPrices[i] *= 3
		mutatedSignal[i] = -mutatedSignal[i]
	}
	mutated, err := ApplyExits(mutatedSignal, mutatedPrices, defaultRule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i <= cut; i++ {
		if base[i] != mutated[i] {
			t.Fatalf("index %d changed after mutating future data: %v -> %v", i, base[i], mutated[i])
		}
	}
}

func TestApplyExits_ExitThenReentryInvariant(t *testing.T) {
	prices, signal := stopLossScenario()
	got, trace, err := Trace(signal, prices, nil, defaultRule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var exitedFrom float64
	stopped := false
	for i, tr := range trace {
		if tr.Reason == ReasonStopLoss || tr.Reason == ReasonTakeProfit {
			exitedFrom = got[i-1]
			stopped = true
			continue
		}
		if !stopped {
			continue
		}
		if got[i] != 0 {
			if signal[i] == 0 || signal[i] == exitedFrom {
				t.Fatalf("index %d: reentered with signal %v after exit from %v", i, signal[i], exitedFrom)
			}
			stopped = false
		}
	}
}
