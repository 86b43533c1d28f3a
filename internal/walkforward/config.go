package walkforward

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Configuration errors, reported by New before any period is processed.
var (
	ErrNotMonthly     = errors.New("period must be a whole number of months, e.g. \"24M\" or \"3ME\"")
	ErrInvalidTopN    = errors.New("top_n must be at least 1")
	ErrUnknownScore   = errors.New("unknown score function")
	ErrEmptyUniverse  = errors.New("strategy universe is empty")
	ErrInvalidWorkers = errors.New("workers must not be negative")
	ErrNilUniverse    = errors.New("strategy universe is nil")
)

// Config controls the walk-forward loop.
type Config struct {
	LookbackPeriod    string    // trailing scoring window, e.g. "24M"
	RebalanceFreq     string    // forward window length, e.g. "3M"
	TopN              int       // strategies held per period
	Score             string    // registered score name; empty selects "sharpe"
	ScoreFunc         ScoreFunc // overrides Score when set
	SkipLookbackCheck bool      // process periods whose lookback precedes the data
	Workers           int       // concurrent period evaluation; 0 or 1 is sequential
}

// DefaultConfig returns the standard 24-month lookback, quarterly rebalance,
// top-3 configuration.
func DefaultConfig() Config {
	return Config{
		LookbackPeriod: "24M",
		RebalanceFreq:  "3M",
		TopN:           3,
		Score:          ScoreSharpe,
	}
}

// ParseMonths parses a month count written as "<n>M" or "<n>ME".
func ParseMonths(s string) (int, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case strings.HasSuffix(v, "ME"):
		v = strings.TrimSuffix(v, "ME")
	case strings.HasSuffix(v, "M"):
		v = strings.TrimSuffix(v, "M")
	default:
		return 0, fmt.Errorf("%w: %q", ErrNotMonthly, s)
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrNotMonthly, s)
	}
	return n, nil
}

// resolved is a validated Config.
type resolved struct {
	lookbackMonths  int
	rebalanceMonths int
	topN            int
	scoreName       string
	score           ScoreFunc
	skipCheck       bool
	workers         int
}

func (c Config) resolve() (resolved, error) {
	var r resolved
	var err error
	if r.lookbackMonths, err = ParseMonths(c.LookbackPeriod); err != nil {
		return r, fmt.Errorf("lookback_period: %w", err)
	}
	if r.rebalanceMonths, err = ParseMonths(c.RebalanceFreq); err != nil {
		return r, fmt.Errorf("rebalance_freq: %w", err)
	}
	if c.TopN < 1 {
		return r, fmt.Errorf("%w: %d", ErrInvalidTopN, c.TopN)
	}
	if c.Workers < 0 {
		return r, fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Workers)
	}
	r.topN = c.TopN
	r.skipCheck = c.SkipLookbackCheck
	r.workers = c.Workers

	r.scoreName = c.Score
	if r.scoreName == "" {
		r.scoreName = ScoreSharpe
	}
	if c.ScoreFunc != nil {
		r.score = c.ScoreFunc
		return r, nil
	}
	if r.score, err = LookupScore(r.scoreName); err != nil {
		return r, err
	}
	return r, nil
}
