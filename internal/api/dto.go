package api

import (
	"encoding/json"
	"math"
	"time"

	"walkforward-lab/internal/domain"
)

// Undefined and infinite values encode as null.
func number(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// SummaryResponse is a PerformanceSummary with undefined values as null.
type SummaryResponse struct {
	TotalReturn      *float64 `json:"total_return"`
	AnnualizedReturn *float64 `json:"annualized_return"`
	AnnualizedVol    *float64 `json:"annualized_vol"`
	Sharpe           *float64 `json:"sharpe"`
	MaxDrawdown      *float64 `json:"max_drawdown"`
	Calmar           *float64 `json:"calmar"`
	WinRate          *float64 `json:"win_rate"`
	ProfitFactor     *float64 `json:"profit_factor"`
	BestPeriod       *float64 `json:"best_period"`
	WorstPeriod      *float64 `json:"worst_period"`
	Observations     int      `json:"observations"`
}

func newSummary(s domain.PerformanceSummary) SummaryResponse {
	return SummaryResponse{
		TotalReturn:      number(s.TotalReturn),
		AnnualizedReturn: number(s.AnnualizedReturn),
		AnnualizedVol:    number(s.AnnualizedVol),
		Sharpe:           number(s.Sharpe),
		MaxDrawdown:      number(s.MaxDrawdown),
		Calmar:           number(s.Calmar),
		WinRate:          number(s.WinRate),
		ProfitFactor:     number(s.ProfitFactor),
		BestPeriod:       number(s.BestPeriod),
		WorstPeriod:      number(s.WorstPeriod),
		Observations:     s.Observations,
	}
}

// RunResponse is the JSON form of a stored run.
type RunResponse struct {
	RunID      string          `json:"run_id"`
	Symbol     string          `json:"symbol"`
	Strategies int             `json:"strategies"`
	Periods    int             `json:"periods"`
	FirstDate  string          `json:"first_date"`
	LastDate   string          `json:"last_date"`
	CreatedAt  time.Time       `json:"created_at"`
	Summary    SummaryResponse `json:"summary"`
	Config     json.RawMessage `json:"config,omitempty"`
}

func newRun(r *domain.RunRecord, withConfig bool) RunResponse {
	resp := RunResponse{
		RunID:      r.RunID,
		Symbol:     r.Symbol,
		Strategies: r.Strategies,
		Periods:    r.Periods,
		FirstDate:  r.FirstDate.Format(domain.DateLayout),
		LastDate:   r.LastDate.Format(domain.DateLayout),
		CreatedAt:  r.CreatedAt,
		Summary:    newSummary(r.Summary),
	}
	if withConfig && json.Valid(r.Config) {
		resp.Config = json.RawMessage(r.Config)
	}
	return resp
}

// ScoreResponse is one strategy's lookback score.
type ScoreResponse struct {
	Name         string   `json:"name"`
	Score        *float64 `json:"score"`
	Observations int      `json:"observations"`
}

// RebalanceResponse is the JSON form of a rebalance record.
type RebalanceResponse struct {
	Seq           int             `json:"seq"`
	Start         string          `json:"start"`
	End           string          `json:"end"`
	LookbackStart string          `json:"lookback_start"`
	LookbackEnd   string          `json:"lookback_end"`
	Selected      []string        `json:"selected"`
	EnsembleMean  *float64        `json:"ensemble_mean"`
	EnsembleStd   *float64        `json:"ensemble_std"`
	Observations  int             `json:"observations"`
	Scores        []ScoreResponse `json:"scores"`
}

func newRebalance(r domain.RebalanceRecord) RebalanceResponse {
	p := r.Period
	resp := RebalanceResponse{
		Seq:           p.Seq,
		Start:         p.Start.Format(domain.DateLayout),
		End:           p.End.Format(domain.DateLayout),
		LookbackStart: p.LookbackStart.Format(domain.DateLayout),
		LookbackEnd:   p.LookbackEnd.Format(domain.DateLayout),
		Selected:      r.Selected,
		EnsembleMean:  number(r.EnsembleMean),
		EnsembleStd:   number(r.EnsembleStd),
		Observations:  r.Observations,
		Scores:        make([]ScoreResponse, len(r.Scores)),
	}
	if resp.Selected == nil {
		resp.Selected = []string{}
	}
	for i, s := range r.Scores {
		resp.Scores[i] = ScoreResponse{Name: s.Name, Score: number(s.Score), Observations: s.Observations}
	}
	return resp
}

// PortfolioPoint is one stored ensemble return.
type PortfolioPoint struct {
	Date   string   `json:"date"`
	Return *float64 `json:"return"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
