package reporting

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/metrics"
)

// WritePortfolioCSV writes one row per date: the ensemble return, the growth
// curve, drawdown and rolling Sharpe. Undefined values are empty.
func WritePortfolioCSV(w io.Writer, p domain.PortfolioPnL, tradingDays float64) error {
	growth := metrics.GrowthCurve(p.Returns)
	drawdown := metrics.DrawdownSeries(p.Returns)
	rolling := metrics.RollingSharpe(p.Returns, metrics.DefaultRollingWindow, tradingDays)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "return", "equity", "drawdown", "rolling_sharpe"}); err != nil {
		return err
	}
	for i, d := range p.Index {
		row := []string{
			d.Format(domain.DateLayout),
			formatFloat(p.Returns[i]),
			formatFloat(growth[i]),
			formatFloat(drawdown[i]),
			formatFloat(rolling[i]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRebalancesCSV writes the audit trail: period dates, the selection,
// ensemble statistics, then one score column per strategy.
func WriteRebalancesCSV(w io.Writer, records []domain.RebalanceRecord) error {
	var names []string
	if len(records) > 0 {
		for _, s := range records[0].Scores {
			names = append(names, s.Name)
		}
	}

	header := []string{
		"seq", "start", "end", "lookback_start", "lookback_end",
		"selected", "ensemble_mean", "ensemble_std", "observations",
	}
	for _, n := range names {
		header = append(header, "score_"+n)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		p := r.Period
		row := []string{
			strconv.Itoa(p.Seq),
			p.Start.Format(domain.DateLayout),
			p.End.Format(domain.DateLayout),
			p.LookbackStart.Format(domain.DateLayout),
			p.LookbackEnd.Format(domain.DateLayout),
			strings.Join(r.Selected, "|"),
			formatFloat(r.EnsembleMean),
			formatFloat(r.EnsembleStd),
			strconv.Itoa(r.Observations),
		}
		for _, n := range names {
			v, _ := r.ScoreOf(n)
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatFloat renders undefined as empty and infinities as inf / -inf.
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', 8, 64)
}
