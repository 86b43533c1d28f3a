package reporting

import (
	"fmt"
	"strings"
	"time"

	"walkforward-lab/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Walk-Forward Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: `%s` | Symbol: %s | Strategies: %d | Periods: %d\n\n",
		r.Run.RunID, r.Run.Symbol, r.Run.Strategies, len(r.Rebalances)))

	// Performance
	s := r.Summary
	sb.WriteString("## Performance\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Return | %s |\n", pct(s.TotalReturn)))
	sb.WriteString(fmt.Sprintf("| Annualized Return | %s |\n", pct(s.AnnualizedReturn)))
	sb.WriteString(fmt.Sprintf("| Annualized Volatility | %s |\n", pct(s.AnnualizedVol)))
	sb.WriteString(fmt.Sprintf("| Sharpe Ratio | %s |\n", ratio(s.Sharpe)))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %s |\n", pct(s.MaxDrawdown)))
	sb.WriteString(fmt.Sprintf("| Calmar Ratio | %s |\n", ratio(s.Calmar)))
	sb.WriteString(fmt.Sprintf("| Win Rate | %s |\n", pct(s.WinRate)))
	sb.WriteString(fmt.Sprintf("| Profit Factor | %s |\n", ratio(s.ProfitFactor)))
	sb.WriteString(fmt.Sprintf("| Best Period | %s |\n", pct(s.BestPeriod)))
	sb.WriteString(fmt.Sprintf("| Worst Period | %s |\n", pct(s.WorstPeriod)))
	sb.WriteString(fmt.Sprintf("| Observations | %d |\n", s.Observations))
	sb.WriteString("\n")

	// Selection frequency
	sb.WriteString("## Selection Frequency\n\n")
	if len(r.Selections) > 0 {
		sb.WriteString("| Strategy | Periods | Share |\n")
		sb.WriteString("|----------|---------|-------|\n")
		for _, row := range r.Selections {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s |\n", row.Name, row.Periods, pct(row.Share)))
		}
	} else {
		sb.WriteString("No periods recorded.\n")
	}
	sb.WriteString("\n")

	// Standalone strategies
	if len(r.Strategies) > 0 {
		sb.WriteString("## Standalone Strategies\n\n")
		sb.WriteString("| Strategy | Family | Ann. Return | Ann. Vol | Sharpe | Max DD |\n")
		sb.WriteString("|----------|--------|-------------|----------|--------|--------|\n")
		for _, row := range r.Strategies {
			m := row.Summary
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
				row.Name, row.Family, pct(m.AnnualizedReturn), pct(m.AnnualizedVol),
				ratio(m.Sharpe), pct(m.MaxDrawdown)))
		}
		sb.WriteString("\n")
	}

	// Rebalances
	sb.WriteString("## Rebalances\n\n")
	if len(r.Rebalances) > 0 {
		sb.WriteString("| Seq | Start | End | Selected | Mean | Std | Obs |\n")
		sb.WriteString("|-----|-------|-----|----------|------|-----|-----|\n")
		for _, rec := range r.Rebalances {
			p := rec.Period
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %d |\n",
				p.Seq, p.Start.Format(domain.DateLayout), p.End.Format(domain.DateLayout),
				strings.Join(rec.Selected, ", "), ratio4(rec.EnsembleMean), ratio4(rec.EnsembleStd),
				rec.Observations))
		}
	} else {
		sb.WriteString("No rebalance records available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func ratio4(v float64) string {
	if !domain.IsDefined(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}
