package reporting

import (
	"fmt"
	"math"
	"strings"

	"walkforward-lab/internal/domain"
)

const rule = "=================================================="

// RenderSummary renders the fixed-width performance block.
func RenderSummary(s domain.PerformanceSummary) string {
	var sb strings.Builder

	sb.WriteString(rule + "\n")
	sb.WriteString("  WALKFORWARD STRATEGY - PERFORMANCE SUMMARY\n")
	sb.WriteString(rule + "\n")
	sb.WriteString(fmt.Sprintf("  %-22s%10s\n", "Total Return:", pct(s.TotalReturn)))
	sb.WriteString(fmt.Sprintf("  %-22s%10s\n", "Annualized Return:", pct(s.AnnualizedReturn)))
	sb.WriteString(fmt.Sprintf("  %-22s%10s\n", "Annualized Volatility:", pct(s.AnnualizedVol)))
	sb.WriteString(fmt.Sprintf("  %-22s%10s\n", "Sharpe Ratio:", ratio(s.Sharpe)))
	sb.WriteString(fmt.Sprintf("  %-22s%10s\n", "Max Drawdown:", pct(s.MaxDrawdown)))
	sb.WriteString(fmt.Sprintf("  %-22s%10s\n", "Calmar Ratio:", ratio(s.Calmar)))
	sb.WriteString(fmt.Sprintf("  %-22s%10s\n", "Win Rate:", pct(s.WinRate)))
	sb.WriteString(fmt.Sprintf("  %-22s%10s\n", "Profit Factor:", ratio(s.ProfitFactor)))
	sb.WriteString(fmt.Sprintf("  %-22s%10d\n", "Observations:", s.Observations))
	sb.WriteString(rule + "\n")
	sb.WriteString(fmt.Sprintf("\n  >>> OVERALL SHARPE RATIO: %s <<<\n", ratio(s.Sharpe)))

	return sb.String()
}

// RenderMetrics renders the summary as key=value lines.
func RenderMetrics(s domain.PerformanceSummary) string {
	var sb strings.Builder
	kv := func(k string, v float64) {
		sb.WriteString(fmt.Sprintf("%s=%s\n", k, formatFloat(v)))
	}
	kv("total_return", s.TotalReturn)
	kv("annualized_return", s.AnnualizedReturn)
	kv("annualized_vol", s.AnnualizedVol)
	kv("sharpe", s.Sharpe)
	kv("max_drawdown", s.MaxDrawdown)
	kv("calmar", s.Calmar)
	kv("win_rate", s.WinRate)
	kv("profit_factor", s.ProfitFactor)
	kv("best_period", s.BestPeriod)
	kv("worst_period", s.WorstPeriod)
	sb.WriteString(fmt.Sprintf("observations=%d\n", s.Observations))
	return sb.String()
}

func pct(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

func ratio(v float64) string {
	switch {
	case math.IsNaN(v):
		return "n/a"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return fmt.Sprintf("%.2f", v)
}
