package reporting

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// Report file names.
const (
	PortfolioFile  = "portfolio.csv"
	RebalancesFile = "rebalances.csv"
	MarkdownFile   = "report.md"
	SummaryFile    = "summary.txt"
	MetricsFile    = "metrics.txt"
)

// WriteAll writes every report file into dir, creating it if needed.
// It returns the written paths in a fixed order.
func WriteAll(dir string, r *Report, tradingDays float64) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var portfolio, rebalances bytes.Buffer
	if err := WritePortfolioCSV(&portfolio, r.Portfolio, tradingDays); err != nil {
		return nil, fmt.Errorf("render portfolio: %w", err)
	}
	if err := WriteRebalancesCSV(&rebalances, r.Rebalances); err != nil {
		return nil, fmt.Errorf("render rebalances: %w", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{PortfolioFile, portfolio.Bytes()},
		{RebalancesFile, rebalances.Bytes()},
		{MarkdownFile, []byte(RenderMarkdown(r))},
		{SummaryFile, []byte(RenderSummary(r.Summary))},
		{MetricsFile, []byte(RenderMetrics(r.Summary))},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
