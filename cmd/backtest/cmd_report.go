package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"walkforward-lab/internal/observability"
	"walkforward-lab/internal/reporting"
)

// Report command flags
var (
	reportRunID  string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Regenerate report files for a stored run",
	Long: `Read a stored run, its rebalance records and portfolio series, and write
the report files. Without --run-id the most recent run is used.

Examples:
  backtest report --run-id 7pXv...
  backtest report --output reports/latest`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportRunID, "run-id", "", "Run to report (default: most recent)")
	reportCmd.Flags().StringVar(&reportOutput, "output", "", "Report directory; overrides output.dir")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if reportOutput != "" {
		cfg.Output.Dir = reportOutput
	}

	stores, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	defer closeStores()

	runID := reportRunID
	if runID == "" {
		runs, err := stores.Runs.List(ctx, 1)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		if len(runs) == 0 {
			return errors.New("no stored runs")
		}
		runID = runs[0].RunID
	}

	gen := reporting.NewGenerator(stores.Runs, stores.Rebalances, stores.Portfolios).
		WithTradingDays(cfg.WalkForward.TradingDays)
	report, err := gen.Generate(ctx, runID)
	if err != nil {
		return err
	}

	paths, err := reporting.WriteAll(cfg.Output.Dir, report, cfg.WalkForward.TradingDays)
	if err != nil {
		return err
	}
	observability.DefaultMetrics.ReportsGenerated.Inc()

	for _, path := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}
