package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"walkforward-lab/internal/observability"
	"walkforward-lab/internal/pipeline"
	"walkforward-lab/internal/reporting"
)

// Run command flags
var (
	runPrices   string
	runSymbol   string
	runOutput   string
	runNoReport bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a walk-forward backtest",
	Long: `Build every strategy's PnL, run the walk-forward selection, persist the
run and write the report files.

Examples:
  backtest run --prices data/spx.csv
  backtest run --config config.yaml --output out/
  backtest run --symbol SPX            # read prices ingested earlier`,
	RunE: runBacktest,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runPrices, "prices", "", "Price CSV (date,price); overrides data.prices_csv")
	runCmd.Flags().StringVar(&runSymbol, "symbol", "", "Instrument label; overrides data.symbol")
	runCmd.Flags().StringVar(&runOutput, "output", "", "Report directory; overrides output.dir")
	runCmd.Flags().BoolVar(&runNoReport, "no-report", false, "Skip writing report files")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if runPrices != "" {
		cfg.Data.PricesCSV = runPrices
	}
	if runSymbol != "" {
		cfg.Data.Symbol = runSymbol
	}
	if runOutput != "" {
		cfg.Output.Dir = runOutput
	}

	stores, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	defer closeStores()

	uc, closeCache, err := openCache(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer closeCache()

	p, err := pipeline.New(pipeline.Options{
		Config:  cfg,
		Stores:  stores,
		Cache:   uc,
		Metrics: observability.DefaultMetrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	prices, err := p.LoadPrices(ctx)
	if err != nil {
		return err
	}

	res, err := p.Run(ctx, prices)
	if err != nil {
		return err
	}

	if !runNoReport {
		paths, err := p.WriteReport(res)
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		for _, path := range paths {
			logger.Info().Str("path", path).Msg("wrote")
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run %s (%d strategies, %d periods, %d skipped)\n",
		res.Run.RunID, res.Run.Strategies, len(res.Records), res.Skipped)
	fmt.Fprint(cmd.OutOrStdout(), reporting.RenderSummary(res.Run.Summary))
	return nil
}
