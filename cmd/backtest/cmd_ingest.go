package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/loader"
	"walkforward-lab/internal/storage"
)

// Ingest command flags
var (
	ingestPrices string
	ingestSymbol string
	ingestColumn string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Store a price CSV in the price store",
	Long: `Load a date,price CSV and append it to the price store under a symbol.
Dates already stored for the symbol fail the whole batch.

Examples:
  backtest ingest --prices data/spx.csv --symbol SPX
  backtest ingest --prices data/ohlc.csv --symbol BTC --column close`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestPrices, "prices", "", "Price CSV to ingest (required)")
	ingestCmd.Flags().StringVar(&ingestSymbol, "symbol", "", "Symbol to store under; overrides data.symbol")
	ingestCmd.Flags().StringVar(&ingestColumn, "column", "", "Price column name in a headed file")
	_ = ingestCmd.MarkFlagRequired("prices")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	symbol := cfg.Data.Symbol
	if ingestSymbol != "" {
		symbol = ingestSymbol
	}

	prices, err := loader.LoadCSV(ingestPrices, loader.Options{Symbol: symbol, PriceColumn: ingestColumn})
	if err != nil {
		return err
	}

	stores, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	defer closeStores()

	err = stores.Prices.InsertBulk(ctx, symbol, prices.Points())
	if errors.Is(err, storage.ErrDuplicateKey) {
		return fmt.Errorf("%s already has prices on some of these dates: %w", symbol, err)
	}
	if err != nil {
		return fmt.Errorf("insert prices: %w", err)
	}

	logger.Info().
		Str("symbol", symbol).
		Int("observations", prices.Len()).
		Str("first", prices.Index.First().Format(domain.DateLayout)).
		Msg("prices ingested")
	fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d prices for %s\n", prices.Len(), symbol)
	return nil
}
