// Package main is the walk-forward backtest CLI.
//
//	backtest run     --config config.yaml --prices prices.csv
//	backtest report  --run-id <id>
//	backtest ingest  --prices prices.csv --symbol SPX
//	backtest serve   --addr :8080
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"walkforward-lab/internal/config"
	"walkforward-lab/internal/logging"
)

// Global flags
var (
	configPath string
	logLevel   string
	logFormat  string
)

// Set up by the root PersistentPreRunE.
var (
	cfg       *config.Config
	logger    zerolog.Logger
	logCloser io.Closer
)

// rootCmd is the base command for the backtest CLI
var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Walk-forward multi-strategy backtester",
	Long: `backtest evaluates a universe of signal strategies on one price series,
converts their signals into risk-managed positions, and runs a walk-forward
loop that periodically re-selects the top-N strategies into an equal-weight
portfolio.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.LoadWithEnv(configPath); err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if logFormat != "" {
			cfg.Log.Format = logFormat
		}

		logger, logCloser, err = logging.New(logging.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			Output: cfg.Log.Output,
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Override log format (json|console)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
