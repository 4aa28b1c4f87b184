package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/breaker/internal/slogx"
)

var rootCmd = &cobra.Command{
	Use:   "breaker",
	Short: "A price-action strategy engine trading structure breaks and zones",
	Long: `Breaker detects swing structure breaks, builds supply/demand zones from
order-block candles, and trades confirmed retests of those zones with
staged position management.

It provides commands for:
  - Backtesting the strategy against historical candle data
  - Replaying data with live metrics and zone telemetry
  - Journaling trades, equity curves, and zone events`,
}

var logLevel string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger() *slog.Logger {
	return slogx.New(logLevel)
}
