package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/breaker/config"
	"github.com/rustyeddy/breaker/market"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the strategy against historical candle data",
	Long: `Backtest replays a candle CSV through the full engine against the
simulated gateway and reports realized results.

The CSV columns are: time,open,high,low,close,volume (RFC3339 timestamps,
header row optional).

Example:
  breaker backtest --candles data/eurusd_h1.csv --config breaker.yaml`,
	RunE: runBacktest,
}

var (
	btCandlesPath string
	btConfigPath  string
	btDBPath      string
	btCloseEnd    bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btCandlesPath, "candles", "c", "", "path to candle CSV (required)")
	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	backtestCmd.Flags().StringVarP(&btDBPath, "db", "d", "", "override: journal to this SQLite DB")
	backtestCmd.Flags().BoolVar(&btCloseEnd, "close-end", true, "close all open positions at end of replay")

	backtestCmd.MarkFlagRequired("candles")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(btConfigPath)
	if err != nil {
		return err
	}
	if btDBPath != "" {
		cfg.Journal.Type = "sqlite"
		cfg.Journal.DBPath = btDBPath
	}

	candles, err := market.LoadCandlesCSV(btCandlesPath)
	if err != nil {
		return fmt.Errorf("load candles: %w", err)
	}

	log := newLogger()
	a, err := buildApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Printf("Backtesting %s over %d candles\n", cfg.Strategy.Instrument, len(candles))

	ctx := context.Background()
	if err := a.replay(ctx, candles, 0); err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	if btCloseEnd {
		a.sim.CloseAll("end_of_replay")
	}
	a.journalClosed()
	a.printSummary(ctx)

	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
