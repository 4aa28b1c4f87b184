package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/breaker/market"
	"github.com/rustyeddy/breaker/oanda"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download historical candles from OANDA into a CSV file",
	Long: `Fetch downloads completed candles from the OANDA v20 API and writes them
in the CSV layout the backtest and run commands read.

The API token is taken from the OANDA_TOKEN environment variable.

Example:
  breaker fetch --instrument EUR_USD --granularity H1 --count 2000 --out data/eurusd_h1.csv`,
	RunE: runFetch,
}

var (
	fetchInstrument  string
	fetchGranularity string
	fetchCount       int
	fetchOut         string
	fetchLive        bool
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchInstrument, "instrument", "i", "EUR_USD", "instrument to fetch")
	fetchCmd.Flags().StringVarP(&fetchGranularity, "granularity", "g", "H1", "candle granularity (M1, M5, M15, M30, H1, H4, D)")
	fetchCmd.Flags().IntVarP(&fetchCount, "count", "n", 500, "number of candles (max 5000)")
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "", "output CSV path (required)")
	fetchCmd.Flags().BoolVar(&fetchLive, "live", false, "use the live environment instead of practice")

	fetchCmd.MarkFlagRequired("out")
}

func runFetch(cmd *cobra.Command, args []string) error {
	token := os.Getenv("OANDA_TOKEN")
	if token == "" {
		return fmt.Errorf("OANDA_TOKEN environment variable is not set")
	}

	client := oanda.NewClient(token, !fetchLive)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	candles, err := client.GetCandles(ctx, oanda.CandlesRequest{
		Instrument:  fetchInstrument,
		Granularity: oanda.Granularity(fetchGranularity),
		Count:       fetchCount,
	})
	if err != nil {
		return fmt.Errorf("fetch candles: %w", err)
	}

	if err := market.SaveCandlesCSV(fetchOut, candles); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	fmt.Printf("Wrote %d %s %s candles to %s\n", len(candles), fetchInstrument, fetchGranularity, fetchOut)
	return nil
}
