package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/breaker/market"
	"github.com/rustyeddy/breaker/telemetry"
	"github.com/rustyeddy/breaker/zone"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay candle data at a pace with live metrics and telemetry",
	Long: `Run replays a candle CSV through the engine, pausing between bars, while
serving Prometheus metrics on /metrics and a zone-event websocket stream
on /ws.

Example:
  breaker run --config breaker.yaml --candles data/eurusd_h1.csv --pace 250ms`,
	RunE: runRun,
}

var (
	runConfigPath  string
	runCandlesPath string
	runPace        time.Duration
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().StringVarP(&runCandlesPath, "candles", "c", "", "path to candle CSV (required)")
	runCmd.Flags().DurationVar(&runPace, "pace", 250*time.Millisecond, "delay between bars")

	runCmd.MarkFlagRequired("config")
	runCmd.MarkFlagRequired("candles")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return err
	}

	candles, err := market.LoadCandlesCSV(runCandlesPath)
	if err != nil {
		return fmt.Errorf("load candles: %w", err)
	}

	log := newLogger()

	var extra []zone.Notifier
	var hub *telemetry.Hub
	if cfg.Telemetry.Listen != "" {
		hub = telemetry.NewHub(log)
		go hub.Run()
		extra = append(extra, hub)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/ws", hub.Handler())
		srv := &http.Server{Addr: cfg.Telemetry.Listen, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("telemetry listener", "err", err)
			}
		}()
		defer srv.Close()
		log.Info("telemetry listening", "addr", cfg.Telemetry.Listen)
	}

	a, err := buildApp(cfg, log, extra...)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Replaying %s over %d candles (pace %s)\n",
		cfg.Strategy.Instrument, len(candles), runPace)

	if err := a.replay(ctx, candles, runPace); err != nil && err != context.Canceled {
		return fmt.Errorf("replay: %w", err)
	}

	a.sim.CloseAll("end_of_replay")
	a.journalClosed()
	a.printSummary(context.Background())

	return nil
}
