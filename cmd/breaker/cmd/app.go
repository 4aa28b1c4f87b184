package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/breaker/broker/sim"
	"github.com/rustyeddy/breaker/config"
	"github.com/rustyeddy/breaker/journal"
	"github.com/rustyeddy/breaker/market"
	"github.com/rustyeddy/breaker/metrics"
	"github.com/rustyeddy/breaker/pattern"
	"github.com/rustyeddy/breaker/strategy"
	"github.com/rustyeddy/breaker/structure"
	"github.com/rustyeddy/breaker/telemetry"
	"github.com/rustyeddy/breaker/trade"
	"github.com/rustyeddy/breaker/zone"
)

// app is one fully wired engine instance over a simulated gateway.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	src      *market.Series
	sim      *sim.Engine
	engine   *strategy.Engine
	jnl      journal.Journal
	recorder *journal.Recorder
}

// buildApp assembles the engine from the config. Extra notifiers (the
// telemetry hub, usually) are fanned in alongside the metrics and journal
// observers.
func buildApp(cfg *config.Config, log *slog.Logger, extra ...zone.Notifier) (*app, error) {
	meta := cfg.Instrument()
	src := market.NewSeries(meta)
	gw := sim.NewEngine(meta, cfg.Account.Balance)

	jnl, err := openJournal(cfg)
	if err != nil {
		return nil, err
	}

	run := journal.NewRun(cfg.Strategy.ID, cfg.Strategy.Instrument, time.Now())
	if sq, ok := jnl.(*journal.SQLiteJournal); ok {
		if err := sq.RecordRun(run); err != nil {
			jnl.Close()
			return nil, fmt.Errorf("record run: %w", err)
		}
	}
	recorder := journal.NewRecorder(jnl, run, log)

	notify := telemetry.Multi{metrics.ZoneObserver{}, recorder}
	notify = append(notify, extra...)

	store := zone.NewStore(cfg.Zones.Retention)
	zones := zone.NewManager(cfg.ZoneConfig(), store, notify, log)

	clock, err := cfg.SessionGate()
	if err != nil {
		jnl.Close()
		return nil, err
	}

	gate := strategy.NewEntryGate(cfg.GateConfig(),
		clock,
		pattern.NewTrendFilter(cfg.Strategy.TrendPeriod),
		pattern.NewEngine(cfg.PatternConfig(), cfg.ZoneConfig().TouchMode),
		store, cfg.RiskConfig(), log)

	analyzer := structure.NewAnalyzer(
		structure.NewSwingDetector(cfg.Structure.SwingLeft, cfg.Structure.SwingRight),
		cfg.Structure.MinBreakPips)

	lifecycle := trade.NewManager(cfg.LifecycleConfig(), gw, cfg.Strategy.ID, log)
	lifecycle.SetHooks(metrics.LifecycleObserver{})

	engine := strategy.NewEngine(cfg.Strategy.ID, src, analyzer, zones, gate,
		lifecycle, gw, cfg.Risk.RewardRatio, log)

	return &app{
		cfg:      cfg,
		log:      log,
		src:      src,
		sim:      gw,
		engine:   engine,
		jnl:      jnl,
		recorder: recorder,
	}, nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.Nop{}, nil
	}
}

// replay drives the engine candle by candle. The tick pass runs before the
// bar-close pass so exits and stop management see the new price before any
// new entry is considered.
func (a *app) replay(ctx context.Context, candles []market.Candle, pace time.Duration) error {
	for _, c := range candles {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		a.src.Push(c)
		tick, err := a.src.BidAsk()
		if err != nil {
			return err
		}
		a.sim.UpdateTick(tick)

		a.engine.OnTick(ctx)
		a.engine.OnBarClose(ctx, c.Time)

		eq, err := a.sim.Equity(ctx)
		if err != nil {
			return err
		}
		a.recorder.Equity(c.Time, a.sim.Balance(), eq)

		if pace > 0 {
			time.Sleep(pace)
		}
	}
	return nil
}

// journalClosed writes the gateway's realized trades to the journal.
func (a *app) journalClosed() {
	for _, ct := range a.sim.Closed() {
		a.recorder.Trade(journal.TradeRecord{
			PositionID: ct.PositionID,
			Direction:  ct.Direction,
			Volume:     ct.Volume,
			EntryPrice: ct.EntryPrice,
			ExitPrice:  ct.ExitPrice,
			OpenTime:   ct.OpenTime,
			CloseTime:  ct.CloseTime,
			RealizedPL: ct.Profit,
			Reason:     ct.Reason,
		})
	}
}

// printSummary reports the realized results of a replay.
func (a *app) printSummary(ctx context.Context) {
	closed := a.sim.Closed()
	wins, losses := 0, 0
	var total float64
	for _, ct := range closed {
		total += ct.Profit
		if ct.Profit >= 0 {
			wins++
		} else {
			losses++
		}
	}

	eq, _ := a.sim.Equity(ctx)
	fmt.Printf("\nReplay complete\n")
	fmt.Printf("  Run:      %s\n", a.recorder.Run().ID)
	fmt.Printf("  Trades:   %d (%d wins, %d losses)\n", len(closed), wins, losses)
	if len(closed) > 0 {
		fmt.Printf("  Win rate: %.1f%%\n", 100*float64(wins)/float64(len(closed)))
	}
	fmt.Printf("  P/L:      %.2f\n", total)
	fmt.Printf("  Balance:  %.2f\n", a.sim.Balance())
	fmt.Printf("  Equity:   %.2f\n", eq)
}

func (a *app) close() {
	if err := a.jnl.Close(); err != nil {
		a.log.Warn("close journal", "err", err)
	}
}
