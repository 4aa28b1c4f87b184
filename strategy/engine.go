package strategy

import (
	"context"
	"log/slog"
	"time"

	"github.com/rustyeddy/breaker/broker"
	"github.com/rustyeddy/breaker/market"
	"github.com/rustyeddy/breaker/metrics"
	"github.com/rustyeddy/breaker/structure"
	"github.com/rustyeddy/breaker/trade"
	"github.com/rustyeddy/breaker/zone"
)

// Engine owns the per-bar and per-tick processing order. The host feeds
// it events serially; none of its collaborators lock.
type Engine struct {
	ID string

	src       market.BarSource
	analyzer  *structure.Analyzer
	zones     *zone.Manager
	gate      *EntryGate
	lifecycle *trade.Manager
	acct      broker.AccountSource
	reward    float64
	log       *slog.Logger
}

func NewEngine(id string, src market.BarSource, analyzer *structure.Analyzer,
	zones *zone.Manager, gate *EntryGate, lifecycle *trade.Manager,
	acct broker.AccountSource, rewardRatio float64, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		ID: id, src: src, analyzer: analyzer, zones: zones, gate: gate,
		lifecycle: lifecycle, acct: acct, reward: rewardRatio, log: log,
	}
}

// OnBarClose handles a newly closed bar. Zone maintenance runs before
// break detection so that a bar which both touches an old zone and breaks
// structure does both in one pass, and entry evaluation sees the updated
// inventory.
func (e *Engine) OnBarClose(ctx context.Context, now time.Time) {
	e.zones.OnBarClose(e.src)

	if brk, ok := e.analyzer.DetectBreak(e.src, 1); ok {
		e.zones.OnStructureBreak(e.src, brk)
	}

	equity, err := e.acct.Equity(ctx)
	if err != nil {
		e.log.Error("equity unavailable, skipping entry evaluation", "error", err)
		return
	}
	metrics.SetEquity(equity)

	cand, ok := e.gate.Evaluate(e.src, equity, now)
	if !ok {
		return
	}

	if _, err := e.lifecycle.Enter(ctx, cand.Direction, cand.Volume, cand.Stop, e.reward); err != nil {
		metrics.RecordEntryFailure()
		e.log.Warn("entry rejected", "zone", cand.Zone.ID, "error", err)
		return
	}
	metrics.RecordEntry(cand.Direction)
	e.log.Info("entered",
		"strategy", e.ID,
		"dir", cand.Direction,
		"zone", cand.Zone.ID,
		"breaker", cand.Breaker,
		"volume", cand.Volume,
		"stop", cand.Stop)
}

// OnTick runs the open-position lifecycle stages against the new quote.
func (e *Engine) OnTick(ctx context.Context) {
	e.lifecycle.ManageTick(ctx, e.src)
}
