// Package trade issues entries and walks open positions through their
// staged lifecycle: break-even move, one-shot partial close, and trailing
// stop. All transitions are monotonic; a stop only ever tightens in the
// position's favor.
package trade

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rustyeddy/breaker/broker"
	"github.com/rustyeddy/breaker/indicators"
	"github.com/rustyeddy/breaker/market"
	"github.com/rustyeddy/breaker/risk"
)

// TrailMode selects how the trailing candidate stop is computed.
type TrailMode int

const (
	// TrailATR trails at current price minus ATR times a multiplier.
	TrailATR TrailMode = iota
	// TrailFixed trails at a fixed pip distance behind price.
	TrailFixed
)

// Config holds the lifecycle thresholds. Each stage is gated by its own
// risk-reward threshold, measured as favorable excursion over the original
// stop distance.
type Config struct {
	BreakEvenRR       float64 // 0 disables
	BreakEvenLockPips float64

	PartialRR      float64 // stage fires once RR reaches this, once ever
	PartialPercent float64 // share of current volume to close

	TrailStartRR   float64 // 0 disables
	TrailMode      TrailMode
	TrailATRPeriod int
	TrailATRMult   float64
	TrailStepPips  float64
}

func DefaultConfig() Config {
	return Config{
		BreakEvenRR:       0.7,
		BreakEvenLockPips: 1,
		PartialRR:         1.0,
		PartialPercent:    50,
		TrailStartRR:      1.5,
		TrailMode:         TrailATR,
		TrailATRPeriod:    14,
		TrailATRMult:      2.0,
		TrailStepPips:     15,
	}
}

// Hooks is notified after lifecycle actions land at the gateway.
// Implementations must be cheap and must not block.
type Hooks interface {
	StopMoved(stage string)
	PartialClosed()
}

type nopHooks struct{}

func (nopHooks) StopMoved(string) {}
func (nopHooks) PartialClosed()   {}

// Manager owns the engine-side position tracking: the one-shot
// partial-close set and the original stop distances captured at fill time.
// The gateway stays authoritative for everything else. None of this state
// survives a restart; positions discovered afterwards fall back to their
// current stop distance.
type Manager struct {
	cfg        Config
	gw         broker.Gateway
	strategyID string
	log        *slog.Logger

	partialDone map[string]struct{}
	origStop    map[string]float64
	hooks       Hooks
}

func NewManager(cfg Config, gw broker.Gateway, strategyID string, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		cfg:         cfg,
		gw:          gw,
		strategyID:  strategyID,
		log:         log,
		partialDone: make(map[string]struct{}),
		origStop:    make(map[string]float64),
		hooks:       nopHooks{},
	}
}

// SetHooks installs an optional observer for lifecycle actions.
func (m *Manager) SetHooks(h Hooks) {
	if h != nil {
		m.hooks = h
	}
}

// Enter places a market order and, once filled, recomputes the target from
// the actual fill price so the configured reward ratio holds exactly. A
// placement failure is returned to the caller; there is no retry within
// the bar.
func (m *Manager) Enter(ctx context.Context, dir market.Direction, volume, stop float64, rewardRatio float64) (broker.Fill, error) {
	fill, err := m.gw.PlaceMarketOrder(ctx, broker.MarketOrderRequest{
		StrategyID: m.strategyID,
		Direction:  dir,
		Volume:     volume,
		Stop:       stop,
		Target:     0,
	})
	if err != nil {
		return broker.Fill{}, fmt.Errorf("entry order: %w", err)
	}

	dist := dir.Sign() * (fill.Price - stop)
	m.origStop[fill.PositionID] = dist

	target := risk.Target(dir, fill.Price, dist, rewardRatio)
	if err := m.gw.ModifyStop(ctx, fill.PositionID, stop, target); err != nil {
		// The position is live without its exact target; next tick's
		// lifecycle pass will keep managing the stop regardless.
		m.log.Warn("target modification rejected", "position", fill.PositionID, "err", err)
	}

	m.log.Info("entered",
		"position", fill.PositionID, "dir", dir.String(),
		"price", fill.Price, "stop", stop, "target", target, "volume", volume)
	return fill, nil
}

// ManageTick advances the lifecycle of every open position for this
// strategy. Each of the three stages is independent and only ever tightens
// the stop.
func (m *Manager) ManageTick(ctx context.Context, src market.BarSource) {
	positions, err := m.gw.ListOpenPositions(ctx, m.strategyID)
	if err != nil {
		m.log.Warn("list positions", "err", err)
		return
	}
	tick, err := src.BidAsk()
	if err != nil {
		return
	}
	meta := src.Instrument()

	live := make(map[string]struct{}, len(positions))
	for i := range positions {
		p := &positions[i]
		live[p.ID] = struct{}{}

		price := exitPrice(p.Direction, tick)
		rr := risk.RR(p.Direction, p.EntryPrice, price, m.originalStopDistance(p))

		m.breakEven(ctx, p, rr, price, meta)
		m.partialClose(ctx, p, rr, meta)
		m.trail(ctx, src, p, rr, price, meta)
	}
	m.prune(live)
}

// rrReached compares the running ratio against a stage threshold. A quote
// landing exactly on a threshold computes a ratio one ulp short of it, so
// the comparison carries a small tolerance.
func rrReached(rr, threshold float64) bool {
	return rr >= threshold-1e-9
}

func (m *Manager) breakEven(ctx context.Context, p *broker.Position, rr, price float64, meta market.InstrumentMeta) {
	if m.cfg.BreakEvenRR <= 0 || !rrReached(rr, m.cfg.BreakEvenRR) {
		return
	}
	stop := p.EntryPrice + p.Direction.Sign()*m.cfg.BreakEvenLockPips*meta.Pip()
	m.tighten(ctx, p, stop, price, meta, "break_even")
}

func (m *Manager) partialClose(ctx context.Context, p *broker.Position, rr float64, meta market.InstrumentMeta) {
	if !rrReached(rr, m.cfg.PartialRR) {
		return
	}
	if _, done := m.partialDone[p.ID]; done {
		return
	}

	vol := risk.StepVolume(p.Volume*m.cfg.PartialPercent/100, meta)
	if vol <= 0 || p.Volume-vol < meta.MinVolume {
		// Position too small to split; treat the stage as spent.
		m.partialDone[p.ID] = struct{}{}
		return
	}

	if err := m.gw.PartialClose(ctx, p.ID, vol); err != nil {
		m.log.Warn("partial close rejected", "position", p.ID, "err", err)
		return
	}
	m.partialDone[p.ID] = struct{}{}
	m.hooks.PartialClosed()
	m.log.Info("partial close", "position", p.ID, "volume", vol, "rr", rr)
}

func (m *Manager) trail(ctx context.Context, src market.BarSource, p *broker.Position, rr, price float64, meta market.InstrumentMeta) {
	if m.cfg.TrailStartRR <= 0 || !rrReached(rr, m.cfg.TrailStartRR) {
		return
	}

	var dist float64
	switch m.cfg.TrailMode {
	case TrailFixed:
		dist = m.cfg.TrailStepPips * meta.Pip()
	default:
		atr, err := indicators.ATRAt(src, 1, m.cfg.TrailATRPeriod)
		if err != nil || atr <= 0 {
			return
		}
		dist = atr * m.cfg.TrailATRMult
	}

	stop := price - p.Direction.Sign()*dist
	m.tighten(ctx, p, stop, price, meta, "trailing")
}

// tighten applies a candidate stop only if it improves on the current one
// and clears the freeze band. A gateway rejection is logged and dropped;
// the next tick retries naturally if conditions still hold.
func (m *Manager) tighten(ctx context.Context, p *broker.Position, stop, price float64, meta market.InstrumentMeta, stage string) {
	if !improves(p, stop) {
		return
	}
	if dist := p.Direction.Sign() * (price - stop); dist < meta.FreezeDistance {
		return
	}
	if err := m.gw.ModifyStop(ctx, p.ID, stop, p.Target); err != nil {
		m.log.Debug("stop modification rejected", "position", p.ID, "stage", stage, "err", err)
		return
	}
	p.Stop = stop
	m.hooks.StopMoved(stage)
	m.log.Info("stop tightened", "position", p.ID, "stage", stage, "stop", stop)
}

// originalStopDistance prefers the distance captured at fill; positions
// adopted after a restart fall back to their current stop distance.
func (m *Manager) originalStopDistance(p *broker.Position) float64 {
	if d, ok := m.origStop[p.ID]; ok && d > 0 {
		return d
	}
	d := p.Direction.Sign() * (p.EntryPrice - p.Stop)
	if d > 0 {
		m.origStop[p.ID] = d
	}
	return d
}

// prune drops tracking state for positions the gateway no longer reports.
func (m *Manager) prune(live map[string]struct{}) {
	for id := range m.partialDone {
		if _, ok := live[id]; !ok {
			delete(m.partialDone, id)
		}
	}
	for id := range m.origStop {
		if _, ok := live[id]; !ok {
			delete(m.origStop, id)
		}
	}
}

// exitPrice is the side the position would close on right now.
func exitPrice(dir market.Direction, t market.Tick) float64 {
	if dir == market.Up {
		return t.Bid
	}
	return t.Ask
}

// improves reports whether the candidate stop is strictly tighter in the
// position's favor.
func improves(p *broker.Position, stop float64) bool {
	if p.Direction == market.Up {
		return stop > p.Stop
	}
	return stop < p.Stop || p.Stop == 0
}
