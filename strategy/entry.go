// Package strategy wires the detectors, zone inventory, gates, and
// lifecycle manager into the two event handlers the host drives: bar close
// and tick.
package strategy

import (
	"log/slog"
	"time"

	"github.com/rustyeddy/breaker/market"
	"github.com/rustyeddy/breaker/pattern"
	"github.com/rustyeddy/breaker/risk"
	"github.com/rustyeddy/breaker/session"
	"github.com/rustyeddy/breaker/zone"
)

// GateConfig holds the entry-gate parameters, fixed for the run.
type GateConfig struct {
	// SpreadCeilingPoints vetoes entries when the live spread is wider.
	SpreadCeilingPoints float64
	// BreakerEntries enables retests of invalidated breaker-flagged zones
	// after the normal scan comes up empty.
	BreakerEntries bool
}

// Candidate is the single trade the gate selected for this bar.
type Candidate struct {
	Direction market.Direction
	Zone      *zone.Zone
	Stop      float64
	Volume    float64
	Breaker   bool
}

// EntryGate runs the veto chain and the zone scans. The veto order is
// fixed: session, news, spread, trend. The first failing check ends
// evaluation for the bar.
type EntryGate struct {
	cfg     GateConfig
	clock   *session.Gate
	trend   *pattern.TrendFilter
	confirm *pattern.Engine
	store   *zone.Store
	riskCfg risk.Config
	log     *slog.Logger
}

func NewEntryGate(cfg GateConfig, clock *session.Gate, trend *pattern.TrendFilter,
	confirm *pattern.Engine, store *zone.Store, riskCfg risk.Config, log *slog.Logger) *EntryGate {
	if log == nil {
		log = slog.Default()
	}
	return &EntryGate{
		cfg: cfg, clock: clock, trend: trend, confirm: confirm,
		store: store, riskCfg: riskCfg, log: log,
	}
}

// Evaluate runs once per newly closed bar and returns at most one
// candidate. Breaker retests are considered only after the normal scan
// finds nothing.
func (g *EntryGate) Evaluate(src market.BarSource, equity float64, now time.Time) (Candidate, bool) {
	if !g.clock.IsSessionOpen(now) {
		return Candidate{}, false
	}
	if g.clock.IsNewsBlackout(now) {
		return Candidate{}, false
	}

	tick, err := src.BidAsk()
	if err != nil {
		return Candidate{}, false
	}
	meta := src.Instrument()
	if g.cfg.SpreadCeilingPoints > 0 && tick.SpreadPoints(meta) > g.cfg.SpreadCeilingPoints {
		return Candidate{}, false
	}

	dir, ok := g.trend.Direction(src)
	if !ok {
		return Candidate{}, false
	}

	if cand, ok := g.scan(src, g.store.Zones(dir), dir, equity, false); ok {
		return cand, true
	}
	if g.cfg.BreakerEntries {
		if cand, ok := g.scan(src, g.store.Zones(dir.Opposite()), dir, equity, true); ok {
			return cand, true
		}
	}
	return Candidate{}, false
}

// scan walks a zone collection most-recent-first. A candidate whose stop
// distance violates the broker minimum is skipped, not retried, and the
// scan moves on.
func (g *EntryGate) scan(src market.BarSource, zones []*zone.Zone, dir market.Direction, equity float64, breaker bool) (Candidate, bool) {
	tick, err := src.BidAsk()
	if err != nil {
		return Candidate{}, false
	}
	meta := src.Instrument()

	for _, z := range zones {
		if breaker {
			if z.Valid || !z.BreakerReady {
				continue
			}
		} else {
			if !z.Valid || !z.Touched {
				continue
			}
		}

		// A breaker retest trades against the zone's original direction;
		// confirmation patterns are judged in the trade direction.
		check := *z
		check.Direction = dir
		if !g.confirm.Confirm(src, &check, 1) {
			continue
		}

		entry := tick.Ask
		boundary := z.Low
		if dir == market.Down {
			entry = tick.Bid
			boundary = z.High
		}

		stop := risk.Stop(dir, boundary, g.riskCfg.StopBufferPips*meta.Pip())
		stopDist := dir.Sign() * (entry - stop)
		if stopDist < meta.MinStopDistance {
			g.log.Debug("candidate skipped, stop too tight",
				"zone", z.ID, "distance", stopDist, "min", meta.MinStopDistance)
			continue
		}

		volume := risk.Size(equity, g.riskCfg.RiskPercent, stopDist, meta)
		if volume <= 0 {
			continue
		}

		return Candidate{Direction: dir, Zone: z, Stop: stop, Volume: volume, Breaker: breaker}, true
	}
	return Candidate{}, false
}
