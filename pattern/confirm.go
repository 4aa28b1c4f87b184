// Package pattern evaluates candle confirmation patterns and the trend
// filter that gate zone entries.
package pattern

import (
	"github.com/rustyeddy/breaker/market"
	"github.com/rustyeddy/breaker/zone"
)

// Config holds the pattern thresholds, fixed for the run.
type Config struct {
	// PinBarWickRatio is the minimum dominant-wick-to-body multiple.
	PinBarWickRatio float64
	// PinBarClosePct is how close to the favorable end of the bar's range
	// the close must sit, as a fraction of the range.
	PinBarClosePct float64
}

func DefaultConfig() Config {
	return Config{PinBarWickRatio: 2.0, PinBarClosePct: 0.35}
}

// Engine confirms entries at zones: the bar must satisfy the active
// price-in-zone test and show at least one qualifying pattern in the
// zone's direction.
type Engine struct {
	cfg  Config
	mode zone.TouchMode
}

func NewEngine(cfg Config, mode zone.TouchMode) *Engine {
	return &Engine{cfg: cfg, mode: mode}
}

// Confirm evaluates the closed bar at the given shift against the zone.
func (e *Engine) Confirm(src market.BarSource, z *zone.Zone, shift int) bool {
	cur, err := src.Bar(shift)
	if err != nil || cur.Close == 0 {
		return false
	}
	if !z.HitBy(cur, e.mode) {
		return false
	}

	if PinBar(cur, z.Direction, e.cfg.PinBarWickRatio, e.cfg.PinBarClosePct) {
		return true
	}
	prev, err := src.Bar(shift + 1)
	if err != nil {
		return false
	}
	return Engulfing(cur, prev, z.Direction)
}

// Engulfing reports whether cur's body fully contains prev's
// opposite-colored body: both of cur's open and close bracket prev's
// open/close bounds.
func Engulfing(cur, prev market.Candle, dir market.Direction) bool {
	if dir == market.Up {
		if !cur.Bullish() || !prev.Bearish() {
			return false
		}
	} else {
		if !cur.Bearish() || !prev.Bullish() {
			return false
		}
	}

	curLow, curHigh := bodyBounds(cur)
	prevLow, prevHigh := bodyBounds(prev)
	return curLow < prevLow && curHigh > prevHigh
}

// PinBar reports whether the candle is a rejection bar in the given
// direction: the dominant wick is at least wickRatio times the body and
// the close sits within closePct of the favorable end of the range.
func PinBar(c market.Candle, dir market.Direction, wickRatio, closePct float64) bool {
	r := c.Range()
	if r <= 0 {
		return false
	}

	body := c.Body()
	if dir == market.Up {
		if c.LowerWick() < wickRatio*body {
			return false
		}
		return c.High-c.Close <= closePct*r
	}
	if c.UpperWick() < wickRatio*body {
		return false
	}
	return c.Close-c.Low <= closePct*r
}

func bodyBounds(c market.Candle) (low, high float64) {
	if c.Open <= c.Close {
		return c.Open, c.Close
	}
	return c.Close, c.Open
}
