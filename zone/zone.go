// Package zone maintains the bounded inventory of supply/demand zones the
// strategy trades against: creation from structure breaks, touch marking,
// invalidation, and breaker promotion.
package zone

import (
	"time"

	"github.com/rustyeddy/breaker/market"
)

// TouchMode selects the price test used for both touch detection and the
// price-in-zone half of entry confirmation.
type TouchMode int

const (
	// TouchByRange counts a bar whose high/low range intersects the zone.
	TouchByRange TouchMode = iota
	// TouchByClose counts only a bar closing inside the zone.
	TouchByClose
)

// Zone is a candidate support/resistance area anchored at an order-block
// candle. Lifecycle flags move one way: Touched is sticky while the zone
// is valid, Valid drops exactly once, and BreakerReady can only be set at
// the instant Valid drops.
type Zone struct {
	ID            uint64
	Direction     market.Direction // Up = demand zone, Down = supply zone
	AnchorTime    time.Time
	Low           float64
	High          float64
	Valid         bool
	Touched       bool
	BreakerReady  bool
	InvalidatedAt time.Time
}

// Contains reports whether the price lies inside the zone range.
func (z *Zone) Contains(price float64) bool {
	return price >= z.Low && price <= z.High
}

// HitBy applies the configured price test against a bar.
func (z *Zone) HitBy(c market.Candle, mode TouchMode) bool {
	if mode == TouchByClose {
		return z.Contains(c.Close)
	}
	return c.Low <= z.High && c.High >= z.Low
}

// Notifier receives zone lifecycle events. Implementations must not block;
// the engine fires and forgets.
type Notifier interface {
	ZoneCreated(z Zone)
	ZoneTouched(z Zone)
	ZoneInvalidated(z Zone)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) ZoneCreated(Zone)     {}
func (NopNotifier) ZoneTouched(Zone)     {}
func (NopNotifier) ZoneInvalidated(Zone) {}
