package market

import "time"

// Tick is a live bid/ask quote.
type Tick struct {
	Bid  float64
	Ask  float64
	Time time.Time
}

// Spread returns the raw ask-bid distance in price units.
func (t Tick) Spread() float64 {
	return t.Ask - t.Bid
}

// SpreadPoints returns the spread expressed in instrument points.
func (t Tick) SpreadPoints(meta InstrumentMeta) float64 {
	if meta.PointSize <= 0 {
		return 0
	}
	return t.Spread() / meta.PointSize
}
