package pattern

import (
	"github.com/rustyeddy/breaker/indicators"
	"github.com/rustyeddy/breaker/market"
)

// TrendFilter resolves direction from the three most recent closed bars
// compared against a reference moving average evaluated at the same
// offsets. All three closes above the reference means up, all below means
// down, anything mixed is neutral and blocks trading for the bar.
type TrendFilter struct {
	// Period of the reference SMA.
	Period int
	// Ref optionally supplies a different timeframe for the reference
	// average; nil means the trading timeframe.
	Ref market.BarSource
}

func NewTrendFilter(period int) *TrendFilter {
	return &TrendFilter{Period: period}
}

// Direction returns the resolved trend and whether one resolved at all.
// Missing data fails closed as neutral.
func (f *TrendFilter) Direction(src market.BarSource) (market.Direction, bool) {
	ref := f.Ref
	if ref == nil {
		ref = src
	}

	above, below := 0, 0
	for shift := 1; shift <= 3; shift++ {
		c, err := src.Bar(shift)
		if err != nil || c.Close == 0 {
			return 0, false
		}
		ma, err := indicators.SMAAt(ref, shift, f.Period)
		if err != nil {
			return 0, false
		}
		switch {
		case c.Close > ma:
			above++
		case c.Close < ma:
			below++
		}
	}

	switch {
	case above == 3:
		return market.Up, true
	case below == 3:
		return market.Down, true
	default:
		return 0, false
	}
}
