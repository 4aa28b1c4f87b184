package pattern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/breaker/market"
	"github.com/rustyeddy/breaker/zone"
)

func seriesFrom(candles []market.Candle) *market.Series {
	s := market.NewSeries(market.Instruments["EUR_USD"])
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range candles {
		c.Time = ts.Add(time.Duration(i) * time.Hour)
		s.Push(c)
	}
	return s
}

func TestEngulfing(t *testing.T) {
	prevBear := market.Candle{Open: 1.1020, High: 1.1022, Low: 1.1008, Close: 1.1010}
	bullEngulf := market.Candle{Open: 1.1005, High: 1.1030, Low: 1.1003, Close: 1.1025}

	assert.True(t, Engulfing(bullEngulf, prevBear, market.Up))
	// Wrong direction for the same pair.
	assert.False(t, Engulfing(bullEngulf, prevBear, market.Down))

	// Body only partially covering the previous body.
	partial := market.Candle{Open: 1.1012, High: 1.1030, Low: 1.1010, Close: 1.1025}
	assert.False(t, Engulfing(partial, prevBear, market.Up))

	// Previous candle must be opposite-colored.
	prevBull := market.Candle{Open: 1.1010, High: 1.1022, Low: 1.1008, Close: 1.1020}
	assert.False(t, Engulfing(bullEngulf, prevBull, market.Up))

	prevBullSmall := market.Candle{Open: 1.1012, High: 1.1018, Low: 1.1010, Close: 1.1016}
	bearEngulf := market.Candle{Open: 1.1020, High: 1.1021, Low: 1.1005, Close: 1.1008}
	assert.True(t, Engulfing(bearEngulf, prevBullSmall, market.Down))
}

func TestPinBar(t *testing.T) {
	// Long lower wick, close near the high: bullish pin.
	bullPin := market.Candle{Open: 1.1010, High: 1.1014, Low: 1.0990, Close: 1.1012}
	assert.True(t, PinBar(bullPin, market.Up, 2.0, 0.35))
	assert.False(t, PinBar(bullPin, market.Down, 2.0, 0.35))

	// Wick long enough but close sagging to the middle of the range.
	sagging := market.Candle{Open: 1.1002, High: 1.1014, Low: 1.0990, Close: 1.1003}
	assert.False(t, PinBar(sagging, market.Up, 2.0, 0.35))

	// Wick shorter than twice the body.
	stubby := market.Candle{Open: 1.1005, High: 1.1014, Low: 1.1000, Close: 1.1012}
	assert.False(t, PinBar(stubby, market.Up, 2.0, 0.35))

	// Bearish pin: long upper wick, close near the low.
	bearPin := market.Candle{Open: 1.1004, High: 1.1025, Low: 1.1000, Close: 1.1002}
	assert.True(t, PinBar(bearPin, market.Down, 2.0, 0.35))

	// Zero-range bar never confirms.
	assert.False(t, PinBar(market.Candle{Open: 1.1, High: 1.1, Low: 1.1, Close: 1.1}, market.Up, 2.0, 0.35))
}

func TestConfirmRequiresPriceInZone(t *testing.T) {
	z := &zone.Zone{Direction: market.Up, Low: 1.1000, High: 1.1010, Valid: true}
	e := NewEngine(DefaultConfig(), zone.TouchByRange)

	// Perfect bullish pin bar, but nowhere near the zone.
	src := seriesFrom([]market.Candle{
		{Open: 1.1050, High: 1.1052, Low: 1.1048, Close: 1.1049},
		{Open: 1.1060, High: 1.1064, Low: 1.1040, Close: 1.1062},
	})
	assert.False(t, e.Confirm(src, z, 1))

	// Same pin bar dipping into the zone.
	src = seriesFrom([]market.Candle{
		{Open: 1.1030, High: 1.1032, Low: 1.1028, Close: 1.1029},
		{Open: 1.1028, High: 1.1032, Low: 1.1005, Close: 1.1030},
	})
	assert.True(t, e.Confirm(src, z, 1))
}

func TestConfirmAcceptsEngulfing(t *testing.T) {
	z := &zone.Zone{Direction: market.Up, Low: 1.1000, High: 1.1012, Valid: true}
	e := NewEngine(DefaultConfig(), zone.TouchByRange)

	src := seriesFrom([]market.Candle{
		{Open: 1.1020, High: 1.1022, Low: 1.1008, Close: 1.1010}, // bearish into zone
		{Open: 1.1005, High: 1.1030, Low: 1.1003, Close: 1.1025}, // bullish engulfing
	})
	assert.True(t, e.Confirm(src, z, 1))
}

func TestConfirmNoPatternNoEntry(t *testing.T) {
	z := &zone.Zone{Direction: market.Up, Low: 1.1000, High: 1.1012, Valid: true}
	e := NewEngine(DefaultConfig(), zone.TouchByRange)

	// In the zone but an unremarkable candle.
	src := seriesFrom([]market.Candle{
		{Open: 1.1008, High: 1.1014, Low: 1.1006, Close: 1.1012},
		{Open: 1.1005, High: 1.1011, Low: 1.1003, Close: 1.1009},
	})
	assert.False(t, e.Confirm(src, z, 1))
}

func TestConfirmCloseMode(t *testing.T) {
	z := &zone.Zone{Direction: market.Up, Low: 1.1000, High: 1.1010, Valid: true}
	e := NewEngine(DefaultConfig(), zone.TouchByClose)

	// Pin bar whose wick enters the zone but whose close is outside: range
	// mode would confirm, close mode must not.
	src := seriesFrom([]market.Candle{
		{Open: 1.1030, High: 1.1032, Low: 1.1028, Close: 1.1029},
		{Open: 1.1028, High: 1.1032, Low: 1.1005, Close: 1.1030},
	})
	assert.False(t, e.Confirm(src, z, 1))
}
