package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/breaker/market"
)

func trendSeries(closes []float64) *market.Series {
	candles := make([]market.Candle, len(closes))
	for i, c := range closes {
		candles[i] = market.Candle{Open: c, High: c + 0.0002, Low: c - 0.0002, Close: c}
	}
	return seriesFrom(candles)
}

func TestTrendFilterUp(t *testing.T) {
	// Rising closes well above their trailing 5-bar average.
	src := trendSeries([]float64{
		1.1000, 1.1001, 1.1002, 1.1003, 1.1004,
		1.1010, 1.1020, 1.1030,
	})
	f := NewTrendFilter(5)

	dir, ok := f.Direction(src)
	assert.True(t, ok)
	assert.Equal(t, market.Up, dir)
}

func TestTrendFilterDown(t *testing.T) {
	src := trendSeries([]float64{
		1.1030, 1.1029, 1.1028, 1.1027, 1.1026,
		1.1020, 1.1010, 1.1000,
	})
	f := NewTrendFilter(5)

	dir, ok := f.Direction(src)
	assert.True(t, ok)
	assert.Equal(t, market.Down, dir)
}

func TestTrendFilterMixedIsNeutral(t *testing.T) {
	// Chop: closes straddle the average.
	src := trendSeries([]float64{
		1.1000, 1.1020, 1.1000, 1.1020, 1.1000,
		1.1020, 1.1000, 1.1020,
	})
	f := NewTrendFilter(5)

	_, ok := f.Direction(src)
	assert.False(t, ok)
}

func TestTrendFilterShortHistoryFailsClosed(t *testing.T) {
	src := trendSeries([]float64{1.1000, 1.1010, 1.1020})
	f := NewTrendFilter(5)

	_, ok := f.Direction(src)
	assert.False(t, ok)
}
