package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/breaker/market"
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

func createTestCandles() []market.Candle {
	return []market.Candle{
		{Open: 100, High: 105, Low: 99, Close: 102, Volume: 10},
		{Open: 102, High: 107, Low: 101, Close: 105, Volume: 12},
		{Open: 105, High: 108, Low: 104, Close: 106, Volume: 9},
		{Open: 106, High: 110, Low: 105, Close: 108, Volume: 11},
		{Open: 108, High: 112, Low: 107, Close: 110, Volume: 14},
		{Open: 110, High: 113, Low: 109, Close: 111, Volume: 10},
		{Open: 111, High: 115, Low: 110, Close: 113, Volume: 13},
		{Open: 113, High: 116, Low: 112, Close: 114, Volume: 12},
		{Open: 114, High: 118, Low: 113, Close: 116, Volume: 15},
		{Open: 116, High: 120, Low: 115, Close: 118, Volume: 30},
	}
}

func TestSMAAt(t *testing.T) {
	s := seriesFrom(createTestCandles())

	// Last 5 closes: 111,113,114,116,118 => 572/5 = 114.4
	ma, err := SMAAt(s, 1, 5)
	require.NoError(t, err)
	assert.InDelta(t, 114.4, ma, 0.001)

	// Same window shifted one candle back: 110,111,113,114,116 => 112.8
	ma, err = SMAAt(s, 2, 5)
	require.NoError(t, err)
	assert.InDelta(t, 112.8, ma, 0.001)

	_, err = SMAAt(s, 1, 0)
	assert.Error(t, err)

	_, err = SMAAt(s, 1, 50)
	assert.ErrorIs(t, err, market.ErrNoBar)
}

func TestATRFunc(t *testing.T) {
	candles := []market.Candle{
		{High: 10, Low: 8, Close: 9},
		{High: 11, Low: 9, Close: 10},
		{High: 12, Low: 10, Close: 11},
		{High: 11, Low: 9, Close: 10},
		{High: 12, Low: 10, Close: 11},
		{High: 13, Low: 11, Close: 12},
	}
	atr, err := ATRFunc(candles, 3)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, atr, 0.001)

	_, err = ATRFunc(candles[:3], 3)
	assert.Error(t, err)
}

func TestATRAt(t *testing.T) {
	s := seriesFrom(createTestCandles())

	atr, err := ATRAt(s, 1, 3)
	require.NoError(t, err)
	assert.Greater(t, atr, 0.0)

	// Not enough history for the period.
	_, err = ATRAt(s, 1, 20)
	assert.Error(t, err)
}

func TestTrueRange(t *testing.T) {
	current := market.Candle{High: 110, Low: 100, Close: 105}
	previous := market.Candle{Close: 104}
	assert.Equal(t, 10.0, trueRange(current, previous))

	// Gap up: high-prevClose dominates
	current = market.Candle{High: 120, Low: 118, Close: 119}
	assert.Equal(t, 16.0, trueRange(current, previous))
}

func TestAvgBodyAt(t *testing.T) {
	s := seriesFrom(createTestCandles())

	// Bodies of last 3 closed: |113-111|=2, |114-113|=1, |116-114|=2 => 5/3
	body, err := AvgBodyAt(s, 1, 3)
	require.NoError(t, err)
	assert.InDelta(t, (2.0+1.0+2.0)/3.0, body, 0.001)
}

func TestAvgVolumeAt(t *testing.T) {
	s := seriesFrom(createTestCandles())

	// Trailing average excludes the shifted candle itself.
	vol, err := AvgVolumeAt(s, 1, 3)
	require.NoError(t, err)
	assert.InDelta(t, (13.0+12.0+15.0)/3.0, vol, 0.001)
}

func TestMaxRangeBetween(t *testing.T) {
	s := seriesFrom(createTestCandles())

	r, err := MaxRangeBetween(s, 1, 4)
	require.NoError(t, err)
	// Ranges at shifts 1..4: 5, 5, 4, 5 with the widest being 5.
	assert.InDelta(t, 5.0, r, 0.001)

	// Reversed order normalizes.
	r2, err := MaxRangeBetween(s, 4, 1)
	require.NoError(t, err)
	assert.Equal(t, r, r2)
}
