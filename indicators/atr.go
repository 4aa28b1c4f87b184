// Package indicators provides the technical calculations the strategy
// engine reads against a bar source: ATR, moving averages, and the
// body/volume references used by zone quality checks. Everything here is
// shift-addressable (0 = forming bar, 1 = last closed) and fails with an
// error rather than guessing when history is short.
package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/breaker/market"
)

// ATRFunc calculates the Average True Range over a candle slice.
// Returns an error if there aren't enough candles for the period.
func ATRFunc(candles []market.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(candles) < period+1 {
		return 0, fmt.Errorf("not enough candles: need %d, got %d", period+1, len(candles))
	}

	trueRanges := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		trueRanges = append(trueRanges, trueRange(candles[i], candles[i-1]))
	}

	// Initial ATR is the SMA of the first 'period' true ranges.
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += trueRanges[i]
	}
	atr := sum / float64(period)

	// Smooth the remaining values using Wilder's method.
	for i := period; i < len(trueRanges); i++ {
		atr = (atr*float64(period-1) + trueRanges[i]) / float64(period)
	}

	return atr, nil
}

// ATRAt evaluates ATR ending at the given shift. It gathers up to three
// periods of history so Wilder smoothing has something to settle on, but
// accepts the minimum period+1 candles when the series is young.
func ATRAt(src market.BarSource, shift, period int) (float64, error) {
	candles, err := window(src, shift, 3*period)
	if err != nil {
		return 0, err
	}
	return ATRFunc(candles, period)
}

// trueRange calculates the True Range for a candle given the previous candle.
func trueRange(current, previous market.Candle) float64 {
	highLow := current.High - current.Low
	highClose := math.Abs(current.High - previous.Close)
	lowClose := math.Abs(current.Low - previous.Close)

	return math.Max(highLow, math.Max(highClose, lowClose))
}

// window collects up to 'want' candles ending at shift, oldest first.
// It returns however many exist; callers decide whether that is enough.
func window(src market.BarSource, shift, want int) ([]market.Candle, error) {
	if shift < 0 {
		return nil, market.ErrNoBar
	}
	have := src.ClosedBars() - shift + 1
	if shift == 0 {
		have = src.ClosedBars() + 1
	}
	if have > want {
		have = want
	}
	if have <= 0 {
		return nil, market.ErrNoBar
	}

	candles := make([]market.Candle, 0, have)
	for s := shift + have - 1; s >= shift; s-- {
		c, err := src.Bar(s)
		if err != nil {
			return nil, err
		}
		candles = append(candles, c)
	}
	return candles, nil
}
