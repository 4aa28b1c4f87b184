package indicators

import (
	"fmt"

	"github.com/rustyeddy/breaker/market"
)

// SMAAt calculates the Simple Moving Average of closes over 'period'
// candles ending at the given shift.
func SMAAt(src market.BarSource, shift, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}

	sum := 0.0
	for s := shift; s < shift+period; s++ {
		c, err := src.Bar(s)
		if err != nil {
			return 0, err
		}
		sum += c.Close
	}
	return sum / float64(period), nil
}

// AvgBodyAt returns the mean candle body size over 'period' candles ending
// at the given shift. Used as the volatility reference in body-quality
// checks when ATR mode is off.
func AvgBodyAt(src market.BarSource, shift, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}

	sum := 0.0
	for s := shift; s < shift+period; s++ {
		c, err := src.Bar(s)
		if err != nil {
			return 0, err
		}
		sum += c.Body()
	}
	return sum / float64(period), nil
}

// AvgVolumeAt returns the mean volume over 'period' candles ending at the
// candle one older than the given shift, i.e. the trailing average the
// shifted candle's own volume is compared against.
func AvgVolumeAt(src market.BarSource, shift, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}

	sum := 0.0
	for s := shift + 1; s <= shift+period; s++ {
		c, err := src.Bar(s)
		if err != nil {
			return 0, err
		}
		sum += c.Volume
	}
	return sum / float64(period), nil
}

// MaxRangeBetween returns the largest single-candle range over the shift
// interval [newer, older]. The zone impulse check compares this against ATR.
func MaxRangeBetween(src market.BarSource, newer, older int) (float64, error) {
	if newer > older {
		newer, older = older, newer
	}
	max := 0.0
	for s := newer; s <= older; s++ {
		c, err := src.Bar(s)
		if err != nil {
			return 0, err
		}
		if r := c.Range(); r > max {
			max = r
		}
	}
	return max, nil
}
