package structure

import (
	"github.com/rustyeddy/breaker/market"
)

// Break is a close beyond a recent swing extreme by more than the minimum
// break distance. It is produced at most once per evaluated bar and not
// retained.
type Break struct {
	Direction market.Direction
	Level     float64 // the swing price that was broken
	BarShift  int     // shift of the bar whose close broke it
}

// Analyzer detects structure breaks on newly closed bars.
type Analyzer struct {
	swings *SwingDetector

	// MinBreakPips is the minimum close-beyond-swing distance in pips
	// (instrument pip, i.e. ten points on 3/5-digit quotes).
	MinBreakPips float64
}

func NewAnalyzer(swings *SwingDetector, minBreakPips float64) *Analyzer {
	return &Analyzer{swings: swings, MinBreakPips: minBreakPips}
}

// DetectBreak evaluates the closed bar at the given shift. Both a prior
// swing high and a prior swing low must resolve, otherwise there is no
// signal. When both break conditions hold on the same bar the upward break
// wins; this asymmetric priority matches the strategy as traded and must
// not be made symmetric.
func (a *Analyzer) DetectBreak(src market.BarSource, shift int) (Break, bool) {
	bar, err := src.Bar(shift)
	if err != nil || bar.Close == 0 {
		return Break{}, false
	}

	high, low, err := a.swings.FindNearestSwings(src, shift+1)
	if err != nil {
		return Break{}, false
	}

	minBreak := a.MinBreakPips * src.Instrument().Pip()

	if bar.Close-high.Price > minBreak {
		return Break{Direction: market.Up, Level: high.Price, BarShift: shift}, true
	}
	if low.Price-bar.Close > minBreak {
		return Break{Direction: market.Down, Level: low.Price, BarShift: shift}, true
	}
	return Break{}, false
}
