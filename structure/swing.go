// Package structure locates swing points in bar history and detects
// directional structure breaks, the trigger events for zone creation.
package structure

import (
	"errors"

	"github.com/rustyeddy/breaker/market"
)

// ErrNoSwing is returned when the lookback window is exhausted before a
// qualifying swing high or low is found.
var ErrNoSwing = errors.New("structure: no swing found in lookback window")

// DefaultLookback bounds the swing scan so a quiet chart cannot walk the
// whole series.
const DefaultLookback = 300

// SwingKind distinguishes swing highs from swing lows.
type SwingKind int

const (
	SwingHigh SwingKind = iota
	SwingLow
)

func (k SwingKind) String() string {
	if k == SwingHigh {
		return "high"
	}
	return "low"
}

// SwingPoint is a confirmed local extreme. Shift is the recency index of
// the bar carrying the extreme (see market.BarSource).
type SwingPoint struct {
	Shift int
	Price float64
	Kind  SwingKind
}

// SwingDetector finds strict local extrema: a swing high must exceed every
// high within Left bars toward older history and Right bars toward newer
// history. Ties disqualify.
type SwingDetector struct {
	Left     int
	Right    int
	Lookback int
}

func NewSwingDetector(left, right int) *SwingDetector {
	return &SwingDetector{Left: left, Right: right, Lookback: DefaultLookback}
}

// FindNearestSwings scans from the given shift toward older bars and
// returns the first qualifying swing high and swing low, found
// independently. Either missing after the lookback window returns
// ErrNoSwing.
func (d *SwingDetector) FindNearestSwings(src market.BarSource, from int) (high, low SwingPoint, err error) {
	lookback := d.Lookback
	if lookback <= 0 {
		lookback = DefaultLookback
	}

	foundHigh, foundLow := false, false
	for i := from; i < from+lookback; i++ {
		if !foundHigh && d.isSwing(src, i, SwingHigh) {
			high = SwingPoint{Shift: i, Kind: SwingHigh}
			if c, err := src.Bar(i); err == nil {
				high.Price = c.High
			}
			foundHigh = true
		}
		if !foundLow && d.isSwing(src, i, SwingLow) {
			low = SwingPoint{Shift: i, Kind: SwingLow}
			if c, err := src.Bar(i); err == nil {
				low.Price = c.Low
			}
			foundLow = true
		}
		if foundHigh && foundLow {
			return high, low, nil
		}
	}
	return SwingPoint{}, SwingPoint{}, ErrNoSwing
}

// isSwing checks the strict extreme condition at shift i. Any missing
// neighbor bar fails closed: an unconfirmable swing is no swing.
func (d *SwingDetector) isSwing(src market.BarSource, i int, kind SwingKind) bool {
	if i-d.Right < 1 {
		// Not enough closed bars on the newer side to confirm.
		return false
	}
	pivot, err := src.Bar(i)
	if err != nil {
		return false
	}

	for s := i - d.Right; s <= i+d.Left; s++ {
		if s == i {
			continue
		}
		c, err := src.Bar(s)
		if err != nil {
			return false
		}
		if kind == SwingHigh && c.High >= pivot.High {
			return false
		}
		if kind == SwingLow && c.Low <= pivot.Low {
			return false
		}
	}
	return true
}
