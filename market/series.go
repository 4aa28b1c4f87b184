package market

import (
	"errors"
	"time"
)

// Shift addresses bars by recency: shift 0 is the currently forming bar,
// shift 1 the most recently closed bar, and larger shifts walk back in time.
// Keeping the closed/forming distinction explicit here is what lets the rest
// of the engine avoid off-by-one bugs around bar close.
var (
	ErrNoBar  = errors.New("market: no bar at shift")
	ErrNoTick = errors.New("market: no tick available")
)

// BarSource is the read side of the market data feed.
type BarSource interface {
	// Bar returns the candle at the given recency shift.
	Bar(shift int) (Candle, error)
	// LastClosed returns the most recently closed candle.
	LastClosed() (Candle, error)
	// ClosedBars returns how many closed candles are addressable.
	ClosedBars() int
	// BidAsk returns the latest quote.
	BidAsk() (Tick, error)
	// Instrument returns contract metadata for the traded instrument.
	Instrument() InstrumentMeta
}

// Series is an in-memory BarSource fed by replay, backtests, and tests.
// Closed candles are stored oldest first; the forming candle is kept apart
// so that shift arithmetic never mixes the two.
type Series struct {
	meta    InstrumentMeta
	closed  []Candle
	forming Candle
	hasForm bool
	tick    Tick
	hasTick bool
}

func NewSeries(meta InstrumentMeta) *Series {
	return &Series{meta: meta}
}

// Push appends a closed candle and synthesizes a quote at its close so that
// replays have a consistent tick without a separate quote stream.
func (s *Series) Push(c Candle) {
	s.closed = append(s.closed, c)
	half := s.meta.PointSize / 2
	s.SetTick(Tick{Bid: c.Close - half, Ask: c.Close + half, Time: c.Time})
}

// SetForming replaces the currently forming candle.
func (s *Series) SetForming(c Candle) {
	s.forming = c
	s.hasForm = true
}

// SetTick replaces the latest quote.
func (s *Series) SetTick(t Tick) {
	s.tick = t
	s.hasTick = true
}

func (s *Series) Bar(shift int) (Candle, error) {
	if shift < 0 {
		return Candle{}, ErrNoBar
	}
	if shift == 0 {
		if !s.hasForm {
			return Candle{}, ErrNoBar
		}
		return s.forming, nil
	}
	i := len(s.closed) - shift
	if i < 0 {
		return Candle{}, ErrNoBar
	}
	return s.closed[i], nil
}

func (s *Series) ClosedBars() int { return len(s.closed) }

// LastClosed returns the most recently closed candle.
func (s *Series) LastClosed() (Candle, error) {
	return s.Bar(1)
}

// Now returns the time of the latest quote, falling back to the last
// closed candle when no tick has been set.
func (s *Series) Now() time.Time {
	if s.hasTick {
		return s.tick.Time
	}
	if n := len(s.closed); n > 0 {
		return s.closed[n-1].Time
	}
	return time.Time{}
}

func (s *Series) BidAsk() (Tick, error) {
	if !s.hasTick {
		return Tick{}, ErrNoTick
	}
	return s.tick, nil
}

func (s *Series) Instrument() InstrumentMeta { return s.meta }
