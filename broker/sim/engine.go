// Package sim is a synchronous simulated execution gateway used by
// backtests, replays, and lifecycle tests. It fills at the current
// bid/ask, enforces the instrument's freeze-distance rule on stop
// modifications, and realizes P/L on close.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/breaker/broker"
	"github.com/rustyeddy/breaker/internal/id"
	"github.com/rustyeddy/breaker/market"
)

// ClosedTrade records a finished (or partially closed) slice of a position
// for result reporting.
type ClosedTrade struct {
	PositionID string
	Direction  market.Direction
	EntryPrice float64
	ExitPrice  float64
	Volume     float64
	OpenTime   time.Time
	CloseTime  time.Time
	Profit     float64 // account currency
	Reason     string
}

// Engine implements broker.Gateway against an in-memory book. The host
// serializes events, so there is no locking here; the live gateway is the
// one that deals with transport concerns.
type Engine struct {
	meta      market.InstrumentMeta
	tick      market.Tick
	balance   float64
	positions map[string]*broker.Position
	closed    []ClosedTrade
}

func NewEngine(meta market.InstrumentMeta, startBalance float64) *Engine {
	return &Engine{
		meta:      meta,
		balance:   startBalance,
		positions: make(map[string]*broker.Position),
	}
}

// UpdateTick moves the market and triggers stop/target exits for every
// open position, stops checked first.
func (e *Engine) UpdateTick(t market.Tick) {
	e.tick = t
	for _, p := range e.positions {
		price := e.closePrice(p.Direction)
		if stopHit(p, price) {
			e.closeAll(p, p.Stop, t.Time, "stop_loss")
			continue
		}
		if targetHit(p, price) {
			e.closeAll(p, p.Target, t.Time, "take_profit")
		}
	}
}

func (e *Engine) PlaceMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.Fill, error) {
	if req.Volume <= 0 {
		return broker.Fill{}, fmt.Errorf("sim: order volume must be positive, got %v", req.Volume)
	}
	if e.tick.Time.IsZero() {
		return broker.Fill{}, fmt.Errorf("sim: no market price")
	}

	fillPrice := e.tick.Ask
	if req.Direction == market.Down {
		fillPrice = e.tick.Bid
	}

	p := &broker.Position{
		ID:         id.New(),
		StrategyID: req.StrategyID,
		Direction:  req.Direction,
		EntryPrice: fillPrice,
		Stop:       req.Stop,
		Target:     req.Target,
		Volume:     req.Volume,
		OpenTime:   e.tick.Time,
	}
	e.positions[p.ID] = p

	return broker.Fill{PositionID: p.ID, Price: fillPrice, Time: e.tick.Time}, nil
}

// ModifyStop rejects modifications inside the freeze band around the
// current market price, the way a real dealer does.
func (e *Engine) ModifyStop(ctx context.Context, positionID string, stop, target float64) error {
	p, ok := e.positions[positionID]
	if !ok {
		return fmt.Errorf("sim: position %q not found", positionID)
	}

	price := e.closePrice(p.Direction)
	if dist := abs(price - stop); dist < e.meta.FreezeDistance {
		return fmt.Errorf("sim: stop %.5f within freeze distance of %.5f", stop, price)
	}

	p.Stop = stop
	if target != 0 {
		p.Target = target
	}
	return nil
}

func (e *Engine) PartialClose(ctx context.Context, positionID string, volume float64) error {
	p, ok := e.positions[positionID]
	if !ok {
		return fmt.Errorf("sim: position %q not found", positionID)
	}
	if volume <= 0 || volume >= p.Volume {
		return fmt.Errorf("sim: partial close volume %v out of range (open %v)", volume, p.Volume)
	}

	price := e.closePrice(p.Direction)
	e.realize(p, price, volume, e.tick.Time, "partial_close")
	p.Volume -= volume
	return nil
}

func (e *Engine) ListOpenPositions(ctx context.Context, strategyID string) ([]broker.Position, error) {
	var out []broker.Position
	for _, p := range e.positions {
		if strategyID == "" || p.StrategyID == strategyID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (e *Engine) Equity(ctx context.Context) (float64, error) {
	eq := e.balance
	for _, p := range e.positions {
		eq += e.unrealized(p)
	}
	return eq, nil
}

// CloseAll flattens every open position at the current quote. Used at the
// end of a replay so results reflect realized P/L only.
func (e *Engine) CloseAll(reason string) {
	for _, p := range e.positions {
		e.closeAll(p, e.closePrice(p.Direction), e.tick.Time, reason)
	}
}

// Balance returns realized funds only.
func (e *Engine) Balance() float64 { return e.balance }

// Closed returns the realized trade slices, oldest first.
func (e *Engine) Closed() []ClosedTrade { return e.closed }

func (e *Engine) unrealized(p *broker.Position) float64 {
	price := e.closePrice(p.Direction)
	return p.Direction.Sign() * (price - p.EntryPrice) / e.meta.TickSize * e.meta.TickValue * p.Volume
}

// closePrice is the side a position exits on: longs close on bid, shorts
// on ask.
func (e *Engine) closePrice(dir market.Direction) float64 {
	if dir == market.Up {
		return e.tick.Bid
	}
	return e.tick.Ask
}

func (e *Engine) closeAll(p *broker.Position, price float64, ts time.Time, reason string) {
	e.realize(p, price, p.Volume, ts, reason)
	delete(e.positions, p.ID)
}

func (e *Engine) realize(p *broker.Position, price, volume float64, ts time.Time, reason string) {
	profit := p.Direction.Sign() * (price - p.EntryPrice) / e.meta.TickSize * e.meta.TickValue * volume
	e.balance += profit
	e.closed = append(e.closed, ClosedTrade{
		PositionID: p.ID,
		Direction:  p.Direction,
		EntryPrice: p.EntryPrice,
		ExitPrice:  price,
		Volume:     volume,
		OpenTime:   p.OpenTime,
		CloseTime:  ts,
		Profit:     profit,
		Reason:     reason,
	})
}

func stopHit(p *broker.Position, price float64) bool {
	if p.Stop == 0 {
		return false
	}
	if p.Direction == market.Up {
		return price <= p.Stop
	}
	return price >= p.Stop
}

func targetHit(p *broker.Position, price float64) bool {
	if p.Target == 0 {
		return false
	}
	if p.Direction == market.Up {
		return price >= p.Target
	}
	return price <= p.Target
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
