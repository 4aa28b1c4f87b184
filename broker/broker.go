// Package broker defines the execution gateway the strategy engine talks
// to. The gateway owns authoritative position state; the engine queries it
// fresh every tick and never caches stops or volumes.
package broker

import (
	"context"
	"time"

	"github.com/rustyeddy/breaker/market"
)

// Position is the gateway's view of an open trade.
type Position struct {
	ID         string
	StrategyID string
	Direction  market.Direction
	EntryPrice float64
	Stop       float64
	Target     float64
	Volume     float64
	OpenTime   time.Time
}

// MarketOrderRequest asks for an immediate fill with protective levels
// attached.
type MarketOrderRequest struct {
	StrategyID string
	Direction  market.Direction
	Volume     float64
	Stop       float64
	Target     float64
}

// Fill reports the actual execution of a market order.
type Fill struct {
	PositionID string
	Price      float64
	Time       time.Time
}

// Gateway is the execution side of the broker connection. All calls are
// synchronous; a failure is returned, never retried internally.
type Gateway interface {
	PlaceMarketOrder(ctx context.Context, req MarketOrderRequest) (Fill, error)
	ModifyStop(ctx context.Context, positionID string, stop, target float64) error
	PartialClose(ctx context.Context, positionID string, volume float64) error
	ListOpenPositions(ctx context.Context, strategyID string) ([]Position, error)
}

// AccountSource reports account equity for risk sizing.
type AccountSource interface {
	Equity(ctx context.Context) (float64, error)
}
