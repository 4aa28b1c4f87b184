// Package journal persists what the engine did: closed trades, equity
// snapshots, and zone lifecycle events, keyed by run so separate backtests
// stay separable.
package journal

import (
	"time"

	"github.com/google/uuid"

	"github.com/rustyeddy/breaker/market"
)

// Run identifies one engine invocation.
type Run struct {
	ID         string
	StrategyID string
	Instrument string
	StartedAt  time.Time
}

// NewRun mints a run with a fresh unique ID.
func NewRun(strategyID, instrument string, startedAt time.Time) Run {
	return Run{
		ID:         uuid.NewString(),
		StrategyID: strategyID,
		Instrument: instrument,
		StartedAt:  startedAt,
	}
}

// TradeRecord is one closed trade or partial close.
type TradeRecord struct {
	ID         string
	RunID      string
	PositionID string
	Instrument string
	Direction  market.Direction
	Volume     float64
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	RealizedPL float64
	Reason     string
}

// EquitySnapshot is the account state at a point in time.
type EquitySnapshot struct {
	RunID   string
	Time    time.Time
	Balance float64
	Equity  float64
}

// ZoneEvent is one zone lifecycle transition.
type ZoneEvent struct {
	RunID     string
	Time      time.Time
	ZoneID    uint64
	Event     string // "created", "touched", "invalidated"
	Direction market.Direction
	Low       float64
	High      float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	RecordZoneEvent(ZoneEvent) error
	Close() error
}

// Nop discards everything. Used when journaling is disabled.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) RecordZoneEvent(ZoneEvent) error   { return nil }
func (Nop) Close() error                      { return nil }
