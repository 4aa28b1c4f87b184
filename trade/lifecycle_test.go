package trade

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/breaker/broker"
	"github.com/rustyeddy/breaker/broker/sim"
	"github.com/rustyeddy/breaker/market"
)

var ctx = context.Background()

type fixture struct {
	src *market.Series
	gw  *sim.Engine
	mgr *Manager
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	meta := market.Instruments["EUR_USD"]
	src := market.NewSeries(meta)
	gw := sim.NewEngine(meta, 10000)
	f := &fixture{src: src, gw: gw, mgr: NewManager(cfg, gw, "test", nil)}
	f.quote(1.1000)
	return f
}

// quote moves both the feed and the gateway to bid=px, ask=px+1 point.
func (f *fixture) quote(bid float64) {
	t := market.Tick{Bid: bid, Ask: bid + 0.0001, Time: time.Now()}
	f.src.SetTick(t)
	f.gw.UpdateTick(t)
}

func (f *fixture) manage() {
	f.mgr.ManageTick(ctx, f.src)
}

func (f *fixture) position(t *testing.T) broker.Position {
	t.Helper()
	open, err := f.gw.ListOpenPositions(ctx, "test")
	require.NoError(t, err)
	require.Len(t, open, 1)
	return open[0]
}

func fixedTrailConfig() Config {
	cfg := DefaultConfig()
	cfg.TrailMode = TrailFixed
	cfg.TrailStepPips = 10
	return cfg
}

func TestEnterRecomputesTargetFromFill(t *testing.T) {
	f := newFixture(t, fixedTrailConfig())

	// Ask fill at 1.1001, stop 10 pips below.
	fill, err := f.mgr.Enter(ctx, market.Up, 1.0, 1.0991, 2.0)
	require.NoError(t, err)
	assert.InDelta(t, 1.1001, fill.Price, 1e-9)

	p := f.position(t)
	assert.InDelta(t, 1.0991, p.Stop, 1e-9)
	assert.InDelta(t, 1.1021, p.Target, 1e-9, "target preserves 2R off the actual fill")
}

func TestEnterFailureLeavesNothing(t *testing.T) {
	meta := market.Instruments["EUR_USD"]
	gw := sim.NewEngine(meta, 10000) // no tick: orders rejected
	mgr := NewManager(fixedTrailConfig(), gw, "test", nil)

	_, err := mgr.Enter(ctx, market.Up, 1.0, 1.0991, 2.0)
	assert.Error(t, err)

	open, _ := gw.ListOpenPositions(ctx, "test")
	assert.Empty(t, open)
}

// Walks one long position through all three stages and checks the stop
// never loosens.
func TestLifecycleStagesMonotonic(t *testing.T) {
	f := newFixture(t, fixedTrailConfig())
	_, err := f.mgr.Enter(ctx, market.Up, 1.0, 1.0991, 2.0)
	require.NoError(t, err)

	lastStop := 1.0991

	// RR 0.7: break-even moves the stop to entry + 1 pip lock.
	f.quote(1.1008)
	f.manage()
	p := f.position(t)
	assert.InDelta(t, 1.1002, p.Stop, 1e-9)
	assert.GreaterOrEqual(t, p.Stop, lastStop)
	assert.InDelta(t, 1.0, p.Volume, 1e-9, "no partial yet")
	lastStop = p.Stop

	// RR 1.0: half the volume comes off, exactly once.
	f.quote(1.1011)
	f.manage()
	p = f.position(t)
	assert.InDelta(t, 0.5, p.Volume, 1e-9)
	assert.GreaterOrEqual(t, p.Stop, lastStop)
	lastStop = p.Stop

	// RR 1.2: no second partial.
	f.quote(1.1013)
	f.manage()
	p = f.position(t)
	assert.InDelta(t, 0.5, p.Volume, 1e-9)

	// RR 1.5: trailing kicks in 10 pips behind the bid.
	f.quote(1.1016)
	f.manage()
	p = f.position(t)
	assert.InDelta(t, 1.1006, p.Stop, 1e-9)
	assert.GreaterOrEqual(t, p.Stop, lastStop)
	lastStop = p.Stop

	// Pullback: the trailing candidate is worse, the stop must hold.
	f.quote(1.1012)
	f.manage()
	p = f.position(t)
	assert.InDelta(t, lastStop, p.Stop, 1e-9)

	partials := 0
	for _, c := range f.gw.Closed() {
		if c.Reason == "partial_close" {
			partials++
		}
	}
	assert.Equal(t, 1, partials)
}

// A quote landing exactly on a stage threshold yields a computed ratio a
// float ulp short of it; the stage must still fire.
func TestStageFiresOnExactThresholdQuote(t *testing.T) {
	f := newFixture(t, fixedTrailConfig())
	_, err := f.mgr.Enter(ctx, market.Up, 1.0, 1.0991, 2.0)
	require.NoError(t, err)

	// (1.1008 - 1.1001) / 0.0010 computes to 0.699999... in float64.
	f.quote(1.1008)
	f.manage()

	p := f.position(t)
	assert.InDelta(t, 1.1002, p.Stop, 1e-9, "break-even at exactly RR 0.7")
}

func TestPartialCloseOneShotAcrossManyTicks(t *testing.T) {
	f := newFixture(t, fixedTrailConfig())
	_, err := f.mgr.Enter(ctx, market.Up, 1.0, 1.0991, 2.0)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		f.quote(1.1011 + float64(i)*0.00005)
		f.manage()
	}

	p := f.position(t)
	assert.InDelta(t, 0.5, p.Volume, 1e-9)

	partials := 0
	for _, c := range f.gw.Closed() {
		if c.Reason == "partial_close" {
			partials++
		}
	}
	assert.Equal(t, 1, partials)
}

func TestPartialSkippedWhenPositionTooSmall(t *testing.T) {
	f := newFixture(t, fixedTrailConfig())
	_, err := f.mgr.Enter(ctx, market.Up, 0.01, 1.0991, 2.0)
	require.NoError(t, err)

	f.quote(1.1011)
	f.manage()
	f.quote(1.1012)
	f.manage()

	p := f.position(t)
	assert.InDelta(t, 0.01, p.Volume, 1e-9, "minimum-size position never splits")
	for _, c := range f.gw.Closed() {
		assert.NotEqual(t, "partial_close", c.Reason)
	}
}

func TestBreakEvenWaitsForFreezeDistance(t *testing.T) {
	meta := market.Instruments["EUR_USD"]
	meta.FreezeDistance = 0.0008
	src := market.NewSeries(meta)
	gw := sim.NewEngine(meta, 10000)
	cfg := fixedTrailConfig()
	mgr := NewManager(cfg, gw, "test", nil)

	tick := market.Tick{Bid: 1.1000, Ask: 1.1001, Time: time.Now()}
	src.SetTick(tick)
	gw.UpdateTick(tick)

	_, err := mgr.Enter(ctx, market.Up, 1.0, 1.0991, 2.0)
	require.NoError(t, err)

	// RR 0.7 but the candidate stop sits 6 points from price: frozen out.
	tick = market.Tick{Bid: 1.1008, Ask: 1.1009, Time: time.Now()}
	src.SetTick(tick)
	gw.UpdateTick(tick)
	mgr.ManageTick(ctx, src)

	open, _ := gw.ListOpenPositions(ctx, "test")
	require.Len(t, open, 1)
	assert.InDelta(t, 1.0991, open[0].Stop, 1e-9)

	// Next tick clears the band: the move is re-attempted and lands.
	tick = market.Tick{Bid: 1.1012, Ask: 1.1013, Time: time.Now()}
	src.SetTick(tick)
	gw.UpdateTick(tick)
	mgr.ManageTick(ctx, src)

	open, _ = gw.ListOpenPositions(ctx, "test")
	require.Len(t, open, 1)
	assert.InDelta(t, 1.1002, open[0].Stop, 1e-9)
}

func TestTrailATRMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TrailMode = TrailATR
	cfg.TrailATRPeriod = 3
	cfg.TrailATRMult = 1.0

	f := newFixture(t, cfg)
	// Candles with a steady 8-point true range feed the ATR.
	ts := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		p := 1.0990 + float64(i)*0.0002
		f.src.Push(market.Candle{
			Open: p, Close: p + 0.0002, High: p + 0.0005, Low: p - 0.0003,
			Time: ts.Add(time.Duration(i) * time.Minute),
		})
	}

	f.quote(1.1000)
	_, err := f.mgr.Enter(ctx, market.Up, 1.0, 1.0991, 2.0)
	require.NoError(t, err)

	f.quote(1.1016) // RR 1.5
	f.manage()

	p := f.position(t)
	// The stop trails roughly one ATR (~0.0008-0.0010) behind the bid and
	// must beat the break-even level.
	assert.Greater(t, p.Stop, 1.1002)
	assert.Less(t, p.Stop, 1.1016)
}

func TestShortLifecycleMirrors(t *testing.T) {
	f := newFixture(t, fixedTrailConfig())

	// Bid fill at 1.1000, stop 10 pips above.
	fill, err := f.mgr.Enter(ctx, market.Down, 1.0, 1.1010, 2.0)
	require.NoError(t, err)
	assert.InDelta(t, 1.1000, fill.Price, 1e-9)

	p := f.position(t)
	assert.InDelta(t, 1.0980, p.Target, 1e-9)

	// RR 0.7 on the ask side: 1.1000 - 0.0007 = ask 1.0993.
	f.quote(1.0992)
	f.manage()
	p = f.position(t)
	assert.InDelta(t, 1.0999, p.Stop, 1e-9, "entry minus 1 pip lock")

	// RR 1.0: partial close fires once.
	f.quote(1.0989)
	f.manage()
	p = f.position(t)
	assert.InDelta(t, 0.5, p.Volume, 1e-9)
}
