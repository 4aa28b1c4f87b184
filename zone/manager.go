package zone

import (
	"log/slog"
	"math"

	"github.com/rustyeddy/breaker/indicators"
	"github.com/rustyeddy/breaker/market"
	"github.com/rustyeddy/breaker/structure"
)

// BodyReference selects the volatility reference for the order-block body
// quality check.
type BodyReference int

const (
	// BodyVsATR compares the candle body against ATR at that candle.
	BodyVsATR BodyReference = iota
	// BodyVsAverage compares it against the trailing mean body size.
	BodyVsAverage
)

// Config holds the zone-lifecycle parameters, fixed for the run.
type Config struct {
	Retention          int // per-direction cap
	OrderBlockLookback int // scan window behind the break bar
	BodyMode           BodyReference
	BodyQualityRatio   float64 // body must exceed ratio × reference
	AvgBodyPeriod      int
	ATRPeriod          int
	VolumeSpike        bool    // enable the volume-spike check
	VolumeSpikeFactor  float64 // volume must exceed factor × trailing avg
	VolumePeriod       int
	ImpulseATRRatio    float64 // widest bar OB→break must exceed ratio × ATR
	FullRange          bool    // zone = high/low bounds instead of open/close
	TouchMode          TouchMode
	Breaker            bool // promote invalidated zones to breaker-ready
}

// DefaultConfig mirrors the parameters the strategy has been run with.
func DefaultConfig() Config {
	return Config{
		Retention:          10,
		OrderBlockLookback: 50,
		BodyMode:           BodyVsATR,
		BodyQualityRatio:   0.5,
		AvgBodyPeriod:      20,
		ATRPeriod:          14,
		VolumeSpike:        false,
		VolumeSpikeFactor:  1.5,
		VolumePeriod:       20,
		ImpulseATRRatio:    1.0,
		FullRange:          false,
		TouchMode:          TouchByRange,
		Breaker:            true,
	}
}

// Manager drives the zone lifecycle. It owns nothing but the store it was
// given; all market data arrives through the bar source.
type Manager struct {
	cfg    Config
	store  *Store
	notify Notifier
	log    *slog.Logger
}

func NewManager(cfg Config, store *Store, notify Notifier, log *slog.Logger) *Manager {
	if notify == nil {
		notify = NopNotifier{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{cfg: cfg, store: store, notify: notify, log: log}
}

func (m *Manager) Store() *Store { return m.store }

// OnStructureBreak scans behind the break bar for the order-block candle
// and, if it passes the quality checks, creates a zone.
//
// The scan keeps overwriting its candidate as it walks toward older bars,
// so the OLDEST opposite-colored candle in the window wins, not the
// nearest. That is how the strategy has always traded and changing it
// changes entries; keep the overwrite.
func (m *Manager) OnStructureBreak(src market.BarSource, brk structure.Break) *Zone {
	var (
		candidate      market.Candle
		candidateShift int
		found          bool
	)
	for s := brk.BarShift + 1; s <= brk.BarShift+m.cfg.OrderBlockLookback; s++ {
		c, err := src.Bar(s)
		if err != nil {
			break
		}
		if opposite(c, brk.Direction) {
			candidate = c
			candidateShift = s
			found = true
		}
	}
	if !found {
		return nil
	}

	if !m.bodyQualityOK(src, candidate, candidateShift) {
		return nil
	}
	if m.cfg.VolumeSpike && !m.volumeSpikeOK(src, candidate, candidateShift) {
		return nil
	}
	if !m.impulseOK(src, brk.BarShift, candidateShift) {
		return nil
	}

	low, high := candidate.Open, candidate.Close
	if m.cfg.FullRange {
		low, high = candidate.Low, candidate.High
	}
	if low > high {
		low, high = high, low
	}

	z := m.store.Add(&Zone{
		Direction:  brk.Direction,
		AnchorTime: candidate.Time,
		Low:        low,
		High:       high,
		Valid:      true,
	})
	m.log.Debug("zone created",
		"id", z.ID, "dir", z.Direction.String(), "low", z.Low, "high", z.High)
	m.notify.ZoneCreated(*z)
	return z
}

// OnBarClose advances the lifecycle of every stored zone against the last
// closed bar: invalidation first, then touch marking.
func (m *Manager) OnBarClose(src market.BarSource) {
	bar, err := src.LastClosed()
	if err != nil {
		return
	}

	for _, dir := range []market.Direction{market.Up, market.Down} {
		for _, z := range m.store.Zones(dir) {
			if !z.Valid {
				continue
			}
			if broken(z, bar) {
				z.Valid = false
				z.InvalidatedAt = bar.Time
				if m.cfg.Breaker {
					z.BreakerReady = true
				}
				m.log.Debug("zone invalidated", "id", z.ID, "dir", z.Direction.String())
				m.notify.ZoneInvalidated(*z)
				continue
			}
			if !z.Touched && z.HitBy(bar, m.cfg.TouchMode) {
				z.Touched = true
				m.log.Debug("zone touched", "id", z.ID, "dir", z.Direction.String())
				m.notify.ZoneTouched(*z)
			}
		}
	}
}

// TouchMode exposes the configured price test for the confirmation engine.
func (m *Manager) TouchMode() TouchMode { return m.cfg.TouchMode }

// broken reports whether the bar's close pierced the zone's defended edge.
func broken(z *Zone, bar market.Candle) bool {
	if z.Direction == market.Up {
		return bar.Close < z.Low
	}
	return bar.Close > z.High
}

// opposite reports whether the candle's color opposes the break direction.
func opposite(c market.Candle, dir market.Direction) bool {
	if dir == market.Up {
		return c.Bearish()
	}
	return c.Bullish()
}

func (m *Manager) bodyQualityOK(src market.BarSource, c market.Candle, shift int) bool {
	var ref float64
	var err error
	switch m.cfg.BodyMode {
	case BodyVsAverage:
		ref, err = indicators.AvgBodyAt(src, shift, m.cfg.AvgBodyPeriod)
	default:
		ref, err = indicators.ATRAt(src, shift, m.cfg.ATRPeriod)
	}
	if err != nil || ref <= 0 || math.IsNaN(ref) {
		// Unresolved volatility reference: fail closed, no zone.
		return false
	}
	return c.Body() > m.cfg.BodyQualityRatio*ref
}

func (m *Manager) volumeSpikeOK(src market.BarSource, c market.Candle, shift int) bool {
	avg, err := indicators.AvgVolumeAt(src, shift, m.cfg.VolumePeriod)
	if err != nil || avg <= 0 {
		return false
	}
	return c.Volume > m.cfg.VolumeSpikeFactor*avg
}

func (m *Manager) impulseOK(src market.BarSource, breakShift, obShift int) bool {
	atr, err := indicators.ATRAt(src, breakShift, m.cfg.ATRPeriod)
	if err != nil || atr <= 0 {
		return false
	}
	widest, err := indicators.MaxRangeBetween(src, breakShift, obShift)
	if err != nil {
		return false
	}
	return widest > m.cfg.ImpulseATRRatio*atr
}
