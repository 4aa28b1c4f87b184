// Package risk converts stop distances and account equity into normalized
// trade sizes and computes the stop/target levels around a zone entry.
package risk

import (
	"math"

	"github.com/rustyeddy/breaker/market"
)

// Config holds the risk parameters, fixed for the run.
type Config struct {
	// RiskPercent is the equity fraction risked per trade, in percent
	// (0.3 means 0.3%).
	RiskPercent float64
	// RewardRatio fixes the target at entry ± stopDistance × ratio.
	RewardRatio float64
	// StopBufferPips pads the stop beyond the zone boundary.
	StopBufferPips float64
}

func DefaultConfig() Config {
	return Config{RiskPercent: 0.5, RewardRatio: 2.0, StopBufferPips: 2}
}

// Size returns the volume for the given stop distance, floored to the
// instrument's volume step and clamped to its volume limits. A
// non-positive stop distance or missing contract data sizes to zero,
// which callers treat as "no trade".
func Size(equity, riskPercent, stopDistance float64, meta market.InstrumentMeta) float64 {
	if equity <= 0 || riskPercent <= 0 || stopDistance <= 0 {
		return 0
	}
	if meta.TickSize <= 0 || meta.TickValue <= 0 || meta.VolumeStep <= 0 {
		return 0
	}

	ticks := stopDistance / meta.TickSize
	raw := equity * riskPercent / 100 / (ticks * meta.TickValue)

	vol := math.Floor(raw/meta.VolumeStep) * meta.VolumeStep
	if vol < meta.MinVolume {
		return meta.MinVolume
	}
	if meta.MaxVolume > 0 && vol > meta.MaxVolume {
		return meta.MaxVolume
	}
	return vol
}

// Stop places the protective stop beyond the zone boundary: below it for
// longs, above it for shorts.
func Stop(dir market.Direction, boundary, buffer float64) float64 {
	return boundary - dir.Sign()*buffer
}

// Target mirrors the stop distance on the profitable side, scaled by the
// reward ratio.
func Target(dir market.Direction, entry, stopDistance, rewardRatio float64) float64 {
	return entry + dir.Sign()*stopDistance*rewardRatio
}

// RR is the running risk-reward ratio: unrealized favorable excursion
// divided by the original stop distance. Zero when the excursion is
// adverse or the stop distance is degenerate.
func RR(dir market.Direction, entry, current, originalStopDistance float64) float64 {
	if originalStopDistance <= 0 {
		return 0
	}
	excursion := dir.Sign() * (current - entry)
	if excursion <= 0 {
		return 0
	}
	return excursion / originalStopDistance
}

// StepVolume floors a volume to the instrument step, never below zero.
func StepVolume(vol float64, meta market.InstrumentMeta) float64 {
	if meta.VolumeStep <= 0 || vol <= 0 {
		return 0
	}
	return math.Floor(vol/meta.VolumeStep) * meta.VolumeStep
}
