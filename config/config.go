// Package config loads and validates the engine configuration and maps it
// onto the per-package parameter structs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/breaker/market"
	"github.com/rustyeddy/breaker/pattern"
	"github.com/rustyeddy/breaker/risk"
	"github.com/rustyeddy/breaker/session"
	"github.com/rustyeddy/breaker/strategy"
	"github.com/rustyeddy/breaker/trade"
	"github.com/rustyeddy/breaker/zone"
)

// Config represents the complete engine configuration.
type Config struct {
	Account   AccountConfig   `json:"account" yaml:"account"`
	Strategy  StrategyConfig  `json:"strategy" yaml:"strategy"`
	Structure StructureConfig `json:"structure" yaml:"structure"`
	Zones     ZonesConfig     `json:"zones" yaml:"zones"`
	Patterns  PatternsConfig  `json:"patterns" yaml:"patterns"`
	Sessions  SessionsConfig  `json:"sessions" yaml:"sessions"`
	Risk      RiskConfig      `json:"risk" yaml:"risk"`
	Lifecycle LifecycleConfig `json:"lifecycle" yaml:"lifecycle"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	ID       string  `json:"id" yaml:"id"`
	Currency string  `json:"currency" yaml:"currency"`
	Balance  float64 `json:"balance" yaml:"balance"`
}

// StrategyConfig identifies the strategy instance and its entry gate.
type StrategyConfig struct {
	ID                  string  `json:"id" yaml:"id"`
	Instrument          string  `json:"instrument" yaml:"instrument"`
	TrendPeriod         int     `json:"trend_period" yaml:"trend_period"`
	SpreadCeilingPoints float64 `json:"spread_ceiling_points" yaml:"spread_ceiling_points"`
	BreakerEntries      bool    `json:"breaker_entries" yaml:"breaker_entries"`
}

// StructureConfig contains swing and break detection parameters.
type StructureConfig struct {
	SwingLeft    int     `json:"swing_left" yaml:"swing_left"`
	SwingRight   int     `json:"swing_right" yaml:"swing_right"`
	MinBreakPips float64 `json:"min_break_pips" yaml:"min_break_pips"`
}

// ZonesConfig contains zone lifecycle parameters.
type ZonesConfig struct {
	Retention          int     `json:"retention" yaml:"retention"`
	OrderBlockLookback int     `json:"order_block_lookback" yaml:"order_block_lookback"`
	BodyReference      string  `json:"body_reference" yaml:"body_reference"` // "atr" or "avg_body"
	BodyQualityRatio   float64 `json:"body_quality_ratio" yaml:"body_quality_ratio"`
	AvgBodyPeriod      int     `json:"avg_body_period" yaml:"avg_body_period"`
	ATRPeriod          int     `json:"atr_period" yaml:"atr_period"`
	VolumeSpike        bool    `json:"volume_spike" yaml:"volume_spike"`
	VolumeSpikeFactor  float64 `json:"volume_spike_factor" yaml:"volume_spike_factor"`
	VolumePeriod       int     `json:"volume_period" yaml:"volume_period"`
	ImpulseATRRatio    float64 `json:"impulse_atr_ratio" yaml:"impulse_atr_ratio"`
	FullRange          bool    `json:"full_range" yaml:"full_range"`
	TouchMode          string  `json:"touch_mode" yaml:"touch_mode"` // "range" or "close"
	Breaker            bool    `json:"breaker" yaml:"breaker"`
}

// PatternsConfig contains confirmation pattern thresholds.
type PatternsConfig struct {
	PinBarWickRatio float64 `json:"pin_bar_wick_ratio" yaml:"pin_bar_wick_ratio"`
	PinBarClosePct  float64 `json:"pin_bar_close_pct" yaml:"pin_bar_close_pct"`
}

// SessionsConfig contains the trading clock.
type SessionsConfig struct {
	Timezone string   `json:"timezone" yaml:"timezone"`
	Windows  []string `json:"windows,omitempty" yaml:"windows,omitempty"` // "HH:MM-HH:MM"
	News     []string `json:"news,omitempty" yaml:"news,omitempty"`
}

// RiskConfig contains sizing parameters.
type RiskConfig struct {
	RiskPercent    float64 `json:"risk_percent" yaml:"risk_percent"`
	RewardRatio    float64 `json:"reward_ratio" yaml:"reward_ratio"`
	StopBufferPips float64 `json:"stop_buffer_pips" yaml:"stop_buffer_pips"`
}

// LifecycleConfig contains open-position management parameters.
type LifecycleConfig struct {
	BreakEvenRR       float64 `json:"break_even_rr" yaml:"break_even_rr"`
	BreakEvenLockPips float64 `json:"break_even_lock_pips" yaml:"break_even_lock_pips"`
	PartialRR         float64 `json:"partial_rr" yaml:"partial_rr"`
	PartialPercent    float64 `json:"partial_percent" yaml:"partial_percent"`
	TrailStartRR      float64 `json:"trail_start_rr" yaml:"trail_start_rr"`
	TrailMode         string  `json:"trail_mode" yaml:"trail_mode"` // "atr" or "fixed"
	TrailATRPeriod    int     `json:"trail_atr_period" yaml:"trail_atr_period"`
	TrailATRMult      float64 `json:"trail_atr_mult" yaml:"trail_atr_mult"`
	TrailStepPips     float64 `json:"trail_step_pips" yaml:"trail_step_pips"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite", or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// TelemetryConfig contains the metrics/telemetry listener settings.
type TelemetryConfig struct {
	Listen string `json:"listen,omitempty" yaml:"listen,omitempty"` // e.g. ":9090", empty disables
}

// LoadFromFile loads configuration from a file (YAML or JSON). Fields not
// present keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid. The engine refuses to
// start on the first violation rather than trading with a partial config.
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Strategy.ID == "" {
		return fmt.Errorf("strategy.id is required")
	}
	if c.Strategy.Instrument == "" {
		return fmt.Errorf("strategy.instrument is required")
	}
	if _, ok := market.Instruments[c.Strategy.Instrument]; !ok {
		return fmt.Errorf("unknown instrument: %s", c.Strategy.Instrument)
	}
	if c.Strategy.TrendPeriod <= 0 {
		return fmt.Errorf("strategy.trend_period must be positive")
	}
	if c.Structure.SwingLeft <= 0 || c.Structure.SwingRight <= 0 {
		return fmt.Errorf("structure swing windows must be positive")
	}
	if c.Structure.MinBreakPips < 0 {
		return fmt.Errorf("structure.min_break_pips must not be negative")
	}
	if c.Zones.Retention <= 0 {
		return fmt.Errorf("zones.retention must be positive")
	}
	if c.Zones.OrderBlockLookback <= 0 {
		return fmt.Errorf("zones.order_block_lookback must be positive")
	}
	if _, err := bodyReference(c.Zones.BodyReference); err != nil {
		return err
	}
	if _, err := touchMode(c.Zones.TouchMode); err != nil {
		return err
	}
	if c.Risk.RiskPercent <= 0 || c.Risk.RiskPercent > 5 {
		return fmt.Errorf("risk.risk_percent must be between 0 and 5")
	}
	if c.Risk.RewardRatio <= 0 {
		return fmt.Errorf("risk.reward_ratio must be positive")
	}
	if c.Lifecycle.PartialPercent < 0 || c.Lifecycle.PartialPercent >= 100 {
		return fmt.Errorf("lifecycle.partial_percent must be in [0, 100)")
	}
	if _, err := trailMode(c.Lifecycle.TrailMode); err != nil {
		return err
	}
	if _, err := session.NewGate(c.Sessions.Timezone, c.Sessions.Windows, c.Sessions.News); err != nil {
		return fmt.Errorf("sessions: %w", err)
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "", "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite', or 'none'")
	}
	return nil
}

// Instrument returns the validated contract metadata.
func (c *Config) Instrument() market.InstrumentMeta {
	return market.Instruments[c.Strategy.Instrument]
}

// SessionGate builds the trading clock from the validated windows.
func (c *Config) SessionGate() (*session.Gate, error) {
	return session.NewGate(c.Sessions.Timezone, c.Sessions.Windows, c.Sessions.News)
}

// GateConfig maps onto the entry gate parameters.
func (c *Config) GateConfig() strategy.GateConfig {
	return strategy.GateConfig{
		SpreadCeilingPoints: c.Strategy.SpreadCeilingPoints,
		BreakerEntries:      c.Strategy.BreakerEntries,
	}
}

// ZoneConfig maps onto the zone lifecycle parameters.
func (c *Config) ZoneConfig() zone.Config {
	body, _ := bodyReference(c.Zones.BodyReference)
	touch, _ := touchMode(c.Zones.TouchMode)
	return zone.Config{
		Retention:          c.Zones.Retention,
		OrderBlockLookback: c.Zones.OrderBlockLookback,
		BodyMode:           body,
		BodyQualityRatio:   c.Zones.BodyQualityRatio,
		AvgBodyPeriod:      c.Zones.AvgBodyPeriod,
		ATRPeriod:          c.Zones.ATRPeriod,
		VolumeSpike:        c.Zones.VolumeSpike,
		VolumeSpikeFactor:  c.Zones.VolumeSpikeFactor,
		VolumePeriod:       c.Zones.VolumePeriod,
		ImpulseATRRatio:    c.Zones.ImpulseATRRatio,
		FullRange:          c.Zones.FullRange,
		TouchMode:          touch,
		Breaker:            c.Zones.Breaker,
	}
}

// PatternConfig maps onto the confirmation thresholds.
func (c *Config) PatternConfig() pattern.Config {
	return pattern.Config{
		PinBarWickRatio: c.Patterns.PinBarWickRatio,
		PinBarClosePct:  c.Patterns.PinBarClosePct,
	}
}

// RiskConfig maps onto the sizing parameters.
func (c *Config) RiskConfig() risk.Config {
	return risk.Config{
		RiskPercent:    c.Risk.RiskPercent,
		RewardRatio:    c.Risk.RewardRatio,
		StopBufferPips: c.Risk.StopBufferPips,
	}
}

// LifecycleConfig maps onto the trade management parameters.
func (c *Config) LifecycleConfig() trade.Config {
	mode, _ := trailMode(c.Lifecycle.TrailMode)
	return trade.Config{
		BreakEvenRR:       c.Lifecycle.BreakEvenRR,
		BreakEvenLockPips: c.Lifecycle.BreakEvenLockPips,
		PartialRR:         c.Lifecycle.PartialRR,
		PartialPercent:    c.Lifecycle.PartialPercent,
		TrailStartRR:      c.Lifecycle.TrailStartRR,
		TrailMode:         mode,
		TrailATRPeriod:    c.Lifecycle.TrailATRPeriod,
		TrailATRMult:      c.Lifecycle.TrailATRMult,
		TrailStepPips:     c.Lifecycle.TrailStepPips,
	}
}

func bodyReference(s string) (zone.BodyReference, error) {
	switch s {
	case "", "atr":
		return zone.BodyVsATR, nil
	case "avg_body":
		return zone.BodyVsAverage, nil
	default:
		return 0, fmt.Errorf("zones.body_reference must be 'atr' or 'avg_body', got %q", s)
	}
}

func touchMode(s string) (zone.TouchMode, error) {
	switch s {
	case "", "range":
		return zone.TouchByRange, nil
	case "close":
		return zone.TouchByClose, nil
	default:
		return 0, fmt.Errorf("zones.touch_mode must be 'range' or 'close', got %q", s)
	}
}

func trailMode(s string) (trade.TrailMode, error) {
	switch s {
	case "", "atr":
		return trade.TrailATR, nil
	case "fixed":
		return trade.TrailFixed, nil
	default:
		return 0, fmt.Errorf("lifecycle.trail_mode must be 'atr' or 'fixed', got %q", s)
	}
}

// Default returns a configuration with the parameters the strategy has
// been run with.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:       "SIM-001",
			Currency: "USD",
			Balance:  10000,
		},
		Strategy: StrategyConfig{
			ID:                  "breaker-eurusd",
			Instrument:          "EUR_USD",
			TrendPeriod:         50,
			SpreadCeilingPoints: 20,
			BreakerEntries:      true,
		},
		Structure: StructureConfig{
			SwingLeft:    3,
			SwingRight:   3,
			MinBreakPips: 1,
		},
		Zones: ZonesConfig{
			Retention:          10,
			OrderBlockLookback: 50,
			BodyReference:      "atr",
			BodyQualityRatio:   0.5,
			AvgBodyPeriod:      20,
			ATRPeriod:          14,
			VolumeSpikeFactor:  1.5,
			VolumePeriod:       20,
			ImpulseATRRatio:    1.0,
			TouchMode:          "range",
			Breaker:            true,
		},
		Patterns: PatternsConfig{
			PinBarWickRatio: 2.0,
			PinBarClosePct:  0.35,
		},
		Sessions: SessionsConfig{
			Timezone: "UTC",
		},
		Risk: RiskConfig{
			RiskPercent:    0.5,
			RewardRatio:    2.0,
			StopBufferPips: 2,
		},
		Lifecycle: LifecycleConfig{
			BreakEvenRR:       0.7,
			BreakEvenLockPips: 1,
			PartialRR:         1.0,
			PartialPercent:    50,
			TrailStartRR:      1.5,
			TrailMode:         "atr",
			TrailATRPeriod:    14,
			TrailATRMult:      2.0,
			TrailStepPips:     15,
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
	}
}
