// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Immutable runtime configuration with TOML file loading. Values are
// fixed before the executor starts; there is no re-initialization path
// once tasks run, matching the one-boot lifetime of the firmware.

package control

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
)

// Config holds parameters immutable per run.
type Config struct {
	// Capacity is the fixed task slot count. Spawns beyond it fail.
	Capacity int `toml:"capacity"`
	// TickHz is the hardware timer frequency in ticks per second.
	TickHz int64 `toml:"tick_hz"`
	// IRQLines is the interrupt controller's fixed line count.
	IRQLines int `toml:"irq_lines"`
	// IdlePolicy selects the idle wait: "block" or "spin".
	IdlePolicy string `toml:"idle_policy"`
	// TraceDepth bounds the trace journal; 0 disables tracing.
	TraceDepth int `toml:"trace_depth"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		Capacity:   32,        // 32 task slots
		TickHz:     1_000_000, // 1 MHz tick, a common embedded baseline
		IRQLines:   16,        // 16 interrupt lines
		IdlePolicy: "block",   // low-power wait by default
		TraceDepth: 0,         // tracing off unless asked for
	}
}

// LoadConfig reads a TOML file over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the fixed-capacity runtime cannot
// honor.
func (c *Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("capacity must be at least 1, got %d", c.Capacity)
	}
	if _, err := safecast.Conv[uint32](c.TickHz); err != nil || c.TickHz == 0 {
		return fmt.Errorf("tick_hz must fit a 32-bit timer, got %d", c.TickHz)
	}
	if c.IRQLines < 1 {
		return fmt.Errorf("irq_lines must be at least 1, got %d", c.IRQLines)
	}
	switch c.IdlePolicy {
	case "block", "spin":
	default:
		return fmt.Errorf("idle_policy must be block or spin, got %q", c.IdlePolicy)
	}
	if c.TraceDepth < 0 {
		return fmt.Errorf("trace_depth must not be negative, got %d", c.TraceDepth)
	}
	return nil
}

// Frequency returns the validated tick rate as the timer contract
// expects it.
func (c *Config) Frequency() uint32 {
	hz, err := safecast.Conv[uint32](c.TickHz)
	if err != nil {
		return 1_000_000
	}
	return hz
}

// Snapshot returns the configuration as a flat map for the Control
// interface.
func (c *Config) Snapshot() map[string]any {
	return map[string]any{
		"capacity":    c.Capacity,
		"tick_hz":     c.TickHz,
		"irq_lines":   c.IRQLines,
		"idle_policy": c.IdlePolicy,
		"trace_depth": c.TraceDepth,
	}
}
