// internal/config/validate.go
package config

import (
	"fmt"
	"strings"

	"github.com/FrankJIE09/Hans-robot/internal/motion"
	"github.com/FrankJIE09/Hans-robot/internal/status"
)

// Validate checks configuration correctness.
// It performs declarative validation only. Zero values mean "use the default"
// and are accepted here; Normalize fills them in.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}

	// ------------------------------------------------------------
	// TARGET POSE
	// ------------------------------------------------------------

	// absence is reported by TargetPose.Pose() when a run needs it
	if n := len(cfg.TargetPose); n != 0 && n != motion.NumAxes {
		return fmt.Errorf("target_pose: need %d components, got %d", motion.NumAxes, n)
	}
	if cfg.Iterations < 0 {
		return fmt.Errorf("iterations must be >= 0, got %d", cfg.Iterations)
	}

	// ------------------------------------------------------------
	// GAUGE
	// ------------------------------------------------------------

	g := cfg.Gauge

	switch strings.ToLower(g.Mode) {
	case "", ModeRaw, ModeModbus:
	default:
		return fmt.Errorf("gauge.mode: unknown mode %q (want %q or %q)", g.Mode, ModeRaw, ModeModbus)
	}

	switch strings.ToUpper(g.Parity) {
	case "", "N", "E", "O":
	default:
		return fmt.Errorf("gauge.parity: unknown parity %q", g.Parity)
	}

	if g.BaudRate < 0 || g.Attempts < 0 || g.TimeoutMs < 0 || g.SettleMs < 0 || g.ResponseBytes < 0 {
		return fmt.Errorf("gauge: baud_rate, attempts, timeout_ms, settle_ms and response_bytes must be >= 0")
	}
	if g.DataBits != 0 && (g.DataBits < 5 || g.DataBits > 8) {
		return fmt.Errorf("gauge.data_bits: must be 5..8, got %d", g.DataBits)
	}
	if g.StopBits != 0 && g.StopBits != 1 && g.StopBits != 2 {
		return fmt.Errorf("gauge.stop_bits: must be 1 or 2, got %d", g.StopBits)
	}
	if g.Channels < 0 || g.Channels > MaxGaugeChannels {
		return fmt.Errorf("gauge.channels must be 0..%d, got %d", MaxGaugeChannels, g.Channels)
	}
	if g.Registers%2 != 0 {
		return fmt.Errorf("gauge.registers must be even (two registers per channel), got %d", g.Registers)
	}

	// each channel occupies two registers
	if g.Channels > 0 && g.Registers > 0 && int(g.Registers) != 2*g.Channels {
		return fmt.Errorf(
			"gauge: registers=%d does not match channels=%d (two registers per channel)",
			g.Registers,
			g.Channels,
		)
	}

	// ------------------------------------------------------------
	// ROBOT
	// ------------------------------------------------------------

	if cfg.Robot.TimeoutMs < 0 {
		return fmt.Errorf("robot.timeout_ms must be >= 0, got %d", cfg.Robot.TimeoutMs)
	}

	// ------------------------------------------------------------
	// CYCLE
	// ------------------------------------------------------------

	c := cfg.Cycle

	if c.LiftAxis != "" {
		if _, err := motion.ParseAxis(c.LiftAxis); err != nil {
			return fmt.Errorf("cycle.lift_axis: %w", err)
		}
	}
	if c.Perturbation != nil && *c.Perturbation < 0 {
		return fmt.Errorf("cycle.perturbation must be >= 0, got %g", *c.Perturbation)
	}
	if c.PollIntervalMs < 0 {
		return fmt.Errorf("cycle.poll_interval_ms must be >= 0, got %d", c.PollIntervalMs)
	}
	if c.MaxWaitMs < -1 {
		return fmt.Errorf("cycle.max_wait_ms must be >= -1, got %d", c.MaxWaitMs)
	}
	if c.Speed < 0 || c.Acceleration < 0 || c.Radius < 0 {
		return fmt.Errorf("cycle: speed, acceleration and radius must be >= 0")
	}

	// ------------------------------------------------------------
	// PUBLISH
	// ------------------------------------------------------------

	pub := cfg.Publish

	if pub.TimeoutMs < 0 {
		return fmt.Errorf("publish.timeout_ms must be >= 0, got %d", pub.TimeoutMs)
	}
	if pub.Endpoint != "" && int(pub.BaseRegister)+status.SlotsPerBlock > 0x10000 {
		return fmt.Errorf("publish.base_register: %d leaves no room for %d registers", pub.BaseRegister, status.SlotsPerBlock)
	}
	if len(pub.DeviceName) > status.DeviceNameMaxChars {
		return fmt.Errorf("publish.device_name: at most %d characters, got %d", status.DeviceNameMaxChars, len(pub.DeviceName))
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Log.Format)
	}

	return nil
}
