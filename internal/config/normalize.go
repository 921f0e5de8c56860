// internal/config/normalize.go
package config

import "strings"

// Gauge transport modes.
const (
	ModeRaw    = "raw"
	ModeModbus = "modbus"
)

// MaxGaugeChannels keeps 2*channels within a 16-bit register count.
const MaxGaugeChannels = 0x7FFF

// Defaults. These reproduce the rig's historical settings.
const (
	DefaultGaugeBaudRate      = 38400
	DefaultGaugeDataBits      = 8
	DefaultGaugeStopBits      = 1
	DefaultGaugeParity        = "N"
	DefaultGaugeAddress       = 128
	DefaultGaugeChannels      = 4
	DefaultGaugeAttempts      = 3
	DefaultGaugeTimeoutMs     = 1000
	DefaultGaugeSettleMs      = 100
	DefaultGaugeResponseBytes = 256

	DefaultRobotEndpoint  = "192.168.8.23:10003"
	DefaultRobotTimeoutMs = 2000

	DefaultLiftAxis       = "z"
	DefaultLiftOffset     = 80.0
	DefaultPerturbation   = 5.0
	DefaultPollIntervalMs = 500
	DefaultMaxWaitMs      = 120000
	DefaultSpeed          = 50.0
	DefaultAcceleration   = 500.0
	DefaultUCS            = "Base"
	DefaultTCP            = "TCP"

	DefaultPublishUnitID     = 1
	DefaultPublishDeviceName = "hansrig"
	DefaultPublishTimeoutMs  = 1000

	DefaultOutputDir  = "data"
	DefaultIterations = 200
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Iterations == 0 {
		cfg.Iterations = DefaultIterations
	}

	// ------------------------------------------------------------
	// GAUGE
	// ------------------------------------------------------------

	g := &cfg.Gauge

	g.Mode = strings.ToLower(g.Mode)
	if g.Mode == "" {
		g.Mode = ModeRaw
	}
	// the RTU client validates every frame it returns
	if g.Mode == ModeModbus {
		g.VerifyChecksum = true
	}

	g.Parity = strings.ToUpper(g.Parity)
	if g.Parity == "" {
		g.Parity = DefaultGaugeParity
	}
	if g.BaudRate == 0 {
		g.BaudRate = DefaultGaugeBaudRate
	}
	if g.DataBits == 0 {
		g.DataBits = DefaultGaugeDataBits
	}
	if g.StopBits == 0 {
		g.StopBits = DefaultGaugeStopBits
	}
	if g.Address == 0 {
		g.Address = DefaultGaugeAddress
	}

	// channels and registers imply each other
	switch {
	case g.Channels == 0 && g.Registers == 0:
		g.Channels = DefaultGaugeChannels
		g.Registers = 2 * DefaultGaugeChannels
	case g.Channels == 0:
		g.Channels = int(g.Registers) / 2
	case g.Registers == 0:
		g.Registers = uint16(2 * g.Channels)
	}

	if g.Attempts == 0 {
		g.Attempts = DefaultGaugeAttempts
	}
	if g.TimeoutMs == 0 {
		g.TimeoutMs = DefaultGaugeTimeoutMs
	}
	if g.SettleMs == 0 {
		g.SettleMs = DefaultGaugeSettleMs
	}
	if g.ResponseBytes == 0 {
		g.ResponseBytes = DefaultGaugeResponseBytes
	}

	// ------------------------------------------------------------
	// ROBOT
	// ------------------------------------------------------------

	if cfg.Robot.Endpoint == "" {
		cfg.Robot.Endpoint = DefaultRobotEndpoint
	}
	if cfg.Robot.TimeoutMs == 0 {
		cfg.Robot.TimeoutMs = DefaultRobotTimeoutMs
	}

	// ------------------------------------------------------------
	// CYCLE
	// ------------------------------------------------------------

	c := &cfg.Cycle

	if c.LiftAxis == "" {
		c.LiftAxis = DefaultLiftAxis
	}
	if c.LiftOffset == nil {
		v := DefaultLiftOffset
		c.LiftOffset = &v
	}
	if c.Perturbation == nil {
		v := DefaultPerturbation
		c.Perturbation = &v
	}
	if c.PollIntervalMs == 0 {
		c.PollIntervalMs = DefaultPollIntervalMs
	}
	if c.MaxWaitMs == 0 {
		c.MaxWaitMs = DefaultMaxWaitMs
	}
	if c.Speed == 0 {
		c.Speed = DefaultSpeed
	}
	if c.Acceleration == 0 {
		c.Acceleration = DefaultAcceleration
	}
	if c.UCS == "" {
		c.UCS = DefaultUCS
	}
	if c.TCP == "" {
		c.TCP = DefaultTCP
	}

	// ------------------------------------------------------------
	// PUBLISH
	// ------------------------------------------------------------

	if cfg.Publish.Endpoint != "" {
		pub := &cfg.Publish
		if pub.UnitID == 0 {
			pub.UnitID = DefaultPublishUnitID
		}
		if pub.DeviceName == "" {
			pub.DeviceName = DefaultPublishDeviceName
		}
		if pub.TimeoutMs == 0 {
			pub.TimeoutMs = DefaultPublishTimeoutMs
		}
	}

	// ------------------------------------------------------------
	// OUTPUT / LOG
	// ------------------------------------------------------------

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
