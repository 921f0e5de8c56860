// internal/config/config.go
package config

// EnvPrefix prefixes every environment override, e.g. HANSRIG_GAUGE_PORT.
const EnvPrefix = "HANSRIG_"

type Config struct {
	Gauge  GaugeConfig  `yaml:"gauge" envPrefix:"GAUGE_"`
	Robot  RobotConfig  `yaml:"robot" envPrefix:"ROBOT_"`
	Cycle  CycleConfig  `yaml:"cycle" envPrefix:"CYCLE_"`
	Output OutputConfig `yaml:"output" envPrefix:"OUTPUT_"`
	Log    LogConfig    `yaml:"log" envPrefix:"LOG_"`

	Publish PublishConfig `yaml:"publish" envPrefix:"PUBLISH_"`

	// TargetPose is the measured pose. Required for a run.
	TargetPose TargetPose `yaml:"target_pose" env:"TARGET_POSE" envSeparator:","`
	Iterations int        `yaml:"iterations" env:"ITERATIONS"`

	// Seed for the perturbation generator. 0 seeds from the clock.
	Seed int64 `yaml:"seed" env:"SEED"`
}

// ---- GAUGE ----

type GaugeConfig struct {
	// Mode selects the transport: "raw" reads a fixed window from the port,
	// "modbus" uses a strict RTU client and always verifies checksums.
	Mode string `yaml:"mode" env:"MODE"`

	Port     string `yaml:"port" env:"PORT"`
	BaudRate int    `yaml:"baud_rate" env:"BAUD_RATE"`
	DataBits int    `yaml:"data_bits" env:"DATA_BITS"`
	StopBits int    `yaml:"stop_bits" env:"STOP_BITS"`
	Parity   string `yaml:"parity" env:"PARITY"` // N, E, O

	Address       uint8  `yaml:"address" env:"ADDRESS"` // 0 selects the default
	StartRegister uint16 `yaml:"start_register" env:"START_REGISTER"`
	Registers     uint16 `yaml:"registers" env:"REGISTERS"`
	Channels      int    `yaml:"channels" env:"CHANNELS"`

	Attempts      int `yaml:"attempts" env:"ATTEMPTS"`
	TimeoutMs     int `yaml:"timeout_ms" env:"TIMEOUT_MS"`
	SettleMs      int `yaml:"settle_ms" env:"SETTLE_MS"`
	ResponseBytes int `yaml:"response_bytes" env:"RESPONSE_BYTES"`

	VerifyChecksum bool `yaml:"verify_checksum" env:"VERIFY_CHECKSUM"`
}

// ---- ROBOT ----

type RobotConfig struct {
	Endpoint  string `yaml:"endpoint" env:"ENDPOINT"` // host:port
	RobotID   int    `yaml:"robot_id" env:"ID"`
	TimeoutMs int    `yaml:"timeout_ms" env:"TIMEOUT_MS"`

	// Dummy replaces the controller and the gauge with in-memory simulators.
	Dummy bool `yaml:"dummy" env:"DUMMY"`
}

// ---- CYCLE ----

type CycleConfig struct {
	LiftAxis     string   `yaml:"lift_axis" env:"LIFT_AXIS"`
	LiftOffset   *float64 `yaml:"lift_offset" env:"LIFT_OFFSET"`
	Perturbation *float64 `yaml:"perturbation" env:"PERTURBATION"`

	PollIntervalMs int `yaml:"poll_interval_ms" env:"POLL_INTERVAL_MS"`
	MaxWaitMs      int `yaml:"max_wait_ms" env:"MAX_WAIT_MS"` // -1 waits forever

	Speed        float64 `yaml:"speed" env:"SPEED"`
	Acceleration float64 `yaml:"acceleration" env:"ACCELERATION"`
	UCS          string  `yaml:"ucs" env:"UCS"`
	TCP          string  `yaml:"tcp" env:"TCP"`
	Radius       float64 `yaml:"radius" env:"RADIUS"`
}

// ---- OUTPUT ----

type OutputConfig struct {
	Dir    string `yaml:"dir" env:"DIR"`
	SQLite string `yaml:"sqlite" env:"SQLITE"` // database path; empty disables
}

// ---- PUBLISH ----

// PublishConfig mirrors each iteration's status into holding registers on a
// Modbus TCP endpoint. An empty endpoint disables publishing.
type PublishConfig struct {
	Endpoint     string `yaml:"endpoint" env:"ENDPOINT"` // host:port
	UnitID       uint8  `yaml:"unit_id" env:"UNIT_ID"`
	BaseRegister uint16 `yaml:"base_register" env:"BASE_REGISTER"`
	DeviceName   string `yaml:"device_name" env:"DEVICE_NAME"`
	TimeoutMs    int    `yaml:"timeout_ms" env:"TIMEOUT_MS"`
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"` // text, json
}
