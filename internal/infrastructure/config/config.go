package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for sensorpipe.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Logging   LoggingConfig   `yaml:"logging"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Status    StatusConfig    `yaml:"status"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Blink     BlinkConfig     `yaml:"blink"`
	Button    ButtonConfig    `yaml:"button"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
}

// DeviceConfig identifies this node in topics, metrics and logs.
type DeviceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// PayloadFormat selects the reading encoding: "json" or "msgpack".
	PayloadFormat string `yaml:"payload_format"`

	// Commands subscribes to remote blink control commands.
	Commands bool `yaml:"commands"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings, in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// StatusConfig contains the status HTTP server settings.
type StatusConfig struct {
	Enabled  bool                `yaml:"enabled"`
	Host     string              `yaml:"host"`
	Port     int                 `yaml:"port"`
	Timeouts StatusTimeoutConfig `yaml:"timeouts"`
}

// StatusTimeoutConfig contains HTTP timeout settings, in seconds.
type StatusTimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// Pipeline modes.
const (
	ModeQueue  = "queue"
	ModeSignal = "signal"

	ConsumerDrain = "drain"
	ConsumerBlock = "block"

	SensorMCP9808  = "mcp9808"
	SensorSequence = "sequence"

	ControlShared = "shared"
	ControlQueue  = "queue"

	PayloadJSON    = "json"
	PayloadMsgpack = "msgpack"
)

// PipelineConfig contains the sampling pipeline settings.
type PipelineConfig struct {
	// Mode selects the hand-off between sampler and consumer:
	// "queue" (bounded FIFO) or "signal" (latest value wins).
	Mode string `yaml:"mode"`

	Sensor SensorConfig `yaml:"sensor"`
	Queue  QueueConfig  `yaml:"queue"`

	// LockTimeout bounds every shared state access made by pipeline tasks.
	LockTimeout time.Duration `yaml:"lock_timeout"`

	// DeadlockTimeout, when set, switches shared state to the diagnostic
	// deadlock-detecting mutex.
	DeadlockTimeout time.Duration `yaml:"deadlock_timeout"`

	// SignalWaitTimeout bounds each wait of the signal consumer. Zero waits
	// forever.
	SignalWaitTimeout time.Duration `yaml:"signal_wait_timeout"`

	// RestartDelay is the pause before a failed task loop is restarted.
	RestartDelay time.Duration `yaml:"restart_delay"`

	Priorities PriorityConfig `yaml:"priorities"`
}

// SensorConfig selects and configures the sampled sensor.
type SensorConfig struct {
	Kind         string        `yaml:"kind"`
	Name         string        `yaml:"name"`
	SamplePeriod time.Duration `yaml:"sample_period"`
	MCP9808      MCP9808Config `yaml:"mcp9808"`
	Sequence     []float64     `yaml:"sequence"`
}

// MCP9808Config configures the simulated MCP9808 bus.
type MCP9808Config struct {
	// Resolution is the resolution register index, 0 (0.5 °C) to 3 (0.0625 °C).
	Resolution   uint8   `yaml:"resolution"`
	StartCelsius float64 `yaml:"start_celsius"`
	Drift        float64 `yaml:"drift"`
	// FailEvery makes every n-th read fail. 0 disables fault injection.
	FailEvery int `yaml:"fail_every"`
}

// QueueConfig configures the bounded queue and its consumer.
type QueueConfig struct {
	Capacity int `yaml:"capacity"`

	// ConsumerMode is "drain" (periodic TryGet until empty) or "block"
	// (Get with GetTimeout).
	ConsumerMode  string        `yaml:"consumer_mode"`
	DrainInterval time.Duration `yaml:"drain_interval"`
	GetTimeout    time.Duration `yaml:"get_timeout"`
}

// PriorityConfig holds task priorities. Lower values start first.
type PriorityConfig struct {
	Control   int `yaml:"control"`
	Producer  int `yaml:"producer"`
	Consumer  int `yaml:"consumer"`
	Blink     int `yaml:"blink"`
	Button    int `yaml:"button"`
	Heartbeat int `yaml:"heartbeat"`
}

// BlinkConfig configures the LED blink task and its console control.
type BlinkConfig struct {
	Enabled bool `yaml:"enabled"`

	// Period bounds, in milliseconds.
	PeriodMS int32 `yaml:"period_ms"`
	MinMS    int32 `yaml:"min_ms"`
	MaxMS    int32 `yaml:"max_ms"`
	StepMS   int32 `yaml:"step_ms"`

	// Control is "shared" (console adjusts the shared period) or "queue"
	// (console queues deltas the blink task applies).
	Control      string `yaml:"control"`
	ControlQueue int    `yaml:"control_queue"`

	// Console reads "+"/"-" lines from stdin.
	Console bool `yaml:"console"`
}

// ButtonConfig configures the debounced button task.
type ButtonConfig struct {
	Enabled        bool          `yaml:"enabled"`
	DebounceWindow time.Duration `yaml:"debounce_window"`

	// Simulated contact bounce per press.
	Bounce    int           `yaml:"bounce"`
	BounceGap time.Duration `yaml:"bounce_gap"`

	// AutoPressInterval presses the simulated button periodically.
	// Zero disables.
	AutoPressInterval time.Duration `yaml:"auto_press_interval"`
	Hold              time.Duration `yaml:"hold"`
}

// HeartbeatConfig configures the periodic health heartbeat.
type HeartbeatConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SENSORPIPE_SECTION_KEY
// For example: SENSORPIPE_MQTT_HOST, SENSORPIPE_LOG_LEVEL
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return finish(cfg)
}

// LoadDefaults returns the default configuration with environment variable
// overrides applied. Used when no config file exists.
func LoadDefaults() (*Config, error) {
	return finish(defaultConfig())
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			ID:   "node-001",
			Name: "sensorpipe",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "sensorpipe",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
			PayloadFormat: PayloadJSON,
			Commands:      true,
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			Org:           "sensorpipe",
			Bucket:        "readings",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Status: StatusConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8080,
			Timeouts: StatusTimeoutConfig{
				Read:  10,
				Write: 10,
				Idle:  60,
			},
		},
		Pipeline: PipelineConfig{
			Mode: ModeQueue,
			Sensor: SensorConfig{
				Kind:         SensorMCP9808,
				Name:         "mcp9808",
				SamplePeriod: 500 * time.Millisecond,
				MCP9808: MCP9808Config{
					Resolution:   3,
					StartCelsius: 21.5,
					Drift:        0.1,
				},
			},
			Queue: QueueConfig{
				Capacity:      20,
				ConsumerMode:  ConsumerDrain,
				DrainInterval: 5 * time.Second,
				GetTimeout:    time.Second,
			},
			LockTimeout:  100 * time.Millisecond,
			RestartDelay: time.Second,
			Priorities: PriorityConfig{
				Control:   2,
				Producer:  5,
				Consumer:  7,
				Blink:     7,
				Button:    6,
				Heartbeat: 8,
			},
		},
		Blink: BlinkConfig{
			Enabled:      true,
			PeriodMS:     500,
			MinMS:        0,
			MaxMS:        2000,
			StepMS:       100,
			Control:      ControlShared,
			ControlQueue: 10,
			Console:      true,
		},
		Button: ButtonConfig{
			Enabled:        true,
			DebounceWindow: 50 * time.Millisecond,
			Bounce:         3,
			BounceGap:      2 * time.Millisecond,
			Hold:           200 * time.Millisecond,
		},
		Heartbeat: HeartbeatConfig{
			Enabled:  true,
			Interval: time.Second,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SENSORPIPE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Device
	if v := os.Getenv("SENSORPIPE_DEVICE_ID"); v != "" {
		cfg.Device.ID = v
	}

	// Logging
	if v := os.Getenv("SENSORPIPE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// MQTT
	if v := os.Getenv("SENSORPIPE_MQTT_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MQTT.Enabled = b
		}
	}
	if v := os.Getenv("SENSORPIPE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SENSORPIPE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SENSORPIPE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("SENSORPIPE_INFLUXDB_URL"); v != "" {
		cfg.InfluxDB.URL = v
	}
	if v := os.Getenv("SENSORPIPE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Status server
	if v := os.Getenv("SENSORPIPE_STATUS_HOST"); v != "" {
		cfg.Status.Host = v
	}
	if v := os.Getenv("SENSORPIPE_STATUS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Status.Port = port
		}
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Device.ID == "" {
		errs = append(errs, "device.id is required")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, "logging.level must be debug, info, warn, or error")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.PayloadFormat != PayloadJSON && c.MQTT.PayloadFormat != PayloadMsgpack {
		errs = append(errs, "mqtt.payload_format must be json or msgpack")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when influxdb is enabled")
	}

	// Status server validation
	if c.Status.Enabled && (c.Status.Port < 0 || c.Status.Port > 65535) {
		errs = append(errs, "status.port must be between 0 and 65535")
	}

	errs = append(errs, c.Pipeline.validate()...)
	errs = append(errs, c.Blink.validate()...)

	if c.Button.Enabled && c.Button.DebounceWindow <= 0 {
		errs = append(errs, "button.debounce_window must be positive")
	}
	if c.Heartbeat.Enabled && c.Heartbeat.Interval <= 0 {
		errs = append(errs, "heartbeat.interval must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (p *PipelineConfig) validate() []string {
	var errs []string

	if p.Mode != ModeQueue && p.Mode != ModeSignal {
		errs = append(errs, "pipeline.mode must be queue or signal")
	}

	switch p.Sensor.Kind {
	case SensorMCP9808:
		if p.Sensor.MCP9808.Resolution > 3 {
			errs = append(errs, "pipeline.sensor.mcp9808.resolution must be between 0 and 3")
		}
	case SensorSequence:
		if len(p.Sensor.Sequence) == 0 {
			errs = append(errs, "pipeline.sensor.sequence must not be empty")
		}
	default:
		errs = append(errs, "pipeline.sensor.kind must be mcp9808 or sequence")
	}
	if p.Sensor.Name == "" {
		errs = append(errs, "pipeline.sensor.name is required")
	}
	if p.Sensor.SamplePeriod <= 0 {
		errs = append(errs, "pipeline.sensor.sample_period must be positive")
	}

	if p.Queue.Capacity < 1 {
		errs = append(errs, "pipeline.queue.capacity must be at least 1")
	}
	switch p.Queue.ConsumerMode {
	case ConsumerDrain:
		if p.Queue.DrainInterval <= 0 {
			errs = append(errs, "pipeline.queue.drain_interval must be positive")
		}
	case ConsumerBlock:
		if p.Queue.GetTimeout <= 0 {
			errs = append(errs, "pipeline.queue.get_timeout must be positive")
		}
	default:
		errs = append(errs, "pipeline.queue.consumer_mode must be drain or block")
	}

	if p.LockTimeout <= 0 {
		errs = append(errs, "pipeline.lock_timeout must be positive")
	}
	if p.DeadlockTimeout < 0 || p.SignalWaitTimeout < 0 || p.RestartDelay < 0 {
		errs = append(errs, "pipeline timeouts must not be negative")
	}

	return errs
}

func (b *BlinkConfig) validate() []string {
	var errs []string

	if b.MinMS < 0 || b.MinMS > b.MaxMS {
		errs = append(errs, "blink.min_ms must be between 0 and blink.max_ms")
	}
	if b.PeriodMS < b.MinMS || b.PeriodMS > b.MaxMS {
		errs = append(errs, "blink.period_ms must be between blink.min_ms and blink.max_ms")
	}
	if b.StepMS <= 0 {
		errs = append(errs, "blink.step_ms must be positive")
	}
	if b.Control != ControlShared && b.Control != ControlQueue {
		errs = append(errs, "blink.control must be shared or queue")
	}
	if b.Control == ControlQueue && b.ControlQueue < 1 {
		errs = append(errs, "blink.control_queue must be at least 1")
	}

	return errs
}

// GetReadTimeout returns the status server read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.Status.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the status server write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.Status.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the status server idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.Status.Timeouts.Idle) * time.Second
}
