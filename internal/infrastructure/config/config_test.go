package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
device:
  id: "bench-01"
mqtt:
  enabled: true
  broker:
    host: "broker.local"
    port: 1883
    client_id: "bench"
  qos: 1
  payload_format: msgpack
pipeline:
  mode: signal
  sensor:
    kind: sequence
    name: probe
    sample_period: 250ms
    sequence: [21.5, 21.6, 21.4]
  queue:
    capacity: 2
    consumer_mode: block
    get_timeout: 2s
blink:
  control: queue
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.ID != "bench-01" {
		t.Errorf("Device.ID = %q, want %q", cfg.Device.ID, "bench-01")
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if cfg.MQTT.PayloadFormat != PayloadMsgpack {
		t.Errorf("MQTT.PayloadFormat = %q, want %q", cfg.MQTT.PayloadFormat, PayloadMsgpack)
	}
	if cfg.Pipeline.Mode != ModeSignal {
		t.Errorf("Pipeline.Mode = %q, want %q", cfg.Pipeline.Mode, ModeSignal)
	}
	if cfg.Pipeline.Sensor.SamplePeriod != 250*time.Millisecond {
		t.Errorf("Sensor.SamplePeriod = %v, want 250ms", cfg.Pipeline.Sensor.SamplePeriod)
	}
	if len(cfg.Pipeline.Sensor.Sequence) != 3 {
		t.Errorf("Sensor.Sequence has %d values, want 3", len(cfg.Pipeline.Sensor.Sequence))
	}
	if cfg.Pipeline.Queue.GetTimeout != 2*time.Second {
		t.Errorf("Queue.GetTimeout = %v, want 2s", cfg.Pipeline.Queue.GetTimeout)
	}

	// Unset keys keep their defaults.
	if cfg.Blink.MaxMS != 2000 {
		t.Errorf("Blink.MaxMS = %d, want 2000", cfg.Blink.MaxMS)
	}
	if cfg.Button.DebounceWindow != 50*time.Millisecond {
		t.Errorf("Button.DebounceWindow = %v, want 50ms", cfg.Button.DebounceWindow)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error = %v, want fs.ErrNotExist", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
device:
  id: ""
pipeline:
  queue:
    capacity: 0
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	for _, want := range []string{"device.id", "pipeline.queue.capacity"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Load() error = %v, want mention of %s", err, want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SENSORPIPE_DEVICE_ID", "from-env")

	cfg, err := LoadDefaults()
	if err != nil {
		t.Fatalf("LoadDefaults() error = %v", err)
	}
	if cfg.Device.ID != "from-env" {
		t.Errorf("Device.ID = %q, want %q", cfg.Device.ID, "from-env")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(*Config) {}, false},
		{"missing device ID", func(c *Config) { c.Device.ID = "" }, true},
		{"invalid log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"invalid QoS", func(c *Config) { c.MQTT.QoS = 3 }, true},
		{"invalid payload format", func(c *Config) { c.MQTT.PayloadFormat = "xml" }, true},
		{"influxdb without url", func(c *Config) {
			c.InfluxDB.Enabled = true
			c.InfluxDB.URL = ""
		}, true},
		{"status port high", func(c *Config) { c.Status.Port = 70000 }, true},
		{"status port negative", func(c *Config) { c.Status.Port = -1 }, true},
		{"status port ephemeral", func(c *Config) { c.Status.Port = 0 }, false},
		{"status port ignored when disabled", func(c *Config) {
			c.Status.Enabled = false
			c.Status.Port = -1
		}, false},
		{"invalid mode", func(c *Config) { c.Pipeline.Mode = "broadcast" }, true},
		{"unknown sensor", func(c *Config) { c.Pipeline.Sensor.Kind = "bme280" }, true},
		{"empty sequence", func(c *Config) { c.Pipeline.Sensor.Kind = SensorSequence }, true},
		{"zero sample period", func(c *Config) { c.Pipeline.Sensor.SamplePeriod = 0 }, true},
		{"invalid consumer mode", func(c *Config) { c.Pipeline.Queue.ConsumerMode = "peek" }, true},
		{"block consumer without timeout", func(c *Config) {
			c.Pipeline.Queue.ConsumerMode = ConsumerBlock
			c.Pipeline.Queue.GetTimeout = 0
		}, true},
		{"zero lock timeout", func(c *Config) { c.Pipeline.LockTimeout = 0 }, true},
		{"blink period outside bounds", func(c *Config) { c.Blink.PeriodMS = 2500 }, true},
		{"blink min above max", func(c *Config) { c.Blink.MinMS = 3000 }, true},
		{"invalid blink control", func(c *Config) { c.Blink.Control = "pipe" }, true},
		{"zero debounce window", func(c *Config) { c.Button.DebounceWindow = 0 }, true},
		{"zero heartbeat", func(c *Config) { c.Heartbeat.Interval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		Status: StatusConfig{
			Timeouts: StatusTimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("SENSORPIPE_DEVICE_ID", "node-42")
	t.Setenv("SENSORPIPE_LOG_LEVEL", "debug")
	t.Setenv("SENSORPIPE_MQTT_ENABLED", "true")
	t.Setenv("SENSORPIPE_MQTT_HOST", "mqtt.example.com")
	t.Setenv("SENSORPIPE_MQTT_USERNAME", "testuser")
	t.Setenv("SENSORPIPE_MQTT_PASSWORD", "testpass")
	t.Setenv("SENSORPIPE_INFLUXDB_URL", "http://influx:8086")
	t.Setenv("SENSORPIPE_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("SENSORPIPE_STATUS_HOST", "0.0.0.0")
	t.Setenv("SENSORPIPE_STATUS_PORT", "9090")

	applyEnvOverrides(cfg)

	if cfg.Device.ID != "node-42" {
		t.Errorf("Device.ID = %q, want %q", cfg.Device.ID, "node-42")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if !cfg.MQTT.Enabled {
		t.Error("MQTT.Enabled = false, want true")
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}
	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}
	if cfg.InfluxDB.URL != "http://influx:8086" {
		t.Errorf("InfluxDB.URL = %q, want %q", cfg.InfluxDB.URL, "http://influx:8086")
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
	if cfg.Status.Host != "0.0.0.0" {
		t.Errorf("Status.Host = %q, want %q", cfg.Status.Host, "0.0.0.0")
	}
	if cfg.Status.Port != 9090 {
		t.Errorf("Status.Port = %d, want 9090", cfg.Status.Port)
	}
}

func TestApplyEnvOverrides_IgnoresMalformedNumbers(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("SENSORPIPE_STATUS_PORT", "eighty")
	t.Setenv("SENSORPIPE_MQTT_ENABLED", "perhaps")

	applyEnvOverrides(cfg)

	if cfg.Status.Port != 8080 {
		t.Errorf("Status.Port = %d, want default 8080", cfg.Status.Port)
	}
	if cfg.MQTT.Enabled {
		t.Error("MQTT.Enabled = true, want default false")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaultConfig should validate, got %v", err)
	}
	if cfg.Pipeline.Queue.Capacity != 20 {
		t.Errorf("defaultConfig Queue.Capacity = %d, want 20", cfg.Pipeline.Queue.Capacity)
	}
	if cfg.Pipeline.Sensor.SamplePeriod != 500*time.Millisecond {
		t.Errorf("defaultConfig SamplePeriod = %v, want 500ms", cfg.Pipeline.Sensor.SamplePeriod)
	}
	if cfg.Blink.PeriodMS != 500 {
		t.Errorf("defaultConfig Blink.PeriodMS = %d, want 500", cfg.Blink.PeriodMS)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
}
