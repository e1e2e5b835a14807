// sensorpipe samples a sensor on a fixed period and hands each reading to a
// consumer, either through a bounded queue or a latest-value signal. Beside
// the sampling pair it runs a blinking LED whose period is adjusted from the
// console, MQTT or HTTP, a debounced push button and a periodic heartbeat.
//
// Readings are logged and optionally published to MQTT and written to
// InfluxDB. A small HTTP server exposes health, state and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"k8s.io/utils/clock"

	"github.com/yushengtzou/sensorpipe/internal/api"
	"github.com/yushengtzou/sensorpipe/internal/infrastructure/config"
	"github.com/yushengtzou/sensorpipe/internal/infrastructure/influxdb"
	"github.com/yushengtzou/sensorpipe/internal/infrastructure/logging"
	"github.com/yushengtzou/sensorpipe/internal/infrastructure/metrics"
	"github.com/yushengtzou/sensorpipe/internal/infrastructure/mqtt"
	"github.com/yushengtzou/sensorpipe/internal/peripheral"
	"github.com/yushengtzou/sensorpipe/internal/pipeline"
	"github.com/yushengtzou/sensorpipe/internal/task"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

const (
	// defaultConfigPath is used when SENSORPIPE_CONFIG is unset.
	defaultConfigPath = "configs/config.yaml"

	// httpCommandBuffer is the number of pending HTTP and MQTT control lines.
	httpCommandBuffer = 16
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting sensorpipe",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath, explicit := getConfigPath()
	cfg, err := loadConfig(configPath, explicit)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
		"device", cfg.Device.ID,
	)

	reg := metrics.New(version)
	deps := pipeline.Deps{
		Clock:   clock.RealClock{},
		Logger:  log.Component("pipeline"),
		Metrics: reg,
	}
	logSink := pipeline.NewLogSink(log.Component("sink"))
	deps.Sinks = append(deps.Sinks, logSink)
	deps.Events = append(deps.Events, logSink)
	checks := make(map[string]api.HealthChecker)

	// Remote control lines from MQTT and HTTP share one feed.
	remote := peripheral.NewLineFeed(httpCommandBuffer)
	deps.Controls = append(deps.Controls, pipeline.ControlSource{Name: "remote", Lines: remote})

	mqttClient, err := connectMQTT(cfg, log, remote)
	if err != nil {
		return err
	}
	if mqttClient != nil {
		defer func() {
			log.Info("disconnecting from MQTT")
			if unsubErr := mqttClient.UnsubscribeCommands(); unsubErr != nil {
				log.Warn("error unsubscribing from MQTT commands", "error", unsubErr)
			}
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		sink := pipeline.NewMQTTSink(mqttClient)
		deps.Sinks = append(deps.Sinks, sink)
		deps.Events = append(deps.Events, sink)
		deps.Health = sink
		checks["mqtt"] = mqttClient
	}

	influxClient, err := connectInfluxDB(cfg, log)
	if err != nil {
		return err
	}
	if influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		sink := pipeline.NewInfluxSink(cfg.Device.ID, influxClient)
		deps.Sinks = append(deps.Sinks, sink)
		deps.Events = append(deps.Events, sink)
		checks["influxdb"] = influxClient
	}

	sensor, err := buildSensor(ctx, cfg.Pipeline.Sensor)
	if err != nil {
		return fmt.Errorf("building sensor: %w", err)
	}
	deps.Sensor = sensor

	led := peripheral.NewSimPin("led")
	buttonPin := peripheral.NewSimPin("button")
	button := peripheral.NewSimButton(buttonPin, deps.Clock, cfg.Button.Bounce, cfg.Button.BounceGap)
	deps.LED = led
	deps.ButtonPin = buttonPin
	deps.Interrupts = button

	if cfg.Blink.Console {
		deps.Controls = append(deps.Controls, pipeline.ControlSource{
			Name:  "console",
			Lines: peripheral.NewConsoleLines(os.Stdin),
		})
	}

	p, err := pipeline.New(cfg, deps)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}
	if err := reg.Register(metrics.NewCollector(p)); err != nil {
		return fmt.Errorf("registering pipeline collector: %w", err)
	}

	if cfg.Button.Enabled && cfg.Button.AutoPressInterval > 0 {
		err := p.AddTask(task.Spec{
			Name:     "button-sim",
			Priority: cfg.Pipeline.Priorities.Button,
			Run: func(ctx context.Context) error {
				return button.AutoPress(ctx, cfg.Button.AutoPressInterval, cfg.Button.Hold)
			},
		})
		if err != nil {
			return fmt.Errorf("adding button simulator: %w", err)
		}
	}

	if cfg.Status.Enabled {
		srv, err := api.New(api.Deps{
			Config:   cfg.Status,
			Logger:   log.Component("api"),
			State:    p,
			Metrics:  reg.Handler(),
			Checks:   checks,
			Commands: remote,
			Version:  version,
		})
		if err != nil {
			return fmt.Errorf("creating status server: %w", err)
		}
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("starting status server: %w", err)
		}
		defer func() {
			if closeErr := srv.Close(); closeErr != nil {
				log.Error("error closing status server", "error", closeErr)
			}
		}()
	}

	log.Info("sensorpipe started",
		"mode", p.Mode(),
		"sensor", sensor.Name(),
		"tasks", len(p.Tasks()),
	)

	if err := p.Run(ctx); err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	log.Info("shutdown signal received, stopping...")
	return nil
}

// getConfigPath returns the configuration file path and whether it was
// set explicitly.
//
// Priority:
//  1. SENSORPIPE_CONFIG environment variable
//  2. Default path (configs/config.yaml)
func getConfigPath() (string, bool) {
	if path := os.Getenv("SENSORPIPE_CONFIG"); path != "" {
		return path, true
	}
	return defaultConfigPath, false
}

// loadConfig loads path. A missing default file falls back to the built-in
// defaults; a missing explicit file is an error.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return config.LoadDefaults()
		}
	}
	return config.Load(path)
}

// connectMQTT connects to the broker when enabled and subscribes to remote
// blink commands. A nil client means MQTT is disabled.
func connectMQTT(cfg *config.Config, log *logging.Logger, remote *peripheral.LineFeed) (*mqtt.Client, error) {
	client, err := mqtt.Connect(cfg.MQTT, cfg.Device.ID)
	if errors.Is(err, mqtt.ErrDisabled) {
		log.Info("MQTT disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log.Component("mqtt"))
	client.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT connection lost", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", client.ClientID(),
		"format", client.Codec().Name(),
	)

	if cfg.MQTT.Commands {
		if err := client.SubscribeCommands(remote.Push); err != nil {
			client.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("subscribing to blink commands: %w", err)
		}
		log.Info("MQTT commands enabled", "topic", client.Topics().BlinkCommand())
	}

	return client, nil
}

// connectInfluxDB connects when enabled. A nil client means InfluxDB is
// disabled.
func connectInfluxDB(cfg *config.Config, log *logging.Logger) (*influxdb.Client, error) {
	client, err := influxdb.Connect(cfg.InfluxDB)
	if errors.Is(err, influxdb.ErrDisabled) {
		log.Info("InfluxDB disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	}

	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected",
		"url", cfg.InfluxDB.URL,
		"org", cfg.InfluxDB.Org,
		"bucket", cfg.InfluxDB.Bucket,
	)
	return client, nil
}

// buildSensor creates the configured sensor.
func buildSensor(ctx context.Context, cfg config.SensorConfig) (peripheral.Sensor, error) {
	switch cfg.Kind {
	case config.SensorSequence:
		return peripheral.NewSequenceSensor(cfg.Name, cfg.Sequence...), nil
	default:
		bus := peripheral.NewSimBus(cfg.MCP9808.StartCelsius, cfg.MCP9808.Drift, cfg.MCP9808.FailEvery)
		return peripheral.NewMCP9808(ctx, cfg.Name, bus, cfg.MCP9808.Resolution)
	}
}
