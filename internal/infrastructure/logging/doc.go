// Package logging provides structured logging for sensorpipe.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across every task and adapter.
//
// # Features
//
//   - JSON output for deployment (machine-parsable)
//   - Text output for the bench (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Component("sampler").Warn("queue full", "sensor", "mcp9808")
//
// # Security
//
// Never log secrets such as the MQTT password or InfluxDB token.
package logging
