// Package config handles loading and validating sensorpipe configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (SENSORPIPE_*)
//   - Validation of every section, reporting all problems at once
//   - Default value handling
//
// Durations are written the way time.ParseDuration reads them ("500ms",
// "5s"). Blink periods are plain milliseconds because the blink task stores
// them in a shared int32.
//
// Security Considerations:
//   - Sensitive values (MQTT password, InfluxDB token) should be set via
//     environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Pipeline.Mode)
package config
