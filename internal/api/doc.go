// Package api implements the sensorpipe status HTTP server.
//
// This package provides:
//   - GET /api/v1/health for liveness and dependency checks
//   - GET /api/v1/state for the pipeline snapshot (latest reading, blink
//     period, queue and debounce statistics, task status)
//   - GET /api/v1/system for Go runtime statistics
//   - POST /api/v1/control to adjust the blink period remotely
//   - GET /metrics in Prometheus exposition format
//   - Middleware stack (request ID, logging, recovery, body size limit)
//
// # Graceful Degradation
//
// MQTT and InfluxDB are optional. When either is down the health endpoint
// reports "degraded" but every other endpoint keeps working.
package api
