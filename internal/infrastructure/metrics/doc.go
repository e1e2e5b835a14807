// Package metrics exposes sensorpipe statistics in Prometheus format.
//
// Two kinds of metric live here. Event counters (readings emitted, sensor
// failures, control adjustments, button presses) are incremented by the
// pipeline as things happen. Primitive statistics (queue depth, signal
// coalescing, debounce executions, task restarts) are already counted by the
// primitives themselves, so a Collector samples them at scrape time instead
// of duplicating the bookkeeping.
//
// Each Registry owns its own prometheus.Registry, so tests and multiple
// pipelines never collide on the global default registry.
package metrics
