// Package pipeline composes the sensorpipe tasks.
//
// A Pipeline owns the concurrency primitives that connect its tasks:
//
//   - a msgq.Queue or handoff.Signal carrying readings from the sampler to
//     the consumer, selected by pipeline.mode
//   - a shared.State holding the LED blink period, adjusted by control tasks
//   - an optional msgq.Queue of period deltas when blink.control is "queue"
//   - a debounce.Scheduler turning bouncy button interrupts into one press
//
// Every task is a loop registered on a task.Set. Loops check every device
// call, log failures and carry on with the next period; nothing inside a
// loop is retried and no error unwinds out of it.
//
// Readings leave the pipeline through Sinks (log, MQTT, InfluxDB), button
// presses through EventSinks and heartbeats through a HealthPublisher.
package pipeline
