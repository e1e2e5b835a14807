package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/yushengtzou/sensorpipe/internal/peripheral"
)

// Reading is one timestamped sensor sample. It is a plain value and is
// copied across every hand-off.
type Reading struct {
	Seq     uint64                 `json:"seq"`
	TraceID uuid.UUID              `json:"trace_id"`
	Sensor  string                 `json:"sensor"`
	Value   peripheral.SensorValue `json:"value"`
	TakenAt time.Time              `json:"taken_at"`
}

// Event is a discrete occurrence such as a debounced button press.
type Event struct {
	Kind  string    `json:"kind" msgpack:"kind"`
	Value int       `json:"value" msgpack:"value"`
	At    time.Time `json:"at" msgpack:"at"`
}

// Health is the heartbeat payload.
type Health struct {
	Device        string    `json:"device" msgpack:"device"`
	UptimeSeconds int64     `json:"uptime_seconds" msgpack:"uptime_seconds"`
	Readings      uint64    `json:"readings" msgpack:"readings"`
	Dropped       uint64    `json:"dropped" msgpack:"dropped"`
	SensorErrors  uint64    `json:"sensor_errors" msgpack:"sensor_errors"`
	BlinkPeriodMS int32     `json:"blink_period_ms" msgpack:"blink_period_ms"`
	TasksRunning  int       `json:"tasks_running" msgpack:"tasks_running"`
	Timestamp     time.Time `json:"timestamp" msgpack:"timestamp"`
}

// readingPayload is the wire form of a Reading.
type readingPayload struct {
	Device  string                 `json:"device" msgpack:"device"`
	Sensor  string                 `json:"sensor" msgpack:"sensor"`
	Seq     uint64                 `json:"seq" msgpack:"seq"`
	TraceID string                 `json:"trace_id" msgpack:"trace_id"`
	Value   float64                `json:"value" msgpack:"value"`
	Raw     peripheral.SensorValue `json:"raw" msgpack:"raw"`
	TakenAt time.Time              `json:"taken_at" msgpack:"taken_at"`
}

func newReadingPayload(device string, r Reading) readingPayload {
	return readingPayload{
		Device:  device,
		Sensor:  r.Sensor,
		Seq:     r.Seq,
		TraceID: r.TraceID.String(),
		Value:   r.Value.Float64(),
		Raw:     r.Value,
		TakenAt: r.TakenAt,
	}
}
