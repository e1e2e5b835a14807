package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by sensorpipe.
const (
	MeasurementReadings = "readings"
	MeasurementEvents   = "events"
)

// Reading is the subset of a pipeline reading persisted as a point.
type Reading struct {
	DeviceID string
	Sensor   string
	Value    float64
	Seq      uint64
	TraceID  string
	TakenAt  time.Time
}

// NewReadingPoint builds the point for a single reading.
//
// Tags are kept to device and sensor; the sequence number and trace ID are
// fields so they do not inflate series cardinality.
func NewReadingPoint(r Reading) *write.Point {
	at := r.TakenAt
	if at.IsZero() {
		at = time.Now()
	}

	fields := map[string]interface{}{
		"value": r.Value,
		"seq":   int64(r.Seq), // #nosec G115 -- sequence numbers stay far below MaxInt64
	}
	if r.TraceID != "" {
		fields["trace_id"] = r.TraceID
	}

	return write.NewPoint(
		MeasurementReadings,
		map[string]string{
			"device_id": r.DeviceID,
			"sensor":    r.Sensor,
		},
		fields,
		at,
	)
}

// WriteReading records a sensor reading.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Readings are silently dropped while disconnected.
//
// Example:
//
//	client.WriteReading(influxdb.Reading{
//	    DeviceID: "node-001", Sensor: "mcp9808", Value: 21.5, Seq: 42,
//	})
func (c *Client) WriteReading(r Reading) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(NewReadingPoint(r))
	c.written.Add(1)
}

// WriteEvent records a discrete event such as a debounced button press.
//
// Parameters:
//   - deviceID: Node identifier
//   - kind: Event kind (e.g., "button")
//   - value: Event value (e.g., pin level)
func (c *Client) WriteEvent(deviceID string, kind string, value float64) {
	c.WritePoint(MeasurementEvents,
		map[string]string{
			"device_id": deviceID,
			"kind":      kind,
		},
		map[string]interface{}{
			"value": value,
		})
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a custom point with a specific timestamp.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
	c.written.Add(1)
}
