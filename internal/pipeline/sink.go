package pipeline

import (
	"context"
	"fmt"

	"github.com/yushengtzou/sensorpipe/internal/infrastructure/influxdb"
	"github.com/yushengtzou/sensorpipe/internal/infrastructure/mqtt"
)

// Sink receives every reading the consumer takes.
type Sink interface {
	Name() string
	Emit(ctx context.Context, r Reading) error
}

// EventSink receives discrete events.
type EventSink interface {
	Name() string
	Event(ctx context.Context, e Event) error
}

// HealthPublisher receives heartbeat payloads.
type HealthPublisher interface {
	PublishHealth(ctx context.Context, h Health) error
}

// LogSink writes readings and events to the structured logger.
type LogSink struct {
	logger Logger
}

// NewLogSink creates a LogSink. A nil logger discards output.
func NewLogSink(logger Logger) *LogSink {
	if logger == nil {
		logger = noopLogger{}
	}
	return &LogSink{logger: logger}
}

// Name implements Sink.
func (s *LogSink) Name() string { return "log" }

// Emit implements Sink.
func (s *LogSink) Emit(_ context.Context, r Reading) error {
	s.logger.Info("reading",
		"sensor", r.Sensor,
		"seq", r.Seq,
		"value", r.Value.String(),
		"trace_id", r.TraceID.String(),
	)
	return nil
}

// Event implements EventSink.
func (s *LogSink) Event(_ context.Context, e Event) error {
	s.logger.Info("event", "kind", e.Kind, "value", e.Value)
	return nil
}

// Publisher is the part of the MQTT client used by MQTTSink.
type Publisher interface {
	PublishEncoded(topic string, v any, retained bool) error
	Topics() mqtt.Topics
}

// MQTTSink publishes readings, events and health over MQTT.
type MQTTSink struct {
	pub Publisher
}

// NewMQTTSink creates an MQTTSink.
func NewMQTTSink(pub Publisher) *MQTTSink {
	return &MQTTSink{pub: pub}
}

// Name implements Sink.
func (s *MQTTSink) Name() string { return "mqtt" }

// Emit publishes r retained on the sensor's state topic.
func (s *MQTTSink) Emit(_ context.Context, r Reading) error {
	topics := s.pub.Topics()
	payload := newReadingPayload(topics.Device(), r)
	if err := s.pub.PublishEncoded(topics.ReadingState(r.Sensor), payload, true); err != nil {
		return fmt.Errorf("publishing reading %d: %w", r.Seq, err)
	}
	return nil
}

// Event implements EventSink.
func (s *MQTTSink) Event(_ context.Context, e Event) error {
	if err := s.pub.PublishEncoded(s.pub.Topics().ButtonEvent(), e, false); err != nil {
		return fmt.Errorf("publishing %s event: %w", e.Kind, err)
	}
	return nil
}

// PublishHealth implements HealthPublisher.
func (s *MQTTSink) PublishHealth(_ context.Context, h Health) error {
	if err := s.pub.PublishEncoded(s.pub.Topics().Health(), h, true); err != nil {
		return fmt.Errorf("publishing health: %w", err)
	}
	return nil
}

// PointWriter is the part of the InfluxDB client used by InfluxSink.
type PointWriter interface {
	WriteReading(r influxdb.Reading)
	WriteEvent(deviceID string, kind string, value float64)
}

// InfluxSink records readings and events as InfluxDB points.
type InfluxSink struct {
	device string
	w      PointWriter
}

// NewInfluxSink creates an InfluxSink tagging points with device.
func NewInfluxSink(device string, w PointWriter) *InfluxSink {
	return &InfluxSink{device: device, w: w}
}

// Name implements Sink.
func (s *InfluxSink) Name() string { return "influxdb" }

// Emit implements Sink. Writes are batched; failures surface through the
// client's error callback.
func (s *InfluxSink) Emit(_ context.Context, r Reading) error {
	s.w.WriteReading(influxdb.Reading{
		DeviceID: s.device,
		Sensor:   r.Sensor,
		Value:    r.Value.Float64(),
		Seq:      r.Seq,
		TraceID:  r.TraceID.String(),
		TakenAt:  r.TakenAt,
	})
	return nil
}

// Event implements EventSink.
func (s *InfluxSink) Event(_ context.Context, e Event) error {
	s.w.WriteEvent(s.device, e.Kind, float64(e.Value))
	return nil
}
