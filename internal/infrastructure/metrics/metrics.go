package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sensorpipe"

// Registry holds the sensorpipe event counters and the registry that
// serves them.
type Registry struct {
	reg *prometheus.Registry

	readings           *prometheus.CounterVec
	sensorErrors       *prometheus.CounterVec
	sinkErrors         *prometheus.CounterVec
	controlAdjustments *prometheus.CounterVec
	buttonPresses      prometheus.Counter
	heartbeats         prometheus.Counter
}

// New creates a Registry with the Go runtime and process collectors and a
// build info gauge labelled with version.
func New(version string) *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		readings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "readings_total",
				Help:      "Count of sensor readings delivered to the sinks.",
			},
			[]string{"sensor", "path"},
		),
		sensorErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sensor_errors_total",
				Help:      "Count of failed sensor reads.",
			},
			[]string{"sensor"},
		),
		sinkErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sink_errors_total",
				Help:      "Count of readings a sink failed to accept.",
			},
			[]string{"sink"},
		),
		controlAdjustments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "control_adjustments_total",
				Help:      "Count of blink period adjustments by direction.",
			},
			[]string{"direction"},
		),
		buttonPresses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "button_presses_total",
			Help:      "Count of debounced button presses.",
		}),
		heartbeats: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heartbeats_total",
			Help:      "Count of heartbeat ticks.",
		}),
	}

	buildInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information, value is always 1.",
		},
		[]string{"version"},
	)
	buildInfo.WithLabelValues(version).Set(1)

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		buildInfo,
		r.readings,
		r.sensorErrors,
		r.sinkErrors,
		r.controlAdjustments,
		r.buttonPresses,
		r.heartbeats,
	)
	return r
}

// Register adds a collector, typically one built by NewCollector.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.reg.Register(c)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer returns the underlying registry for direct inspection.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// RecordReading counts a reading delivered over path ("queue" or "signal").
func (r *Registry) RecordReading(sensor, path string) {
	r.readings.WithLabelValues(sensor, path).Inc()
}

// RecordSensorError counts a failed sensor read.
func (r *Registry) RecordSensorError(sensor string) {
	r.sensorErrors.WithLabelValues(sensor).Inc()
}

// RecordSinkError counts a reading the named sink rejected.
func (r *Registry) RecordSinkError(sink string) {
	r.sinkErrors.WithLabelValues(sink).Inc()
}

// RecordControl counts a blink period adjustment ("up" or "down").
func (r *Registry) RecordControl(direction string) {
	r.controlAdjustments.WithLabelValues(direction).Inc()
}

// RecordButtonPress counts a debounced press.
func (r *Registry) RecordButtonPress() {
	r.buttonPresses.Inc()
}

// RecordHeartbeat counts a heartbeat tick.
func (r *Registry) RecordHeartbeat() {
	r.heartbeats.Inc()
}
