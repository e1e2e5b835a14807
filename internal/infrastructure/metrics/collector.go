package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// QueueSample is a point-in-time view of a bounded queue.
type QueueSample struct {
	Name     string
	Len      int
	Capacity int
	Puts     uint64
	Drops    uint64
	Gets     uint64
}

// SignalSample is a point-in-time view of a ready signal.
type SignalSample struct {
	Name      string
	Published uint64
	Coalesced uint64
	Taken     uint64
}

// DebounceSample is a point-in-time view of a debounce scheduler.
type DebounceSample struct {
	Name       string
	Armed      bool
	Notifies   uint64
	Executions uint64
	WorkErrors uint64
}

// TaskSample is a point-in-time view of a supervised task.
type TaskSample struct {
	Name     string
	Running  bool
	Restarts int
}

// Sample is everything a Collector reports on one scrape.
type Sample struct {
	Queues        []QueueSample
	Signals       []SignalSample
	Debouncers    []DebounceSample
	Tasks         []TaskSample
	LockTimeouts  map[string]uint64
	BlinkPeriodMS float64
}

// Source produces a Sample on demand.
type Source interface {
	MetricsSample() Sample
}

var (
	descQueueLength = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "queue", "length"),
		"Number of items currently held in the queue.",
		[]string{"queue"}, nil,
	)
	descQueueCapacity = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "queue", "capacity"),
		"Maximum number of items the queue holds.",
		[]string{"queue"}, nil,
	)
	descQueuePuts = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "queue", "puts_total"),
		"Items accepted by the queue.",
		[]string{"queue"}, nil,
	)
	descQueueDrops = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "queue", "drops_total"),
		"Items rejected because the queue was full.",
		[]string{"queue"}, nil,
	)
	descQueueGets = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "queue", "gets_total"),
		"Items removed from the queue.",
		[]string{"queue"}, nil,
	)
	descSignalPublished = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "signal", "published_total"),
		"Values published to the signal.",
		[]string{"signal"}, nil,
	)
	descSignalCoalesced = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "signal", "coalesced_total"),
		"Publishes that found the signal already raised.",
		[]string{"signal"}, nil,
	)
	descSignalTaken = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "signal", "taken_total"),
		"Values taken by the consumer.",
		[]string{"signal"}, nil,
	)
	descDebounceArmed = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "debounce", "armed"),
		"1 while the scheduler has a pending deadline.",
		[]string{"scheduler"}, nil,
	)
	descDebounceNotifies = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "debounce", "notifies_total"),
		"Interrupt notifications received.",
		[]string{"scheduler"}, nil,
	)
	descDebounceExecutions = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "debounce", "executions_total"),
		"Deferred work executions.",
		[]string{"scheduler"}, nil,
	)
	descDebounceErrors = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "debounce", "work_errors_total"),
		"Deferred work executions that returned an error.",
		[]string{"scheduler"}, nil,
	)
	descTaskUp = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "task", "up"),
		"1 while the task loop is running.",
		[]string{"task"}, nil,
	)
	descTaskRestarts = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "task", "restarts_total"),
		"Times the task loop was restarted after an error.",
		[]string{"task"}, nil,
	)
	descLockTimeouts = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "lock", "timeouts_total"),
		"Failed lock acquisitions on shared state.",
		[]string{"state"}, nil,
	)
	descBlinkPeriod = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "blink", "period_milliseconds"),
		"Current LED blink period.",
		nil, nil,
	)
)

type pipelineCollector struct {
	src Source
}

var _ prometheus.Collector = &pipelineCollector{}

// NewCollector returns a prometheus.Collector that samples src on every
// scrape.
func NewCollector(src Source) prometheus.Collector {
	return &pipelineCollector{src: src}
}

// Describe implements the prometheus.Collector interface.
func (c *pipelineCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		descQueueLength, descQueueCapacity, descQueuePuts, descQueueDrops, descQueueGets,
		descSignalPublished, descSignalCoalesced, descSignalTaken,
		descDebounceArmed, descDebounceNotifies, descDebounceExecutions, descDebounceErrors,
		descTaskUp, descTaskRestarts, descLockTimeouts, descBlinkPeriod,
	} {
		ch <- d
	}
}

// Collect implements the prometheus.Collector interface.
func (c *pipelineCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.MetricsSample()

	for _, q := range s.Queues {
		ch <- prometheus.MustNewConstMetric(descQueueLength, prometheus.GaugeValue, float64(q.Len), q.Name)
		ch <- prometheus.MustNewConstMetric(descQueueCapacity, prometheus.GaugeValue, float64(q.Capacity), q.Name)
		ch <- prometheus.MustNewConstMetric(descQueuePuts, prometheus.CounterValue, float64(q.Puts), q.Name)
		ch <- prometheus.MustNewConstMetric(descQueueDrops, prometheus.CounterValue, float64(q.Drops), q.Name)
		ch <- prometheus.MustNewConstMetric(descQueueGets, prometheus.CounterValue, float64(q.Gets), q.Name)
	}
	for _, sig := range s.Signals {
		ch <- prometheus.MustNewConstMetric(descSignalPublished, prometheus.CounterValue, float64(sig.Published), sig.Name)
		ch <- prometheus.MustNewConstMetric(descSignalCoalesced, prometheus.CounterValue, float64(sig.Coalesced), sig.Name)
		ch <- prometheus.MustNewConstMetric(descSignalTaken, prometheus.CounterValue, float64(sig.Taken), sig.Name)
	}
	for _, d := range s.Debouncers {
		ch <- prometheus.MustNewConstMetric(descDebounceArmed, prometheus.GaugeValue, boolToFloat(d.Armed), d.Name)
		ch <- prometheus.MustNewConstMetric(descDebounceNotifies, prometheus.CounterValue, float64(d.Notifies), d.Name)
		ch <- prometheus.MustNewConstMetric(descDebounceExecutions, prometheus.CounterValue, float64(d.Executions), d.Name)
		ch <- prometheus.MustNewConstMetric(descDebounceErrors, prometheus.CounterValue, float64(d.WorkErrors), d.Name)
	}
	for _, t := range s.Tasks {
		ch <- prometheus.MustNewConstMetric(descTaskUp, prometheus.GaugeValue, boolToFloat(t.Running), t.Name)
		ch <- prometheus.MustNewConstMetric(descTaskRestarts, prometheus.CounterValue, float64(t.Restarts), t.Name)
	}
	for name, n := range s.LockTimeouts {
		ch <- prometheus.MustNewConstMetric(descLockTimeouts, prometheus.CounterValue, float64(n), name)
	}
	ch <- prometheus.MustNewConstMetric(descBlinkPeriod, prometheus.GaugeValue, s.BlinkPeriodMS)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
