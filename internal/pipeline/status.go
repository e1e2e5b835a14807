package pipeline

import (
	"context"
	"fmt"

	"github.com/yushengtzou/sensorpipe/internal/debounce"
	"github.com/yushengtzou/sensorpipe/internal/handoff"
	"github.com/yushengtzou/sensorpipe/internal/infrastructure/metrics"
	"github.com/yushengtzou/sensorpipe/internal/msgq"
	"github.com/yushengtzou/sensorpipe/internal/task"
)

// Status is a point-in-time view of the pipeline, served by the status API.
type Status struct {
	Device        string         `json:"device"`
	Mode          string         `json:"mode"`
	Latest        *Reading       `json:"latest,omitempty"`
	BlinkPeriodMS int32          `json:"blink_period_ms"`
	Consumed      uint64         `json:"consumed"`
	SensorErrors  uint64         `json:"sensor_errors"`
	Queue         *msgq.Stats    `json:"queue,omitempty"`
	Signal        *handoff.Stats `json:"signal,omitempty"`
	ControlQueue  *msgq.Stats    `json:"control_queue,omitempty"`
	Button        *ButtonStatus  `json:"button,omitempty"`
	Tasks         []task.Info    `json:"tasks"`
}

// ButtonStatus describes the debounced button.
type ButtonStatus struct {
	State   debounce.State `json:"state"`
	Presses uint64         `json:"presses"`
	debounce.Stats
}

// Status reads the shared values under their locks, bounded by the lock
// timeout, and snapshots every counter.
func (p *Pipeline) Status(ctx context.Context) (Status, error) {
	lctx, cancel := p.lockContext(ctx)
	defer cancel()

	s := Status{
		Device:       p.device,
		Mode:         p.Mode(),
		Consumed:     p.consumed.Load(),
		SensorErrors: p.sensorErrors.Load(),
		Tasks:        p.tasks.Snapshot(),
	}

	period, err := p.period.Load(lctx)
	if err != nil {
		return Status{}, fmt.Errorf("reading blink period: %w", err)
	}
	s.BlinkPeriodMS = period

	if p.haveLatest.Load() {
		latest, err := p.latest.Load(lctx)
		if err != nil {
			return Status{}, fmt.Errorf("reading latest reading: %w", err)
		}
		s.Latest = &latest
	}

	if p.readings != nil {
		qs := p.readings.Stats()
		s.Queue = &qs
	}
	if p.signal != nil {
		ss := p.signal.Stats()
		s.Signal = &ss
	}
	if p.deltas != nil {
		cs := p.deltas.Stats()
		s.ControlQueue = &cs
	}
	if p.debouncer != nil {
		s.Button = &ButtonStatus{
			State:   p.debouncer.State(),
			Presses: p.presses.Load(),
			Stats:   p.debouncer.Stats(),
		}
	}

	return s, nil
}

// MetricsSample implements metrics.Source.
func (p *Pipeline) MetricsSample() metrics.Sample {
	s := metrics.Sample{
		LockTimeouts: map[string]uint64{
			p.period.Name(): p.period.Timeouts(),
			p.latest.Name(): p.latest.Timeouts(),
		},
		BlinkPeriodMS: float64(p.lastPeriod.Load()),
	}

	if p.readings != nil {
		s.Queues = append(s.Queues, queueSample("readings", p.readings.Stats()))
	}
	if p.deltas != nil {
		s.Queues = append(s.Queues, queueSample("control", p.deltas.Stats()))
	}
	if p.signal != nil {
		s.LockTimeouts[p.signal.Name()] = p.signal.Timeouts()
		st := p.signal.Stats()
		s.Signals = append(s.Signals, metrics.SignalSample{
			Name:      "readings",
			Published: st.Published,
			Coalesced: st.Coalesced,
			Taken:     st.Taken,
		})
	}
	if p.debouncer != nil {
		st := p.debouncer.Stats()
		s.Debouncers = append(s.Debouncers, metrics.DebounceSample{
			Name:       "button",
			Armed:      p.debouncer.State() == debounce.StateArmed,
			Notifies:   st.Notifies,
			Executions: st.Executions,
			WorkErrors: st.WorkErrors,
		})
	}
	for _, info := range p.tasks.Snapshot() {
		s.Tasks = append(s.Tasks, metrics.TaskSample{
			Name:     info.Name,
			Running:  info.Status == task.StatusRunning,
			Restarts: info.Restarts,
		})
	}

	return s
}

func queueSample(name string, st msgq.Stats) metrics.QueueSample {
	return metrics.QueueSample{
		Name:     name,
		Len:      st.Len,
		Capacity: st.Capacity,
		Puts:     st.Puts,
		Drops:    st.Drops,
		Gets:     st.Gets,
	}
}

var _ metrics.Source = (*Pipeline)(nil)
