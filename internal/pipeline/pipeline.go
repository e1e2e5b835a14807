package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"k8s.io/utils/clock"

	"github.com/yushengtzou/sensorpipe/internal/debounce"
	"github.com/yushengtzou/sensorpipe/internal/handoff"
	"github.com/yushengtzou/sensorpipe/internal/infrastructure/config"
	"github.com/yushengtzou/sensorpipe/internal/msgq"
	"github.com/yushengtzou/sensorpipe/internal/peripheral"
	"github.com/yushengtzou/sensorpipe/internal/shared"
	"github.com/yushengtzou/sensorpipe/internal/task"
)

// Reading paths, used as metric labels.
const (
	pathQueue  = "queue"
	pathSignal = "signal"
)

// ControlSource is a named source of "+"/"-" control lines.
type ControlSource struct {
	Name  string
	Lines peripheral.LineSource
}

// Deps are the collaborators a Pipeline is built from. Sensor is always
// required; LED, ButtonPin and Interrupts are required when the blink or
// button task is enabled.
type Deps struct {
	Sensor     peripheral.Sensor
	LED        peripheral.Actuator
	ButtonPin  peripheral.InputPin
	Interrupts peripheral.InterruptSource
	Controls   []ControlSource

	Sinks  []Sink
	Events []EventSink
	Health HealthPublisher

	Clock   clock.Clock
	Logger  Logger
	Metrics Recorder
}

// Pipeline owns the primitives connecting the sensorpipe tasks and the task
// set running them.
type Pipeline struct {
	device    string
	cfg       config.PipelineConfig
	blinkCfg  config.BlinkConfig
	buttonCfg config.ButtonConfig
	beatCfg   config.HeartbeatConfig

	sensor     peripheral.Sensor
	led        peripheral.Actuator
	buttonPin  peripheral.InputPin
	sinks      []Sink
	events     []EventSink
	healthPub  HealthPublisher
	clock      clock.Clock
	logger     Logger
	rec        Recorder
	started    time.Time
	tasks      *task.Set
	debouncer  *debounce.Scheduler
	readings   *msgq.Queue[Reading]
	signal     *handoff.Signal[Reading]
	deltas     *msgq.Queue[int8]
	latest     *shared.State[Reading]
	period     *shared.State[int32]
	lastPeriod atomic.Int32

	seq          atomic.Uint64
	consumed     atomic.Uint64
	sensorErrors atomic.Uint64
	presses      atomic.Uint64
	haveLatest   atomic.Bool
}

// New builds a pipeline from cfg and registers its tasks. cfg must have
// passed Validate.
func New(cfg *config.Config, deps Deps) (*Pipeline, error) {
	if deps.Sensor == nil {
		return nil, fmt.Errorf("%w: sensor", ErrMissingDevice)
	}
	if cfg.Blink.Enabled && deps.LED == nil {
		return nil, fmt.Errorf("%w: blink enabled without an LED", ErrMissingDevice)
	}
	if cfg.Button.Enabled && (deps.ButtonPin == nil || deps.Interrupts == nil) {
		return nil, fmt.Errorf("%w: button enabled without a pin and interrupt source", ErrMissingDevice)
	}

	p := &Pipeline{
		device:    cfg.Device.ID,
		cfg:       cfg.Pipeline,
		blinkCfg:  cfg.Blink,
		buttonCfg: cfg.Button,
		beatCfg:   cfg.Heartbeat,
		sensor:    deps.Sensor,
		led:       deps.LED,
		buttonPin: deps.ButtonPin,
		sinks:     deps.Sinks,
		events:    deps.Events,
		healthPub: deps.Health,
		clock:     deps.Clock,
		logger:    deps.Logger,
		rec:       deps.Metrics,
	}
	if p.clock == nil {
		p.clock = clock.RealClock{}
	}
	if p.logger == nil {
		p.logger = noopLogger{}
	}
	if p.rec == nil {
		p.rec = noopRecorder{}
	}
	p.started = p.clock.Now()

	switch cfg.Pipeline.Mode {
	case config.ModeSignal:
		p.signal = handoff.New(Reading{}, p.stateOptions("latest_reading")...)
	default:
		q, err := msgq.New[Reading](cfg.Pipeline.Queue.Capacity)
		if err != nil {
			return nil, fmt.Errorf("creating reading queue: %w", err)
		}
		p.readings = q
	}

	p.latest = shared.New(Reading{}, p.stateOptions("last_consumed")...)
	p.period = shared.New(cfg.Blink.PeriodMS, p.stateOptions("blink_period")...)
	p.lastPeriod.Store(cfg.Blink.PeriodMS)

	if cfg.Blink.Control == config.ControlQueue {
		q, err := msgq.New[int8](cfg.Blink.ControlQueue)
		if err != nil {
			return nil, fmt.Errorf("creating control queue: %w", err)
		}
		p.deltas = q
	}

	if cfg.Button.Enabled {
		d, err := debounce.New(cfg.Button.DebounceWindow, p.onButton,
			debounce.WithClock(p.clock),
			debounce.WithLogger(p.logger),
			debounce.WithName("button"),
		)
		if err != nil {
			return nil, fmt.Errorf("creating button debouncer: %w", err)
		}
		p.debouncer = d
		deps.Interrupts.OnInterrupt(d.Notify)
	}

	p.tasks = task.NewSet(p.logger)
	p.tasks.SetClock(p.clock)
	if err := p.registerTasks(deps.Controls); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Pipeline) stateOptions(name string) []shared.Option {
	opts := []shared.Option{shared.WithName(name)}
	if p.cfg.DeadlockTimeout > 0 {
		opts = append(opts, shared.WithDeadlockTimeout(p.cfg.DeadlockTimeout))
	}
	return opts
}

func (p *Pipeline) registerTasks(controls []ControlSource) error {
	prio := p.cfg.Priorities
	specs := make([]task.Spec, 0, 8)

	if p.signal != nil {
		specs = append(specs,
			task.Spec{Name: "sampler", Priority: prio.Producer, Run: p.runSignalProducer},
			task.Spec{Name: "consumer", Priority: prio.Consumer, Run: p.runSignalConsumer},
		)
	} else {
		consumer := p.runDrainConsumer
		if p.cfg.Queue.ConsumerMode == config.ConsumerBlock {
			consumer = p.runBlockingConsumer
		}
		specs = append(specs,
			task.Spec{Name: "sampler", Priority: prio.Producer, Run: p.runQueueProducer},
			task.Spec{Name: "consumer", Priority: prio.Consumer, Run: consumer},
		)
	}

	for _, c := range controls {
		specs = append(specs, task.Spec{
			Name:     "control-" + c.Name,
			Priority: prio.Control,
			Run:      p.controlLoop(c),
		})
	}
	if p.blinkCfg.Enabled {
		specs = append(specs, task.Spec{Name: "blink", Priority: prio.Blink, Run: p.runBlink})
	}
	if p.debouncer != nil {
		specs = append(specs, task.Spec{Name: "button", Priority: prio.Button, Run: p.debouncer.Run})
	}
	if p.beatCfg.Enabled {
		specs = append(specs, task.Spec{Name: "heartbeat", Priority: prio.Heartbeat, Run: p.runHeartbeat})
	}

	for _, spec := range specs {
		if err := p.AddTask(spec); err != nil {
			return err
		}
	}
	return nil
}

// AddTask registers an extra task on the pipeline's set, such as a
// simulator driving the peripherals. A zero RestartDelay inherits the
// pipeline's restart delay.
func (p *Pipeline) AddTask(spec task.Spec) error {
	if spec.RestartDelay == 0 {
		spec.RestartDelay = p.cfg.RestartDelay
	}
	if err := p.tasks.Add(spec); err != nil {
		return fmt.Errorf("registering task: %w", err)
	}
	return nil
}

// Run starts every task and blocks until ctx ends.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline starting",
		"mode", p.Mode(),
		"sensor", p.sensor.Name(),
		"tasks", len(p.tasks.Snapshot()),
	)
	err := p.tasks.Run(ctx)
	p.logger.Info("pipeline stopped", "consumed", p.consumed.Load())
	return err
}

// Mode returns the hand-off mode, "queue" or "signal".
func (p *Pipeline) Mode() string {
	if p.signal != nil {
		return config.ModeSignal
	}
	return config.ModeQueue
}

// Tasks returns the status of every registered task.
func (p *Pipeline) Tasks() []task.Info {
	return p.tasks.Snapshot()
}

// lockContext bounds a shared state access by the configured lock timeout.
func (p *Pipeline) lockContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return withOptionalTimeout(ctx, p.cfg.LockTimeout)
}
