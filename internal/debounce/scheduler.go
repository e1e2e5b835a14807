package debounce

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"k8s.io/utils/clock"
)

// State is the arm state of a Scheduler.
type State string

const (
	StateIdle  State = "idle"
	StateArmed State = "armed"
)

// WorkFunc is the deferred work. Errors are logged by the scheduler.
type WorkFunc func(ctx context.Context) error

// Logger defines the logging interface for the scheduler.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the clock used for deadlines. Defaults to the real clock.
func WithClock(clk clock.Clock) Option {
	return func(s *Scheduler) {
		s.clock = clk
	}
}

// WithLogger sets the logger for work failures.
func WithLogger(logger Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithName labels log lines from the scheduler.
func WithName(name string) Option {
	return func(s *Scheduler) {
		s.name = name
	}
}

// Stats is a snapshot of scheduler counters.
type Stats struct {
	Notifies   uint64 `json:"notifies"`
	Executions uint64 `json:"executions"`
	WorkErrors uint64 `json:"work_errors"`
}

// Scheduler runs a WorkFunc once per burst of Notify calls.
type Scheduler struct {
	name   string
	window time.Duration
	work   WorkFunc
	clock  clock.Clock
	logger Logger

	// epoch anchors deadline so it fits in one word.
	epoch time.Time
	// deadline is the offset from epoch at which the work is due, or 0 when
	// idle. It is always at least window when armed.
	deadline atomic.Int64
	kick     chan struct{}

	notifies   atomic.Uint64
	executions atomic.Uint64
	workErrors atomic.Uint64
}

// New creates an idle scheduler.
func New(window time.Duration, work WorkFunc, opts ...Option) (*Scheduler, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, window)
	}
	if work == nil {
		return nil, fmt.Errorf("debounce: work function is required")
	}

	s := &Scheduler{
		name:   "debounce",
		window: window,
		work:   work,
		clock:  clock.RealClock{},
		logger: noopLogger{},
		kick:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.epoch = s.clock.Now()

	return s, nil
}

// Notify arms the scheduler, or pushes an armed deadline out to
// now+window.
func (s *Scheduler) Notify() {
	s.deadline.Store(int64(s.clock.Since(s.epoch) + s.window))
	s.notifies.Add(1)

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// State reports whether work is pending.
func (s *Scheduler) State() State {
	if s.deadline.Load() == 0 {
		return StateIdle
	}
	return StateArmed
}

// Window returns the debounce window.
func (s *Scheduler) Window() time.Duration {
	return s.window
}

// Stats returns the current counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Notifies:   s.notifies.Load(),
		Executions: s.executions.Load(),
		WorkErrors: s.workErrors.Load(),
	}
}

// Run waits for deadlines and executes the work until ctx ends. Pending
// work is abandoned on cancellation. Run always returns nil.
func (s *Scheduler) Run(ctx context.Context) error {
	var (
		timer  clock.Timer
		timerC <-chan time.Time
	)
	stopTimer := func() {
		if timer == nil {
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C():
			default:
			}
		}
		timerC = nil
	}
	defer stopTimer()

	for {
		if due := s.deadline.Load(); due != 0 {
			remaining := time.Duration(due) - s.clock.Since(s.epoch)
			if remaining <= 0 {
				// A Notify between Load and here moved the deadline; go
				// round again.
				if s.deadline.CompareAndSwap(due, 0) {
					s.execute(ctx)
				}
				continue
			}

			if timer == nil {
				timer = s.clock.NewTimer(remaining)
			} else {
				stopTimer()
				timer.Reset(remaining)
			}
			timerC = timer.C()
		} else {
			stopTimer()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-s.kick:
		case <-timerC:
			timerC = nil
		}
	}
}

func (s *Scheduler) execute(ctx context.Context) {
	s.executions.Add(1)
	if err := s.work(ctx); err != nil {
		s.workErrors.Add(1)
		s.logger.Error("debounced work failed", "scheduler", s.name, "error", err)
	}
}
