package task

import (
	"cmp"
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"
)

// Status represents the current state of a task.
type Status string

const (
	StatusStopped    Status = "stopped"
	StatusStarting   Status = "starting"
	StatusRunning    Status = "running"
	StatusRestarting Status = "restarting"
)

// DefaultRestartDelay is used when a Spec leaves RestartDelay at zero.
const DefaultRestartDelay = time.Second

// Spec describes one task.
type Spec struct {
	// Name identifies the task in logs and status output. Must be unique.
	Name string

	// Priority orders task start-up. Lower values start first.
	Priority int

	// Run is the task loop. It should return only when ctx ends; any other
	// return is treated as the task finishing (nil) or failing (error).
	Run func(ctx context.Context) error

	// RestartDelay is the pause before a failed loop is started again.
	RestartDelay time.Duration
}

// Info is a point-in-time view of one task.
type Info struct {
	Name      string `json:"name"`
	Priority  int    `json:"priority"`
	Status    Status `json:"status"`
	Restarts  int    `json:"restarts"`
	LastError string `json:"last_error,omitempty"`
}

// Logger defines the logging interface for the task set.
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

// Set supervises a fixed group of tasks.
type Set struct {
	logger Logger
	clock  clock.Clock

	mu      sync.Mutex
	specs   []Spec
	info    map[string]*Info
	running bool
}

// NewSet creates an empty set. A nil logger discards output.
func NewSet(logger Logger) *Set {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Set{
		logger: logger,
		clock:  clock.RealClock{},
		info:   make(map[string]*Info),
	}
}

// SetClock replaces the clock used for restart delays.
func (s *Set) SetClock(clk clock.Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clk
}

// Add registers a task. It must be called before Run.
func (s *Set) Add(spec Spec) error {
	if spec.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSpec)
	}
	if spec.Run == nil {
		return fmt.Errorf("%w: task %q has no loop", ErrInvalidSpec, spec.Name)
	}
	if spec.RestartDelay < 0 {
		return fmt.Errorf("%w: task %q has negative restart delay", ErrInvalidSpec, spec.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}
	if _, exists := s.info[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, spec.Name)
	}

	s.specs = append(s.specs, spec)
	s.info[spec.Name] = &Info{
		Name:     spec.Name,
		Priority: spec.Priority,
		Status:   StatusStopped,
	}
	return nil
}

// Run starts every task and blocks until ctx ends and all tasks returned.
// It returns nil after a normal shutdown.
func (s *Set) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	specs := slices.Clone(s.specs)
	s.mu.Unlock()

	slices.SortStableFunc(specs, func(a, b Spec) int {
		return cmp.Compare(a.Priority, b.Priority)
	})

	g, gctx := errgroup.WithContext(ctx)
	for _, spec := range specs {
		s.setStatus(spec.Name, StatusStarting, nil)
		s.logger.Debug("starting task", "task", spec.Name, "priority", spec.Priority)

		g.Go(func() error {
			s.supervise(gctx, spec)
			return nil
		})
	}

	return g.Wait()
}

// supervise runs one task until ctx ends or the loop finishes cleanly.
func (s *Set) supervise(ctx context.Context, spec Spec) {
	delay := spec.RestartDelay
	if delay == 0 {
		delay = DefaultRestartDelay
	}

	for {
		s.setStatus(spec.Name, StatusRunning, nil)
		err := runProtected(ctx, spec.Run)

		if ctx.Err() != nil {
			s.setStatus(spec.Name, StatusStopped, nil)
			return
		}
		if err == nil {
			s.logger.Info("task finished", "task", spec.Name)
			s.setStatus(spec.Name, StatusStopped, nil)
			return
		}

		s.logger.Error("task failed, restarting",
			"task", spec.Name,
			"error", err,
			"restart_delay", delay,
		)
		s.setStatus(spec.Name, StatusRestarting, err)

		timer := s.getClock().NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.setStatus(spec.Name, StatusStopped, nil)
			return
		case <-timer.C():
		}
	}
}

// runProtected converts a panic in fn into an error.
func runProtected(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn(ctx)
}

func (s *Set) getClock() clock.Clock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

func (s *Set) setStatus(name string, status Status, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := s.info[name]
	info.Status = status
	if status == StatusRestarting {
		info.Restarts++
	}
	if err != nil {
		info.LastError = err.Error()
	}
}

// Status returns the current view of one task.
func (s *Set) Status(name string) (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.info[name]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return *info, nil
}

// Snapshot returns every task ordered by priority, then name.
func (s *Set) Snapshot() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Info, 0, len(s.info))
	for _, info := range s.info {
		out = append(out, *info)
	}
	slices.SortFunc(out, func(a, b Info) int {
		if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}
