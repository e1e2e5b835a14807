package shared

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// State holds one value of type T behind a lock.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - The held value is only reachable inside the function passed to
//     Update or With.
type State[T any] struct {
	name  string
	lock  locker
	value T

	timeouts atomic.Uint64
}

// Option configures a State.
type Option func(*options)

type options struct {
	name            string
	deadlockTimeout time.Duration
}

// WithName labels the state in error messages.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithDeadlockTimeout replaces the context-aware lock with a diagnostic
// mutex that gives up after d, whatever the caller's context says.
// Intended for tracking down critical sections that run too long.
func WithDeadlockTimeout(d time.Duration) Option {
	return func(o *options) {
		o.deadlockTimeout = d
	}
}

// New creates a State holding initial.
func New[T any](initial T, opts ...Option) *State[T] {
	o := options{name: "state"}
	for _, opt := range opts {
		opt(&o)
	}

	var l locker
	if o.deadlockTimeout > 0 {
		l = newDeadlockLocker(o.deadlockTimeout)
	} else {
		l = newSemLocker()
	}

	return &State[T]{
		name:  o.name,
		lock:  l,
		value: initial,
	}
}

// Name returns the label given with WithName.
func (s *State[T]) Name() string {
	return s.name
}

// Timeouts returns how many lock acquisitions have failed so far.
func (s *State[T]) Timeouts() uint64 {
	return s.timeouts.Load()
}

// Update runs fn with exclusive access to the held value.
//
// The lock is released when fn returns, fails or panics. The error from fn
// is returned unchanged; a lock failure is returned wrapped in
// ErrLockTimeout.
func (s *State[T]) Update(ctx context.Context, fn func(v *T) error) error {
	release, err := s.lock.lock(ctx)
	if err != nil {
		s.timeouts.Add(1)
		return fmt.Errorf("%w: %s: %w", ErrLockTimeout, s.name, err)
	}
	defer release()

	return fn(&s.value)
}

// Load returns a copy of the held value.
func (s *State[T]) Load(ctx context.Context) (T, error) {
	return With(ctx, s, func(v *T) (T, error) {
		return *v, nil
	})
}

// Store replaces the held value.
func (s *State[T]) Store(ctx context.Context, value T) error {
	return s.Update(ctx, func(v *T) error {
		*v = value
		return nil
	})
}

// With runs fn under the lock of s and returns its result.
//
// Example:
//
//	doubled, err := shared.With(ctx, period, func(v *int32) (int32, error) {
//	    return *v * 2, nil
//	})
func With[T, R any](ctx context.Context, s *State[T], fn func(v *T) (R, error)) (R, error) {
	var result R
	err := s.Update(ctx, func(v *T) error {
		var fnErr error
		result, fnErr = fn(v)
		return fnErr
	})
	return result, err
}
