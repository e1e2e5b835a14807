package handoff

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/yushengtzou/sensorpipe/internal/shared"
)

// Signal is a latest-value-wins hand-off between a producer and a consumer.
type Signal[T any] struct {
	value *shared.State[T]
	ready chan struct{}

	published atomic.Uint64
	coalesced atomic.Uint64
	taken     atomic.Uint64
}

// Stats is a snapshot of signal counters.
type Stats struct {
	Published uint64 `json:"published"`
	// Coalesced counts publishes that found the signal already raised.
	Coalesced uint64 `json:"coalesced"`
	Taken     uint64 `json:"taken"`
}

// New creates a lowered signal holding initial. The options configure the
// lock guarding the value.
func New[T any](initial T, opts ...shared.Option) *Signal[T] {
	return &Signal[T]{
		value: shared.New(initial, opts...),
		ready: make(chan struct{}, 1),
	}
}

// Publish stores v and raises the signal. The value is written before the
// signal is raised, so a woken consumer always sees v or something newer.
func (s *Signal[T]) Publish(ctx context.Context, v T) error {
	if err := s.value.Store(ctx, v); err != nil {
		return fmt.Errorf("publishing value: %w", err)
	}
	s.published.Add(1)

	select {
	case s.ready <- struct{}{}:
	default:
		s.coalesced.Add(1)
	}
	return nil
}

// WaitAndTake blocks until the signal is raised, lowers it and returns the
// current value. A context without deadline waits forever.
func (s *Signal[T]) WaitAndTake(ctx context.Context) (T, error) {
	var zero T

	select {
	case <-s.ready:
	case <-ctx.Done():
		return zero, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}

	// The lock wait must not fail just because ctx expired right after the
	// wake-up.
	v, err := s.value.Load(context.WithoutCancel(ctx))
	if err != nil {
		return zero, fmt.Errorf("reading value: %w", err)
	}
	s.taken.Add(1)
	return v, nil
}

// Pending reports whether the signal is currently raised.
func (s *Signal[T]) Pending() bool {
	return len(s.ready) > 0
}

// Name returns the name of the lock guarding the value.
func (s *Signal[T]) Name() string {
	return s.value.Name()
}

// Timeouts returns how many lock acquisitions on the value have failed.
func (s *Signal[T]) Timeouts() uint64 {
	return s.value.Timeouts()
}

// Stats returns the current counters.
func (s *Signal[T]) Stats() Stats {
	return Stats{
		Published: s.published.Load(),
		Coalesced: s.coalesced.Load(),
		Taken:     s.taken.Load(),
	}
}
