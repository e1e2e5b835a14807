package msgq

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Queue is a bounded FIFO of T backed by a buffered channel.
//
// Thread Safety: all methods are safe for concurrent use by any number of
// producers and consumers.
type Queue[T any] struct {
	ch chan T

	puts  atomic.Uint64
	drops atomic.Uint64
	gets  atomic.Uint64
}

// Stats is a snapshot of queue counters.
type Stats struct {
	Puts     uint64 `json:"puts"`
	Drops    uint64 `json:"drops"`
	Gets     uint64 `json:"gets"`
	Len      int    `json:"len"`
	Capacity int    `json:"capacity"`
}

// New creates an empty queue holding at most capacity items.
func New[T any](capacity int) (*Queue[T], error) {
	// An unbuffered channel is a rendezvous, not a queue of size zero.
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	return &Queue[T]{ch: make(chan T, capacity)}, nil
}

// TryPut appends item without blocking. When the queue is full the item is
// not stored and ErrFull is returned.
func (q *Queue[T]) TryPut(item T) error {
	select {
	case q.ch <- item:
		q.puts.Add(1)
		return nil
	default:
		q.drops.Add(1)
		return ErrFull
	}
}

// TryGet removes the oldest item without blocking.
func (q *Queue[T]) TryGet() (T, error) {
	select {
	case item := <-q.ch:
		q.gets.Add(1)
		return item, nil
	default:
		var zero T
		return zero, ErrEmpty
	}
}

// Get removes the oldest item, waiting until one arrives or ctx ends.
// A context without deadline waits forever.
func (q *Queue[T]) Get(ctx context.Context) (T, error) {
	// Prefer a queued item over an already expired context.
	select {
	case item := <-q.ch:
		q.gets.Add(1)
		return item, nil
	default:
	}

	select {
	case item := <-q.ch:
		q.gets.Add(1)
		return item, nil
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
}

// Purge discards every queued item and returns how many were removed.
func (q *Queue[T]) Purge() int {
	n := 0
	for {
		select {
		case <-q.ch:
			n++
		default:
			return n
		}
	}
}

// Len returns the number of queued items at the time of the call.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the capacity given to New.
func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}

// Stats returns the current counters.
func (q *Queue[T]) Stats() Stats {
	return Stats{
		Puts:     q.puts.Load(),
		Drops:    q.drops.Load(),
		Gets:     q.gets.Load(),
		Len:      len(q.ch),
		Capacity: cap(q.ch),
	}
}
