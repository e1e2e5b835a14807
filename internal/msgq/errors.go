package msgq

import "errors"

// Domain errors for queue operations.
var (
	// ErrFull is returned by TryPut when the queue holds Cap items.
	ErrFull = errors.New("msgq: queue full")

	// ErrEmpty is returned by TryGet when no item is queued.
	ErrEmpty = errors.New("msgq: queue empty")

	// ErrTimeout is returned by Get when the context ends before an item
	// arrives.
	ErrTimeout = errors.New("msgq: timed out waiting for item")

	// ErrInvalidCapacity is returned by New for capacities below one.
	ErrInvalidCapacity = errors.New("msgq: capacity must be at least 1")
)
