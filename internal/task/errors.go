package task

import "errors"

// Domain errors for task sets.
var (
	// ErrDuplicateTask is returned by Add for a name already in the set.
	ErrDuplicateTask = errors.New("task: duplicate task name")

	// ErrInvalidSpec is returned by Add for a spec without name or loop.
	ErrInvalidSpec = errors.New("task: invalid spec")

	// ErrAlreadyRunning is returned by Add and Run once Run has started.
	ErrAlreadyRunning = errors.New("task: set already running")

	// ErrUnknownTask is returned by Status for a name not in the set.
	ErrUnknownTask = errors.New("task: unknown task")
)
