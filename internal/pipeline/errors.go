package pipeline

import "errors"

// Domain errors for pipeline construction.
var (
	// ErrMissingDevice indicates a task was enabled without its peripheral.
	ErrMissingDevice = errors.New("pipeline: missing device")

	// ErrUnknownCommand is returned for control lines that are neither "+"
	// nor "-".
	ErrUnknownCommand = errors.New("pipeline: unknown control command")
)
