package shared

import "errors"

// Domain errors for guarded state.
var (
	// ErrLockTimeout is returned when the lock could not be acquired before
	// the context ended or the diagnostic deadlock timeout elapsed.
	ErrLockTimeout = errors.New("shared: lock timeout")
)
