package handoff

import "errors"

// ErrTimeout is returned by WaitAndTake when the context ends before a value
// is published.
var ErrTimeout = errors.New("handoff: timed out waiting for signal")
