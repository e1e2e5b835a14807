package debounce

import "errors"

// ErrInvalidWindow is returned by New for a window that is not positive.
var ErrInvalidWindow = errors.New("debounce: window must be positive")
