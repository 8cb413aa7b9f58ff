package refresh

import "errors"

// Sentinel kinds for refresh errors.
var (
	ErrStopTimeout = errors.New("refresh pool stop timed out")
)
