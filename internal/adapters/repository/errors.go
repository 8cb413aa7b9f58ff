package repository

import "errors"

// Sentinel kinds for storage errors.
var (
	// ErrDuplicateSession reports a second result for a (user, session)
	// pair that already has one.
	ErrDuplicateSession = errors.New("result already recorded for session")
	// ErrUnsupportedDriver reports a database driver this store cannot open.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)
