package model

import "errors"

// Domain error kinds. Callers classify failures with errors.Is; the HTTP
// layer maps each kind to a status code.
var (
	// ErrValidation indicates a request that is structurally invalid.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition indicates a status change the result lifecycle
	// does not permit.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrForbidden indicates an authenticated caller lacking the capability
	// for the requested operation.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates an optimistic concurrency conflict that
	// persisted after retrying.
	ErrConflict = errors.New("concurrent update conflict")
)
