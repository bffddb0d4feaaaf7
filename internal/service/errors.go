package service

import "errors"

// Sentinel errors surfaced by the audit and notification services. Handlers
// map them to HTTP statuses with errors.Is.
var (
	// ErrNotFound indicates the referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the requester does not own the row being mutated.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidArgument indicates a malformed filter or missing required field.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStoreUnavailable wraps read-side persistence failures.
	ErrStoreUnavailable = errors.New("store unavailable")
)
