package catalog

import "errors"

var (
	// ErrNotFound is returned when a test id does not resolve to a row.
	ErrNotFound = errors.New("test not found")

	// ErrInvalidTest is returned when a test payload fails validation.
	ErrInvalidTest = errors.New("invalid test")

	// ErrInUse is returned when deleting a test that orders reference.
	ErrInUse = errors.New("test is referenced by orders")
)
