package orders

import "errors"

// Error taxonomy exposed to the request layer. Handlers map these onto HTTP
// status codes with errors.Is.
var (
	// ErrEmptyTestSet is returned when an order is created with no tests.
	ErrEmptyTestSet = errors.New("at least one test must be specified")

	// ErrInvalidStatus is returned when a status value is not one of the
	// six recognized statuses. Rejected before any write.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrUnknownTest is returned when a creation payload references a test
	// id that does not exist in the catalog.
	ErrUnknownTest = errors.New("unknown test id")

	// ErrNotFound is returned when an order id does not resolve to a row.
	ErrNotFound = errors.New("order not found")

	// ErrIDExhausted is returned when the identifier generator gives up:
	// either the retry ceiling was reached under contention or the yearly
	// sequence overflowed its six digits. The whole creation request may
	// be retried by the caller.
	ErrIDExhausted = errors.New("could not allocate order identifier")

	// ErrDuplicateOrderID signals that a concurrent committer won the race
	// for a candidate identifier. Internal to the creation retry loop.
	ErrDuplicateOrderID = errors.New("order identifier already taken")
)
