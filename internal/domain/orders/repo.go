package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderRepository persists lab orders and owns the identifier sequence
// queries the generator depends on. Implementations must honor an ambient
// transaction carried in ctx.
type OrderRepository interface {
	// Create inserts the order row. The caller has already assigned
	// OrderID; a unique-constraint collision on it is reported as
	// ErrDuplicateOrderID so the creation loop can retry.
	Create(ctx context.Context, o *LabOrder) error

	// MaxOrderID returns the lexicographically greatest identifier with
	// the given prefix, or "" when the year has no orders yet. The result
	// is a heuristic only; Create's unique constraint is the guarantee.
	MaxOrderID(ctx context.Context, prefix string) (string, error)

	// OrderIDExists checks a candidate identifier before insert.
	OrderIDExists(ctx context.Context, orderID string) (bool, error)

	// SetTests attaches catalog tests to the order. Referencing an id the
	// catalog does not know is reported as ErrUnknownTest.
	SetTests(ctx context.Context, orderUID uuid.UUID, testIDs []int64) error

	GetByOrderID(ctx context.Context, orderID string) (*LabOrder, error)
	GetTestIDs(ctx context.Context, orderUID uuid.UUID) ([]int64, error)
	UpdateStatus(ctx context.Context, orderUID uuid.UUID, status string, allTests bool) error
	List(ctx context.Context, limit, offset int) ([]*LabOrder, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*LabOrder, int, error)
	Stats(ctx context.Context, dateFrom, dateTo *time.Time) (*Stats, error)
}

// TestStatusRepository persists per-(order,test) status rows.
type TestStatusRepository interface {
	// Upsert is a single atomic insert-or-update keyed on the unique
	// (order, test) pair. Never implemented as check-then-insert.
	Upsert(ctx context.Context, orderUID uuid.UUID, testID int64, status string) error

	ListByOrder(ctx context.Context, orderUID uuid.UUID) ([]*TestStatus, error)
}

// CommentRepository persists the append-only comment trail.
type CommentRepository interface {
	Create(ctx context.Context, c *LabComment) error
	// ListByOrder returns comments newest-first.
	ListByOrder(ctx context.Context, orderUID uuid.UUID) ([]*LabComment, error)
}
