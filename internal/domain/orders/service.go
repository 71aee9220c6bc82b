package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labreq/labreq/internal/platform/db"
	"github.com/labreq/labreq/internal/platform/metrics"
)

// Service owns order creation (with identifier allocation) and the
// two-level status engine. Every mutating operation runs inside a single
// transaction: either the order write and all the TestStatus writes it
// triggers land together, or none do.
type Service struct {
	orders   OrderRepository
	statuses TestStatusRepository
	comments CommentRepository
	tx       db.TxRunner
	now      func() time.Time
}

func NewService(or OrderRepository, ts TestStatusRepository, cr CommentRepository, tx db.TxRunner) *Service {
	return &Service{orders: or, statuses: ts, comments: cr, tx: tx, now: time.Now}
}

// CreateWithTests persists a new order with the given catalog tests
// attached. The identifier is allocated inside the same transaction that
// inserts the row: read the year's current maximum, increment, insert, and
// retry the whole transaction when a concurrent committer takes the
// candidate first. The read is only a heuristic to avoid collisions; the
// unique constraint on order_id is the correctness guarantee.
//
// A non-pending initial status seeds a TestStatus row for every attached
// test. An optional comment is recorded in the same transaction, so a
// comment is never left behind by a failed creation.
func (s *Service) CreateWithTests(ctx context.Context, o *LabOrder, testIDs []int64, comment string) error {
	if len(testIDs) == 0 {
		return ErrEmptyTestSet
	}
	o.applyDefaults()
	if !ValidStatus(o.Status) {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, o.Status)
	}

	var lastErr error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrIDExhausted, err)
		}

		err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			prefix := yearPrefix(s.now())

			last, err := s.orders.MaxOrderID(txCtx, prefix)
			if err != nil {
				return err
			}
			candidate, err := nextOrderID(prefix, last)
			if err != nil {
				return err
			}

			taken, err := s.orders.OrderIDExists(txCtx, candidate)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%w: %s", ErrDuplicateOrderID, candidate)
			}

			o.OrderID = candidate
			if err := s.orders.Create(txCtx, o); err != nil {
				return err
			}
			if err := s.orders.SetTests(txCtx, o.ID, testIDs); err != nil {
				return err
			}
			if o.Status != StatusPending {
				for _, tid := range testIDs {
					if err := s.statuses.Upsert(txCtx, o.ID, tid, o.Status); err != nil {
						return err
					}
				}
			}
			if comment != "" {
				return s.comments.Create(txCtx, &LabComment{
					OrderUID: o.ID,
					OrderID:  o.OrderID,
					Comment:  comment,
					Username: o.Username,
					Role:     o.Role,
				})
			}
			return nil
		})
		if err == nil {
			o.TestIDs = testIDs
			return nil
		}

		// Validation problems and sequence overflow are terminal; a lost
		// identifier race or a failed transaction counts toward the
		// ceiling and is retried fresh.
		if errors.Is(err, ErrIDExhausted) || errors.Is(err, ErrUnknownTest) {
			return err
		}
		lastErr = err
		metrics.OrderIDRetries.Inc()
	}
	metrics.OrderIDExhausted.Inc()
	return fmt.Errorf("%w after %d attempts: %v", ErrIDExhausted, maxIDAttempts, lastErr)
}

// UpdateOverallStatus sets the order's status and propagates it to
// TestStatus rows according to the flags:
//
//   - applyToAll true: upsert every attached test to newStatus.
//   - applyToAll false with targetTestIDs: upsert only those tests; ids
//     not attached to the order are silently ignored.
//   - applyToAll false without targets: only the order status changes,
//     leaving per-test statuses free to diverge.
//
// Propagation treats pending like any other status when explicitly
// requested; existing TestStatus rows are never cleared implicitly.
// The optional comment joins the same transaction.
func (s *Service) UpdateOverallStatus(ctx context.Context, orderID, newStatus string, applyToAll bool, targetTestIDs []int64, comment, username, role string) (*LabOrder, error) {
	if !ValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, newStatus)
	}

	var updated *LabOrder
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		o, err := s.orders.GetByOrderID(txCtx, orderID)
		if err != nil {
			return err
		}

		if err := s.orders.UpdateStatus(txCtx, o.ID, newStatus, applyToAll); err != nil {
			return err
		}
		o.Status = newStatus
		o.AllTestsStatus = applyToAll

		attached, err := s.orders.GetTestIDs(txCtx, o.ID)
		if err != nil {
			return err
		}

		var targets []int64
		switch {
		case applyToAll:
			targets = attached
		case len(targetTestIDs) > 0:
			member := make(map[int64]bool, len(attached))
			for _, tid := range attached {
				member[tid] = true
			}
			for _, tid := range targetTestIDs {
				if member[tid] {
					targets = append(targets, tid)
				}
			}
		}
		for _, tid := range targets {
			if err := s.statuses.Upsert(txCtx, o.ID, tid, newStatus); err != nil {
				return err
			}
		}

		if comment != "" {
			if err := s.comments.Create(txCtx, &LabComment{
				OrderUID: o.ID,
				OrderID:  o.OrderID,
				Comment:  comment,
				Username: username,
				Role:     role,
			}); err != nil {
				return err
			}
		}

		o.TestIDs = attached
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Get returns the full order snapshot: row, attached test ids, per-test
// statuses, and comments newest-first.
func (s *Service) Get(ctx context.Context, orderID string) (*LabOrder, error) {
	o, err := s.orders.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.TestIDs, err = s.orders.GetTestIDs(ctx, o.ID); err != nil {
		return nil, err
	}
	if o.TestStatuses, err = s.statuses.ListByOrder(ctx, o.ID); err != nil {
		return nil, err
	}
	if o.Comments, err = s.comments.ListByOrder(ctx, o.ID); err != nil {
		return nil, err
	}
	for _, ts := range o.TestStatuses {
		ts.OrderID = o.OrderID
	}
	for _, c := range o.Comments {
		c.OrderID = o.OrderID
	}
	return o, nil
}

// ListTestStatuses returns one row per attached test that has ever
// received an explicit status.
func (s *Service) ListTestStatuses(ctx context.Context, orderID string) ([]*TestStatus, error) {
	o, err := s.orders.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	statuses, err := s.statuses.ListByOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	for _, ts := range statuses {
		ts.OrderID = o.OrderID
	}
	return statuses, nil
}

// AddComment appends one immutable comment to the order's trail.
func (s *Service) AddComment(ctx context.Context, orderID, body, username, role string) (*LabComment, error) {
	var c *LabComment
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		o, err := s.orders.GetByOrderID(txCtx, orderID)
		if err != nil {
			return err
		}
		c = &LabComment{
			OrderUID: o.ID,
			OrderID:  o.OrderID,
			Comment:  body,
			Username: username,
			Role:     role,
		}
		return s.comments.Create(txCtx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListComments returns the order's comments newest-first.
func (s *Service) ListComments(ctx context.Context, orderID string) ([]*LabComment, error) {
	o, err := s.orders.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		c.OrderID = o.OrderID
	}
	return comments, nil
}

// List returns orders newest-first with totals for pagination.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*LabOrder, int, error) {
	return s.orders.List(ctx, limit, offset)
}

// Search filters orders by the request-layer search parameters.
func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*LabOrder, int, error) {
	return s.orders.Search(ctx, params, limit, offset)
}

// GetStats returns aggregate counts, optionally bounded by creation date.
func (s *Service) GetStats(ctx context.Context, dateFrom, dateTo *time.Time) (*Stats, error) {
	return s.orders.Stats(ctx, dateFrom, dateTo)
}
