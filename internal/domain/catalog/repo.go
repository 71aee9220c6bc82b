package catalog

import "context"

// Repository persists the lab test catalog.
type Repository interface {
	Create(ctx context.Context, t *LabTest) error
	Get(ctx context.Context, id int64) (*LabTest, error)
	Update(ctx context.Context, t *LabTest) error
	Delete(ctx context.Context, id int64) error
	// List filters by section and privilege when non-zero; empty filters
	// return the whole catalog.
	List(ctx context.Context, section string, privilege int) ([]*LabTest, error)
	ListByComposite(ctx context.Context, compID int64) ([]*LabTest, error)
}
