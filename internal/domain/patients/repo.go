package patients

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no patient matches the lookup.
	ErrNotFound = errors.New("patient not found")

	// ErrDuplicateIPNumber is returned when registering an IP number that
	// already exists.
	ErrDuplicateIPNumber = errors.New("ip number already registered")

	// ErrInvalidPatient is returned when a payload fails validation.
	ErrInvalidPatient = errors.New("invalid patient")
)

// Repository persists the patient registry.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByIPNumber(ctx context.Context, ipNumber string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error)
}
