package catalog

import (
	"context"
	"fmt"
)

// Service validates and serves the lab test catalog.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(t *LabTest) error {
	if t.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTest)
	}
	if !ValidPrivilege(t.Privilege) {
		return fmt.Errorf("%w: privilege must be between %d and %d", ErrInvalidTest, PrivilegeIntern, PrivilegeStaff)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, t *LabTest) error {
	if err := s.validate(t); err != nil {
		return err
	}
	if t.CompID != nil {
		if _, err := s.repo.Get(ctx, *t.CompID); err != nil {
			return fmt.Errorf("%w: composite parent %d", ErrInvalidTest, *t.CompID)
		}
	}
	return s.repo.Create(ctx, t)
}

func (s *Service) Get(ctx context.Context, id int64) (*LabTest, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, t *LabTest) error {
	if err := s.validate(t); err != nil {
		return err
	}
	if t.CompID != nil && *t.CompID == t.ID {
		return fmt.Errorf("%w: test cannot be its own composite parent", ErrInvalidTest)
	}
	return s.repo.Update(ctx, t)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// List returns catalog entries, optionally restricted to a section and to
// the privilege ceiling of the requesting role.
func (s *Service) List(ctx context.Context, section string, privilege int) ([]*LabTest, error) {
	return s.repo.List(ctx, section, privilege)
}

// Members returns the tests grouped under a composite panel.
func (s *Service) Members(ctx context.Context, compID int64) ([]*LabTest, error) {
	if _, err := s.repo.Get(ctx, compID); err != nil {
		return nil, err
	}
	return s.repo.ListByComposite(ctx, compID)
}
