package patients

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

var validAgeUnits = map[string]bool{"y": true, "m": true, "d": true}

// Service validates and serves the patient registry.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(p *Patient) error {
	if p.IPNumber == "" {
		return fmt.Errorf("%w: ip_number is required", ErrInvalidPatient)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPatient)
	}
	if p.AgeUnit == "" {
		p.AgeUnit = "y"
	}
	if !validAgeUnits[p.AgeUnit] {
		return fmt.Errorf("%w: ageunit must be y, m, or d", ErrInvalidPatient)
	}
	if p.Sex != "" && p.Sex != "M" && p.Sex != "F" {
		return fmt.Errorf("%w: sex must be M or F", ErrInvalidPatient)
	}
	return nil
}

func (s *Service) Register(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// Lookup resolves a patient by hospital IP number, the key ward staff use
// when submitting orders.
func (s *Service) Lookup(ctx context.Context, ipNumber string) (*Patient, error) {
	return s.repo.GetByIPNumber(ctx, ipNumber)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.Search(ctx, query, limit, offset)
}
