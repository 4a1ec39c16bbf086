package assettype

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/simaogato/investtrack-backend/internal/domain"
)

// CreateTypeInput represents the input for creating an investment type
type CreateTypeInput struct {
	Name  string
	Color string
}

// TypeService handles management of user-defined investment types
type TypeService struct {
	TypeRepo domain.InvestmentTypeRepository
}

// NewTypeService creates a new TypeService instance
func NewTypeService(typeRepo domain.InvestmentTypeRepository) *TypeService {
	return &TypeService{TypeRepo: typeRepo}
}

// Create adds a new investment type. The slug is derived from the name and
// must be unique.
func (s *TypeService) Create(ctx context.Context, input CreateTypeInput) (*domain.InvestmentType, error) {
	if input.Name == "" {
		return nil, domain.NewValidationError("investment type name cannot be empty")
	}

	slug := Slugify(input.Name)
	if _, err := s.TypeRepo.GetBySlug(ctx, slug); err == nil {
		return nil, domain.NewValidationError(fmt.Sprintf("investment type %q already exists", slug))
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	investmentType := &domain.InvestmentType{
		ID:    uuid.New(),
		Slug:  slug,
		Name:  input.Name,
		Color: input.Color,
	}
	if err := investmentType.Validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if err := s.TypeRepo.Create(ctx, investmentType); err != nil {
		return nil, fmt.Errorf("failed to create investment type: %w", err)
	}

	return investmentType, nil
}

// List retrieves all investment types
func (s *TypeService) List(ctx context.Context) ([]*domain.InvestmentType, error) {
	types, err := s.TypeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list investment types: %w", err)
	}
	return types, nil
}

// Delete removes an investment type. A type still referenced by any asset
// cannot be removed.
func (s *TypeService) Delete(ctx context.Context, id uuid.UUID) error {
	types, err := s.TypeRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list investment types: %w", err)
	}

	var target *domain.InvestmentType
	for _, t := range types {
		if t.ID == id {
			target = t
			break
		}
	}
	if target == nil {
		return fmt.Errorf("investment type %s: %w", id, domain.ErrNotFound)
	}

	inUse, err := s.TypeRepo.InUse(ctx, target.Slug)
	if err != nil {
		return fmt.Errorf("failed to check investment type usage: %w", err)
	}
	if inUse {
		return domain.NewValidationError(fmt.Sprintf("investment type %q is in use and cannot be removed", target.Slug))
	}

	if err := s.TypeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete investment type: %w", err)
	}
	return nil
}

// Slugify derives a stable identifier from a display name
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
