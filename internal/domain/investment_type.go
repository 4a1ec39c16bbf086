package domain

import (
	"errors"

	"github.com/google/uuid"
)

// InvestmentType is a user-managed label for grouping assets
// (e.g. stocks, REITs, fixed income)
type InvestmentType struct {
	ID    uuid.UUID
	Slug  string // stable identifier referenced by Asset.Type
	Name  string
	Color string // hex color used by dashboard charts
}

// Validate ensures the investment type adheres to domain rules
// Returns an error if validation fails
func (t *InvestmentType) Validate() error {
	if t.Slug == "" {
		return errors.New("investment type slug cannot be empty")
	}
	if t.Name == "" {
		return errors.New("investment type name cannot be empty")
	}
	return nil
}
