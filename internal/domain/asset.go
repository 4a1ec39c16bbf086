package domain

import (
	"errors"

	"github.com/google/uuid"
)

// Asset represents one investable holding in the domain layer.
// Identity for lookup is the (Name, Type) pair, which is unique in storage:
// two assets may share a name as long as their types differ.
type Asset struct {
	ID   uuid.UUID
	Name string
	Type string // slug of an InvestmentType, e.g. "stocks"
}

// Validate ensures the asset adheres to domain rules
// Returns an error if validation fails
func (a *Asset) Validate() error {
	if a.Name == "" {
		return errors.New("asset name cannot be empty")
	}
	if a.Type == "" {
		return errors.New("asset type cannot be empty")
	}
	return nil
}

// AssetEvents is one asset's full event log in replay order
// (ascending date, then insertion order within a date)
type AssetEvents struct {
	AssetID uuid.UUID
	Events  []Event
}
