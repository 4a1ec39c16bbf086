package domain

import (
	"context"

	"github.com/google/uuid"
)

// AssetRepository defines the interface for asset persistence operations
type AssetRepository interface {
	// GetByID retrieves an asset by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)

	// GetByNameAndType retrieves an asset by its (name, type) identity
	// Returns an error wrapping ErrNotFound if no such asset exists
	GetByNameAndType(ctx context.Context, name, assetType string) (*Asset, error)

	// Create creates a new asset
	Create(ctx context.Context, asset *Asset) error

	// List retrieves all assets
	List(ctx context.Context) ([]*Asset, error)
}

// EventRepository defines the interface for the append-only event log.
// Events are never updated or deleted; within a date, replay order is the
// order in which events were appended.
type EventRepository interface {
	// Append appends an event to an asset's log
	Append(ctx context.Context, assetID uuid.UUID, event Event) error

	// AppendWithLedger appends an event and records its cash-side ledger
	// entry in a single database transaction
	AppendWithLedger(ctx context.Context, assetID uuid.UUID, event Event, entry *LedgerEntry) error

	// ListByAsset retrieves an asset's full event log in replay order
	ListByAsset(ctx context.Context, assetID uuid.UUID) ([]Event, error)

	// ListAll retrieves every asset's event log, each in replay order
	ListAll(ctx context.Context) ([]AssetEvents, error)
}

// LedgerRepository defines the interface for cash-ledger persistence operations
type LedgerRepository interface {
	// List retrieves all ledger entries, most recent first
	List(ctx context.Context) ([]*LedgerEntry, error)

	// ListByAsset retrieves the ledger entries for one asset, most recent first
	ListByAsset(ctx context.Context, assetID uuid.UUID) ([]*LedgerEntry, error)
}

// InvestmentTypeRepository defines the interface for investment type persistence operations
type InvestmentTypeRepository interface {
	// GetBySlug retrieves an investment type by its slug
	// Returns an error wrapping ErrNotFound if no such type exists
	GetBySlug(ctx context.Context, slug string) (*InvestmentType, error)

	// Create creates a new investment type
	Create(ctx context.Context, investmentType *InvestmentType) error

	// List retrieves all investment types
	List(ctx context.Context) ([]*InvestmentType, error)

	// Delete removes an investment type by its ID
	Delete(ctx context.Context, id uuid.UUID) error

	// InUse reports whether any asset references the type with the given slug
	InUse(ctx context.Context, slug string) (bool, error)
}
