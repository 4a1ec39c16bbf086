package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investtrack-backend/internal/domain"
)

// ledgerRepository implements domain.LedgerRepository.
// Ledger entries are written by the event repository as part of the atomic
// append; this repository only reads them.
type ledgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *DB) domain.LedgerRepository {
	return &ledgerRepository{db: db}
}

// List retrieves all ledger entries, most recent first
func (r *ledgerRepository) List(ctx context.Context) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT id, asset_id, date, direction, amount, description
		FROM ledger_entries
		ORDER BY date DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	return scanLedgerEntries(rows)
}

// ListByAsset retrieves the ledger entries for one asset, most recent first
func (r *ledgerRepository) ListByAsset(ctx context.Context, assetID uuid.UUID) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT id, asset_id, date, direction, amount, description
		FROM ledger_entries
		WHERE asset_id = $1
		ORDER BY date DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	return scanLedgerEntries(rows)
}

type ledgerRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanLedgerEntries(rows ledgerRows) ([]*domain.LedgerEntry, error) {
	entries := make([]*domain.LedgerEntry, 0)
	for rows.Next() {
		var entry domain.LedgerEntry
		var direction, amountStr string

		if err := rows.Scan(&entry.ID, &entry.AssetID, &entry.Date, &direction, &amountStr, &entry.Description); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		entry.Amount = amount
		entry.Direction = domain.LedgerDirection(direction)
		entry.Date = domain.Day(entry.Date)

		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}
