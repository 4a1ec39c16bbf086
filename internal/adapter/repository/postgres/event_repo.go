package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investtrack-backend/internal/domain"
)

// eventRepository implements domain.EventRepository.
// The event log is append-only: this repository only ever inserts rows, and
// the seq column fixes the replay order of events sharing a date.
type eventRepository struct {
	db *DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *DB) domain.EventRepository {
	return &eventRepository{db: db}
}

const insertEventQuery = `
	INSERT INTO investment_events (id, asset_id, event_type, date, quantity, unit_price, dividend_per_unit)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

const insertLedgerQuery = `
	INSERT INTO ledger_entries (id, asset_id, date, direction, amount, description)
	VALUES ($1, $2, $3, $4, $5, $6)
`

// Append appends an event to an asset's log
func (r *eventRepository) Append(ctx context.Context, assetID uuid.UUID, event domain.Event) error {
	row := eventRow{}
	row.fromEvent(event)

	_, err := r.db.ExecContext(ctx, insertEventQuery,
		uuid.New(),
		assetID,
		row.eventType,
		row.date,
		row.quantity,
		row.unitPrice,
		row.dividendPerUnit,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

// AppendWithLedger appends an event and records its cash-side ledger entry in
// a single database transaction, so the two sides cannot diverge
func (r *eventRepository) AppendWithLedger(ctx context.Context, assetID uuid.UUID, event domain.Event, entry *domain.LedgerEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid ledger entry: %w", err)
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	row := eventRow{}
	row.fromEvent(event)

	_, err = dbTx.ExecContext(ctx, insertEventQuery,
		uuid.New(),
		assetID,
		row.eventType,
		row.date,
		row.quantity,
		row.unitPrice,
		row.dividendPerUnit,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	_, err = dbTx.ExecContext(ctx, insertLedgerQuery,
		entry.ID,
		entry.AssetID,
		entry.Date,
		string(entry.Direction),
		entry.Amount.String(),
		entry.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByAsset retrieves an asset's full event log in replay order
func (r *eventRepository) ListByAsset(ctx context.Context, assetID uuid.UUID) ([]domain.Event, error) {
	query := `
		SELECT event_type, date, quantity, unit_price, dividend_per_unit
		FROM investment_events
		WHERE asset_id = $1
		ORDER BY date, seq
	`

	rows, err := r.db.QueryContext(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		var row eventRow
		if err := rows.Scan(&row.eventType, &row.date, &row.quantity, &row.unitPrice, &row.dividendPerUnit); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event, err := row.toEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, nil
}

// ListAll retrieves every asset's event log, each in replay order
func (r *eventRepository) ListAll(ctx context.Context) ([]domain.AssetEvents, error) {
	query := `
		SELECT asset_id, event_type, date, quantity, unit_price, dividend_per_unit
		FROM investment_events
		ORDER BY asset_id, date, seq
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	logs := make([]domain.AssetEvents, 0)
	for rows.Next() {
		var assetID uuid.UUID
		var row eventRow
		if err := rows.Scan(&assetID, &row.eventType, &row.date, &row.quantity, &row.unitPrice, &row.dividendPerUnit); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event, err := row.toEvent()
		if err != nil {
			return nil, err
		}

		if len(logs) == 0 || logs[len(logs)-1].AssetID != assetID {
			logs = append(logs, domain.AssetEvents{AssetID: assetID})
		}
		last := &logs[len(logs)-1]
		last.Events = append(last.Events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return logs, nil
}

// eventRow is the flat storage shape of an event; decimals are stored as
// strings, unused columns as "0"
type eventRow struct {
	eventType       string
	date            time.Time
	quantity        string
	unitPrice       string
	dividendPerUnit string
}

func (row *eventRow) fromEvent(event domain.Event) {
	switch e := event.(type) {
	case domain.Purchase:
		row.eventType = domain.EventTypePurchase
		row.date = e.Date
		row.quantity = e.Quantity.String()
		row.unitPrice = e.UnitPrice.String()
		row.dividendPerUnit = "0"
	case domain.Revaluation:
		row.eventType = domain.EventTypeRevaluation
		row.date = e.Date
		row.quantity = "0"
		row.unitPrice = e.UnitPrice.String()
		row.dividendPerUnit = e.DividendPerUnit.String()
	case domain.Sale:
		row.eventType = domain.EventTypeSale
		row.date = e.Date
		row.quantity = e.Quantity.String()
		row.unitPrice = e.UnitPrice.String()
		row.dividendPerUnit = "0"
	}
}

func (row *eventRow) toEvent() (domain.Event, error) {
	quantity, err := decimal.NewFromString(row.quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to parse quantity: %w", err)
	}
	unitPrice, err := decimal.NewFromString(row.unitPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to parse unit_price: %w", err)
	}
	dividendPerUnit, err := decimal.NewFromString(row.dividendPerUnit)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dividend_per_unit: %w", err)
	}

	date := domain.Day(row.date)

	switch row.eventType {
	case domain.EventTypePurchase:
		return domain.Purchase{Date: date, Quantity: quantity, UnitPrice: unitPrice}, nil
	case domain.EventTypeRevaluation:
		return domain.Revaluation{Date: date, UnitPrice: unitPrice, DividendPerUnit: dividendPerUnit}, nil
	case domain.EventTypeSale:
		return domain.Sale{Date: date, Quantity: quantity, UnitPrice: unitPrice}, nil
	}

	return nil, fmt.Errorf("unknown stored event type %q", row.eventType)
}
