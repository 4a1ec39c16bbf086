package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used across the API and storage.
// Time of day is not modeled; all event dates are normalized to UTC midnight.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO calendar date (YYYY-MM-DD) into a normalized day
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, NewValidationError(fmt.Sprintf("invalid date %q: must be YYYY-MM-DD", s))
	}
	return t, nil
}

// Day truncates a timestamp to its UTC calendar day
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Event is an immutable, dated fact about one asset. It is a sealed sum type:
// the only variants are Purchase, Revaluation and Sale, so folds over an
// event log can switch exhaustively.
// Events are append-only; corrections are recorded as new events, never as
// edits of existing ones.
type Event interface {
	// When returns the calendar day the event is dated at
	When() time.Time

	isEvent()
}

// Purchase records money spent to acquire units of an asset
type Purchase struct {
	Date      time.Time
	Quantity  decimal.Decimal // units acquired, > 0
	UnitPrice decimal.Decimal // price paid per unit, > 0
}

// When returns the purchase date
func (p Purchase) When() time.Time { return p.Date }

func (Purchase) isEvent() {}

// Revaluation records an observed market price for an asset and any
// per-unit distribution paid since the previous revaluation
type Revaluation struct {
	Date            time.Time
	UnitPrice       decimal.Decimal // observed market price per unit, >= 0
	DividendPerUnit decimal.Decimal // distribution per unit held, >= 0
}

// When returns the revaluation date
func (r Revaluation) When() time.Time { return r.Date }

func (Revaluation) isEvent() {}

// Sale records a disposal of units at a given price. Disposals reduce the
// cost basis at the position's weighted-average cost.
type Sale struct {
	Date      time.Time
	Quantity  decimal.Decimal // units sold, > 0 and <= units held
	UnitPrice decimal.Decimal // price received per unit, >= 0
}

// When returns the sale date
func (s Sale) When() time.Time { return s.Date }

func (Sale) isEvent() {}

// Event type tags used on the wire and in storage
const (
	EventTypePurchase    = "purchase"
	EventTypeRevaluation = "revaluation"
	EventTypeSale        = "sale"
)

// EventRecord is the flat inbound representation of an event: a tagged record
// with string-encoded date and decimal fields, as produced by the HTTP API and
// by exports of the legacy application. Event() converts it into the validated
// sum type; a record that fails conversion never reaches the accounting fold.
type EventRecord struct {
	Type            string `json:"type"`
	Date            string `json:"date"`
	Quantity        string `json:"quantity,omitempty"`
	UnitPrice       string `json:"unit_price,omitempty"`
	DividendPerUnit string `json:"dividend_per_unit,omitempty"`
}

// Event validates the record and returns the corresponding variant.
// The legacy export tags "compra" and "update" are accepted as aliases for
// purchase and revaluation respectively.
// Returns a *ValidationError if the record is malformed.
func (r EventRecord) Event() (Event, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	switch r.Type {
	case EventTypePurchase, "compra":
		quantity, err := parseAmount("quantity", r.Quantity)
		if err != nil {
			return nil, err
		}
		unitPrice, err := parseAmount("unit_price", r.UnitPrice)
		if err != nil {
			return nil, err
		}
		if quantity.LessThanOrEqual(decimal.Zero) {
			return nil, NewValidationError("purchase quantity must be positive")
		}
		if unitPrice.LessThanOrEqual(decimal.Zero) {
			return nil, NewValidationError("purchase unit price must be positive")
		}
		return Purchase{Date: date, Quantity: quantity, UnitPrice: unitPrice}, nil

	case EventTypeRevaluation, "update":
		unitPrice, err := parseAmount("unit_price", r.UnitPrice)
		if err != nil {
			return nil, err
		}
		dividend := decimal.Zero
		if r.DividendPerUnit != "" {
			dividend, err = parseAmount("dividend_per_unit", r.DividendPerUnit)
			if err != nil {
				return nil, err
			}
		}
		if unitPrice.IsNegative() {
			return nil, NewValidationError("revaluation unit price must not be negative")
		}
		if dividend.IsNegative() {
			return nil, NewValidationError("dividend per unit must not be negative")
		}
		return Revaluation{Date: date, UnitPrice: unitPrice, DividendPerUnit: dividend}, nil

	case EventTypeSale:
		quantity, err := parseAmount("quantity", r.Quantity)
		if err != nil {
			return nil, err
		}
		unitPrice, err := parseAmount("unit_price", r.UnitPrice)
		if err != nil {
			return nil, err
		}
		if quantity.LessThanOrEqual(decimal.Zero) {
			return nil, NewValidationError("sale quantity must be positive")
		}
		if unitPrice.IsNegative() {
			return nil, NewValidationError("sale unit price must not be negative")
		}
		return Sale{Date: date, Quantity: quantity, UnitPrice: unitPrice}, nil
	}

	return nil, NewValidationError(fmt.Sprintf("unknown event type %q", r.Type))
}

// Record converts a validated event back into its flat representation
func Record(e Event) EventRecord {
	switch ev := e.(type) {
	case Purchase:
		return EventRecord{
			Type:      EventTypePurchase,
			Date:      ev.Date.Format(DateLayout),
			Quantity:  ev.Quantity.String(),
			UnitPrice: ev.UnitPrice.String(),
		}
	case Revaluation:
		return EventRecord{
			Type:            EventTypeRevaluation,
			Date:            ev.Date.Format(DateLayout),
			UnitPrice:       ev.UnitPrice.String(),
			DividendPerUnit: ev.DividendPerUnit.String(),
		}
	case Sale:
		return EventRecord{
			Type:      EventTypeSale,
			Date:      ev.Date.Format(DateLayout),
			Quantity:  ev.Quantity.String(),
			UnitPrice: ev.UnitPrice.String(),
		}
	}
	// Unreachable: Event is sealed
	return EventRecord{}
}

// parseAmount parses a decimal field, rejecting empty and malformed values
func parseAmount(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, NewValidationError(fmt.Sprintf("%s is required", field))
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, NewValidationError(fmt.Sprintf("invalid %s %q: must be a decimal number", field, value))
	}
	return d, nil
}
