package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerDirection represents the cash-flow direction of a ledger entry
type LedgerDirection string

const (
	LedgerDebit  LedgerDirection = "DEBIT"  // cash out (purchase)
	LedgerCredit LedgerDirection = "CREDIT" // cash in (sale)
)

// LedgerEntry is the cash-side record written when an investment event with a
// cash effect is accepted. The entry and the event are persisted in the same
// database transaction, so cash-flow reporting can never diverge from
// investment accounting.
type LedgerEntry struct {
	ID          uuid.UUID
	AssetID     uuid.UUID
	Date        time.Time
	Direction   LedgerDirection
	Amount      decimal.Decimal // ABSOLUTE VALUE (always positive)
	Description string
}

// Validate ensures the ledger entry adheres to domain rules
// Returns an error if validation fails
func (e *LedgerEntry) Validate() error {
	if e.Direction != LedgerDebit && e.Direction != LedgerCredit {
		return errors.New("ledger entry direction must be DEBIT or CREDIT")
	}
	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("ledger entry amount must be positive (absolute value)")
	}
	return nil
}
