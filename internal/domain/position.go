package domain

import (
	"github.com/shopspring/decimal"
)

// Position is one asset's accounting state, derived entirely from its event
// log. Positions are values: the Apply methods return a new Position and never
// mutate the receiver, so a replayed position can be recomputed on demand and
// holds no state of its own between calls.
//
// CurrentValue always reflects CurrentPrice (the latest market observation),
// never the purchase price directly: what you paid and what the market says
// it is worth are tracked independently.
type Position struct {
	Quantity            decimal.Decimal
	TotalInvested       decimal.Decimal
	AverageCost         decimal.Decimal
	CurrentPrice        decimal.Decimal
	CumulativeDividends decimal.Decimal
	RealizedGain        decimal.Decimal
	CurrentValue        decimal.Decimal

	// Events counts how many events have been folded into this position.
	// The first-ever event bootstraps CurrentPrice.
	Events int
}

// ApplyPurchase folds a purchase into the position: quantity and invested
// capital grow, the weighted-average cost is recomputed, and CurrentPrice is
// left untouched unless this is the position's first-ever event.
func (p Position) ApplyPurchase(e Purchase) Position {
	next := p
	next.Quantity = p.Quantity.Add(e.Quantity)
	next.TotalInvested = p.TotalInvested.Add(e.Quantity.Mul(e.UnitPrice))
	next.AverageCost = safeDiv(next.TotalInvested, next.Quantity)
	if p.Events == 0 {
		// Bootstrap: before any revaluation the only known price is the
		// first purchase price.
		next.CurrentPrice = e.UnitPrice
	}
	next.CurrentValue = next.Quantity.Mul(next.CurrentPrice)
	next.Events = p.Events + 1
	return next
}

// ApplyRevaluation folds a market observation into the position. Dividends
// accrue on the quantity held before the event: distributions are paid on
// units held, not on units acquired later.
func (p Position) ApplyRevaluation(e Revaluation) Position {
	next := p
	next.CurrentPrice = e.UnitPrice
	next.CumulativeDividends = p.CumulativeDividends.Add(e.DividendPerUnit.Mul(p.Quantity))
	next.CurrentValue = next.Quantity.Mul(next.CurrentPrice)
	next.Events = p.Events + 1
	return next
}

// ApplySale folds a disposal into the position. The cost basis is reduced at
// the weighted-average cost of the units sold; the difference between the sale
// price and the average cost is accumulated as realized gain. A sale is not a
// market observation, so CurrentPrice is unchanged.
func (p Position) ApplySale(e Sale) Position {
	next := p
	next.Quantity = p.Quantity.Sub(e.Quantity)

	costOfSold := p.AverageCost.Mul(e.Quantity)
	if next.Quantity.IsZero() {
		// Selling everything removes the whole basis exactly, avoiding
		// residue from the average-cost division.
		costOfSold = p.TotalInvested
	}
	next.TotalInvested = p.TotalInvested.Sub(costOfSold)
	next.AverageCost = safeDiv(next.TotalInvested, next.Quantity)
	next.RealizedGain = p.RealizedGain.Add(e.Quantity.Mul(e.UnitPrice.Sub(p.AverageCost)))
	next.CurrentValue = next.Quantity.Mul(next.CurrentPrice)
	next.Events = p.Events + 1
	return next
}

// Apply folds any event into the position
func (p Position) Apply(e Event) Position {
	switch ev := e.(type) {
	case Purchase:
		return p.ApplyPurchase(ev)
	case Revaluation:
		return p.ApplyRevaluation(ev)
	case Sale:
		return p.ApplySale(ev)
	}
	// Unreachable: Event is sealed
	return p
}

// ReplayPosition folds a chronological event log into a position, starting
// from the zero position. The fold assumes pre-validated events; validation
// happens at ingestion via EventRecord.Event and the service layer.
func ReplayPosition(events []Event) Position {
	position := Position{}
	for _, e := range events {
		position = position.Apply(e)
	}
	return position
}

// safeDiv divides a by b, defining division by zero as zero so that an empty
// position reports a zero average cost rather than NaN or infinity
func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}
