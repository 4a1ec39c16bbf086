package snapshot

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investtrack-backend/internal/domain"
)

// Snapshot is the portfolio-wide state at one calendar date: total capital
// invested, total market value and total dividends received up to and
// including that date. Snapshots are pure projections over the event logs
// and are never stored.
type Snapshot struct {
	Date           time.Time
	TotalInvested  decimal.Decimal
	TotalValue     decimal.Decimal
	TotalDividends decimal.Decimal
}

// SkippedEvent is a non-fatal signal that reconstruction excluded an event.
// Skipped events are accumulated and returned alongside the snapshot sequence
// so partial results remain usable; they are never conflated with failures.
type SkippedEvent struct {
	AssetID uuid.UUID
	Reason  string
}

// Series is the result of a reconstruction: one snapshot per distinct date in
// strictly ascending order, plus any events that had to be excluded.
type Series struct {
	Snapshots []Snapshot
	Skipped   []SkippedEvent
}

// Reconstruct replays every asset's event log on a single merged date axis and
// emits one portfolio-wide snapshot per distinct date.
//
// The date axis is the set of distinct days on which any asset has an event.
// Between its own events an asset's last-known state carries forward: a price
// observed in January still values the asset in a March snapshot if nothing
// newer exists. Events sharing a date are applied in their log order (the
// append order of the event log), which is a deliberate, tested contract.
//
// The function is pure: it never mutates its input and the same input always
// yields the same output, so it is safe to call repeatedly or concurrently
// over read-only logs.
func Reconstruct(logs []domain.AssetEvents) Series {
	series := Series{}

	// Bucket each asset's events per day, preserving log order within a day,
	// and collect the merged date axis. Events without a usable date are
	// excluded from the axis entirely and reported.
	type assetState struct {
		id       uuid.UUID
		byDay    map[time.Time][]domain.Event
		position domain.Position
	}

	states := make([]*assetState, 0, len(logs))
	daySet := make(map[time.Time]struct{})

	for _, log := range logs {
		state := &assetState{id: log.AssetID, byDay: make(map[time.Time][]domain.Event)}
		for _, event := range log.Events {
			if event.When().IsZero() {
				series.Skipped = append(series.Skipped, SkippedEvent{
					AssetID: log.AssetID,
					Reason:  "event has no usable date",
				})
				continue
			}
			day := domain.Day(event.When())
			state.byDay[day] = append(state.byDay[day], event)
			daySet[day] = struct{}{}
		}
		states = append(states, state)
	}

	days := make([]time.Time, 0, len(daySet))
	for day := range daySet {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	// Walk the axis: apply every asset's events for the day, then total the
	// running states into one snapshot.
	for _, day := range days {
		for _, state := range states {
			for _, event := range state.byDay[day] {
				state.position = state.position.Apply(event)
			}
		}

		snap := Snapshot{
			Date:           day,
			TotalInvested:  decimal.Zero,
			TotalValue:     decimal.Zero,
			TotalDividends: decimal.Zero,
		}
		for _, state := range states {
			snap.TotalInvested = snap.TotalInvested.Add(state.position.TotalInvested)
			snap.TotalValue = snap.TotalValue.Add(state.position.Quantity.Mul(state.position.CurrentPrice))
			snap.TotalDividends = snap.TotalDividends.Add(state.position.CumulativeDividends)
		}
		series.Snapshots = append(series.Snapshots, snap)
	}

	return series
}
