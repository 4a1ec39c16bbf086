package postgres

import "fmt"

// schema defines the persisted layout. investment_events is append-only:
// rows are only ever inserted, and seq fixes the replay order of events
// sharing a date.
const schema = `
CREATE TABLE IF NOT EXISTS investment_types (
	id    UUID PRIMARY KEY,
	slug  TEXT NOT NULL UNIQUE,
	name  TEXT NOT NULL,
	color TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS assets (
	id   UUID PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	UNIQUE (name, type)
);

CREATE TABLE IF NOT EXISTS investment_events (
	seq               BIGSERIAL PRIMARY KEY,
	id                UUID NOT NULL,
	asset_id          UUID NOT NULL REFERENCES assets (id),
	event_type        TEXT NOT NULL,
	date              DATE NOT NULL,
	quantity          TEXT NOT NULL DEFAULT '0',
	unit_price        TEXT NOT NULL DEFAULT '0',
	dividend_per_unit TEXT NOT NULL DEFAULT '0'
);

CREATE INDEX IF NOT EXISTS idx_investment_events_asset_date
	ON investment_events (asset_id, date, seq);

CREATE TABLE IF NOT EXISTS ledger_entries (
	id          UUID PRIMARY KEY,
	asset_id    UUID NOT NULL REFERENCES assets (id),
	date        DATE NOT NULL,
	direction   TEXT NOT NULL,
	amount      TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);
`

// Migrate creates the schema if it does not exist yet
func (db *DB) Migrate() error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
