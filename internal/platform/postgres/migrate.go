package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// statements is the ordered schema DDL. Statements are idempotent so Migrate
// can run on every startup.
//
// The ownership graph is explicit: owners own vehicles and policies; policies
// own their accident and payment. ON DELETE CASCADE implements the cascading
// deletes along that graph. accidents.policy_id and payments.policy_id are
// UNIQUE, closing the check-then-insert race on the one-claim-per-policy and
// one-payment-per-policy rules at the store.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL DEFAULT '',
		first_name    TEXT NOT NULL DEFAULT '',
		last_name     TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS owners (
		id         UUID PRIMARY KEY,
		user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		full_name  TEXT NOT NULL,
		address    TEXT NOT NULL,
		phone      VARCHAR(15) NOT NULL,
		dob        DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS owners_user_idx ON owners (user_id)`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id             UUID PRIMARY KEY,
		user_id        UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		owner_id       UUID NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
		title          TEXT NOT NULL DEFAULT 'Unknown Vehicle',
		vehicle_number VARCHAR(20) NOT NULL UNIQUE,
		model_name     TEXT NOT NULL,
		model_year     INT NOT NULL,
		vehicle_type   VARCHAR(50) NOT NULL,
		vin            VARCHAR(17) NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS vehicles_owner_idx ON vehicles (owner_id)`,
	`CREATE TABLE IF NOT EXISTS policies (
		id            UUID PRIMARY KEY,
		user_id       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		owner_id      UUID NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
		vehicle_id    UUID NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		policy_number VARCHAR(100) NOT NULL UNIQUE,
		policy_type   VARCHAR(100) NOT NULL,
		start_date    DATE NOT NULL,
		end_date      DATE NOT NULL,
		premium       BIGINT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT policies_date_order CHECK (start_date <= end_date)
	)`,
	`CREATE INDEX IF NOT EXISTS policies_owner_idx ON policies (owner_id)`,
	`CREATE TABLE IF NOT EXISTS accidents (
		id               UUID PRIMARY KEY,
		policy_id        UUID NOT NULL UNIQUE REFERENCES policies(id) ON DELETE CASCADE,
		owner_id         UUID NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
		vehicle_id       UUID NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		date_of_accident DATE NOT NULL,
		location         TEXT NOT NULL,
		description      TEXT NOT NULL,
		policy_status    VARCHAR(20) NOT NULL,
		reported_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id             UUID PRIMARY KEY,
		user_id        UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		policy_id      UUID NOT NULL UNIQUE REFERENCES policies(id) ON DELETE CASCADE,
		accident_id    UUID REFERENCES accidents(id) ON DELETE CASCADE,
		owner_id       UUID NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
		vehicle_id     UUID NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		payment_ref    VARCHAR(20) NOT NULL UNIQUE,
		amount         BIGINT NOT NULL,
		payment_date   DATE NOT NULL,
		payment_method VARCHAR(50) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_events (
		id         UUID PRIMARY KEY,
		user_id    UUID,
		action     TEXT NOT NULL,
		subject    TEXT NOT NULL DEFAULT '',
		reason     TEXT NOT NULL DEFAULT '',
		request_id TEXT NOT NULL DEFAULT '',
		client_ip  TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS audit_events_user_idx ON audit_events (user_id, occurred_at)`,
}

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
