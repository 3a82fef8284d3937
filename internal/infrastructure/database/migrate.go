package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements is applied in order on startup. Every statement is
// idempotent so repeated boots against the same database are safe.
var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS chat`,

	`CREATE TABLE IF NOT EXISTS chat.app_user (
		id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		username   text NOT NULL UNIQUE,
		last_seen  timestamptz,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS chat.conversation (
		id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,

	// One row per direct-message pair, keyed by the normalized ordering of
	// the two user ids. The unique constraint is what guarantees a single
	// conversation per pair under concurrent initiation.
	`CREATE TABLE IF NOT EXISTS chat.conversation_pair (
		conversation_id uuid NOT NULL REFERENCES chat.conversation (id) ON DELETE CASCADE,
		user_low        uuid NOT NULL,
		user_high       uuid NOT NULL,
		CONSTRAINT conversation_pair_unique UNIQUE (user_low, user_high),
		CONSTRAINT conversation_pair_ordered CHECK (user_low < user_high)
	)`,

	`CREATE TABLE IF NOT EXISTS chat.participant (
		conversation_id uuid NOT NULL REFERENCES chat.conversation (id) ON DELETE CASCADE,
		user_id         uuid NOT NULL,
		role            smallint NOT NULL DEFAULT 0,
		joined_at       timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (conversation_id, user_id)
	)`,

	// seq breaks ties between messages sharing a created_at timestamp so
	// history paging is stable.
	`CREATE TABLE IF NOT EXISTS chat.message (
		id              uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		seq             bigint GENERATED ALWAYS AS IDENTITY,
		conversation_id uuid NOT NULL REFERENCES chat.conversation (id) ON DELETE CASCADE,
		author_id       uuid NOT NULL,
		content         text NOT NULL,
		created_at      timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS message_conversation_order
		ON chat.message (conversation_id, created_at, seq)`,

	`CREATE INDEX IF NOT EXISTS participant_user
		ON chat.participant (user_id)`,
}

// Migrate creates the chat schema and its tables if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: apply schema: %w", err)
		}
	}
	return nil
}
