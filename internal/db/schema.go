package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		email         VARCHAR(150) NOT NULL,
		password_hash VARCHAR(150) NOT NULL,
		first_name    VARCHAR(150) NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT users_email_uniq UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id      BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		data    VARCHAR(10000) NOT NULL,
		date    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS notes_user_id_idx ON notes (user_id, date)`,
}

// EnsureSchema creates the tables when they are missing. It never alters existing ones.
func EnsureSchema(ctx context.Context, db Execer) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}
