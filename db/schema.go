package db

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS transcripts (
		id         BIGSERIAL PRIMARY KEY,
		ticker     TEXT NOT NULL,
		year       INTEGER NOT NULL,
		quarter    INTEGER NOT NULL,
		filename   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT transcripts_period_key UNIQUE (ticker, year, quarter)
	)`,
	`CREATE TABLE IF NOT EXISTS summaries (
		id         BIGSERIAL PRIMARY KEY,
		ticker     TEXT NOT NULL,
		year       INTEGER NOT NULL,
		quarter    INTEGER NOT NULL,
		filename   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT summaries_period_key UNIQUE (ticker, year, quarter)
	)`,
	`CREATE TABLE IF NOT EXISTS summary_sources (
		summary_id  BIGINT NOT NULL REFERENCES summaries(id),
		source_type TEXT NOT NULL,
		source_id   BIGINT NOT NULL,
		PRIMARY KEY (summary_id, source_type, source_id)
	)`,
}

// Migrate creates the pipeline tables when they do not exist yet.
func Migrate(ctx context.Context, conn *sql.DB) error {
	for i, stmt := range schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
