package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is idempotent, so the
// whole list is replayed on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS plan_drafts (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		campaign      TEXT NOT NULL DEFAULT '',
		window_start  TEXT NOT NULL DEFAULT '',
		window_end    TEXT NOT NULL DEFAULT '',
		total_planned TEXT NOT NULL DEFAULT '0',
		status        TEXT NOT NULL DEFAULT 'draft'
		              CHECK(status IN ('draft','submitted')),
		backend_ref   TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL,
		submitted_at  TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_plan_drafts_status ON plan_drafts(status)`,

	// Stages are stored in the order supplied; position is that order and
	// is independent of stage_number.
	`CREATE TABLE IF NOT EXISTS draft_stages (
		draft_id       TEXT NOT NULL REFERENCES plan_drafts(id) ON DELETE CASCADE,
		position       INTEGER NOT NULL,
		stage_number   INTEGER NOT NULL,
		amount         TEXT NOT NULL,
		scheduled_date TEXT NOT NULL DEFAULT '',
		description    TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (draft_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS validation_runs (
		id          TEXT PRIMARY KEY,
		draft_id    TEXT NOT NULL REFERENCES plan_drafts(id) ON DELETE CASCADE,
		valid       INTEGER NOT NULL,
		issue_count INTEGER NOT NULL DEFAULT 0,
		codes       TEXT NOT NULL DEFAULT '',
		checked_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_validation_runs_draft ON validation_runs(draft_id, checked_at)`,

	// Currency the draft's amounts were entered in.
	`ALTER TABLE plan_drafts ADD COLUMN currency TEXT NOT NULL DEFAULT 'VND'`,
}
