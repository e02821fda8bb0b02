package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/disburse/internal/db"
	"github.com/alexanderramin/disburse/internal/domain"
)

// SQLiteValidationRunRepo implements ValidationRunRepo using a SQLite database.
type SQLiteValidationRunRepo struct {
	db db.DBTX
}

// checkedAtLayout is fixed-width so that runs sort by text.
const checkedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

func NewSQLiteValidationRunRepo(conn db.DBTX) *SQLiteValidationRunRepo {
	return &SQLiteValidationRunRepo{db: conn}
}

func (r *SQLiteValidationRunRepo) Record(ctx context.Context, run *domain.ValidationRun) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO validation_runs (id, draft_id, valid, issue_count, codes, checked_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.DraftID,
		boolToInt(run.Valid),
		run.IssueCount,
		strings.Join(run.Codes, ","),
		run.CheckedAt.UTC().Format(checkedAtLayout),
	)
	if err != nil {
		return fmt.Errorf("recording validation run: %w", err)
	}
	return nil
}

func (r *SQLiteValidationRunRepo) ListByDraft(ctx context.Context, draftID string) ([]*domain.ValidationRun, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, draft_id, valid, issue_count, codes, checked_at
		FROM validation_runs WHERE draft_id = ? ORDER BY checked_at DESC, rowid DESC`, draftID)
	if err != nil {
		return nil, fmt.Errorf("listing validation runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.ValidationRun
	for rows.Next() {
		var run domain.ValidationRun
		var valid int
		var codes, checkedAt string
		if err := rows.Scan(&run.ID, &run.DraftID, &valid, &run.IssueCount, &codes, &checkedAt); err != nil {
			return nil, fmt.Errorf("scanning validation run: %w", err)
		}
		run.Valid = intToBool(valid)
		if codes != "" {
			run.Codes = strings.Split(codes, ",")
		}
		if run.CheckedAt, err = time.Parse(checkedAtLayout, checkedAt); err != nil {
			return nil, fmt.Errorf("parsing checked_at: %w", err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating validation runs: %w", err)
	}
	return runs, nil
}
