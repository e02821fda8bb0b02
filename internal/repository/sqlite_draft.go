package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/disburse/internal/db"
	"github.com/alexanderramin/disburse/internal/domain"
)

// SQLiteDraftRepo implements DraftRepo using a SQLite database.
type SQLiteDraftRepo struct {
	db db.DBTX
}

// NewSQLiteDraftRepo creates a new SQLiteDraftRepo.
func NewSQLiteDraftRepo(conn db.DBTX) *SQLiteDraftRepo {
	return &SQLiteDraftRepo{db: conn}
}

const draftColumns = `id, title, campaign, currency, window_start, window_end, total_planned,
	status, backend_ref, created_at, updated_at, submitted_at`

func (r *SQLiteDraftRepo) Create(ctx context.Context, d *domain.PlanDraft) error {
	query := `INSERT INTO plan_drafts (` + draftColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.Title,
		d.Campaign,
		d.Currency,
		dateToString(d.Plan.WindowStart),
		dateToString(d.Plan.WindowEnd),
		d.Plan.TotalPlanned.String(),
		string(d.Status),
		d.BackendRef,
		d.CreatedAt.UTC().Format(time.RFC3339),
		d.UpdatedAt.UTC().Format(time.RFC3339),
		nullableTimeToString(d.SubmittedAt, time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting draft: %w", err)
	}
	return r.insertStages(ctx, d.ID, d.Plan.Stages)
}

func (r *SQLiteDraftRepo) insertStages(ctx context.Context, draftID string, stages []domain.DisbursementStage) error {
	query := `INSERT INTO draft_stages (draft_id, position, stage_number, amount, scheduled_date, description)
		VALUES (?, ?, ?, ?, ?, ?)`
	for i, s := range stages {
		_, err := r.db.ExecContext(ctx, query,
			draftID, i, s.Number, s.Amount.String(), dateToString(s.ScheduledDate), s.Description)
		if err != nil {
			return fmt.Errorf("inserting stage %d: %w", i+1, err)
		}
	}
	return nil
}

func (r *SQLiteDraftRepo) GetByID(ctx context.Context, id string) (*domain.PlanDraft, error) {
	query := `SELECT ` + draftColumns + ` FROM plan_drafts WHERE id = ?`
	d, err := scanDraft(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("draft %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	if err := r.loadStages(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// GetByPrefix resolves a full ID or a unique ID prefix.
func (r *SQLiteDraftRepo) GetByPrefix(ctx context.Context, prefix string) (*domain.PlanDraft, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, fmt.Errorf("draft ID is required")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM plan_drafts WHERE id = ? OR substr(id, 1, ?) = ? LIMIT 3`,
		prefix, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("resolving draft prefix: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning draft id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating draft ids: %w", err)
	}

	for _, id := range ids {
		if id == prefix {
			return r.GetByID(ctx, id)
		}
	}
	switch len(ids) {
	case 0:
		return nil, fmt.Errorf("draft %q: %w", prefix, ErrNotFound)
	case 1:
		return r.GetByID(ctx, ids[0])
	default:
		return nil, fmt.Errorf("draft ID prefix %q: %w", prefix, ErrAmbiguousID)
	}
}

func (r *SQLiteDraftRepo) List(ctx context.Context, status domain.DraftStatus) ([]*domain.PlanDraft, error) {
	query := `SELECT ` + draftColumns + ` FROM plan_drafts`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}

	var drafts []*domain.PlanDraft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		drafts = append(drafts, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating drafts: %w", err)
	}

	// Stages are loaded after the draft cursor is closed; an in-memory
	// database has a single connection.
	for _, d := range drafts {
		if err := r.loadStages(ctx, d); err != nil {
			return nil, err
		}
	}
	return drafts, nil
}

func (r *SQLiteDraftRepo) Update(ctx context.Context, d *domain.PlanDraft) error {
	query := `UPDATE plan_drafts SET title = ?, campaign = ?, currency = ?, window_start = ?, window_end = ?,
		total_planned = ?, status = ?, backend_ref = ?, updated_at = ?, submitted_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		d.Title,
		d.Campaign,
		d.Currency,
		dateToString(d.Plan.WindowStart),
		dateToString(d.Plan.WindowEnd),
		d.Plan.TotalPlanned.String(),
		string(d.Status),
		d.BackendRef,
		d.UpdatedAt.UTC().Format(time.RFC3339),
		nullableTimeToString(d.SubmittedAt, time.RFC3339),
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("updating draft: %w", err)
	}
	if err := requireAffected(res, "draft", d.ID); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM draft_stages WHERE draft_id = ?`, d.ID); err != nil {
		return fmt.Errorf("clearing stages: %w", err)
	}
	return r.insertStages(ctx, d.ID, d.Plan.Stages)
}

func (r *SQLiteDraftRepo) MarkSubmitted(ctx context.Context, id, backendRef string, at time.Time) error {
	ts := at.UTC().Format(time.RFC3339)
	res, err := r.db.ExecContext(ctx,
		`UPDATE plan_drafts SET status = 'submitted', backend_ref = ?, submitted_at = ?, updated_at = ? WHERE id = ?`,
		backendRef, ts, ts, id)
	if err != nil {
		return fmt.Errorf("marking draft submitted: %w", err)
	}
	return requireAffected(res, "draft", id)
}

func (r *SQLiteDraftRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plan_drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	return requireAffected(res, "draft", id)
}

func (r *SQLiteDraftRepo) loadStages(ctx context.Context, d *domain.PlanDraft) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT stage_number, amount, scheduled_date, description
		FROM draft_stages WHERE draft_id = ? ORDER BY position`, d.ID)
	if err != nil {
		return fmt.Errorf("loading stages: %w", err)
	}
	defer rows.Close()

	stages := make([]domain.DisbursementStage, 0)
	for rows.Next() {
		var s domain.DisbursementStage
		var amountStr, dateStr string
		if err := rows.Scan(&s.Number, &amountStr, &dateStr, &s.Description); err != nil {
			return fmt.Errorf("scanning stage row: %w", err)
		}
		if s.Amount, err = parseStoredAmount(amountStr, "amount"); err != nil {
			return err
		}
		if s.ScheduledDate, err = parseStoredDate(dateStr, "scheduled_date"); err != nil {
			return err
		}
		stages = append(stages, s)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating stages: %w", err)
	}
	d.Plan.Stages = stages
	return nil
}

// scanDraft scans a plan_drafts row without its stages. sql.ErrNoRows is
// returned unwrapped so callers can map it to ErrNotFound.
func scanDraft(row scanner) (*domain.PlanDraft, error) {
	var d domain.PlanDraft
	var startStr, endStr, totalStr, statusStr, createdAtStr, updatedAtStr string
	var submittedAtStr sql.NullString

	err := row.Scan(
		&d.ID, &d.Title, &d.Campaign, &d.Currency,
		&startStr, &endStr, &totalStr,
		&statusStr, &d.BackendRef,
		&createdAtStr, &updatedAtStr, &submittedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning draft: %w", err)
	}

	d.Status = domain.DraftStatus(statusStr)
	if d.Plan.WindowStart, err = parseStoredDate(startStr, "window_start"); err != nil {
		return nil, err
	}
	if d.Plan.WindowEnd, err = parseStoredDate(endStr, "window_end"); err != nil {
		return nil, err
	}
	if d.Plan.TotalPlanned, err = parseStoredAmount(totalStr, "total_planned"); err != nil {
		return nil, err
	}
	if d.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if d.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	d.SubmittedAt = parseNullableTime(submittedAtStr, time.RFC3339)
	return &d, nil
}

func requireAffected(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}
