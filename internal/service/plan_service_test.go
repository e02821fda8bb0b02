package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alexanderramin/disburse/internal/backend"
	"github.com/alexanderramin/disburse/internal/db"
	"github.com/alexanderramin/disburse/internal/domain"
	"github.com/alexanderramin/disburse/internal/importer"
	"github.com/alexanderramin/disburse/internal/repository"
	"github.com/alexanderramin/disburse/internal/testutil"
	"github.com/alexanderramin/disburse/internal/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	received []backend.PlanSubmission
	ref      string
	err      error
}

func (f *fakeSubmitter) SubmitPlan(_ context.Context, sub backend.PlanSubmission) (*backend.SubmissionReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, sub)
	if f.err != nil {
		return nil, f.err
	}
	return &backend.SubmissionReceipt{Reference: f.ref, Status: "pending_approval"}, nil
}

func newTestService(t *testing.T, submitter backend.PlanSubmitter) (PlanService, *sql.DB) {
	t.Helper()
	database := testutil.NewTestDB(t)
	svc := NewPlanService(
		repository.NewSQLiteDraftRepo(database),
		repository.NewSQLiteValidationRunRepo(database),
		testutil.NewTestUoW(database),
		domain.CurrencyVND,
		submitter,
	)
	return svc, database
}

func writePlanFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validPlanJSON = `{
  "title": "Lan, grade 4",
  "campaign": "Back to school",
  "window": {"start": "2024-01-01", "end": "2024-04-01"},
  "total": "9,000,000",
  "stages": [
    {"amount": "3,000,000", "date": "2024-01-15", "description": "Tuition"},
    {"amount": "3.000.000", "date": "2024-02-15", "description": "Uniform"},
    {"amount": "3 000 000", "date": "2024-03-15", "description": "Meals"}
  ]
}`

func TestPlanService_Validate(t *testing.T) {
	svc, _ := newTestService(t, nil)
	plan := testutil.NewTestPlan()

	result := svc.Validate(context.Background(), &plan)
	assert.True(t, result.Valid)
	assert.NotNil(t, result.Errors)
	assert.Empty(t, result.Errors)
}

func TestPlanService_ImportDraft(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	path := writePlanFile(t, "lan.json", validPlanJSON)

	out, err := svc.ImportDraft(ctx, path, "")
	require.NoError(t, err)
	assert.True(t, out.Result.Valid)
	assert.Equal(t, "Lan, grade 4", out.Draft.Title)
	assert.Equal(t, "Back to school", out.Draft.Campaign)
	assert.Equal(t, "VND", out.Draft.Currency)
	assert.Equal(t, domain.DraftOpen, out.Draft.Status)

	stored, err := svc.GetDraft(ctx, out.Draft.DisplayID())
	require.NoError(t, err)
	require.Len(t, stored.Plan.Stages, 3)
	assert.Equal(t, 2, stored.Plan.Stages[1].Number)
	assert.True(t, stored.Plan.TotalPlanned.Equal(decimal.NewFromInt(9_000_000)))

	runs, err := svc.History(ctx, out.Draft.ID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Valid)
}

func TestPlanService_ImportDraft_InvalidPlanIsStillSaved(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	path := writePlanFile(t, "short.yaml", `
window: {start: "2024-01-01", end: "2024-04-01"}
total: "9,000,000"
stages:
  - {amount: "3,000,000", date: "2024-01-15", description: Tuition}
  - {amount: "2,999,999", date: "2024-02-15", description: Books}
  - {amount: "3,000,000", date: "2024-03-15", description: Meals}
`)

	out, err := svc.ImportDraft(ctx, path, "  ")
	require.NoError(t, err)
	assert.False(t, out.Result.Valid)
	assert.Equal(t, []validation.Code{validation.AmountMismatch}, out.Result.Codes())
	assert.Equal(t, "short", out.Draft.Title, "falls back to the file name")

	runs, err := svc.History(ctx, out.Draft.ID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []string{"AmountMismatch"}, runs[0].Codes)
}

func TestPlanService_ImportDraft_InputErrors(t *testing.T) {
	svc, database := newTestService(t, nil)
	path := writePlanFile(t, "bad.json", `{
  "window": {"start": "2024-13-01", "end": "2024-04-01"},
  "total": "nine million",
  "stages": [{"amount": "3,000,000", "date": "2024-01-15", "description": "x"}]
}`)

	_, err := svc.ImportDraft(context.Background(), path, "bad")
	var inputErr *importer.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Len(t, inputErr.Problems, 2)

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM plan_drafts`).Scan(&n))
	assert.Zero(t, n)
}

func TestPlanService_SaveDraft_CreateThenUpdate(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	d := &domain.PlanDraft{Title: "Minh", Plan: testutil.NewTestPlan()}
	out, err := svc.SaveDraft(ctx, d)
	require.NoError(t, err)
	require.NotEmpty(t, d.ID)
	assert.True(t, out.Result.Valid)

	d.Plan.Stages[2].Description = "   "
	out, err = svc.SaveDraft(ctx, d)
	require.NoError(t, err)
	assert.False(t, out.Result.Valid)
	require.Len(t, out.Result.Errors, 1)
	assert.Equal(t, "stages[2].description", out.Result.Errors[0].Path)

	runs, err := svc.History(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.False(t, runs[0].Valid, "newest run first")
}

func TestPlanService_SaveDraft_RequiresTitle(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.SaveDraft(context.Background(), &domain.PlanDraft{Plan: testutil.NewTestPlan()})
	assert.Error(t, err)
}

func TestPlanService_SaveDraft_RollsBackOnStageFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	boom := errors.New("disk full")
	// Exec 1 is the draft row, exec 3 the second stage.
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 3, Err: boom}
	svc := NewPlanService(
		repository.NewSQLiteDraftRepo(database),
		repository.NewSQLiteValidationRunRepo(database),
		uow,
		domain.CurrencyVND,
		nil,
	)

	draft := &domain.PlanDraft{Title: "x", Plan: testutil.NewTestPlan()}
	_, err := svc.SaveDraft(context.Background(), draft)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(3), uow.Execs())

	// The caller's draft is untouched, so a retry creates it.
	assert.Empty(t, draft.ID)
	assert.True(t, draft.CreatedAt.IsZero())
	assert.Empty(t, draft.Status)

	for _, table := range []string{"plan_drafts", "draft_stages", "validation_runs"} {
		var n int
		require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Zero(t, n, table)
	}

	retry := NewPlanService(
		repository.NewSQLiteDraftRepo(database),
		repository.NewSQLiteValidationRunRepo(database),
		testutil.NewTestUoW(database),
		domain.CurrencyVND,
		nil,
	)
	out, err := retry.SaveDraft(context.Background(), draft)
	require.NoError(t, err)
	assert.NotEmpty(t, draft.ID)
	assert.Equal(t, draft.ID, out.Draft.ID)
	assert.Equal(t, domain.DraftOpen, draft.Status)
}

func TestPlanService_SubmitDraft(t *testing.T) {
	sub := &fakeSubmitter{ref: "plan-42"}
	svc, _ := newTestService(t, sub)
	ctx := context.Background()

	out, err := svc.SaveDraft(ctx, &domain.PlanDraft{Title: "Lan", Plan: testutil.NewTestPlan()})
	require.NoError(t, err)

	d, err := svc.SubmitDraft(ctx, out.Draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftSubmitted, d.Status)
	assert.Equal(t, "plan-42", d.BackendRef)
	require.NotNil(t, d.SubmittedAt)

	require.Len(t, sub.received, 1)
	assert.Equal(t, "9000000", sub.received[0].TotalPlanned)

	stored, err := svc.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftSubmitted, stored.Status)

	_, err = svc.SubmitDraft(ctx, d.ID)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	stored.Title = "edited"
	_, err = svc.SaveDraft(ctx, stored)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestPlanService_SubmitDraft_RefusesInvalidPlan(t *testing.T) {
	sub := &fakeSubmitter{ref: "never"}
	svc, _ := newTestService(t, sub)
	ctx := context.Background()

	plan := testutil.NewTestPlan(testutil.WithWindow("2024-04-01", "2024-01-01"))
	out, err := svc.SaveDraft(ctx, &domain.PlanDraft{Title: "backwards", Plan: plan})
	require.NoError(t, err)

	_, err = svc.SubmitDraft(ctx, out.Draft.ID)
	require.ErrorIs(t, err, ErrPlanInvalid)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Result.Has(validation.InvalidWindow))
	assert.Empty(t, sub.received)

	stored, err := svc.GetDraft(ctx, out.Draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftOpen, stored.Status)
}

func TestPlanService_SubmitDraft_BackendFailureKeepsDraftOpen(t *testing.T) {
	sub := &fakeSubmitter{err: backend.ErrUnavailable}
	svc, _ := newTestService(t, sub)
	ctx := context.Background()

	out, err := svc.SaveDraft(ctx, &domain.PlanDraft{Title: "Lan", Plan: testutil.NewTestPlan()})
	require.NoError(t, err)

	_, err = svc.SubmitDraft(ctx, out.Draft.ID)
	require.ErrorIs(t, err, backend.ErrUnavailable)

	stored, err := svc.GetDraft(ctx, out.Draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftOpen, stored.Status)
	assert.Empty(t, stored.BackendRef)
}

func TestPlanService_SubmitDraft_NotConfigured(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.SubmitDraft(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrSubmissionNotConfigured)
}

func TestPlanService_RevalidateDraft(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	out, err := svc.SaveDraft(ctx, &domain.PlanDraft{Title: "Lan", Plan: testutil.NewTestPlan()})
	require.NoError(t, err)

	again, err := svc.RevalidateDraft(ctx, out.Draft.DisplayID())
	require.NoError(t, err)
	assert.True(t, again.Result.Valid)

	runs, err := svc.History(ctx, out.Draft.ID)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestPlanService_ListAndDelete(t *testing.T) {
	svc, _ := newTestService(t, &fakeSubmitter{ref: "p-1"})
	ctx := context.Background()

	a, err := svc.SaveDraft(ctx, &domain.PlanDraft{Title: "a", Plan: testutil.NewTestPlan()})
	require.NoError(t, err)
	_, err = svc.SaveDraft(ctx, &domain.PlanDraft{Title: "b", Plan: testutil.NewTestPlan()})
	require.NoError(t, err)
	_, err = svc.SubmitDraft(ctx, a.Draft.ID)
	require.NoError(t, err)

	all, err := svc.ListDrafts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	open, err := svc.ListDrafts(ctx, domain.DraftOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "b", open[0].Title)

	_, err = svc.ListDrafts(ctx, "archived")
	assert.Error(t, err)

	require.NoError(t, svc.DeleteDraft(ctx, a.Draft.ID))
	_, err = svc.GetDraft(ctx, a.Draft.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

var _ db.UnitOfWork = (*testutil.FailOnNthExecUoW)(nil)
