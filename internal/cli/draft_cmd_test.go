package cli

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/disburse/internal/backend"
	"github.com/alexanderramin/disburse/internal/domain"
	"github.com/alexanderramin/disburse/internal/repository"
	"github.com/alexanderramin/disburse/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftImportCmd_SavesValidPlan(t *testing.T) {
	app := testApp(t)
	path := writePlanFile(t, "plan.json", validPlanJSON)

	out, err := executeCmd(t, app, "draft", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported draft Lan, grade 4")
	assert.Contains(t, out, "with 3 stage(s)")
	assert.Contains(t, out, "VALID")

	drafts, err := app.Plans.ListDrafts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Back to school", drafts[0].Campaign)
	assert.Equal(t, domain.DraftOpen, drafts[0].Status)
}

func TestDraftImportCmd_KeepsInvalidPlan(t *testing.T) {
	app := testApp(t)
	path := writePlanFile(t, "plan.json", mismatchPlanJSON)

	out, err := executeCmd(t, app, "draft", "import", "--title", "Minh (fix later)", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Minh (fix later)")
	assert.Contains(t, out, "INVALID (2 issues)")

	drafts, err := app.Plans.ListDrafts(context.Background(), domain.DraftOpen)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
}

func TestDraftImportCmd_UnreadableFileStoresNothing(t *testing.T) {
	app := testApp(t)
	path := writePlanFile(t, "plan.json", `{"title": "x", "window": {"start": "", "end": ""}, "total": "1", "stages": []}`)

	out, err := executeCmd(t, app, "draft", "import", path)
	require.Error(t, err)
	assert.Contains(t, out, "window.start is required")

	drafts, err := app.Plans.ListDrafts(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestDraftListCmd(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "draft", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No drafts found.")

	d := importDraft(t, app, validPlanJSON)

	out, err = executeCmd(t, app, "draft", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "Lan, grade 4")
	assert.Contains(t, out, d.ID[:8])

	out, err = executeCmd(t, app, "draft", "list", "--status", "submitted")
	require.NoError(t, err)
	assert.Contains(t, out, "No drafts found.")
}

func TestDraftShowCmd(t *testing.T) {
	app := testApp(t)
	d := importDraft(t, app, validPlanJSON)

	out, err := executeCmd(t, app, "draft", "show", d.ID[:8])
	require.NoError(t, err)
	assert.Contains(t, out, "Lan, grade 4")
	assert.Contains(t, out, "Uniform and books")
	assert.Contains(t, out, "Checks")
}

func TestDraftShowCmd_NotFound(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "draft", "show", "deadbeef")
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestDraftCheckCmd_RecordsRun(t *testing.T) {
	app := testApp(t)
	d := importDraft(t, app, validPlanJSON)

	out, err := executeCmd(t, app, "draft", "check", d.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "VALID")

	runs, err := app.Plans.History(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Len(t, runs, 2, "import and check each record a run")
}

func TestDraftCheckCmd_InvalidJSON(t *testing.T) {
	app := testApp(t)
	d := importDraft(t, app, mismatchPlanJSON)

	out, err := executeCmd(t, app, "draft", "check", "--json", d.ID)
	require.ErrorIs(t, err, errPlanInvalid)

	var report jsonReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, report.Valid)
	assert.Equal(t, d.ID, report.DraftID)
	assert.Len(t, report.Errors, 2)
}

func TestDraftSubmitCmd(t *testing.T) {
	sub := &recordingSubmitter{}
	app := testApp(t, withSubmitter(sub))
	d := importDraft(t, app, validPlanJSON)

	out, err := executeCmd(t, app, "draft", "submit", d.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "as plan-77")

	require.Len(t, sub.received, 1)
	assert.Equal(t, d.ID, sub.received[0].DraftID)
	assert.Len(t, sub.received[0].Stages, 3)

	got, err := app.Plans.GetDraft(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftSubmitted, got.Status)
	assert.Equal(t, "plan-77", got.BackendRef)
}

func TestDraftSubmitCmd_InvalidPlanNotSent(t *testing.T) {
	sub := &recordingSubmitter{}
	app := testApp(t, withSubmitter(sub))
	d := importDraft(t, app, mismatchPlanJSON)

	out, err := executeCmd(t, app, "draft", "submit", d.ID)
	require.ErrorIs(t, err, errPlanInvalid)
	assert.Contains(t, out, "AmountMismatch")
	assert.Empty(t, sub.received)
}

func TestDraftSubmitCmd_BackendFailureKeepsDraft(t *testing.T) {
	sub := &recordingSubmitter{err: backend.ErrUnavailable}
	app := testApp(t, withSubmitter(sub))
	d := importDraft(t, app, validPlanJSON)

	_, err := executeCmd(t, app, "draft", "submit", d.ID)
	require.ErrorIs(t, err, backend.ErrUnavailable)

	got, err := app.Plans.GetDraft(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftOpen, got.Status)
}

func TestDraftSubmitCmd_NotConfigured(t *testing.T) {
	app := testApp(t)
	d := importDraft(t, app, validPlanJSON)

	_, err := executeCmd(t, app, "draft", "submit", d.ID)
	require.ErrorIs(t, err, service.ErrSubmissionNotConfigured)
}

func TestDraftExportCmd_RoundTrips(t *testing.T) {
	app := testApp(t)
	d := importDraft(t, app, validPlanJSON)

	out, err := executeCmd(t, app, "draft", "export", d.ID)
	require.NoError(t, err)
	assert.Contains(t, out, `"total": "9000000"`)

	exported := writePlanFile(t, "exported.json", out)
	out, err = executeCmd(t, app, "validate", exported)
	require.NoError(t, err)
	assert.Contains(t, out, "VALID")
}

func TestDraftExportCmd_YAMLFile(t *testing.T) {
	app := testApp(t)
	d := importDraft(t, app, validPlanJSON)
	target := filepath.Join(t.TempDir(), "lan.yaml")

	out, err := executeCmd(t, app, "draft", "export", d.ID, "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported draft")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Lan, grade 4")
	assert.Contains(t, string(data), "description: Uniform and books")
}

func TestDraftExportCmd_UsesDraftCurrency(t *testing.T) {
	app := testApp(t)
	res, err := app.Plans.SaveDraft(context.Background(), &domain.PlanDraft{
		Title:    "Scholarship (USD)",
		Currency: "USD",
		Plan: domain.DisbursementPlan{
			WindowStart:  domain.MustParseDate("2024-01-01"),
			WindowEnd:    domain.MustParseDate("2024-04-01"),
			TotalPlanned: decimal.RequireFromString("100.50"),
			Stages: []domain.DisbursementStage{
				{Number: 1, Amount: decimal.RequireFromString("50.25"), ScheduledDate: domain.MustParseDate("2024-01-15"), Description: "Fees"},
				{Number: 2, Amount: decimal.RequireFromString("50.25"), ScheduledDate: domain.MustParseDate("2024-02-15"), Description: "Books"},
			},
		},
	})
	require.NoError(t, err)
	require.True(t, res.Result.Valid)
	id := res.Draft.ID

	out, err := executeCmd(t, app, "draft", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "100.50")

	out, err = executeCmd(t, app, "draft", "export", id)
	require.NoError(t, err)
	assert.Contains(t, out, `"total": "100.50"`)
	assert.Contains(t, out, `"amount": "50.25"`)

	exported := writePlanFile(t, "usd.json", out)
	app.Config.Currency.Code = "USD"
	app.Config.Currency.MinorDigits = 2
	out, err = executeCmd(t, app, "validate", exported)
	require.NoError(t, err)
	assert.Contains(t, out, "VALID")
	assert.NotContains(t, out, "INVALID")
}

func TestDraftExportCmd_UnknownFormat(t *testing.T) {
	app := testApp(t)
	d := importDraft(t, app, validPlanJSON)

	_, err := executeCmd(t, app, "draft", "export", d.ID, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestDraftRemoveCmd(t *testing.T) {
	app := testApp(t)
	d := importDraft(t, app, validPlanJSON)

	out, err := executeCmd(t, app, "draft", "rm", d.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed draft")

	_, err = app.Plans.GetDraft(context.Background(), d.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDraftNewCmd_RequiresTerminal(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "draft", "new")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}
