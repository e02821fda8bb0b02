package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alexanderramin/disburse/internal/backend"
	"github.com/alexanderramin/disburse/internal/config"
	"github.com/alexanderramin/disburse/internal/domain"
	"github.com/alexanderramin/disburse/internal/repository"
	"github.com/alexanderramin/disburse/internal/service"
	"github.com/alexanderramin/disburse/internal/testutil"
	"github.com/stretchr/testify/require"
)

const validPlanJSON = `{
  "title": "Lan, grade 4",
  "campaign": "Back to school",
  "window": {"start": "2024-01-01", "end": "2024-04-01"},
  "total": "9,000,000",
  "stages": [
    {"amount": "3,000,000", "date": "2024-01-15", "description": "Tuition"},
    {"amount": "3,000,000", "date": "2024-02-15", "description": "Uniform and books"},
    {"amount": "3,000,000", "date": "2024-03-15", "description": "Meals"}
  ]
}`

const mismatchPlanJSON = `{
  "title": "Minh, grade 2",
  "window": {"start": "2024-01-01", "end": "2024-04-01"},
  "total": "9,000,000",
  "stages": [
    {"amount": "3,000,000", "date": "2024-01-15", "description": "Tuition"},
    {"amount": "2,999,999", "date": "2024-02-15", "description": ""}
  ]
}`

const validPlanYAML = `title: Hoa, grade 6
window:
  start: "2024-09-01"
  end: "2024-12-31"
total: 4.000.000
stages:
  - amount: 2.500.000
    date: "2024-09-05"
    description: Tuition
  - amount: 1.500.000
    date: "2024-10-05"
    description: Books
`

type recordingSubmitter struct {
	mu       sync.Mutex
	received []backend.PlanSubmission
	err      error
}

func (s *recordingSubmitter) SubmitPlan(_ context.Context, sub backend.PlanSubmission) (*backend.SubmissionReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, sub)
	if s.err != nil {
		return nil, s.err
	}
	return &backend.SubmissionReceipt{Reference: "plan-77", Status: "pending_approval"}, nil
}

type appOption func(*appSettings)

type appSettings struct {
	submitter backend.PlanSubmitter
}

func withSubmitter(s backend.PlanSubmitter) appOption {
	return func(a *appSettings) { a.submitter = s }
}

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T, opts ...appOption) *App {
	t.Helper()
	settings := &appSettings{}
	for _, opt := range opts {
		opt(settings)
	}

	database := testutil.NewTestDB(t)
	cfg := config.DefaultConfig()
	cfg.General.DBPath = ":memory:"

	return &App{
		Plans: service.NewPlanService(
			repository.NewSQLiteDraftRepo(database),
			repository.NewSQLiteValidationRunRepo(database),
			testutil.NewTestUoW(database),
			cfg.CurrencyInfo(),
			settings.submitter,
		),
		Config:     cfg,
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func writePlanFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// importDraft stores content as a draft and returns the stored draft.
func importDraft(t *testing.T, app *App, content string) *domain.PlanDraft {
	t.Helper()
	_, err := executeCmd(t, app, "draft", "import", writePlanFile(t, "plan.json", content))
	require.NoError(t, err)

	drafts, err := app.Plans.ListDrafts(context.Background(), "")
	require.NoError(t, err)
	require.NotEmpty(t, drafts)
	return drafts[len(drafts)-1]
}
