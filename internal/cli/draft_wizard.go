package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alexanderramin/disburse/internal/cli/formatter"
	"github.com/alexanderramin/disburse/internal/domain"
	"github.com/alexanderramin/disburse/internal/importer"
	"github.com/alexanderramin/disburse/internal/validation"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const maxWizardStages = 24

// disburseHuhTheme returns a huh theme using the formatter palette.
func disburseHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().Foreground(formatter.ColorRed)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// wizardStage holds one stage exactly as typed.
type wizardStage struct {
	Amount      string
	Date        string
	Description string
}

// wizardInput holds everything the draft wizard collects, as typed.
type wizardInput struct {
	Title       string
	Campaign    string
	WindowStart string
	WindowEnd   string
	Total       string
	StageCount  string
	Stages      []wizardStage
}

// planFile turns the typed input into a plan file so the wizard shares the
// importer's parsing and error paths.
func (w *wizardInput) planFile() *importer.PlanFile {
	pf := &importer.PlanFile{
		Title:    w.Title,
		Campaign: w.Campaign,
		Window:   importer.WindowImport{Start: w.WindowStart, End: w.WindowEnd},
		Total:    importer.AmountText(w.Total),
		Stages:   make([]importer.StageImport, 0, len(w.Stages)),
	}
	for _, s := range w.Stages {
		pf.Stages = append(pf.Stages, importer.StageImport{
			Amount:      importer.AmountText(s.Amount),
			Date:        s.Date,
			Description: s.Description,
		})
	}
	return pf
}

// draft converts the input into an unsaved draft.
func (w *wizardInput) draft(cur domain.Currency) (*domain.PlanDraft, error) {
	converted, err := importer.Convert(w.planFile(), cur)
	if err != nil {
		return nil, err
	}
	return &domain.PlanDraft{
		Title:    converted.Title,
		Campaign: converted.Campaign,
		Currency: cur.Code,
		Plan:     converted.Plan,
	}, nil
}

func (w *wizardInput) stageCount() int {
	n, err := strconv.Atoi(strings.TrimSpace(w.StageCount))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func validateRequired(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func validateDate(s string) error {
	if _, err := domain.ParseDate(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}

func validateAmount(cur domain.Currency) func(string) error {
	return func(s string) error {
		_, err := domain.ParseAmount(s, cur.MinorDigits)
		return err
	}
}

func validateStageCount(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > maxWizardStages {
		return fmt.Errorf("enter a number from 1 to %d", maxWizardStages)
	}
	return nil
}

func wizardForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).
		WithTheme(disburseHuhTheme()).
		WithShowHelp(false).
		WithProgramOptions(tea.WithAltScreen())
}

// planHeaderForm collects the title, window, total and stage count.
func planHeaderForm(in *wizardInput, cur domain.Currency) *huh.Form {
	return wizardForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Placeholder("Lan, grade 4").
				Value(&in.Title).Validate(validateRequired("title")),
			huh.NewInput().Title("Campaign").Placeholder("Back to school 2024").
				Value(&in.Campaign),
			huh.NewInput().Title("Planning window start (YYYY-MM-DD)").Placeholder("2024-01-01").
				Value(&in.WindowStart).Validate(validateDate),
			huh.NewInput().Title("Planning window end (YYYY-MM-DD)").Placeholder("2024-04-01").
				Value(&in.WindowEnd).Validate(validateDate),
			huh.NewInput().Title(fmt.Sprintf("Total planned (%s)", cur.Code)).Placeholder("9,000,000").
				Value(&in.Total).Validate(validateAmount(cur)),
			huh.NewInput().Title("Number of stages").Placeholder("3").
				Value(&in.StageCount).Validate(validateStageCount),
		).Title("New disbursement plan"),
	)
}

// stagesForm has one group per stage; in.Stages is sized to the stage count.
func stagesForm(in *wizardInput, cur domain.Currency) *huh.Form {
	n := in.stageCount()
	in.Stages = make([]wizardStage, n)
	groups := make([]*huh.Group, 0, n)
	for i := range in.Stages {
		s := &in.Stages[i]
		groups = append(groups, huh.NewGroup(
			huh.NewInput().Title("Amount").Placeholder("3,000,000").
				Value(&s.Amount).Validate(validateAmount(cur)),
			huh.NewInput().Title("Scheduled date (YYYY-MM-DD)").
				Value(&s.Date).Validate(validateDate),
			huh.NewInput().Title("Description").Placeholder("Tuition").
				Value(&s.Description),
		).Title(fmt.Sprintf("Stage %d of %d", i+1, n)))
	}
	return wizardForm(groups...)
}

func saveConfirmForm(valid bool, save *bool) *huh.Form {
	title := "Save this draft?"
	if !valid {
		title = "The plan has issues. Save it as a draft anyway?"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(title).Affirmative("Save").Negative("Discard").Value(save),
		),
	).WithTheme(disburseHuhTheme()).WithShowHelp(false)
}

func newDraftNewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Enter a plan interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("draft new needs an interactive terminal (use 'draft import FILE' instead)")
			}
			return runDraftWizard(cmd.Context(), app, cmd.OutOrStdout())
		},
	}
}

func runDraftWizard(ctx context.Context, app *App, out io.Writer) error {
	cur := app.currency()
	in := &wizardInput{StageCount: "3"}

	if err := planHeaderForm(in, cur).RunWithContext(ctx); err != nil {
		return wizardErr(err)
	}
	if err := stagesForm(in, cur).RunWithContext(ctx); err != nil {
		return wizardErr(err)
	}

	d, err := in.draft(cur)
	if err != nil {
		return err
	}

	result := validation.Localize(app.Plans.Validate(ctx, &d.Plan), app.Lang)
	fmt.Fprintln(out, formatter.FormatPlan(&d.Plan, cur))
	fmt.Fprintln(out)
	fmt.Fprintln(out, formatter.FormatResult(result))

	save := result.Valid
	if err := saveConfirmForm(result.Valid, &save).RunWithContext(ctx); err != nil {
		return wizardErr(err)
	}
	if !save {
		fmt.Fprintln(out, "Draft discarded.")
		return nil
	}

	res, err := app.Plans.SaveDraft(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved draft %s [%s]\n", res.Draft.Title, res.Draft.DisplayID())
	return nil
}

func wizardErr(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return fmt.Errorf("draft wizard cancelled")
	}
	return err
}
