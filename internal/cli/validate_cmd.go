package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/alexanderramin/disburse/internal/cli/formatter"
	"github.com/alexanderramin/disburse/internal/importer"
	"github.com/alexanderramin/disburse/internal/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// jsonReport is the machine-readable output of validate and draft check.
// InputErrors is set instead of Errors when the file could not be read.
type jsonReport struct {
	Valid       bool               `json:"valid"`
	Errors      []validation.Issue `json:"errors"`
	InputErrors []string           `json:"inputErrors,omitempty"`
	DraftID     string             `json:"draftId,omitempty"`
}

func newValidateCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a plan file without saving it",
		Long: `Reads a JSON or YAML plan file and reports every rule the plan breaks.
Exits non-zero when the file is unreadable or the plan is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := args[0]

			pf, err := importer.LoadPlanFile(path)
			if err != nil {
				return fmt.Errorf("loading plan file: %w", err)
			}

			converted, err := importer.Convert(pf, app.currency())
			if err != nil {
				var inputErr *importer.InputError
				if !errors.As(err, &inputErr) {
					return err
				}
				if asJSON {
					if err := writeJSON(out, inputReport(inputErr)); err != nil {
						return err
					}
				} else {
					fmt.Fprintln(out, formatter.FormatInputError(inputErr))
				}
				return fmt.Errorf("%s: %d unreadable field(s)", path, len(inputErr.Problems))
			}

			result := validation.Localize(app.Plans.Validate(cmd.Context(), &converted.Plan), app.Lang)
			app.logger().Debug("validated plan file",
				zap.String("path", path),
				zap.Bool("valid", result.Valid),
				zap.Int("issues", len(result.Errors)))

			if asJSON {
				if err := writeJSON(out, jsonReport{Valid: result.Valid, Errors: result.Errors}); err != nil {
					return err
				}
			} else {
				if converted.Title != "" {
					fmt.Fprintln(out, formatter.Header(converted.Title))
				}
				fmt.Fprintln(out, formatter.FormatPlan(&converted.Plan, app.currency()))
				fmt.Fprintln(out)
				fmt.Fprintln(out, formatter.FormatResult(result))
			}

			if !result.Valid {
				return errPlanInvalid
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print {valid, errors} as JSON")
	return cmd
}

func inputReport(err *importer.InputError) jsonReport {
	problems := make([]string, 0, len(err.Problems))
	for _, p := range err.Problems {
		problems = append(problems, p.Error())
	}
	return jsonReport{Valid: false, Errors: []validation.Issue{}, InputErrors: problems}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
