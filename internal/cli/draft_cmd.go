package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alexanderramin/disburse/internal/cli/formatter"
	"github.com/alexanderramin/disburse/internal/domain"
	"github.com/alexanderramin/disburse/internal/importer"
	"github.com/alexanderramin/disburse/internal/service"
	"github.com/alexanderramin/disburse/internal/validation"
	"github.com/spf13/cobra"
)

func newDraftCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Manage locally held plan drafts",
	}

	cmd.AddCommand(
		newDraftNewCmd(app),
		newDraftImportCmd(app),
		newDraftListCmd(app),
		newDraftShowCmd(app),
		newDraftCheckCmd(app),
		newDraftSubmitCmd(app),
		newDraftExportCmd(app),
		newDraftRemoveCmd(app),
	)

	return cmd
}

func newDraftImportCmd(app *App) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Save a plan file as a new draft",
		Long:  "Saves the plan even when it breaks rules, so it can be fixed later.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			res, err := app.Plans.ImportDraft(cmd.Context(), args[0], title)
			if err != nil {
				var inputErr *importer.InputError
				if errors.As(err, &inputErr) {
					fmt.Fprintln(out, formatter.FormatInputError(inputErr))
					return fmt.Errorf("%s: %d unreadable field(s)", args[0], len(inputErr.Problems))
				}
				return err
			}

			fmt.Fprintf(out, "Imported draft %s [%s] with %d stage(s)\n",
				res.Draft.Title, res.Draft.DisplayID(), len(res.Draft.Plan.Stages))
			fmt.Fprintln(out, formatter.FormatResult(validation.Localize(res.Result, app.Lang)))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "draft title (defaults to the file's title)")
	return cmd
}

func newDraftListCmd(app *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List drafts",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			drafts, err := app.Plans.ListDrafts(cmd.Context(), domain.DraftStatus(strings.ToLower(status)))
			if err != nil {
				return err
			}
			if len(drafts) == 0 {
				fmt.Fprintln(out, "No drafts found.")
				return nil
			}
			fmt.Fprintln(out, formatter.FormatDraftList(drafts, app.currency()))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (draft|submitted)")
	return cmd
}

func newDraftShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a draft with its stages and recent checks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := app.Plans.GetDraft(ctx, args[0])
			if err != nil {
				return err
			}
			history, err := app.Plans.History(ctx, d.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatDraftDetail(formatter.DraftDetail{
				Draft:   d,
				History: history,
			}, app.currency()))
			return nil
		},
	}
}

func newDraftCheckCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check ID",
		Short: "Validate a stored draft and record the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			res, err := app.Plans.RevalidateDraft(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			result := validation.Localize(res.Result, app.Lang)

			if asJSON {
				if err := writeJSON(out, jsonReport{Valid: result.Valid, Errors: result.Errors, DraftID: res.Draft.ID}); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "%s [%s]\n", formatter.Bold(res.Draft.Title), res.Draft.DisplayID())
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

func newDraftSubmitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "submit ID",
		Short: "Hand a valid draft to the platform backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			d, err := app.Plans.SubmitDraft(cmd.Context(), args[0])
			if err != nil {
				var verr *service.ValidationError
				if errors.As(err, &verr) {
					fmt.Fprintln(out, formatter.FormatResult(validation.Localize(verr.Result, app.Lang)))
					return errPlanInvalid
				}
				return err
			}
			fmt.Fprintf(out, "Submitted draft %s [%s] as %s\n", d.Title, d.DisplayID(), d.BackendRef)
			return nil
		},
	}
}

func newDraftExportCmd(app *App) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Write a draft back out as a plan file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app.Plans.GetDraft(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			f := importer.Format(strings.ToLower(format))
			if format == "" {
				f = importer.FormatJSON
				if output != "" {
					f = importer.FormatFromPath(output)
				}
			}
			if f != importer.FormatJSON && f != importer.FormatYAML {
				return fmt.Errorf("unsupported format %q (want json or yaml)", format)
			}

			pf := importer.FromDraft(d, d.CurrencyOr(app.currency()))
			if output == "" {
				return importer.EncodePlan(cmd.OutOrStdout(), pf, f)
			}

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := importer.EncodePlan(file, pf, f); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported draft %s to %s\n", d.DisplayID(), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "json or yaml (defaults from --output extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write instead of stdout")
	return cmd
}

func newDraftRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete a draft and its check history",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Plans.DeleteDraft(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed draft %s\n", args[0])
			return nil
		},
	}
}
