package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/disburse/internal/config"
	"github.com/alexanderramin/disburse/internal/domain"
	"github.com/alexanderramin/disburse/internal/service"
	"github.com/alexanderramin/disburse/internal/validation"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// App holds the services and settings used by CLI commands.
type App struct {
	Plans      service.PlanService
	Config     config.Config
	ConfigPath string
	Logger     *zap.Logger

	// Lang selects the message catalog; the --lang flag overrides it.
	Lang string

	// IsInteractive reports whether stdin is a terminal. Nil means no.
	IsInteractive func() bool
}

func (a *App) currency() domain.Currency {
	return a.Config.CurrencyInfo()
}

func (a *App) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// errPlanInvalid makes commands exit non-zero after printing the issues.
var errPlanInvalid = errors.New("plan is invalid")

// NewRootCmd creates the top-level "disburse" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	if app.Lang == "" {
		app.Lang = app.Config.General.Lang
	}

	root := &cobra.Command{
		Use:           "disburse",
		Short:         "Validate and manage sponsorship disbursement plans",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().Var(newLangValue(&app.Lang), "lang", "message language (en|vi)")
	// Read before the command tree is built; see VerboseRequested.
	root.PersistentFlags().BoolP("verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		newValidateCmd(app),
		newDraftCmd(app),
		newConfigCmd(app),
	)

	return root
}

// langValue restricts --lang to the languages that have a catalog.
type langValue struct {
	target *string
}

var _ pflag.Value = (*langValue)(nil)

func newLangValue(target *string) *langValue {
	return &langValue{target: target}
}

func (v *langValue) String() string {
	if v.target == nil {
		return ""
	}
	return *v.target
}

func (v *langValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, lang := range validation.Languages() {
		if s == lang {
			*v.target = s
			return nil
		}
	}
	return fmt.Errorf("unsupported language %q (want one of %s)", s, strings.Join(validation.Languages(), ", "))
}

func (v *langValue) Type() string { return "lang" }

// VerboseRequested reports whether args carry --verbose/-v. The logger is
// built before cobra parses the command line, so the flag is peeked here.
func VerboseRequested(args []string) bool {
	fs := pflag.NewFlagSet("peek", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	verbose := fs.BoolP("verbose", "v", false, "")
	// Known value flags are declared so their values are consumed the way
	// cobra consumes them.
	fs.String("lang", "", "")
	_ = fs.Parse(args)
	return *verbose
}
