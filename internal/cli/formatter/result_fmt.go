package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/disburse/internal/importer"
	"github.com/alexanderramin/disburse/internal/validation"
)

// FormatResult renders a validation verdict followed by one line per issue.
func FormatResult(r validation.Result) string {
	var b strings.Builder
	b.WriteString(VerdictBadge(r.Valid, len(r.Errors)))
	for _, is := range r.Errors {
		fmt.Fprintf(&b, "\n  %s %s  %s\n    %s",
			StyleRed.Render("✖"),
			CodeBadge(is.Code),
			Dim(is.Path),
			is.Message)
	}
	return b.String()
}

// CodeBadge renders an issue code in a color keyed to its rule.
func CodeBadge(code validation.Code) string {
	switch code {
	case validation.InvalidWindow, validation.StageOutOfWindow:
		return StyleBlue.Render(string(code))
	case validation.AmountMismatch, validation.NonPositiveAmount:
		return StyleYellow.Render(string(code))
	case validation.StageOutOfSequence:
		return StylePurple.Render(string(code))
	default:
		return StyleBold.Render(string(code))
	}
}

// FormatInputError lists the fields of a plan file that could not be read.
func FormatInputError(err *importer.InputError) string {
	var b strings.Builder
	b.WriteString(StyleRed.Render(fmt.Sprintf("✖ UNREADABLE (%d field(s))", len(err.Problems))))
	for _, p := range err.Problems {
		fmt.Fprintf(&b, "\n  - %s", p.Error())
	}
	return b.String()
}
