package validation

import "fmt"

// Code identifies a violated plan rule. Codes and paths are the contract;
// message text is presentation.
type Code string

const (
	InvalidWindow      Code = "InvalidWindow"
	AmountMismatch     Code = "AmountMismatch"
	StageOutOfWindow   Code = "StageOutOfWindow"
	StageOutOfSequence Code = "StageOutOfSequence"
	NonPositiveAmount  Code = "NonPositiveAmount"
	MissingDescription Code = "MissingDescription"
)

// Field paths used by plan-level issues. Stage-level issues use
// stages[i].amount and stages[i].description.
const (
	PathWindowEnd = "planningWindowEnd"
	PathStages    = "stages"
)

// Issue is one field-scoped rule violation.
type Issue struct {
	Path    string   `json:"path"`
	Code    Code     `json:"code"`
	Message string   `json:"message"`
	Params  []string `json:"params,omitempty"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// Result is the verdict for one plan. Valid is true iff Errors is empty.
type Result struct {
	Valid  bool    `json:"valid"`
	Errors []Issue `json:"errors"`
}

// Has reports whether any issue carries the given code.
func (r Result) Has(code Code) bool {
	for _, is := range r.Errors {
		if is.Code == code {
			return true
		}
	}
	return false
}

// Codes lists issue codes in report order, duplicates included.
func (r Result) Codes() []Code {
	codes := make([]Code, 0, len(r.Errors))
	for _, is := range r.Errors {
		codes = append(codes, is.Code)
	}
	return codes
}

// ForPath returns the issues attached to a single field path, which is how
// a form layer maps the verdict onto individual inputs.
func (r Result) ForPath(path string) []Issue {
	var out []Issue
	for _, is := range r.Errors {
		if is.Path == path {
			out = append(out, is)
		}
	}
	return out
}

// StagePath builds the path of a field on the i-th stage.
func StagePath(i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", PathStages, i, field)
}
