package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/disburse/internal/validation"
)

var (
	// ErrPlanInvalid is returned when an operation needs a valid plan. The
	// wrapping *ValidationError carries the full Result.
	ErrPlanInvalid = errors.New("disbursement plan is invalid")

	// ErrAlreadySubmitted is returned when a submitted draft is edited or
	// submitted again.
	ErrAlreadySubmitted = errors.New("draft already submitted")

	// ErrSubmissionNotConfigured is returned by SubmitDraft when no backend
	// is configured.
	ErrSubmissionNotConfigured = errors.New("plan submission is not configured (set backend.base_url)")
)

// ValidationError reports the issues that blocked an operation.
type ValidationError struct {
	Result validation.Result
}

func (e *ValidationError) Error() string {
	codes := make([]string, 0, len(e.Result.Errors))
	for _, c := range e.Result.Codes() {
		codes = append(codes, string(c))
	}
	return fmt.Sprintf("%v: %d issue(s) [%s]", ErrPlanInvalid, len(e.Result.Errors), strings.Join(codes, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrPlanInvalid }
