package domain

import (
	"strings"
	"time"
)

type DraftStatus string

const (
	DraftOpen      DraftStatus = "draft"
	DraftSubmitted DraftStatus = "submitted"
)

// ValidDraftStatuses is the canonical set of accepted draft status strings.
var ValidDraftStatuses = map[string]bool{
	"draft": true, "submitted": true,
}

// PlanDraft is a locally held working copy of a disbursement plan. Once
// submitted, the backend owns the durable record and BackendRef points at it.
type PlanDraft struct {
	ID          string
	Title       string
	Campaign    string
	Currency    string
	Plan        DisbursementPlan
	Status      DraftStatus
	BackendRef  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	SubmittedAt *time.Time
}

// DisplayID returns the first 8 characters of the draft ID.
func (d *PlanDraft) DisplayID() string {
	if len(d.ID) >= 8 {
		return d.ID[:8]
	}
	return d.ID
}

// CurrencyOr returns the currency the draft's amounts were entered in.
// configured is used when the draft names no currency or the same one. An
// unknown code keeps the configured digit count.
func (d *PlanDraft) CurrencyOr(configured Currency) Currency {
	if d.Currency == "" || strings.EqualFold(d.Currency, configured.Code) {
		return configured
	}
	if c, ok := LookupCurrency(d.Currency); ok {
		return c
	}
	return Currency{Code: d.Currency, MinorDigits: configured.MinorDigits}
}

// ValidationRun records one validation pass over a stored draft.
type ValidationRun struct {
	ID         string
	DraftID    string
	Valid      bool
	IssueCount int
	Codes      []string
	CheckedAt  time.Time
}
