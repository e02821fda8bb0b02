package service

import (
	"context"

	"github.com/alexanderramin/disburse/internal/domain"
	"github.com/alexanderramin/disburse/internal/validation"
)

// DraftResult pairs a stored draft with the outcome of its latest check.
type DraftResult struct {
	Draft  *domain.PlanDraft
	Result validation.Result
}

type PlanService interface {
	// Validate checks a plan without touching storage.
	Validate(ctx context.Context, plan *domain.DisbursementPlan) validation.Result

	// ImportDraft loads a plan file and stores it as a new draft, valid or
	// not. An empty title falls back to the file's title, then its name.
	ImportDraft(ctx context.Context, path, title string) (*DraftResult, error)

	// SaveDraft creates the draft when its ID is empty and updates it
	// otherwise. Every save records a validation run.
	SaveDraft(ctx context.Context, d *domain.PlanDraft) (*DraftResult, error)

	// GetDraft accepts a full ID or a unique prefix.
	GetDraft(ctx context.Context, id string) (*domain.PlanDraft, error)
	ListDrafts(ctx context.Context, status domain.DraftStatus) ([]*domain.PlanDraft, error)
	DeleteDraft(ctx context.Context, id string) error
	History(ctx context.Context, id string) ([]*domain.ValidationRun, error)

	RevalidateDraft(ctx context.Context, id string) (*DraftResult, error)
	SubmitDraft(ctx context.Context, id string) (*domain.PlanDraft, error)
}
