package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/disburse/internal/domain"
)

// ErrNotFound is returned (wrapped) when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrAmbiguousID is returned when an ID prefix matches more than one draft.
var ErrAmbiguousID = errors.New("ambiguous id prefix")

type DraftRepo interface {
	Create(ctx context.Context, d *domain.PlanDraft) error
	GetByID(ctx context.Context, id string) (*domain.PlanDraft, error)
	GetByPrefix(ctx context.Context, prefix string) (*domain.PlanDraft, error)
	// List returns drafts ordered by creation time. An empty status lists all.
	List(ctx context.Context, status domain.DraftStatus) ([]*domain.PlanDraft, error)
	// Update rewrites the draft row and replaces its stages. Callers that
	// need atomicity run it inside a UnitOfWork.
	Update(ctx context.Context, d *domain.PlanDraft) error
	MarkSubmitted(ctx context.Context, id, backendRef string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type ValidationRunRepo interface {
	Record(ctx context.Context, run *domain.ValidationRun) error
	// ListByDraft returns runs newest first.
	ListByDraft(ctx context.Context, draftID string) ([]*domain.ValidationRun, error)
}
