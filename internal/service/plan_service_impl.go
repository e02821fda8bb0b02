package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/disburse/internal/backend"
	"github.com/alexanderramin/disburse/internal/db"
	"github.com/alexanderramin/disburse/internal/domain"
	"github.com/alexanderramin/disburse/internal/importer"
	"github.com/alexanderramin/disburse/internal/repository"
	"github.com/alexanderramin/disburse/internal/validation"
	"github.com/google/uuid"
)

type planService struct {
	drafts    repository.DraftRepo
	runs      repository.ValidationRunRepo
	uow       db.UnitOfWork
	validator *validation.Validator
	submitter backend.PlanSubmitter
	currency  domain.Currency
	observer  UseCaseObserver
	now       func() time.Time
}

// NewPlanService wires the draft workflow. submitter may be nil, in which
// case SubmitDraft returns ErrSubmissionNotConfigured.
func NewPlanService(
	drafts repository.DraftRepo,
	runs repository.ValidationRunRepo,
	uow db.UnitOfWork,
	currency domain.Currency,
	submitter backend.PlanSubmitter,
	observers ...UseCaseObserver,
) PlanService {
	return &planService{
		drafts:    drafts,
		runs:      runs,
		uow:       uow,
		validator: validation.New(),
		submitter: submitter,
		currency:  currency,
		observer:  useCaseObserverOrNoop(observers),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *planService) observe(ctx context.Context, name string, startedAt time.Time, fields map[string]any, err error) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}

func (s *planService) Validate(ctx context.Context, plan *domain.DisbursementPlan) validation.Result {
	startedAt := time.Now()
	result := s.validator.Validate(plan)
	s.observe(ctx, "validate-plan", startedAt, resultFields(result), nil)
	return result
}

func (s *planService) ImportDraft(ctx context.Context, path, title string) (out *DraftResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"path": path}
	defer func() { s.observe(ctx, "import-draft", startedAt, fields, err) }()

	pf, err := importer.LoadPlanFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading plan file: %w", err)
	}
	converted, err := importer.Convert(pf, s.currency)
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = converted.Title
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	out, err = s.saveDraft(ctx, &domain.PlanDraft{
		Title:    title,
		Campaign: converted.Campaign,
		Plan:     converted.Plan,
	})
	if err != nil {
		return nil, err
	}
	fields["draft_id"] = out.Draft.ID
	fields["valid"] = out.Result.Valid
	return out, nil
}

func (s *planService) SaveDraft(ctx context.Context, d *domain.PlanDraft) (out *DraftResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"new": d.ID == ""}
	defer func() { s.observe(ctx, "save-draft", startedAt, fields, err) }()

	out, err = s.saveDraft(ctx, d)
	if err != nil {
		return nil, err
	}
	fields["draft_id"] = out.Draft.ID
	fields["valid"] = out.Result.Valid
	return out, nil
}

// saveDraft writes the draft row, its stages and a validation run in one
// transaction. d is only updated (ID, timestamps, status) once the
// transaction has committed.
func (s *planService) saveDraft(ctx context.Context, d *domain.PlanDraft) (*DraftResult, error) {
	stored := *d
	stored.Title = strings.TrimSpace(stored.Title)
	if stored.Title == "" {
		return nil, fmt.Errorf("draft title is required")
	}
	if stored.Currency == "" {
		stored.Currency = s.currency.Code
	}
	if stored.Status == "" {
		stored.Status = domain.DraftOpen
	}
	if stored.Plan.Stages == nil {
		stored.Plan.Stages = []domain.DisbursementStage{}
	}

	result := s.validator.Validate(&stored.Plan)
	now := s.now()

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txDrafts := repository.NewSQLiteDraftRepo(tx)
		txRuns := repository.NewSQLiteValidationRunRepo(tx)

		if stored.ID == "" {
			stored.ID = uuid.New().String()
			stored.CreatedAt = now
			stored.UpdatedAt = now
			if err := txDrafts.Create(ctx, &stored); err != nil {
				return err
			}
		} else {
			existing, err := txDrafts.GetByID(ctx, stored.ID)
			if err != nil {
				return err
			}
			if existing.Status == domain.DraftSubmitted {
				return fmt.Errorf("draft %s: %w", existing.DisplayID(), ErrAlreadySubmitted)
			}
			stored.Status = existing.Status
			stored.CreatedAt = existing.CreatedAt
			stored.UpdatedAt = now
			if err := txDrafts.Update(ctx, &stored); err != nil {
				return err
			}
		}
		return txRuns.Record(ctx, newRun(stored.ID, result, now))
	})
	if err != nil {
		return nil, fmt.Errorf("saving draft: %w", err)
	}

	*d = stored
	return &DraftResult{Draft: d, Result: result}, nil
}

func (s *planService) GetDraft(ctx context.Context, id string) (*domain.PlanDraft, error) {
	return s.drafts.GetByPrefix(ctx, id)
}

func (s *planService) ListDrafts(ctx context.Context, status domain.DraftStatus) ([]*domain.PlanDraft, error) {
	if status != "" && !domain.ValidDraftStatuses[string(status)] {
		return nil, fmt.Errorf("invalid draft status %q (want draft or submitted)", status)
	}
	return s.drafts.List(ctx, status)
}

func (s *planService) DeleteDraft(ctx context.Context, id string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"draft": id}
	defer func() { s.observe(ctx, "delete-draft", startedAt, fields, err) }()

	d, err := s.drafts.GetByPrefix(ctx, id)
	if err != nil {
		return err
	}
	fields["draft_id"] = d.ID
	return s.drafts.Delete(ctx, d.ID)
}

func (s *planService) History(ctx context.Context, id string) ([]*domain.ValidationRun, error) {
	d, err := s.drafts.GetByPrefix(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.runs.ListByDraft(ctx, d.ID)
}

func (s *planService) RevalidateDraft(ctx context.Context, id string) (out *DraftResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"draft": id}
	defer func() { s.observe(ctx, "revalidate-draft", startedAt, fields, err) }()

	d, err := s.drafts.GetByPrefix(ctx, id)
	if err != nil {
		return nil, err
	}
	result := s.validator.Validate(&d.Plan)
	if err := s.runs.Record(ctx, newRun(d.ID, result, s.now())); err != nil {
		return nil, err
	}
	for k, v := range resultFields(result) {
		fields[k] = v
	}
	return &DraftResult{Draft: d, Result: result}, nil
}

func (s *planService) SubmitDraft(ctx context.Context, id string) (d *domain.PlanDraft, err error) {
	startedAt := time.Now()
	fields := map[string]any{"draft": id}
	defer func() { s.observe(ctx, "submit-draft", startedAt, fields, err) }()

	if s.submitter == nil {
		return nil, ErrSubmissionNotConfigured
	}

	d, err = s.drafts.GetByPrefix(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status == domain.DraftSubmitted {
		return nil, fmt.Errorf("draft %s: %w", d.DisplayID(), ErrAlreadySubmitted)
	}

	result := s.validator.Validate(&d.Plan)
	if err := s.runs.Record(ctx, newRun(d.ID, result, s.now())); err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &ValidationError{Result: result}
	}

	receipt, err := s.submitter.SubmitPlan(ctx, backend.NewSubmission(d))
	if err != nil {
		return nil, fmt.Errorf("submitting plan: %w", err)
	}

	at := s.now()
	if err := s.drafts.MarkSubmitted(ctx, d.ID, receipt.Reference, at); err != nil {
		return nil, fmt.Errorf("plan stored as %s but local draft not updated: %w", receipt.Reference, err)
	}
	d.Status = domain.DraftSubmitted
	d.BackendRef = receipt.Reference
	d.SubmittedAt = &at
	d.UpdatedAt = at
	fields["reference"] = receipt.Reference
	return d, nil
}

func newRun(draftID string, result validation.Result, at time.Time) *domain.ValidationRun {
	codes := make([]string, 0, len(result.Errors))
	for _, c := range result.Codes() {
		codes = append(codes, string(c))
	}
	return &domain.ValidationRun{
		ID:         uuid.New().String(),
		DraftID:    draftID,
		Valid:      result.Valid,
		IssueCount: len(result.Errors),
		Codes:      codes,
		CheckedAt:  at,
	}
}

func resultFields(r validation.Result) map[string]any {
	return map[string]any{
		"valid":       r.Valid,
		"issue_count": len(r.Errors),
	}
}
