package testutil

import (
	"time"

	"github.com/alexanderramin/disburse/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Plan options
type PlanOption func(*domain.DisbursementPlan)

func WithWindow(start, end string) PlanOption {
	return func(p *domain.DisbursementPlan) {
		p.WindowStart = domain.MustParseDate(start)
		p.WindowEnd = domain.MustParseDate(end)
	}
}

func WithTotal(total int64) PlanOption {
	return func(p *domain.DisbursementPlan) {
		p.TotalPlanned = decimal.NewFromInt(total)
	}
}

// WithStages replaces the stage list.
func WithStages(stages ...domain.DisbursementStage) PlanOption {
	return func(p *domain.DisbursementPlan) {
		p.Stages = stages
	}
}

// Stage builds a stage from literal values.
func Stage(number int, amount int64, date, description string) domain.DisbursementStage {
	s := domain.DisbursementStage{
		Number:      number,
		Amount:      decimal.NewFromInt(amount),
		Description: description,
	}
	if date != "" {
		s.ScheduledDate = domain.MustParseDate(date)
	}
	return s
}

// NewTestPlan returns a valid three-stage plan of 9,000,000 over the first
// quarter of 2024, then applies opts.
func NewTestPlan(opts ...PlanOption) domain.DisbursementPlan {
	p := domain.DisbursementPlan{
		WindowStart:  domain.MustParseDate("2024-01-01"),
		WindowEnd:    domain.MustParseDate("2024-04-01"),
		TotalPlanned: decimal.NewFromInt(9_000_000),
		Stages: []domain.DisbursementStage{
			Stage(1, 3_000_000, "2024-01-15", "Tuition"),
			Stage(2, 3_000_000, "2024-02-15", "Uniform and books"),
			Stage(3, 3_000_000, "2024-03-15", "Meals"),
		},
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Draft options
type DraftOption func(*domain.PlanDraft)

func WithPlan(p domain.DisbursementPlan) DraftOption {
	return func(d *domain.PlanDraft) {
		d.Plan = p
	}
}

func WithCampaign(c string) DraftOption {
	return func(d *domain.PlanDraft) {
		d.Campaign = c
	}
}

func WithDraftStatus(s domain.DraftStatus) DraftOption {
	return func(d *domain.PlanDraft) {
		d.Status = s
	}
}

func WithDraftID(id string) DraftOption {
	return func(d *domain.PlanDraft) {
		d.ID = id
	}
}

func WithCreatedAt(t time.Time) DraftOption {
	return func(d *domain.PlanDraft) {
		d.CreatedAt = t
		d.UpdatedAt = t
	}
}

func NewTestDraft(title string, opts ...DraftOption) *domain.PlanDraft {
	now := time.Now().UTC().Truncate(time.Second)
	d := &domain.PlanDraft{
		ID:        uuid.New().String(),
		Title:     title,
		Campaign:  "Back to school",
		Currency:  domain.CurrencyVND.Code,
		Plan:      NewTestPlan(),
		Status:    domain.DraftOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}
