package importer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/disburse/internal/domain"
	"github.com/shopspring/decimal"
)

// ConvertedPlan is a plan file turned into domain values, plus the draft
// metadata that travelled with it.
type ConvertedPlan struct {
	Title    string
	Campaign string
	Plan     domain.DisbursementPlan
}

// Convert turns pf into a domain plan. Every unreadable field is reported at
// once in an *InputError; plan rules are not applied here. Stages come back
// ordered by stage number; stages without a number take their file position.
func Convert(pf *PlanFile, cur domain.Currency) (*ConvertedPlan, error) {
	r := &fieldReader{cur: cur}

	plan := domain.DisbursementPlan{
		WindowStart:  r.date("window.start", pf.Window.Start),
		WindowEnd:    r.date("window.end", pf.Window.End),
		TotalPlanned: r.amount("total", pf.Total),
		Stages:       make([]domain.DisbursementStage, 0, len(pf.Stages)),
	}

	seen := make(map[int]int)
	for i, s := range pf.Stages {
		prefix := fmt.Sprintf("stages[%d]", i)
		plan.Stages = append(plan.Stages, domain.DisbursementStage{
			Number:        r.stageNumber(prefix+".number", s.Number, i, seen),
			Amount:        r.amount(prefix+".amount", s.Amount),
			ScheduledDate: r.date(prefix+".date", s.Date),
			Description:   strings.TrimSpace(s.Description),
		})
	}

	if len(r.errs) > 0 {
		return nil, &InputError{Problems: r.errs}
	}

	// Date ordering is checked in stage-number order, not file order.
	sort.SliceStable(plan.Stages, func(i, j int) bool {
		return plan.Stages[i].Number < plan.Stages[j].Number
	})

	return &ConvertedPlan{
		Title:    strings.TrimSpace(pf.Title),
		Campaign: strings.TrimSpace(pf.Campaign),
		Plan:     plan,
	}, nil
}

// FromDraft renders a draft back into a plan file. Amounts are written with
// the currency's fixed number of decimal places and no grouping; an amount
// with more places than cur allows keeps them rather than being rounded.
func FromDraft(d *domain.PlanDraft, cur domain.Currency) *PlanFile {
	pf := &PlanFile{
		Title:    d.Title,
		Campaign: d.Campaign,
		Window: WindowImport{
			Start: d.Plan.WindowStart.String(),
			End:   d.Plan.WindowEnd.String(),
		},
		Total:  fixedAmount(d.Plan.TotalPlanned, cur),
		Stages: make([]StageImport, 0, len(d.Plan.Stages)),
	}
	for _, s := range d.Plan.Stages {
		number := s.Number
		pf.Stages = append(pf.Stages, StageImport{
			Number:      &number,
			Amount:      fixedAmount(s.Amount, cur),
			Date:        s.ScheduledDate.String(),
			Description: s.Description,
		})
	}
	return pf
}

func fixedAmount(a decimal.Decimal, cur domain.Currency) AmountText {
	places := cur.MinorDigits
	if exp := -a.Exponent(); exp > places {
		places = exp
	}
	return AmountText(a.StringFixed(places))
}
