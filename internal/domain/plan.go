package domain

import "github.com/shopspring/decimal"

// DisbursementPlan is a proposed payout schedule: a planning window, the
// amount the stages must add up to, and the stages in stage-number order.
type DisbursementPlan struct {
	WindowStart  Date
	WindowEnd    Date
	TotalPlanned decimal.Decimal
	Stages       []DisbursementStage
}

// DisbursementStage is one scheduled partial payout within a plan.
type DisbursementStage struct {
	Number        int
	Amount        decimal.Decimal
	ScheduledDate Date
	Description   string
}

// StageSum adds up every stage amount exactly.
func (p *DisbursementPlan) StageSum() decimal.Decimal {
	sum := decimal.Zero
	for _, s := range p.Stages {
		sum = sum.Add(s.Amount)
	}
	return sum
}

// Clone returns a deep copy; the stage slice is not shared.
func (p DisbursementPlan) Clone() DisbursementPlan {
	out := p
	out.Stages = append([]DisbursementStage(nil), p.Stages...)
	return out
}
