package backend

import (
	"github.com/alexanderramin/disburse/internal/domain"
)

// PlanSubmission is the JSON body accepted by POST /disbursement-plans.
// Amounts travel as decimal strings and dates as YYYY-MM-DD.
type PlanSubmission struct {
	DraftID             string         `json:"draftId"`
	Title               string         `json:"title"`
	Campaign            string         `json:"campaign,omitempty"`
	Currency            string         `json:"currency"`
	PlanningWindowStart string         `json:"planningWindowStart"`
	PlanningWindowEnd   string         `json:"planningWindowEnd"`
	TotalPlanned        string         `json:"totalPlanned"`
	Stages              []StagePayload `json:"stages"`
}

type StagePayload struct {
	StageNumber   int    `json:"stageNumber"`
	Amount        string `json:"amount"`
	ScheduledDate string `json:"scheduledDate"`
	Description   string `json:"description"`
}

// SubmissionReceipt is the backend's acknowledgement of a stored plan.
type SubmissionReceipt struct {
	Reference string `json:"id"`
	Status    string `json:"status"`
}

// NewSubmission builds the wire payload for a draft.
func NewSubmission(d *domain.PlanDraft) PlanSubmission {
	stages := make([]StagePayload, len(d.Plan.Stages))
	for i, s := range d.Plan.Stages {
		stages[i] = StagePayload{
			StageNumber:   s.Number,
			Amount:        s.Amount.String(),
			ScheduledDate: s.ScheduledDate.String(),
			Description:   s.Description,
		}
	}
	return PlanSubmission{
		DraftID:             d.ID,
		Title:               d.Title,
		Campaign:            d.Campaign,
		Currency:            d.Currency,
		PlanningWindowStart: d.Plan.WindowStart.String(),
		PlanningWindowEnd:   d.Plan.WindowEnd.String(),
		TotalPlanned:        d.Plan.TotalPlanned.String(),
		Stages:              stages,
	}
}
