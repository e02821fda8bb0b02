package validation

import (
	"strconv"
	"strings"

	"github.com/alexanderramin/disburse/internal/domain"
)

// Rule is one independent predicate over a plan. Check returns the issues it
// finds, or nil. Rules never see each other's output.
type Rule struct {
	Name  string
	Check func(p *domain.DisbursementPlan) []Issue
}

// DefaultRules returns the plan rules in report order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "window_ordering", Check: checkWindowOrdering},
		{Name: "total_conservation", Check: checkTotalConservation},
		{Name: "stage_containment", Check: checkStageContainment},
		{Name: "stage_ordering", Check: checkStageOrdering},
		{Name: "stage_fields", Check: checkStageFields},
	}
}

func checkWindowOrdering(p *domain.DisbursementPlan) []Issue {
	if p.WindowEnd.After(p.WindowStart) {
		return nil
	}
	return []Issue{newIssue(PathWindowEnd, InvalidWindow, dateParam(p.WindowEnd), dateParam(p.WindowStart))}
}

func checkTotalConservation(p *domain.DisbursementPlan) []Issue {
	sum := p.StageSum()
	if sum.Equal(p.TotalPlanned) {
		return nil
	}
	return []Issue{newIssue(PathStages, AmountMismatch, sum.String(), p.TotalPlanned.String())}
}

func checkStageContainment(p *domain.DisbursementPlan) []Issue {
	var outside []string
	for i, s := range p.Stages {
		if !s.ScheduledDate.Within(p.WindowStart, p.WindowEnd) {
			outside = append(outside, stageLabel(i, s))
		}
	}
	if len(outside) == 0 {
		return nil
	}
	return []Issue{newIssue(PathStages, StageOutOfWindow,
		strings.Join(outside, ", "), dateParam(p.WindowStart), dateParam(p.WindowEnd))}
}

// checkStageOrdering compares stages in the order supplied; it does not sort.
func checkStageOrdering(p *domain.DisbursementPlan) []Issue {
	var late []string
	for i := 1; i < len(p.Stages); i++ {
		if !p.Stages[i].ScheduledDate.After(p.Stages[i-1].ScheduledDate) {
			late = append(late, stageLabel(i, p.Stages[i]))
		}
	}
	if len(late) == 0 {
		return nil
	}
	return []Issue{newIssue(PathStages, StageOutOfSequence, strings.Join(late, ", "))}
}

func checkStageFields(p *domain.DisbursementPlan) []Issue {
	var issues []Issue
	for i, s := range p.Stages {
		label := stageLabel(i, s)
		if !s.Amount.IsPositive() {
			issues = append(issues, newIssue(StagePath(i, "amount"), NonPositiveAmount, label))
		}
		if strings.TrimSpace(s.Description) == "" {
			issues = append(issues, newIssue(StagePath(i, "description"), MissingDescription, label))
		}
	}
	return issues
}

// stageLabel names a stage by its number, falling back to its position.
func stageLabel(i int, s domain.DisbursementStage) string {
	if s.Number > 0 {
		return strconv.Itoa(s.Number)
	}
	return strconv.Itoa(i + 1)
}

func dateParam(d domain.Date) string {
	if d.IsZero() {
		return "(unset)"
	}
	return d.String()
}

func newIssue(path string, code Code, params ...string) Issue {
	return Issue{
		Path:    path,
		Code:    code,
		Message: DefaultCatalog.Render(code, params),
		Params:  params,
	}
}
