package validation

import "github.com/alexanderramin/disburse/internal/domain"

// Validator runs an ordered rule list over a plan and accumulates every
// issue. It holds no mutable state and may be shared between goroutines.
type Validator struct {
	rules []Rule
}

// New creates a Validator over the given rules, or DefaultRules when none
// are supplied.
func New(rules ...Rule) *Validator {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Validator{rules: append([]Rule(nil), rules...)}
}

var defaultValidator = New()

// Validate checks a plan against the default rules.
func Validate(plan *domain.DisbursementPlan) Result {
	return defaultValidator.Validate(plan)
}

// Validate runs every rule; no rule short-circuits another. A nil plan is
// checked as the zero plan.
func (v *Validator) Validate(plan *domain.DisbursementPlan) Result {
	if plan == nil {
		plan = &domain.DisbursementPlan{}
	}

	issues := make([]Issue, 0)
	for _, rule := range v.rules {
		issues = append(issues, rule.Check(plan)...)
	}

	return Result{
		Valid:  len(issues) == 0,
		Errors: issues,
	}
}

// Rules returns the rule names in evaluation order.
func (v *Validator) Rules() []string {
	names := make([]string, len(v.rules))
	for i, r := range v.rules {
		names[i] = r.Name
	}
	return names
}
