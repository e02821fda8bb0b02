package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/disburse/internal/domain"
	"github.com/shopspring/decimal"
)

// InputError collects every field of a plan file that could not be read.
// These are input problems (unparseable text), distinct from plan rule
// violations, which are reported by the validation package.
type InputError struct {
	Problems []error
}

func (e *InputError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "plan file has %d problem(s):", len(e.Problems))
	for _, p := range e.Problems {
		b.WriteString("\n  - ")
		b.WriteString(p.Error())
	}
	return b.String()
}

// CheckPlanFile reports every field that cannot be converted into a plan.
// It does not apply plan rules.
func CheckPlanFile(pf *PlanFile, cur domain.Currency) []error {
	_, err := Convert(pf, cur)
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return inputErr.Problems
	}
	return nil
}

// fieldReader parses fields and remembers every failure with its path.
type fieldReader struct {
	cur  domain.Currency
	errs []error
}

func (r *fieldReader) date(field, value string) domain.Date {
	value = strings.TrimSpace(value)
	if value == "" {
		r.errs = append(r.errs, fmt.Errorf("%s is required", field))
		return domain.Date{}
	}
	d, err := domain.ParseDate(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", field, err))
	}
	return d
}

func (r *fieldReader) amount(field string, value AmountText) decimal.Decimal {
	d, err := domain.ParseAmount(string(value), r.cur.MinorDigits)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", field, err))
	}
	return d
}

// stageNumber resolves a stage's number, defaulting to its 1-based position.
// Defaulted numbers are tracked too, so an explicit number cannot reuse one.
func (r *fieldReader) stageNumber(field string, n *int, position int, seen map[int]int) int {
	number := position + 1
	if n != nil {
		number = *n
		if number <= 0 {
			r.errs = append(r.errs, fmt.Errorf("%s must be positive", field))
			return number
		}
	}
	if prev, dup := seen[number]; dup {
		if n == nil {
			r.errs = append(r.errs, fmt.Errorf("%s: stage number %d (from position) is already used by stages[%d]", field, number, prev))
		} else {
			r.errs = append(r.errs, fmt.Errorf("%s: duplicate stage number %d (also stages[%d])", field, number, prev))
		}
		return number
	}
	seen[number] = position
	return number
}
