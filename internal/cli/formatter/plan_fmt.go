package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/disburse/internal/domain"
)

// FormatPlan renders the planning window, totals and the stage table.
func FormatPlan(p *domain.DisbursementPlan, cur domain.Currency) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s → %s\n", Dim("Window:"), FormatDate(p.WindowStart), FormatDate(p.WindowEnd))
	fmt.Fprintf(&b, "%s   %s\n", Dim("Total:"), Bold(FormatMoney(p.TotalPlanned, cur)))

	sum := p.StageSum()
	sumText := FormatMoney(sum, cur)
	if sum.Equal(p.TotalPlanned) {
		sumText = StyleGreen.Render(sumText)
	} else {
		diff := p.TotalPlanned.Sub(sum)
		sumText = StyleRed.Render(sumText) + Dim(fmt.Sprintf(" (%s off)", FormatAmount(diff, cur)))
	}
	fmt.Fprintf(&b, "%s  %s\n", Dim("Stages:"), sumText)

	if len(p.Stages) == 0 {
		b.WriteString("\n" + Dim("No stages."))
		return b.String()
	}

	headers := []string{"#", "DATE", "AMOUNT", "DESCRIPTION"}
	rows := make([][]string, 0, len(p.Stages))
	for i, s := range p.Stages {
		number := s.Number
		if number == 0 {
			number = i + 1
		}
		desc := strings.TrimSpace(s.Description)
		if desc == "" {
			desc = Dim("(none)")
		}
		amount := FormatAmount(s.Amount, cur)
		if !s.Amount.IsPositive() {
			amount = StyleRed.Render(amount)
		}
		rows = append(rows, []string{strconv.Itoa(number), FormatDate(s.ScheduledDate), amount, desc})
	}

	b.WriteString("\n")
	b.WriteString(RenderAlignedTable(headers, rows, []Alignment{AlignRight, AlignLeft, AlignRight, AlignLeft}))
	return strings.TrimRight(b.String(), "\n")
}
