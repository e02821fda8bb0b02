package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/disburse/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// FormatDraftList renders drafts inside a bordered box.
func FormatDraftList(drafts []*domain.PlanDraft, cur domain.Currency) string {
	headers := []string{"ID", "TITLE", "CAMPAIGN", "TOTAL", "STAGES", "STATUS", "UPDATED"}
	rows := make([][]string, 0, len(drafts))

	for _, d := range drafts {
		campaign := d.Campaign
		if campaign == "" {
			campaign = Dim("--")
		}
		rows = append(rows, []string{
			TruncID(d.ID),
			Bold(d.Title),
			campaign,
			FormatAmount(d.Plan.TotalPlanned, currencyOf(d, cur)),
			strconv.Itoa(len(d.Plan.Stages)),
			DraftStatusPill(d.Status),
			HumanTimestamp(d.UpdatedAt),
		})
	}

	table := RenderAlignedTable(headers, rows,
		[]Alignment{AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight})
	return RenderBox("Drafts", table)
}

// DraftDetail is everything shown by "draft show".
type DraftDetail struct {
	Draft   *domain.PlanDraft
	History []*domain.ValidationRun
}

// FormatDraftDetail renders a draft's metadata, plan and check history.
func FormatDraftDetail(data DraftDetail, cur domain.Currency) string {
	d := data.Draft
	cur = currencyOf(d, cur)

	var meta strings.Builder
	fmt.Fprintf(&meta, "%s\n", Bold(d.Title))
	fmt.Fprintf(&meta, "%s %s\n", Dim("ID:      "), d.ID)
	if d.Campaign != "" {
		fmt.Fprintf(&meta, "%s %s\n", Dim("Campaign:"), d.Campaign)
	}
	fmt.Fprintf(&meta, "%s %s\n", Dim("Status:  "), DraftStatusPill(d.Status))
	if d.BackendRef != "" {
		fmt.Fprintf(&meta, "%s %s\n", Dim("Backend: "), d.BackendRef)
	}
	if d.SubmittedAt != nil {
		fmt.Fprintf(&meta, "%s %s\n", Dim("Sent:    "), d.SubmittedAt.Local().Format(time.RFC822))
	}
	fmt.Fprintf(&meta, "%s %s", Dim("Updated: "), HumanTimestamp(d.UpdatedAt))

	sections := []string{meta.String(), FormatPlan(&d.Plan, cur)}
	if len(data.History) > 0 {
		sections = append(sections, FormatHistory(data.History, 5))
	}
	return RenderBox("", lipgloss.JoinVertical(lipgloss.Left, joinWithBlank(sections)...))
}

// FormatHistory renders the most recent validation runs, newest first.
func FormatHistory(runs []*domain.ValidationRun, limit int) string {
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	var b strings.Builder
	b.WriteString(Header("Checks"))
	for _, r := range runs {
		verdict := VerdictBadge(r.Valid, r.IssueCount)
		line := fmt.Sprintf("\n%-12s %s", HumanTimestamp(r.CheckedAt), verdict)
		if len(r.Codes) > 0 {
			line += " " + Dim(strings.Join(r.Codes, ", "))
		}
		b.WriteString(line)
	}
	return b.String()
}

func currencyOf(d *domain.PlanDraft, fallback domain.Currency) domain.Currency {
	return d.CurrencyOr(fallback)
}

func joinWithBlank(sections []string) []string {
	out := make([]string, 0, len(sections)*2)
	for i, s := range sections {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, s)
	}
	return out
}
