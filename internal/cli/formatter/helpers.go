package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/disburse/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// TruncID returns the first 8 characters of an ID.
func TruncID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatAmount groups the integer part with commas and keeps the exact
// fraction. The fraction is padded to the currency's minor digits but never
// rounded.
func FormatAmount(a decimal.Decimal, cur domain.Currency) string {
	abs := a.Abs()
	text := abs.String()
	if _, frac, _ := strings.Cut(text, "."); int32(len(frac)) < cur.MinorDigits {
		text = abs.StringFixed(cur.MinorDigits)
	}

	out := humanize.BigComma(abs.Truncate(0).BigInt())
	if _, frac, ok := strings.Cut(text, "."); ok {
		out += "." + frac
	}
	if a.IsNegative() {
		out = "-" + out
	}
	return out
}

// FormatMoney is FormatAmount followed by the currency code.
func FormatMoney(a decimal.Decimal, cur domain.Currency) string {
	return FormatAmount(a, cur) + " " + cur.Code
}

// FormatDate renders a calendar date, or a dim placeholder when unset.
func FormatDate(d domain.Date) string {
	if d.IsZero() {
		return Dim("--")
	}
	return d.String()
}

// HumanTimestamp returns a human-friendly relative timestamp string.
func HumanTimestamp(t time.Time) string {
	return HumanTimestampFrom(t, time.Now())
}

// HumanTimestampFrom is HumanTimestamp against a fixed reference time.
func HumanTimestampFrom(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < 0:
		return t.Local().Format("Jan 2, 2006 15:04")
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return t.Local().Format("Jan 2, 2006")
	}
}
