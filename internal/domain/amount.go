package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency describes how amounts are entered and displayed.
type Currency struct {
	Code        string
	MinorDigits int32
}

// CurrencyVND is the platform default: đồng has no minor unit in practice.
var CurrencyVND = Currency{Code: "VND", MinorDigits: 0}

// minorDigitsByCode holds ISO 4217 minor units for currencies plans are
// entered in.
var minorDigitsByCode = map[string]int32{
	"VND": 0, "KHR": 2, "LAK": 2, "THB": 2, "PHP": 2, "SGD": 2,
	"USD": 2, "EUR": 2, "GBP": 2, "AUD": 2, "JPY": 0, "KRW": 0,
}

// LookupCurrency returns the currency for an ISO code it knows.
func LookupCurrency(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	digits, ok := minorDigitsByCode[code]
	if !ok {
		return Currency{}, false
	}
	return Currency{Code: code, MinorDigits: digits}, true
}

// ParseAmount converts human-entered currency text into an exact decimal.
//
// Accepted grouping styles: "9,000,000", "9.000.000", "9 000 000" and
// "3,000,000.50" / "3.000.000,50". A lone separator followed by exactly
// three digits is read as grouping ("1.500" is fifteen hundred); any other
// lone separator is the decimal point. A leading '-' is kept so that the
// validator, not the parser, reports non-positive amounts.
func ParseAmount(s string, minorDigits int32) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("amount is required")
	}

	text := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '_':
			return -1
		}
		return r
	}, raw)

	negative := false
	if strings.HasPrefix(text, "-") {
		negative = true
		text = text[1:]
	}
	if text == "" {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}

	intPart, fracPart, err := splitAmount(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if int32(len(fracPart)) > minorDigits {
		return decimal.Zero, fmt.Errorf("invalid amount %q: at most %d decimal places allowed", raw, minorDigits)
	}

	canonical := intPart
	if fracPart != "" {
		canonical += "." + fracPart
	}
	if negative {
		canonical = "-" + canonical
	}
	d, err := decimal.NewFromString(canonical)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return d, nil
}

// splitAmount separates the integer digits (grouping removed) from the
// fractional digits.
func splitAmount(text string) (string, string, error) {
	lastComma := strings.LastIndex(text, ",")
	lastDot := strings.LastIndex(text, ".")

	var decimalSep byte
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			decimalSep = ','
		} else {
			decimalSep = '.'
		}
	case lastComma >= 0 || lastDot >= 0:
		sep := byte(',')
		idx := lastComma
		if lastDot >= 0 {
			sep, idx = '.', lastDot
		}
		if strings.Count(text, string(sep)) == 1 && len(text)-idx-1 != 3 {
			decimalSep = sep
		}
	}

	intText, fracText := text, ""
	if decimalSep != 0 {
		idx := strings.LastIndexByte(text, decimalSep)
		intText, fracText = text[:idx], text[idx+1:]
		if fracText == "" || !allDigits(fracText) {
			return "", "", fmt.Errorf("malformed decimal part")
		}
	}

	groupSep := byte(0)
	for i := 0; i < len(intText); i++ {
		c := intText[i]
		if c == ',' || c == '.' {
			if groupSep != 0 && groupSep != c {
				return "", "", fmt.Errorf("mixed grouping separators")
			}
			groupSep = c
		}
	}
	if groupSep == 0 {
		if intText == "" || !allDigits(intText) {
			return "", "", fmt.Errorf("not a number")
		}
		return intText, fracText, nil
	}

	groups := strings.Split(intText, string(groupSep))
	for i, g := range groups {
		if !allDigits(g) || g == "" {
			return "", "", fmt.Errorf("not a number")
		}
		if (i == 0 && len(g) > 3) || (i > 0 && len(g) != 3) {
			return "", "", fmt.Errorf("malformed digit grouping")
		}
		// "0.500" is a mistyped fraction, not five hundred.
		if i == 0 && g[0] == '0' {
			return "", "", fmt.Errorf("grouped amount cannot start with 0")
		}
	}
	return strings.Join(groups, ""), fracText, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MinorUnits returns a as an integer count of minor units (cents, xu, ...).
// It fails when a carries more precision than the currency allows.
func MinorUnits(a decimal.Decimal, minorDigits int32) (int64, error) {
	shifted := a.Shift(minorDigits)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", a.String(), minorDigits)
	}
	return shifted.IntPart(), nil
}

// FromMinorUnits is the inverse of MinorUnits.
func FromMinorUnits(units int64, minorDigits int32) decimal.Decimal {
	return decimal.New(units, -minorDigits)
}
