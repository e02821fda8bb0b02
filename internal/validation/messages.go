package validation

import (
	"fmt"
	"strings"
)

// Catalog maps issue codes to message templates for one language. Templates
// take the issue's Params in order.
type Catalog map[Code]string

var catalogs = map[string]Catalog{
	"en": {
		InvalidWindow:      "planning window end %s must be after start %s",
		AmountMismatch:     "stage amounts add up to %s but the planned total is %s",
		StageOutOfWindow:   "stage(s) %s fall outside the planning window %s to %s",
		StageOutOfSequence: "stage dates must strictly increase; out of order: stage(s) %s",
		NonPositiveAmount:  "stage %s amount must be greater than zero",
		MissingDescription: "stage %s description is required",
	},
	"vi": {
		InvalidWindow:      "Ngày kết thúc %s phải sau ngày bắt đầu %s",
		AmountMismatch:     "Tổng số tiền các đợt (%s) phải bằng tổng số tiền kế hoạch (%s)",
		StageOutOfWindow:   "Đợt %s nằm ngoài thời gian kế hoạch từ %s đến %s",
		StageOutOfSequence: "Ngày giải ngân phải tăng dần; đợt sai thứ tự: %s",
		NonPositiveAmount:  "Số tiền đợt %s phải lớn hơn 0",
		MissingDescription: "Vui lòng nhập mô tả cho đợt %s",
	},
}

// DefaultCatalog is the English catalog.
var DefaultCatalog = catalogs["en"]

// Languages lists the supported message languages.
func Languages() []string {
	return []string{"en", "vi"}
}

// CatalogFor returns the catalog for lang, falling back to English.
func CatalogFor(lang string) Catalog {
	if c, ok := catalogs[strings.ToLower(strings.TrimSpace(lang))]; ok {
		return c
	}
	return DefaultCatalog
}

// Render fills the template for code with params. Unknown codes render as
// the code itself.
func (c Catalog) Render(code Code, params []string) string {
	tmpl, ok := c[code]
	if !ok {
		return string(code)
	}
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p
	}
	return fmt.Sprintf(tmpl, args...)
}

// Localize returns a copy of r with messages rendered in lang. Codes, paths
// and params are unchanged.
func Localize(r Result, lang string) Result {
	c := CatalogFor(lang)
	out := Result{Valid: r.Valid, Errors: make([]Issue, len(r.Errors))}
	for i, is := range r.Errors {
		is.Message = c.Render(is.Code, is.Params)
		out.Errors[i] = is
	}
	return out
}
