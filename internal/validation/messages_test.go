package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allCodes = []Code{
	InvalidWindow, AmountMismatch, StageOutOfWindow,
	StageOutOfSequence, NonPositiveAmount, MissingDescription,
}

func TestCatalogs_CoverEveryCode(t *testing.T) {
	for _, lang := range Languages() {
		c := CatalogFor(lang)
		for _, code := range allCodes {
			_, ok := c[code]
			assert.True(t, ok, "%s catalog missing %s", lang, code)
		}
	}
}

func TestLocalize_KeepsCodesAndPaths(t *testing.T) {
	p := quarterPlan()
	p.Stages[0].Description = ""
	p.Stages[2].Amount = amt("2999999")
	en := Validate(p)

	vi := Localize(en, "vi")

	require.Len(t, vi.Errors, len(en.Errors))
	assert.Equal(t, en.Valid, vi.Valid)
	assert.Equal(t, en.Codes(), vi.Codes())
	for i := range en.Errors {
		assert.Equal(t, en.Errors[i].Path, vi.Errors[i].Path)
		assert.Equal(t, en.Errors[i].Params, vi.Errors[i].Params)
	}
	assert.Equal(t, "Tổng số tiền các đợt (8999999) phải bằng tổng số tiền kế hoạch (9000000)", vi.Errors[0].Message)
	assert.Equal(t, "Vui lòng nhập mô tả cho đợt 1", vi.Errors[1].Message)
}

func TestLocalize_DoesNotMutateInput(t *testing.T) {
	p := quarterPlan()
	p.Stages[0].Description = ""
	en := Validate(p)
	before := en.Errors[0].Message

	_ = Localize(en, "vi")
	assert.Equal(t, before, en.Errors[0].Message)
}

func TestCatalogFor_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, DefaultCatalog, CatalogFor("fr"))
	assert.Equal(t, CatalogFor("vi"), CatalogFor(" VI "))
}

func TestCatalog_RenderUnknownCode(t *testing.T) {
	assert.Equal(t, "Bogus", DefaultCatalog.Render(Code("Bogus"), nil))
}

func TestResult_ForPath(t *testing.T) {
	p := quarterPlan()
	p.Stages[1].Amount = amt("0")
	p.TotalPlanned = p.StageSum()

	r := Validate(p)

	assert.Len(t, r.ForPath(StagePath(1, "amount")), 1)
	assert.Empty(t, r.ForPath(StagePath(0, "amount")))
	assert.Empty(t, r.ForPath(PathWindowEnd))
}
