package document_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/checkpress/binding"
	"github.com/ByLCY/checkpress/document"
	"github.com/ByLCY/checkpress/layout"
)

func sampleCheck(payee string) *layout.CheckData {
	return &layout.CheckData{
		Date:         "2024-03-05",
		Payee:        payee,
		Amount:       "1234.56",
		ExternalMemo: "Invoice 7781",
		InternalMemo: "GL 6100",
		Address:      "1 Main St\nSpringfield",
		CheckNumber:  "1042",
		LineItems: []layout.LineItem{
			{Description: "Consulting", Amount: "1000"},
			{Description: "Travel", Amount: "234.56"},
		},
	}
}

func resolver() binding.Resolver { return binding.NewResolver(binding.DefaultDateFormat()) }

func findField(doc *document.Document, key string, slot layout.Slot) (document.Field, bool) {
	for _, f := range doc.Fields {
		if f.Key == key && f.Slot == slot {
			return f, true
		}
	}
	return document.Field{}, false
}

func TestGenerateStacked(t *testing.T) {
	m := layout.DefaultModel()
	doc, err := document.Generate(m, layout.SingleCheck(sampleCheck("Acme Corp")), document.Options{
		Resolver: resolver(),
		Title:    "Check ${checkNumber} ${payee}",
	})
	require.NoError(t, err)

	assert.Equal(t, "Check 1042 Acme Corp", doc.Title)
	assert.InDelta(t, 612, doc.WidthPt, 1e-9)
	assert.InDelta(t, 792, doc.HeightPt, 1e-9)
	w, h := doc.PageSizeMm()
	assert.InDelta(t, 215.9, w, 1e-9)
	assert.InDelta(t, 279.4, h, 1e-9)

	payee, ok := findField(doc, "payee", "")
	require.True(t, ok)
	assert.Equal(t, "Acme Corp", payee.Text)
	assert.InDelta(t, 72, payee.XPt, 1e-9)
	assert.InDelta(t, 1.2*72, payee.YPt, 1e-9)
	assert.InDelta(t, 0.16*72, payee.FontPt, 1e-9)

	words, ok := findField(doc, "amountWords", "")
	require.True(t, ok)
	assert.Equal(t, "One Thousand Two Hundred Thirty-Four and 56/100", words.Text)

	memo, ok := findField(doc, "stub2_memo", "")
	require.True(t, ok)
	assert.Equal(t, "GL 6100", memo.Text)
	assert.InDelta(t, (0.7+7.0)*72, memo.YPt, 1e-9)

	stubDate, ok := findField(doc, "stub1_date", "")
	require.True(t, ok)
	assert.Equal(t, "03/05/2024", stubDate.Text)
	assert.InDelta(t, (0.3+3.5)*72, stubDate.YPt, 1e-9)
}

func TestGenerateOmitsEmptyValues(t *testing.T) {
	data := &layout.CheckData{Payee: "Acme Corp"}
	doc, err := document.Generate(layout.DefaultModel(), layout.SingleCheck(data), document.Options{Resolver: resolver()})
	require.NoError(t, err)
	for _, f := range doc.Fields {
		assert.NotEmpty(t, f.Text, f.Key)
	}
	_, ok := findField(doc, "amountWords", "")
	assert.False(t, ok, "amount words must be omitted without an amount")
	assert.Len(t, doc.Fields, 3, "payee on the check and both stubs")
}

func TestGenerateHonorsOrderAndDisabledSections(t *testing.T) {
	m := layout.DefaultModel()
	m.Layout.Stub2Enabled = false
	doc, err := document.Generate(m, layout.SingleCheck(sampleCheck("Acme")), document.Options{
		Order:    []string{"stub1", "check", "stub2"},
		Resolver: resolver(),
	})
	require.NoError(t, err)
	assert.InDelta(t, 7.0*72, doc.HeightPt, 1e-9)

	payee, ok := findField(doc, "payee", "")
	require.True(t, ok)
	assert.InDelta(t, (1.2+3.5)*72, payee.YPt, 1e-9)
	_, ok = findField(doc, "stub2_payee", "")
	assert.False(t, ok, "disabled sections are not rendered")
}

func TestGenerateSheetMode(t *testing.T) {
	m := layout.DefaultModel()
	m.Template = &layout.Template{Src: "blank.png", Opacity: 2}
	data := layout.SheetChecks(sampleCheck("Top Co"), sampleCheck("Middle Co"), nil)

	doc, err := document.Generate(m, data, document.Options{SheetMode: true, Resolver: resolver()})
	require.NoError(t, err)

	assert.True(t, doc.SheetMode)
	assert.InDelta(t, 3*3.5*72, doc.HeightPt, 1e-9, "stubs never count in sheet mode")
	require.Len(t, doc.Backgrounds, 3)
	assert.InDelta(t, 1.0, doc.Backgrounds[0].Opacity, 1e-9)
	assert.Equal(t, layout.FitStretch, doc.Backgrounds[0].Fit)
	assert.InDelta(t, 3.5*72, doc.Backgrounds[1].YPt, 1e-9)

	top, ok := findField(doc, "payee", layout.SlotTop)
	require.True(t, ok)
	assert.Equal(t, "Top Co", top.Text)
	mid, ok := findField(doc, "payee", layout.SlotMiddle)
	require.True(t, ok)
	assert.Equal(t, "Middle Co", mid.Text)
	assert.InDelta(t, (1.2+3.5)*72, mid.YPt, 1e-9)
	_, ok = findField(doc, "payee", layout.SlotBottom)
	assert.False(t, ok, "empty slot renders nothing")

	for _, f := range doc.Fields {
		assert.Equal(t, layout.SectionCheck, f.Section, "stub fields are never placed in sheet mode")
	}
}

func TestGenerateRejectsInvalidModel(t *testing.T) {
	_, err := document.Generate(nil, layout.SlotData{}, document.Options{})
	assert.True(t, errors.Is(err, document.ErrInvalidModel))

	m := layout.DefaultModel()
	m.Layout.CheckHeightIn = 0
	m.Layout.Stub1Enabled = false
	m.Layout.Stub2Enabled = false
	_, err = document.Generate(m, layout.SingleCheck(sampleCheck("x")), document.Options{})
	assert.True(t, errors.Is(err, document.ErrInvalidModel))
}

func TestGenerateIgnoresSlotFields(t *testing.T) {
	m := layout.DefaultModel()
	m.SlotFields[layout.SlotMiddle]["payee"] = layout.FieldSpec{X: 4, Y: 3, W: 2, H: 0.3}
	doc, err := document.Generate(m, layout.SheetChecks(nil, sampleCheck("Mid"), nil), document.Options{SheetMode: true, Resolver: resolver()})
	require.NoError(t, err)
	mid, ok := findField(doc, "payee", layout.SlotMiddle)
	require.True(t, ok)
	assert.InDelta(t, 72, mid.XPt, 1e-9)
}
