package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ByLCY/checkpress/layout"
)

func sampleCheck() *layout.CheckData {
	return &layout.CheckData{
		Date:         "2024-03-05",
		Payee:        "Acme Supply Co.",
		Amount:       "1234.5",
		Memo:         "",
		ExternalMemo: "Invoice 8812",
		InternalMemo: "GL 6100",
		LineItems: []layout.LineItem{
			{Description: "Paper", Amount: "1000"},
			{Description: "Toner", Amount: "234.50"},
		},
		Address:     "1 Main St\nSpringfield",
		CheckNumber: "1042",
	}
}

func TestResolve_CheckFields(t *testing.T) {
	data := sampleCheck()
	f := DefaultDateFormat()

	tests := []struct {
		key      string
		expected string
	}{
		{"date", "03/05/2024"},
		{"payee", "Acme Supply Co."},
		{"amount", "$1,234.50"},
		{"amountWords", "One Thousand Two Hundred Thirty-Four and 50/100"},
		{"memo", "Invoice 8812"},
		{"address", "1 Main St\nSpringfield"},
		{"checkNumber", "1042"},
		{"stub1_date", "03/05/2024"},
		{"stub2_payee", "Acme Supply Co."},
		{"stub1_amount", "$1,234.50"},
		{"stub1_memo", "Invoice 8812"},
		{"stub2_memo", "GL 6100"},
		{"stub1_lineItems", "Paper  $1,000.00\nToner  $234.50"},
		{"unknown", ""},
		{"stub3_date", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.key, data, f))
		})
	}
}

func TestResolve_NilData(t *testing.T) {
	assert.Equal(t, "", Resolve("payee", nil, DefaultDateFormat()))
}

func TestResolve_ExplicitMemoWins(t *testing.T) {
	data := sampleCheck()
	data.Memo = "Rent"
	for _, key := range []string{"memo", "stub1_memo", "stub2_memo"} {
		assert.Equal(t, "Rent", Resolve(key, data, DefaultDateFormat()), key)
	}
}

func TestResolve_MemoSourcesConfigurable(t *testing.T) {
	r := NewResolver(DefaultDateFormat())
	r.Memo = MemoSources{Stub1: MemoInternal, Stub2: MemoExternal}
	data := sampleCheck()
	assert.Equal(t, "GL 6100", r.Resolve("stub1_memo", data))
	assert.Equal(t, "Invoice 8812", r.Resolve("stub2_memo", data))

	data.InternalMemo = ""
	assert.Equal(t, "", r.Resolve("stub1_memo", data))
}

func TestResolve_Idempotent(t *testing.T) {
	data := sampleCheck()
	f := DateFormat{Order: []string{"DD", "MM", "YYYY"}, Separator: "."}
	for _, key := range []string{"date", "amount", "amountWords", "stub2_memo", "stub1_lineItems"} {
		first := Resolve(key, data, f)
		second := Resolve(key, data, f)
		assert.Equal(t, first, second, key)
	}
}

func TestAmountWords(t *testing.T) {
	tests := []struct {
		amount   string
		expected string
	}{
		{"", ""},
		{"0", ""},
		{"0.00", ""},
		{"0.001", ""},
		{"-5", ""},
		{"abc", ""},
		{"123.45", "One Hundred Twenty-Three and 45/100"},
		{"0.45", "Zero and 45/100"},
		{"7", "Seven and 00/100"},
		{"19.999", "Twenty and 00/100"},
		{"1000000", "One Million and 00/100"},
		{"2,005,010.10", "Two Million Five Thousand Ten and 10/100"},
		{"$90.5", "Ninety and 50/100"},
		{"1000000000000000", ""},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.expected, AmountWords(tt.amount))
		})
	}
}

func TestAmountWordsEndsWithCents(t *testing.T) {
	data := &layout.CheckData{Amount: "123.45"}
	got := Resolve("amountWords", data, DefaultDateFormat())
	assert.Regexp(t, `and 45/100$`, got)
	assert.Equal(t, "", Resolve("amountWords", &layout.CheckData{Amount: ""}, DefaultDateFormat()))
	assert.Equal(t, "", Resolve("amountWords", &layout.CheckData{Amount: "0"}, DefaultDateFormat()))
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
		ok       bool
	}{
		{"1234.5", "$1,234.50", true},
		{"0", "$0.00", true},
		{"-42.1", "-$42.10", true},
		{"1,000,000", "$1,000,000.00", true},
		{"12.345", "$12.35", true},
		{"", "", false},
		{"n/a", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := FormatMoney(tt.raw, "$")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolve_EmptyAmount(t *testing.T) {
	data := &layout.CheckData{}
	assert.Equal(t, "", Resolve("amount", data, DefaultDateFormat()))
	assert.Equal(t, "", Resolve("stub1_amount", data, DefaultDateFormat()))
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		format   DateFormat
		expected string
	}{
		{"default", "2024-03-05", DefaultDateFormat(), "03/05/2024"},
		{"zero value format", "2024-03-05", DateFormat{}, "03/05/2024"},
		{"day first dashes", "2024-03-05", DateFormat{Order: []string{"DD", "MM", "YYYY"}, Separator: "-"}, "05-03-2024"},
		{"iso order", "2024-03-05", DateFormat{Order: []string{"YYYY", "MM", "DD"}, Separator: "-"}, "2024-03-05"},
		{"short year unpadded", "2024-03-05", DateFormat{Order: []string{"M", "D", "YY"}, Separator: "/"}, "3/5/24"},
		{"long form", "2024-03-05", DateFormat{Long: true}, "March 5, 2024"},
		{"rfc3339 input", "2024-12-25T10:00:00Z", DefaultDateFormat(), "12/25/2024"},
		{"us input", "07/04/2024", DefaultDateFormat(), "07/04/2024"},
		{"unparsable", "next friday", DefaultDateFormat(), "next friday"},
		{"empty", "", DefaultDateFormat(), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDate(tt.raw, tt.format))
		})
	}
}

func TestInterpolate(t *testing.T) {
	r := NewResolver(DefaultDateFormat())
	data := sampleCheck()
	assert.Equal(t, "Check 1042 - Acme Supply Co.", r.Interpolate("Check ${checkNumber} - ${payee}", data))
	assert.Equal(t, "Check ${nope}", r.Interpolate("Check ${nope}", data))
	assert.Equal(t, "plain", Interpolate("plain", nil))
}
