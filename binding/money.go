package binding

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	groupPrinter     = message.NewPrinter(language.AmericanEnglish)
	maxGroupedAmount = decimal.New(1, 18)
)

// ParseAmount parses a decimal amount, tolerating a leading "$" and thousands separators.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatMoney formats raw as currency, e.g. "1234.5" -> "$1,234.50".
// Empty or unparsable input yields ("", false).
func FormatMoney(raw, symbol string) (string, bool) {
	d, ok := ParseAmount(raw)
	if !ok {
		return "", false
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	d = d.Round(2)
	if d.GreaterThanOrEqual(maxGroupedAmount) {
		return sign + symbol + d.StringFixed(2), true
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).IntPart()
	// %d through a message.Printer applies locale digit grouping.
	return sign + symbol + groupPrinter.Sprintf("%d", whole.IntPart()) + "." + pad2(int(cents)), true
}
