package binding

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	onesWords = []string{
		"Zero", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
		"Seventeen", "Eighteen", "Nineteen",
	}
	tensWords  = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
	scaleWords = []string{"", "Thousand", "Million", "Billion", "Trillion"}

	errAmountRange = errors.New("amount out of range")
	maxWordsAmount = decimal.New(1, 15)
)

// AmountWords spells the dollar part of raw and appends cents as NN/100:
// "123.45" -> "One Hundred Twenty-Three and 45/100".
// Empty, zero, negative or unparsable amounts yield "".
func AmountWords(raw string) string {
	d, ok := ParseAmount(raw)
	if !ok || !d.Round(2).IsPositive() {
		return ""
	}
	words, err := decimalToWords(d)
	if err != nil {
		return ""
	}
	return words
}

func decimalToWords(d decimal.Decimal) (string, error) {
	d = d.Round(2)
	if d.GreaterThanOrEqual(maxWordsAmount) {
		return "", errAmountRange
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).IntPart()
	return integerToWords(whole.IntPart()) + " and " + pad2(int(cents)) + "/100", nil
}

func integerToWords(n int64) string {
	if n == 0 {
		return onesWords[0]
	}
	var groups []string
	for scale := 0; n > 0; scale++ {
		chunk := int(n % 1000)
		n /= 1000
		if chunk == 0 {
			continue
		}
		words := hundredsToWords(chunk)
		if scaleWords[scale] != "" {
			words += " " + scaleWords[scale]
		}
		groups = append([]string{words}, groups...)
	}
	return strings.Join(groups, " ")
}

func hundredsToWords(n int) string {
	var parts []string
	if n >= 100 {
		parts = append(parts, onesWords[n/100], "Hundred")
		n %= 100
	}
	switch {
	case n == 0:
	case n < 20:
		parts = append(parts, onesWords[n])
	default:
		tens := tensWords[n/10]
		if n%10 != 0 {
			tens += "-" + onesWords[n%10]
		}
		parts = append(parts, tens)
	}
	return strings.Join(parts, " ")
}
