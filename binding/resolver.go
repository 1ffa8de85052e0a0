// Package binding maps field keys and check data to the strings drawn on a check.
// Resolution is pure: identical inputs always produce identical output, and
// conversion failures degrade to an empty string instead of an error.
package binding

import (
	"strings"

	"github.com/ByLCY/checkpress/layout"
)

// MemoSource selects which memo a stub falls back to when the explicit memo is empty.
type MemoSource string

const (
	MemoExternal MemoSource = "external"
	MemoInternal MemoSource = "internal"
)

// MemoSources configures the memo fallback per stub.
type MemoSources struct {
	Stub1 MemoSource
	Stub2 MemoSource
}

// DefaultMemoSources shows the external memo on the recipient stub and the
// internal memo on the record stub.
func DefaultMemoSources() MemoSources {
	return MemoSources{Stub1: MemoExternal, Stub2: MemoInternal}
}

// Resolver carries formatting configuration. It is a value type with no mutable state.
type Resolver struct {
	DateFormat DateFormat
	Memo       MemoSources
	Currency   string
}

// NewResolver returns a Resolver with default memo sources and a "$" currency symbol.
func NewResolver(f DateFormat) Resolver {
	return Resolver{DateFormat: f, Memo: DefaultMemoSources(), Currency: "$"}
}

// Resolve is the package-level form of Resolver.Resolve with default memo and currency settings.
func Resolve(key string, data *layout.CheckData, f DateFormat) string {
	return NewResolver(f).Resolve(key, data)
}

var knownBases = map[string]bool{
	layout.FieldDate:        true,
	layout.FieldPayee:       true,
	layout.FieldAmount:      true,
	layout.FieldAmountWords: true,
	layout.FieldMemo:        true,
	layout.FieldAddress:     true,
	layout.FieldCheckNumber: true,
	layout.FieldLineItems:   true,
}

// IsKnownKey reports whether key belongs to one of the conventional field families.
func IsKnownKey(key string) bool {
	_, base := layout.SplitFieldKey(key)
	return knownBases[base]
}

// Resolve returns the display string for key. Unknown keys and nil data yield "".
func (r Resolver) Resolve(key string, data *layout.CheckData) string {
	if data == nil {
		return ""
	}
	section, base := layout.SplitFieldKey(key)
	switch base {
	case layout.FieldDate:
		return FormatDate(data.Date, r.DateFormat)
	case layout.FieldPayee:
		return data.Payee
	case layout.FieldAmount:
		s, _ := FormatMoney(data.Amount, r.currency())
		return s
	case layout.FieldAmountWords:
		return AmountWords(data.Amount)
	case layout.FieldMemo:
		return r.memo(section, data)
	case layout.FieldCheckNumber:
		return data.CheckNumber
	case layout.FieldAddress:
		return data.Address
	case layout.FieldLineItems:
		return r.lineItems(data.LineItems)
	default:
		return ""
	}
}

func (r Resolver) currency() string {
	if r.Currency == "" {
		return "$"
	}
	return r.Currency
}

func (r Resolver) memo(section string, data *layout.CheckData) string {
	if data.Memo != "" {
		return data.Memo
	}
	source := MemoExternal
	switch section {
	case layout.SectionStub1:
		source = r.Memo.Stub1
	case layout.SectionStub2:
		source = r.Memo.Stub2
	}
	switch source {
	case MemoInternal:
		return data.InternalMemo
	case MemoExternal:
		return data.ExternalMemo
	default:
		return ""
	}
}

func (r Resolver) lineItems(items []layout.LineItem) string {
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		amount, ok := FormatMoney(item.Amount, r.currency())
		if !ok {
			amount = strings.TrimSpace(item.Amount)
		}
		line := strings.TrimSpace(item.Description)
		if amount != "" {
			if line != "" {
				line += "  "
			}
			line += amount
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
