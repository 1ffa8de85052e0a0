package binding

import (
	"strconv"
	"strings"
	"time"
)

// DateFormat controls how date-family fields are rendered.
// Order lists slot tokens: "MM", "M", "DD", "D", "YYYY", "YY".
type DateFormat struct {
	Order     []string
	Separator string
	Long      bool
}

// DefaultDateFormat renders dates as MM/DD/YYYY.
func DefaultDateFormat() DateFormat {
	return DateFormat{Order: []string{"MM", "DD", "YYYY"}, Separator: "/"}
}

const longDateLayout = "January 2, 2006"

var dateInputLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
}

// FormatDate formats raw according to f. Values that cannot be parsed are returned verbatim.
func FormatDate(raw string, f DateFormat) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, ok := parseDate(raw)
	if !ok {
		return raw
	}
	if f.Long {
		return t.Format(longDateLayout)
	}
	order := f.Order
	if len(order) == 0 {
		order = DefaultDateFormat().Order
	}
	sep := f.Separator
	if sep == "" {
		sep = "/"
	}
	parts := make([]string, 0, len(order))
	for _, tok := range order {
		switch strings.ToUpper(strings.TrimSpace(tok)) {
		case "MM":
			parts = append(parts, pad2(int(t.Month())))
		case "M":
			parts = append(parts, strconv.Itoa(int(t.Month())))
		case "DD":
			parts = append(parts, pad2(t.Day()))
		case "D":
			parts = append(parts, strconv.Itoa(t.Day()))
		case "YYYY":
			parts = append(parts, strconv.Itoa(t.Year()))
		case "YY":
			parts = append(parts, pad2(t.Year()%100))
		}
	}
	if len(parts) == 0 {
		return raw
	}
	return strings.Join(parts, sep)
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
