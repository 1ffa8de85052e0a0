package layout

import (
	"math"
	"strconv"
	"strings"
)

// This file defines unit-safe types and the inch-based conversions shared by the
// editing surface (screen px) and the print document (pt / mm).

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
	UnitPX               // CSS pixels at zoom 1
)

// Physical scale constants. Inches are the only source of truth.
const (
	PxPerIn = 96.0
	PtPerIn = 72.0
	MmPerIn = 25.4
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	case UnitPX:
		return "px"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// Inches converts the length to inches. Unit-less values are taken as inches.
func (l Length) Inches() float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value / MmPerIn
	case UnitCM:
		return l.Value * 10 / MmPerIn
	case UnitPT:
		return l.Value / PtPerIn
	case UnitPX:
		return l.Value / PxPerIn
	default:
		return l.Value
	}
}

// To converts this length to the target unit (px assumes zoom 1).
func (l Length) To(target Unit) float64 {
	in := l.Inches()
	switch target {
	case UnitMM:
		return InToMm(in)
	case UnitCM:
		return InToMm(in) / 10
	case UnitPT:
		return InToPt(in)
	case UnitPX:
		return InToPx(in, 1)
	default:
		return in
	}
}

func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }
func (l Length) ToIN() float64 { return l.To(UnitIN) }

// ParseRawLengthStr parses a length string such as "3.5in" or "12pt", preserving its unit.
func ParseRawLengthStr(value string) Length {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}, {"px", UnitPX}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}
	}
	return Length{Value: f, Unit: unit}
}

// NormalizeZoom 非法或非正的缩放值按 1 处理。
func NormalizeZoom(zoom float64) float64 {
	if !finite(zoom) || zoom <= 0 {
		return 1
	}
	return zoom
}

// InToPx converts inches to screen pixels: px = in × 96 × zoom.
func InToPx(in, zoom float64) float64 { return in * PxPerIn * NormalizeZoom(zoom) }

// PxToIn converts screen pixels back to inches.
func PxToIn(px, zoom float64) float64 { return px / PxPerIn / NormalizeZoom(zoom) }

// InToPt converts inches to print points. Zoom never applies to print output.
func InToPt(in float64) float64 { return in * PtPerIn }

// PtToIn converts print points to inches.
func PtToIn(pt float64) float64 { return pt / PtPerIn }

// InToMm converts inches to millimeters for PDF page-size APIs.
func InToMm(in float64) float64 { return in * MmPerIn }

// MmToIn converts millimeters to inches.
func MmToIn(mm float64) float64 { return mm / MmPerIn }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
