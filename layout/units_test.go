package layout

import (
	"math"
	"testing"
)

// TestScreenPxRoundTrip 验证 px / 96 / zoom 还原为英寸。
func TestScreenPxRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 0.5, 1, 3.5, 8.5, 11, 100}
	zooms := []float64{0.25, 0.5, 1, 1.25, 2, 4}
	for _, in := range samples {
		for _, zoom := range zooms {
			px := InToPx(in, zoom)
			if diff := math.Abs(px/PxPerIn/zoom - in); diff > 1e-9 {
				t.Fatalf("in→px→in 误差过大: in=%g zoom=%g px=%g diff=%g", in, zoom, px, diff)
			}
			if diff := math.Abs(PxToIn(px, zoom) - in); diff > 1e-9 {
				t.Fatalf("PxToIn 不一致: in=%g zoom=%g diff=%g", in, zoom, diff)
			}
		}
	}
}

// TestPrintPtIgnoresZoom 验证打印点数只与英寸相关。
func TestPrintPtIgnoresZoom(t *testing.T) {
	for _, in := range []float64{0, 0.2, 1, 3.5, 8.5} {
		pt := InToPt(in)
		if diff := math.Abs(pt/PtPerIn - in); diff > 1e-9 {
			t.Fatalf("in→pt→in 误差过大: in=%g pt=%g diff=%g", in, pt, diff)
		}
		if diff := math.Abs(PtToIn(pt) - in); diff > 1e-9 {
			t.Fatalf("PtToIn 不一致: in=%g diff=%g", in, diff)
		}
	}
}

func TestInToMm(t *testing.T) {
	if got := InToMm(8.5); math.Abs(got-215.9) > 1e-9 {
		t.Fatalf("8.5in 转 mm 期望 215.9，实际 %g", got)
	}
	if got := MmToIn(25.4); math.Abs(got-1) > 1e-9 {
		t.Fatalf("25.4mm 转 in 期望 1，实际 %g", got)
	}
}

// TestInvalidZoomFallsBackToOne 非法缩放值按 1 处理。
func TestInvalidZoomFallsBackToOne(t *testing.T) {
	for _, zoom := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if got := InToPx(1, zoom); got != PxPerIn {
			t.Fatalf("zoom=%g 时 1in 期望 96px，实际 %g", zoom, got)
		}
	}
}

// TestLengthToConversions 覆盖 Length 在常见单位上的转换正确性。
func TestLengthToConversions(t *testing.T) {
	in := Length{Value: 1, Unit: UnitIN}
	if got := in.ToMM(); math.Abs(got-25.4) > 1e-9 {
		t.Fatalf("1in 转 mm 期望 25.4，实际 %g", got)
	}
	if got := in.ToPT(); math.Abs(got-72) > 1e-9 {
		t.Fatalf("1in 转 pt 期望 72，实际 %g", got)
	}
	if got := in.To(UnitPX); math.Abs(got-96) > 1e-9 {
		t.Fatalf("1in 转 px 期望 96，实际 %g", got)
	}
	cm := Length{Value: 2.54, Unit: UnitCM}
	if got := cm.ToIN(); math.Abs(got-1) > 1e-9 {
		t.Fatalf("2.54cm 转 in 期望 1，实际 %g", got)
	}
	pt := Length{Value: 36, Unit: UnitPT}
	if got := pt.ToIN(); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("36pt 转 in 期望 0.5，实际 %g", got)
	}
}

func TestParseRawLengthStr(t *testing.T) {
	cases := map[string]Length{
		"3.5in":  {Value: 3.5, Unit: UnitIN},
		" 12pt ": {Value: 12, Unit: UnitPT},
		"10MM":   {Value: 10, Unit: UnitMM},
		"96px":   {Value: 96, Unit: UnitPX},
		"0.25":   {Value: 0.25, Unit: UnitNone},
		"abc":    {},
		"":       {},
	}
	for raw, want := range cases {
		if got := ParseRawLengthStr(raw); got != want {
			t.Fatalf("ParseRawLengthStr(%q) = %+v, want %+v", raw, got, want)
		}
	}
}

func TestFieldSpecClamped(t *testing.T) {
	got := FieldSpec{X: 1, Y: 2, W: 0.1, H: 0.05, FontIn: 0}.Clamped()
	if got.W != MinFieldWidthIn || got.H != MinFieldHeightIn {
		t.Fatalf("最小尺寸未收敛: %+v", got)
	}
	if got.FontIn != DefaultFontIn {
		t.Fatalf("字号未回退默认值: %+v", got)
	}
	ok := FieldSpec{X: 1, Y: 2, W: 3, H: 0.4, FontIn: 0.2}
	if ok.Clamped() != ok {
		t.Fatalf("合法字段不应被修改: %+v", ok.Clamped())
	}
}
