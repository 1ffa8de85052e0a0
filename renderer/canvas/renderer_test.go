package canvasrenderer

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/checkpress/binding"
	"github.com/ByLCY/checkpress/document"
	"github.com/ByLCY/checkpress/layout"
)

func TestLayoutLinesGreedyWrapsText(t *testing.T) {
	r := NewRenderer("")
	lines, err := r.LayoutLines("hello world again", 10, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(lines))
	}
	for i, ln := range lines {
		if ln.Content != "" && ln.Content[0] == ' ' {
			t.Fatalf("line %d starts with a space: %q", i, ln.Content)
		}
	}
}

func TestGreedyWrapHonorsNewlines(t *testing.T) {
	r := NewRenderer("")
	lines, err := r.LayoutLines("foo\n\nbar", 100, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines including blank, got %d", len(lines))
	}
	if lines[1].Content != "" {
		t.Fatalf("expected middle line to be blank, got %q", lines[1].Content)
	}
}

// TestLineHeightsInvariant 验证：
// 1) 首行 GapBefore == 0；
// 2) 其余行 GapBefore ≈ max(lineHeight - textHeight, 0)；
// 3) 各行的 Height 与 textHeight 一致。
func TestLineHeightsInvariant(t *testing.T) {
	r := NewRenderer("")
	const fontPt = 12.0
	content := "longlonglong longlonglong longlonglong longlonglong longlonglong"
	lines, err := r.LayoutLines(content, 40, fontPt)
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines for invariant test, got %d", len(lines))
	}

	textHeight := lines[0].Height
	if textHeight <= 0 {
		t.Fatalf("invalid text height: %g", textHeight)
	}
	wantLeading := math.Max(ptToMm(fontPt)*LineHeight-textHeight, 0)
	if lines[0].GapBefore != 0 {
		t.Fatalf("first line GapBefore must be 0, got %g", lines[0].GapBefore)
	}
	const eps = 1e-6
	for i := 1; i < len(lines); i++ {
		if diff := math.Abs(lines[i].GapBefore - wantLeading); diff > eps {
			t.Fatalf("line %d GapBefore mismatch: got=%g want=%g diff=%g", i, lines[i].GapBefore, wantLeading, diff)
		}
		if diff := math.Abs(lines[i].Height - textHeight); diff > eps {
			t.Fatalf("line %d Height mismatch: got=%g want=%g diff=%g", i, lines[i].Height, textHeight, diff)
		}
	}
}

// TestGreedyWrapWidthLimit 验证每行宽度不超过限制（mm）。
func TestGreedyWrapWidthLimit(t *testing.T) {
	r := NewRenderer("")
	limit := 30.0 // mm
	content := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	lines, err := r.LayoutLines(content, limit, 12)
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected the long token to be split, got %d lines", len(lines))
	}
	for i, ln := range lines {
		if ln.Width-limit > 1e-6 { // 允许极小的数值误差
			t.Fatalf("line %d width exceeds limit: width=%g limit=%g", i, ln.Width, limit)
		}
	}
}

func TestUnknownFontFallsBackToBuiltin(t *testing.T) {
	r := NewRendererWithOptions(Options{Font: "embed:Inter-Regular"})
	if _, err := r.LayoutLines("fallback", 50, 10); err != nil {
		t.Fatalf("expected fallback font, got error: %v", err)
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 220, B: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestRenderProducesPDF(t *testing.T) {
	m := layout.DefaultModel()
	m.Template = &layout.Template{Src: "built-in:blank", Opacity: 0.3, Fit: layout.FitCover}
	data := &layout.CheckData{
		Date:        "2024-02-29",
		Payee:       "Northwind Traders",
		Amount:      "5120.07",
		Address:     "42 Harbor Rd\nPortsmouth",
		CheckNumber: "2001",
		LineItems:   []layout.LineItem{{Description: "Freight", Amount: "5120.07"}},
	}
	doc, err := document.Generate(m, layout.SingleCheck(data), document.Options{
		Resolver: binding.NewResolver(binding.DefaultDateFormat()),
		Title:    "Check ${checkNumber}",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	r := NewRendererWithOptions(Options{Images: map[string]Resource{"blank": {Bytes: pngBytes(t, 85, 35)}}})
	out, err := r.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", out[:min(len(out), 8)])
	}
}

func TestRenderMissingImage(t *testing.T) {
	doc := &document.Document{
		WidthIn: 8.5, HeightIn: 3.5,
		Backgrounds: []document.Background{{Src: "built-in:missing", Opacity: 1, WPt: 612, HPt: 252}},
	}
	if _, err := NewRenderer("").Render(doc); err == nil {
		t.Fatalf("expected error for missing image")
	}
}

func TestRenderRejectsEmptyDocument(t *testing.T) {
	if _, err := NewRenderer("").Render(nil); err == nil {
		t.Fatalf("expected error for nil document")
	}
	if _, err := NewRenderer("").Render(&document.Document{}); err == nil {
		t.Fatalf("expected error for zero-size page")
	}
}

func TestRenderPageOnFullSheet(t *testing.T) {
	doc, err := document.Generate(layout.DefaultModel(), layout.SingleCheck(&layout.CheckData{Payee: "Offset Ltd"}), document.Options{
		Resolver: binding.NewResolver(binding.DefaultDateFormat()),
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	r := NewRenderer("")
	out, err := r.RenderPage(doc, Page{WidthMm: 215.9, HeightMm: 279.4, OffsetXMm: 6.35, OffsetYMm: 12.7})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if _, err := r.RenderPage(doc, Page{WidthMm: 0, HeightMm: 279.4}); err == nil {
		t.Fatalf("expected error for zero-width page")
	}
}

func TestRenderDataURIBackground(t *testing.T) {
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 1, 1))
	doc := &document.Document{
		WidthIn: 8.5, HeightIn: 3.5, WidthPt: 612, HeightPt: 252,
		Backgrounds: []document.Background{{Src: src, Opacity: 0.5, Fit: layout.FitStretch, WPt: 612, HPt: 252}},
	}
	out, err := NewRenderer(".").Render(doc)
	if err != nil {
		t.Fatalf("render data URI background: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}

	doc.Backgrounds[0].Src = "data:image/png;base64,@@@"
	if _, err := NewRenderer(".").Render(doc); err == nil {
		t.Fatalf("expected error for corrupt data URI")
	}
	doc.Backgrounds[0].Src = "data:text/plain,hello"
	if _, err := NewRenderer(".").Render(doc); err == nil {
		t.Fatalf("expected error for non-image data URI")
	}
}

func TestInjectedResourceReadErrorIsReported(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.png")
	r := NewRendererWithOptions(Options{Images: map[string]Resource{"blank": {Path: missing}}})
	_, err := r.loadImage("built-in:blank")
	if err == nil {
		t.Fatalf("expected error for unreadable injected image")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("read error should be kept, got: %v", err)
	}

	r = NewRendererWithOptions(Options{Fonts: map[string]Resource{"body": {Path: missing}}})
	_, err = r.loadFontBytes("built-in:body")
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("font read error should be kept, got: %v", err)
	}
	if strings.Contains(err.Error(), "找不到") {
		t.Fatalf("read failure reported as missing resource: %v", err)
	}
}
