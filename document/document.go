// Package document builds the static print document for one check, or one sheet of three,
// in physical points. It consumes the same placement and resolver output as the editing
// surface, so a field lands at the same physical position on screen and on paper.
package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ByLCY/checkpress/binding"
	"github.com/ByLCY/checkpress/layout"
)

// ErrInvalidModel is returned when the model cannot produce a page.
var ErrInvalidModel = errors.New("document: invalid model")

// Options 控制文档生成。
type Options struct {
	// Order 为堆叠模式下的区段顺序，空值使用 layout.DefaultOrder。
	Order []string
	// SheetMode 为 true 时一页三张支票，存根关闭。
	SheetMode bool
	Resolver  binding.Resolver
	// Title 支持 ${key} 占位符，使用第一份非空数据解析。
	Title string
}

// Field is one positioned, non-empty text box in points.
type Field struct {
	Key     string      `json:"key"`
	Section string      `json:"section"`
	Slot    layout.Slot `json:"slot,omitempty"`
	XPt     float64     `json:"xPt"`
	YPt     float64     `json:"yPt"`
	WPt     float64     `json:"wPt"`
	HPt     float64     `json:"hPt"`
	FontPt  float64     `json:"fontPt"`
	Text    string      `json:"text"`
}

// Background is the template image composited beneath the fields of one check section.
type Background struct {
	Src     string  `json:"src"`
	Opacity float64 `json:"opacity"`
	Fit     string  `json:"fit"`
	XPt     float64 `json:"xPt"`
	YPt     float64 `json:"yPt"`
	WPt     float64 `json:"wPt"`
	HPt     float64 `json:"hPt"`
}

// Document is the renderer-neutral print document. All geometry is in points; zoom never applies.
type Document struct {
	Title       string           `json:"title"`
	WidthIn     float64          `json:"widthIn"`
	HeightIn    float64          `json:"heightIn"`
	WidthPt     float64          `json:"widthPt"`
	HeightPt    float64          `json:"heightPt"`
	SheetMode   bool             `json:"sheetMode"`
	Placement   layout.Placement `json:"placement"`
	Backgrounds []Background     `json:"backgrounds,omitempty"`
	Fields      []Field          `json:"fields"`
}

// PageSizeMm 返回 PDF 纸张尺寸（毫米）：宽 = 版式宽度，高 = 已启用区段总高。
func (d *Document) PageSizeMm() (w, h float64) {
	return layout.InToMm(d.WidthIn), layout.InToMm(d.HeightIn)
}

// Generate 根据模型与数据生成打印文档。空值字段一律省略。
func Generate(m *layout.Model, data layout.SlotData, opts Options) (*Document, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: model is nil", ErrInvalidModel)
	}
	comp := layout.ComposeModel(m, opts.Order, opts.SheetMode)
	if comp.WidthIn <= 0 || comp.HeightIn <= 0 {
		return nil, fmt.Errorf("%w: page %.3fin x %.3fin", ErrInvalidModel, comp.WidthIn, comp.HeightIn)
	}

	doc := &Document{
		WidthIn:   comp.WidthIn,
		HeightIn:  comp.HeightIn,
		WidthPt:   layout.InToPt(comp.WidthIn),
		HeightPt:  layout.InToPt(comp.HeightIn),
		SheetMode: comp.SheetMode,
		Placement: m.Placement,
	}
	if opts.Title != "" {
		doc.Title = strings.TrimSpace(opts.Resolver.Interpolate(opts.Title, data.First()))
	}

	if m.Template != nil && m.Template.Src != "" {
		for _, area := range layout.BackgroundAreas(comp) {
			doc.Backgrounds = append(doc.Backgrounds, Background{
				Src:     m.Template.Src,
				Opacity: m.Template.NormalizedOpacity(),
				Fit:     m.Template.NormalizedFit(),
				XPt:     layout.InToPt(area.X),
				YPt:     layout.InToPt(area.Y),
				WPt:     layout.InToPt(area.W),
				HPt:     layout.InToPt(area.H),
			})
		}
	}

	for _, rf := range opts.Resolver.ResolvePlaced(layout.Place(m, comp), data) {
		if rf.Text == "" {
			continue
		}
		s := rf.Spec
		doc.Fields = append(doc.Fields, Field{
			Key:     rf.Key,
			Section: rf.Section,
			Slot:    rf.Slot,
			XPt:     layout.InToPt(s.X),
			YPt:     layout.InToPt(s.Y),
			WPt:     layout.InToPt(s.W),
			HPt:     layout.InToPt(s.H),
			FontPt:  layout.InToPt(s.FontIn),
			Text:    rf.Text,
		})
	}
	return doc, nil
}
