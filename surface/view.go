package surface

import (
	"github.com/ByLCY/checkpress/layout"
)

// Rect 是屏幕像素矩形。
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Contains 判断点是否落在矩形内（含边界）。
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Box 是一个可编辑字段框。
type Box struct {
	Key     string
	Section string
	Slot    layout.Slot
	Rect
	Handle Rect
	FontPx float64
	Text   string
	Label  string
	// Empty 为 true 表示值为空，仅在编辑模式下显示占位框。
	Empty bool
}

// Background 是背景模板在屏幕上的区域。
type Background struct {
	Src     string
	Opacity float64
	Fit     string
	Rect
}

// Guide 是水平参考线（裁切线），只在编辑界面显示。
type Guide struct {
	Y     float64
	Label string
}

// View 是一次渲染的完整结果，全部以屏幕像素表示。
type View struct {
	WidthPx     float64
	HeightPx    float64
	Zoom        float64
	EditMode    bool
	State       State
	Backgrounds []Background
	Guides      []Guide
	Boxes       []Box
}

// Render 生成当前模型在屏幕上的投影。Boxes 的顺序即绘制顺序，后者在上层。
// 非编辑模式下省略空值字段。
func (s *Surface) Render(data layout.SlotData) View {
	zoom := s.zoom()
	comp := s.composition()
	px := func(in float64) float64 { return layout.InToPx(in, zoom) }

	v := View{
		WidthPx:  px(comp.WidthIn),
		HeightPx: px(comp.HeightIn),
		Zoom:     zoom,
		EditMode: s.opts.EditMode,
		State:    s.state,
	}

	if tpl := s.model.Template; tpl != nil && tpl.Src != "" {
		for _, area := range layout.BackgroundAreas(comp) {
			v.Backgrounds = append(v.Backgrounds, Background{
				Src:     tpl.Src,
				Opacity: tpl.NormalizedOpacity(),
				Fit:     tpl.NormalizedFit(),
				Rect:    Rect{X: px(area.X), Y: px(area.Y), W: px(area.W), H: px(area.H)},
			})
		}
	}
	v.Guides = s.guides(comp, px)

	for _, rf := range s.opts.Resolver.ResolvePlaced(layout.Place(s.model, comp), data) {
		empty := rf.Text == ""
		if empty && !s.opts.EditMode {
			continue
		}
		v.Boxes = append(v.Boxes, newBox(rf.PlacedField, px, rf.Text, empty))
	}
	return v
}

func (s *Surface) guides(comp layout.Composition, px func(float64) float64) []Guide {
	var out []Guide
	if comp.SheetMode {
		for i := 1; i < len(comp.Sections); i++ {
			out = append(out, Guide{Y: px(comp.Sections[i].OffsetYIn), Label: "cut"})
		}
		return out
	}
	if l := s.model.Layout.CutLine1In; l != nil {
		out = append(out, Guide{Y: px(*l), Label: "cut 1"})
	}
	if l := s.model.Layout.CutLine2In; l != nil {
		out = append(out, Guide{Y: px(*l), Label: "cut 2"})
	}
	return out
}

func newBox(pf layout.PlacedField, px func(float64) float64, text string, empty bool) Box {
	r := Rect{X: px(pf.Spec.X), Y: px(pf.Spec.Y), W: px(pf.Spec.W), H: px(pf.Spec.H)}
	return Box{
		Key:     pf.Key,
		Section: pf.Section,
		Slot:    pf.Slot,
		Rect:    r,
		Handle:  Rect{X: r.X + r.W - HandleSizePx, Y: r.Y + r.H - HandleSizePx, W: HandleSizePx, H: HandleSizePx},
		FontPx:  px(pf.Spec.FontIn),
		Text:    text,
		Label:   pf.Spec.Label,
		Empty:   empty,
	}
}
