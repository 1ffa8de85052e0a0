package surface

import (
	"math"

	"go.uber.org/zap"

	"github.com/ByLCY/checkpress/layout"
)

// PointerDown 开始一次拖拽或缩放。非 Idle 或非编辑模式时忽略。
// 命中测试按绘制顺序倒序进行（最上层优先），手柄优先于字段框。
func (s *Surface) PointerDown(p Pointer) {
	if !s.opts.EditMode {
		return
	}
	if _, idle := s.state.(Idle); !idle {
		return
	}

	zoom := s.zoom()
	comp := s.composition()
	placed := layout.Place(s.model, comp)
	px := func(in float64) float64 { return layout.InToPx(in, zoom) }

	for i := len(placed) - 1; i >= 0; i-- {
		box := newBox(placed[i], px, "", true)
		spec := s.model.Fields[box.Key].Clamped()
		switch {
		case box.Handle.Contains(p.X, p.Y):
			s.enter(Resizing{FieldKey: box.Key, Anchor: Anchor{
				PointerX: p.X / zoom,
				PointerY: p.Y / zoom,
				FieldX:   spec.W * layout.PxPerIn,
				FieldY:   spec.H * layout.PxPerIn,
			}})
			return
		case box.Contains(p.X, p.Y):
			s.enter(Dragging{FieldKey: box.Key, Anchor: Anchor{
				PointerX: p.X / zoom,
				PointerY: p.Y / zoom,
				FieldX:   spec.X * layout.PxPerIn,
				FieldY:   spec.Y * layout.PxPerIn,
			}})
			return
		}
	}
}

// PointerMove 在拖拽/缩放中更新字段几何并发出 LayoutChange；Idle 时忽略。
// 拖拽不做边界限制；缩放不低于最小宽高。
func (s *Surface) PointerMove(p Pointer) {
	zoom := s.zoom()
	switch st := s.state.(type) {
	case Dragging:
		spec := s.model.Fields[st.FieldKey]
		spec.X = (st.Anchor.FieldX + (p.X/zoom - st.Anchor.PointerX)) / layout.PxPerIn
		spec.Y = (st.Anchor.FieldY + (p.Y/zoom - st.Anchor.PointerY)) / layout.PxPerIn
		s.commit(st.FieldKey, spec, ChangeMove)
	case Resizing:
		spec := s.model.Fields[st.FieldKey]
		spec.W = math.Max(layout.MinFieldWidthIn, (st.Anchor.FieldX+(p.X/zoom-st.Anchor.PointerX))/layout.PxPerIn)
		spec.H = math.Max(layout.MinFieldHeightIn, (st.Anchor.FieldY+(p.Y/zoom-st.Anchor.PointerY))/layout.PxPerIn)
		s.commit(st.FieldKey, spec, ChangeResize)
	}
}

// PointerUp 在任意位置松开都会结束交互。
func (s *Surface) PointerUp(Pointer) { s.toIdle() }

func (s *Surface) commit(key string, spec layout.FieldSpec, kind ChangeKind) {
	s.model.Fields[key] = spec
	if s.opts.OnChange != nil {
		s.opts.OnChange(LayoutChange{Key: key, Field: spec, Kind: kind})
	}
}

func (s *Surface) enter(next State) {
	s.state = next
	if s.opts.Pointer != nil {
		s.detach = s.opts.Pointer.Attach(s.PointerMove, s.PointerUp)
	}
	s.log.Debug("surface state changed", zap.String("state", next.Name()))
}

func (s *Surface) toIdle() {
	if !IsActive(s.state) {
		return
	}
	if s.detach != nil {
		s.detach()
		s.detach = nil
	}
	s.state = Idle{}
	s.log.Debug("surface state changed", zap.String("state", "idle"))
}
