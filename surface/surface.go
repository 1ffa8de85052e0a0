// Package surface projects a check layout onto an interactive editing surface in screen
// pixels and implements drag/resize editing of field geometry.
//
// A Surface is not safe for concurrent use; drive it from the UI goroutine.
package surface

import (
	"go.uber.org/zap"

	"github.com/ByLCY/checkpress/binding"
	"github.com/ByLCY/checkpress/layout"
)

// HandleSizePx 是右下角缩放手柄的边长（屏幕像素）。
const HandleSizePx = 10.0

// Pointer 是相对于编辑界面左上角的指针位置（屏幕像素，含缩放）。
type Pointer struct {
	X float64
	Y float64
}

// PointerSource 是全局（文档级）指针事件源。Attach 返回的函数用于解除监听。
type PointerSource interface {
	Attach(onMove func(Pointer), onUp func(Pointer)) (detach func())
}

// ChangeKind 标识字段几何变化的来源。
type ChangeKind string

const (
	ChangeMove   ChangeKind = "move"
	ChangeResize ChangeKind = "resize"
)

// LayoutChange 在每次拖拽/缩放移动后发出，Field 为写回模型后的新几何（英寸）。
type LayoutChange struct {
	Key   string
	Field layout.FieldSpec
	Kind  ChangeKind
}

// Options configures a Surface.
type Options struct {
	Order     []string
	SheetMode bool
	EditMode  bool
	Resolver  binding.Resolver
	Pointer   PointerSource
	OnChange  func(LayoutChange)
	Logger    *zap.Logger
}

// Surface 持有模型引用并在编辑时直接修改 model.Fields。
type Surface struct {
	model  *layout.Model
	opts   Options
	state  State
	detach func()
	log    *zap.Logger
}

// New creates a surface over model. The model is edited in place.
func New(model *layout.Model, opts Options) *Surface {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if model.Fields == nil {
		model.Fields = layout.LayoutProfile{}
	}
	return &Surface{model: model, opts: opts, state: Idle{}, log: log}
}

// Model returns the model being edited.
func (s *Surface) Model() *layout.Model { return s.model }

// State returns the current interaction state.
func (s *Surface) State() State { return s.state }

// EditMode reports whether editing is enabled.
func (s *Surface) EditMode() bool { return s.opts.EditMode }

// SetEditMode 切换编辑模式；关闭时若正在拖拽或缩放则立即回到 Idle。
func (s *Surface) SetEditMode(on bool) {
	s.opts.EditMode = on
	if !on {
		s.toIdle()
	}
}

// SetSheetMode switches between stacked and sheet composition.
func (s *Surface) SetSheetMode(on bool) { s.opts.SheetMode = on }

// SetZoom 修改视图缩放，非法值按 1 处理。
func (s *Surface) SetZoom(zoom float64) { s.model.View.Zoom = layout.NormalizeZoom(zoom) }

func (s *Surface) zoom() float64 { return layout.NormalizeZoom(s.model.View.Zoom) }

func (s *Surface) composition() layout.Composition {
	return layout.ComposeModel(s.model, s.opts.Order, s.opts.SheetMode)
}
