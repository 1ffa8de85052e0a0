package surface

// State 是编辑界面的交互状态：Idle、Dragging 或 Resizing 三者之一。
// 只有处于 Dragging/Resizing 时才挂载全局指针监听。
type State interface {
	Name() string
	state()
}

// Anchor 记录进入拖拽/缩放时的起点。
// PointerX/PointerY 已按缩放归一化（等价于 zoom 1 的像素）；
// FieldX/FieldY 为字段在 zoom 1 下的像素值：拖拽时是 x/y，缩放时是 w/h。
type Anchor struct {
	PointerX float64
	PointerY float64
	FieldX   float64
	FieldY   float64
}

// Idle 表示没有进行中的交互。
type Idle struct{}

// Dragging 表示正在移动 FieldKey 对应的字段。
type Dragging struct {
	FieldKey string
	Anchor   Anchor
}

// Resizing 表示正在通过右下角手柄调整 FieldKey 的尺寸。
type Resizing struct {
	FieldKey string
	Anchor   Anchor
}

func (Idle) Name() string     { return "idle" }
func (Dragging) Name() string { return "dragging" }
func (Resizing) Name() string { return "resizing" }

func (Idle) state()     {}
func (Dragging) state() {}
func (Resizing) state() {}

// IsActive 判断状态是否需要全局指针监听。
func IsActive(s State) bool {
	switch s.(type) {
	case Dragging, Resizing:
		return true
	default:
		return false
	}
}
