package layout

// 该文件定义支票几何模型：字段、版式、模板与聚合根 Model。
// 所有长度单位均为英寸（in），原点位于左上角；像素与点只在渲染边界换算得到。

// 编辑时强制的字段最小尺寸（英寸）。
const (
	MinFieldWidthIn  = 0.5
	MinFieldHeightIn = 0.2
	DefaultFontIn    = 0.16
)

// FieldSpec 描述一个可放置字段。Y 相对于字段所在区段（section）的顶部。
type FieldSpec struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w"`
	H      float64 `json:"h"`
	FontIn float64 `json:"fontIn"`
	Label  string  `json:"label"`
}

// Clamped 返回用于渲染的安全副本：宽高不低于最小值，字号无效时回退默认值。
// 加载进来的数据可能违反最小尺寸，这里只在渲染时收敛，不修改原模型。
func (f FieldSpec) Clamped() FieldSpec {
	out := f
	if !finite(out.X) {
		out.X = 0
	}
	if !finite(out.Y) {
		out.Y = 0
	}
	if !finite(out.W) || out.W < MinFieldWidthIn {
		out.W = MinFieldWidthIn
	}
	if !finite(out.H) || out.H < MinFieldHeightIn {
		out.H = MinFieldHeightIn
	}
	if !finite(out.FontIn) || out.FontIn <= 0 {
		out.FontIn = DefaultFontIn
	}
	return out
}

// LayoutProfile 以约定的字段键（date、payee、stub1_amount……）映射到字段几何。
type LayoutProfile map[string]FieldSpec

// Clone 深拷贝一份 profile。
func (p LayoutProfile) Clone() LayoutProfile {
	if p == nil {
		return nil
	}
	out := make(LayoutProfile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Layout 记录页面与区段几何。CutLine 仅用于编辑界面的参考线，不参与排版。
type Layout struct {
	WidthIn       float64  `json:"widthIn"`
	CheckHeightIn float64  `json:"checkHeightIn"`
	Stub1Enabled  bool     `json:"stub1Enabled"`
	Stub1HeightIn float64  `json:"stub1HeightIn"`
	Stub2Enabled  bool     `json:"stub2Enabled"`
	Stub2HeightIn float64  `json:"stub2HeightIn"`
	CutLine1In    *float64 `json:"cutLine1In,omitempty"`
	CutLine2In    *float64 `json:"cutLine2In,omitempty"`
}

// Page 是名义纸张尺寸（英寸），例如 letter 为 8.5 x 11。
type Page struct {
	Size     string  `json:"size"`
	WidthIn  float64 `json:"widthIn"`
	HeightIn float64 `json:"heightIn"`
}

// Placement 是支票块在纸张上的偏移（英寸），打印时转换为页边距。
type Placement struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// View 只影响编辑界面。
type View struct {
	Zoom float64 `json:"zoom"`
}

// 背景模板的适配方式。
const (
	FitStretch = "stretch"
	FitContain = "contain"
	FitCover   = "cover"
)

// Template 是可选的背景图片引用，对引擎而言 Src 是不透明的。
type Template struct {
	Src     string  `json:"src"`
	Opacity float64 `json:"opacity"`
	Fit     string  `json:"fit"`
}

// NormalizedOpacity 将透明度限制在 [0,1]，未设置时视为 1。
func (t Template) NormalizedOpacity() float64 {
	switch {
	case !finite(t.Opacity):
		return 1
	case t.Opacity <= 0:
		return 0
	case t.Opacity > 1:
		return 1
	}
	return t.Opacity
}

// NormalizedFit 返回合法的 fit 值，未知值回退为 stretch。
func (t Template) NormalizedFit() string {
	switch t.Fit {
	case FitContain, FitCover:
		return t.Fit
	default:
		return FitStretch
	}
}

// Slot 是三联（sheet）模式下的位置。
type Slot string

const (
	SlotTop    Slot = "top"
	SlotMiddle Slot = "middle"
	SlotBottom Slot = "bottom"
)

// Slots 按从上到下的顺序返回三个槽位。
func Slots() [3]Slot { return [3]Slot{SlotTop, SlotMiddle, SlotBottom} }

// Model 是聚合根。SlotFields 为每个槽位预留的独立字段配置，目前渲染只读取 Fields。
type Model struct {
	Page       Page                   `json:"page"`
	Placement  Placement              `json:"placement"`
	Layout     Layout                 `json:"layout"`
	View       View                   `json:"view"`
	Template   *Template              `json:"template,omitempty"`
	Fields     LayoutProfile          `json:"fields"`
	SlotFields map[Slot]LayoutProfile `json:"slotFields"`
}

// Clone 深拷贝模型，供外部持久化或撤销栈使用。
func (m *Model) Clone() *Model {
	if m == nil {
		return nil
	}
	out := *m
	if m.Template != nil {
		tpl := *m.Template
		out.Template = &tpl
	}
	if m.Layout.CutLine1In != nil {
		v := *m.Layout.CutLine1In
		out.Layout.CutLine1In = &v
	}
	if m.Layout.CutLine2In != nil {
		v := *m.Layout.CutLine2In
		out.Layout.CutLine2In = &v
	}
	out.Fields = m.Fields.Clone()
	if m.SlotFields != nil {
		out.SlotFields = make(map[Slot]LayoutProfile, len(m.SlotFields))
		for k, v := range m.SlotFields {
			out.SlotFields[k] = v.Clone()
		}
	}
	return &out
}

// LineItem 是存根上的明细行。
type LineItem struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

// CheckData 是一张支票的内容。AmountWords 仅为派生值，渲染时以 Amount 为准。
type CheckData struct {
	Date         string     `json:"date"`
	Payee        string     `json:"payee"`
	Amount       string     `json:"amount"`
	AmountWords  string     `json:"amountWords,omitempty"`
	Memo         string     `json:"memo"`
	ExternalMemo string     `json:"external_memo"`
	InternalMemo string     `json:"internal_memo"`
	LineItems    []LineItem `json:"line_items"`
	Address      string     `json:"address"`
	CheckNumber  string     `json:"checkNumber"`
}

// Section 是由 Layout 与外部 layoutOrder 推导出的区段。
type Section struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	HeightIn float64  `json:"heightIn"`
	Enabled  bool     `json:"enabled"`
	Fields   []string `json:"fields"`
}
