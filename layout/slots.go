package layout

// SlotData 指定渲染时使用的支票内容：堆叠模式读取 Single，sheet 模式按槽位读取 Slots。
// 引擎不会在一次渲染调用之后保留这些数据。
type SlotData struct {
	Single *CheckData
	Slots  map[Slot]*CheckData
}

// SingleCheck 构造堆叠模式的数据。
func SingleCheck(d *CheckData) SlotData { return SlotData{Single: d} }

// SheetChecks 构造三联模式的数据，空槽位传 nil。
func SheetChecks(top, middle, bottom *CheckData) SlotData {
	return SlotData{Slots: map[Slot]*CheckData{
		SlotTop:    top,
		SlotMiddle: middle,
		SlotBottom: bottom,
	}}
}

// For 返回某个区段应使用的数据；slot 为空表示堆叠模式。
func (s SlotData) For(slot Slot) *CheckData {
	if slot == "" {
		return s.Single
	}
	return s.Slots[slot]
}

// First 返回第一份非空数据，用于标题等全局信息。
func (s SlotData) First() *CheckData {
	if s.Single != nil {
		return s.Single
	}
	for _, slot := range Slots() {
		if d := s.Slots[slot]; d != nil {
			return d
		}
	}
	return nil
}

// Area 是以英寸表示的矩形区域。
type Area struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// BackgroundAreas 返回背景模板应覆盖的区域：每个 check 区段一块（sheet 模式下重复三次）。
func BackgroundAreas(comp Composition) []Area {
	var out []Area
	for _, sec := range comp.Sections {
		if sec.Key != SectionCheck {
			continue
		}
		out = append(out, Area{X: 0, Y: sec.OffsetYIn, W: comp.WidthIn, H: sec.HeightIn})
	}
	return out
}
