package layout

import (
	"sort"
	"strings"
)

// 区段键。
const (
	SectionCheck = "check"
	SectionStub1 = "stub1"
	SectionStub2 = "stub2"
)

// 支票主体的字段键。
const (
	FieldDate        = "date"
	FieldPayee       = "payee"
	FieldAmount      = "amount"
	FieldAmountWords = "amountWords"
	FieldMemo        = "memo"
	FieldAddress     = "address"
	FieldCheckNumber = "checkNumber"
	FieldLineItems   = "lineItems"
)

// checkFieldOrder 与 stubFieldOrder 决定同一区段内的绘制顺序（后绘制者在上层）。
var (
	checkFieldOrder = []string{FieldDate, FieldPayee, FieldAmount, FieldAmountWords, FieldMemo, FieldAddress, FieldCheckNumber}
	stubFieldOrder  = []string{FieldDate, FieldPayee, FieldAmount, FieldMemo, FieldCheckNumber, FieldAddress, FieldLineItems}
)

// DefaultOrder 是未提供 layoutOrder 时使用的区段顺序。
var DefaultOrder = []string{SectionCheck, SectionStub1, SectionStub2}

// StubKey 返回带存根前缀的字段键，例如 StubKey("stub1", "date") == "stub1_date"。
func StubKey(section, field string) string { return section + "_" + field }

// SplitFieldKey 将字段键拆为区段与基础键："stub2_memo" -> ("stub2", "memo")。
func SplitFieldKey(key string) (section, base string) {
	for _, stub := range []string{SectionStub1, SectionStub2} {
		if strings.HasPrefix(key, stub+"_") {
			return stub, strings.TrimPrefix(key, stub+"_")
		}
	}
	return SectionCheck, key
}

// SectionFields 返回 profile 中属于 section 的字段键：先按约定顺序，其余按字典序追加。
func SectionFields(section string, profile LayoutProfile) []string {
	conventional := checkFieldOrder
	if section != SectionCheck {
		conventional = stubFieldOrder
	}
	seen := make(map[string]bool, len(conventional))
	var out []string
	for _, base := range conventional {
		key := base
		if section != SectionCheck {
			key = StubKey(section, base)
		}
		seen[key] = true
		if _, ok := profile[key]; ok {
			out = append(out, key)
		}
	}
	var extra []string
	for key := range profile {
		if seen[key] {
			continue
		}
		if sec, _ := SplitFieldKey(key); sec == section {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Sections 推导全部区段（含未启用的）。sheetMode 下存根强制关闭。
func Sections(l Layout, profile LayoutProfile, sheetMode bool) map[string]Section {
	return map[string]Section{
		SectionCheck: {
			Key:      SectionCheck,
			Name:     "Check",
			HeightIn: nonNegative(l.CheckHeightIn),
			Enabled:  true,
			Fields:   SectionFields(SectionCheck, profile),
		},
		SectionStub1: {
			Key:      SectionStub1,
			Name:     "Stub 1",
			HeightIn: nonNegative(l.Stub1HeightIn),
			Enabled:  l.Stub1Enabled && !sheetMode,
			Fields:   SectionFields(SectionStub1, profile),
		},
		SectionStub2: {
			Key:      SectionStub2,
			Name:     "Stub 2",
			HeightIn: nonNegative(l.Stub2HeightIn),
			Enabled:  l.Stub2Enabled && !sheetMode,
			Fields:   SectionFields(SectionStub2, profile),
		},
	}
}

// PlacedSection 是已分配纵向偏移的区段。Slot 仅在 sheet 模式下有值。
type PlacedSection struct {
	Section
	Slot      Slot    `json:"slot,omitempty"`
	OffsetYIn float64 `json:"offsetYIn"`
}

// Composition 是区段排布结果，编辑界面与打印文档共用同一份。
type Composition struct {
	Sections  []PlacedSection `json:"sections"`
	WidthIn   float64         `json:"widthIn"`
	HeightIn  float64         `json:"heightIn"`
	SheetMode bool            `json:"sheetMode"`
}

// Compose 计算启用区段的纵向偏移。
//
// 堆叠模式：按 order 依次累加已启用区段的高度，未启用区段不占位也不渲染。
// sheet 模式：check 区段重复三次，第 i 个槽位偏移 i × CheckHeightIn，总高 3 × CheckHeightIn。
func Compose(l Layout, profile LayoutProfile, order []string, sheetMode bool) Composition {
	all := Sections(l, profile, sheetMode)
	comp := Composition{WidthIn: l.WidthIn, SheetMode: sheetMode}

	if sheetMode {
		check := all[SectionCheck]
		for i, slot := range Slots() {
			comp.Sections = append(comp.Sections, PlacedSection{
				Section:   check,
				Slot:      slot,
				OffsetYIn: float64(i) * check.HeightIn,
			})
		}
		comp.HeightIn = check.HeightIn * 3
		return comp
	}

	if len(order) == 0 {
		order = DefaultOrder
	}
	seen := map[string]bool{}
	offset := 0.0
	for _, key := range order {
		sec, ok := all[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		if !sec.Enabled {
			continue
		}
		comp.Sections = append(comp.Sections, PlacedSection{Section: sec, OffsetYIn: offset})
		offset += sec.HeightIn
	}
	comp.HeightIn = offset
	return comp
}

// PlacedField 是字段在整页中的绝对几何（英寸，已做防御性收敛）。
type PlacedField struct {
	Key     string    `json:"key"`
	Section string    `json:"section"`
	Slot    Slot      `json:"slot,omitempty"`
	Spec    FieldSpec `json:"spec"`
}

// Place 是唯一的字段定位实现：两个渲染面都消费它的结果，不各自重算偏移。
// 返回顺序即绘制顺序（z-order）。只读取 m.Fields，不读取 SlotFields。
func Place(m *Model, comp Composition) []PlacedField {
	if m == nil {
		return nil
	}
	var out []PlacedField
	for _, sec := range comp.Sections {
		for _, key := range sec.Fields {
			spec, ok := m.Fields[key]
			if !ok {
				continue
			}
			spec = spec.Clamped()
			spec.Y += sec.OffsetYIn
			out = append(out, PlacedField{
				Key:     key,
				Section: sec.Key,
				Slot:    sec.Slot,
				Spec:    spec,
			})
		}
	}
	return out
}

func nonNegative(v float64) float64 {
	if !finite(v) || v < 0 {
		return 0
	}
	return v
}
