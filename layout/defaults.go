package layout

import "strings"

// 常见纸张尺寸（英寸）。
var pageSizes = map[string]Page{
	"letter": {Size: "letter", WidthIn: 8.5, HeightIn: 11},
	"legal":  {Size: "legal", WidthIn: 8.5, HeightIn: 14},
	"a4":     {Size: "a4", WidthIn: 210 / MmPerIn, HeightIn: 297 / MmPerIn},
}

// LookupPage 按名称（不区分大小写）查找纸张尺寸。
func LookupPage(name string) (Page, bool) {
	p, ok := pageSizes[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// DefaultModel 返回一个 letter 纸、支票在上、两个存根在下的标准“支票 + 双存根”版式。
func DefaultModel() *Model {
	page, _ := LookupPage("letter")
	fields := LayoutProfile{
		FieldDate:        {X: 6.4, Y: 0.55, W: 1.6, H: 0.3, FontIn: 0.16, Label: "Date"},
		FieldPayee:       {X: 1.0, Y: 1.2, W: 5.2, H: 0.3, FontIn: 0.16, Label: "Pay to the Order of"},
		FieldAmount:      {X: 6.75, Y: 1.2, W: 1.35, H: 0.3, FontIn: 0.16, Label: "Amount"},
		FieldAmountWords: {X: 0.5, Y: 1.6, W: 6.6, H: 0.3, FontIn: 0.15, Label: "Amount in Words"},
		FieldAddress:     {X: 1.0, Y: 2.0, W: 3.5, H: 0.75, FontIn: 0.14, Label: "Address"},
		FieldMemo:        {X: 0.6, Y: 2.85, W: 3.4, H: 0.3, FontIn: 0.14, Label: "Memo"},
		FieldCheckNumber: {X: 7.3, Y: 0.2, W: 0.9, H: 0.25, FontIn: 0.14, Label: "Check #"},
	}
	for _, stub := range []string{SectionStub1, SectionStub2} {
		fields[StubKey(stub, FieldDate)] = FieldSpec{X: 0.5, Y: 0.3, W: 1.6, H: 0.3, FontIn: 0.14, Label: "Date"}
		fields[StubKey(stub, FieldPayee)] = FieldSpec{X: 2.3, Y: 0.3, W: 3.5, H: 0.3, FontIn: 0.14, Label: "Payee"}
		fields[StubKey(stub, FieldAmount)] = FieldSpec{X: 6.6, Y: 0.3, W: 1.4, H: 0.3, FontIn: 0.14, Label: "Amount"}
		fields[StubKey(stub, FieldCheckNumber)] = FieldSpec{X: 6.6, Y: 0.7, W: 1.4, H: 0.25, FontIn: 0.13, Label: "Check #"}
		fields[StubKey(stub, FieldMemo)] = FieldSpec{X: 0.5, Y: 0.7, W: 5.3, H: 0.3, FontIn: 0.13, Label: "Memo"}
		fields[StubKey(stub, FieldLineItems)] = FieldSpec{X: 0.5, Y: 1.15, W: 7.5, H: 1.9, FontIn: 0.12, Label: "Line Items"}
	}
	cut1, cut2 := 3.5, 7.0
	return &Model{
		Page: page,
		Layout: Layout{
			WidthIn:       8.5,
			CheckHeightIn: 3.5,
			Stub1Enabled:  true,
			Stub1HeightIn: 3.5,
			Stub2Enabled:  true,
			Stub2HeightIn: 4.0,
			CutLine1In:    &cut1,
			CutLine2In:    &cut2,
		},
		View:   View{Zoom: 1},
		Fields: fields,
		SlotFields: map[Slot]LayoutProfile{
			SlotTop:    {},
			SlotMiddle: {},
			SlotBottom: {},
		},
	}
}

// ComposeModel 是 Compose 的便捷形式，使用模型自身的版式与字段配置。
func ComposeModel(m *Model, order []string, sheetMode bool) Composition {
	if m == nil {
		return Composition{SheetMode: sheetMode}
	}
	return Compose(m.Layout, m.Fields, order, sheetMode)
}
