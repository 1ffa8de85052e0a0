package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/checkpress/binding"
	"github.com/ByLCY/checkpress/layout"
)

type fakePointer struct {
	attached int
	detached int
	move     func(Pointer)
	up       func(Pointer)
}

func (f *fakePointer) Attach(onMove, onUp func(Pointer)) func() {
	f.attached++
	f.move, f.up = onMove, onUp
	return func() {
		f.detached++
		f.move, f.up = nil, nil
	}
}

func (f *fakePointer) listening() bool { return f.move != nil }

func testModel() *layout.Model {
	cut := 3.5
	return &layout.Model{
		Page: layout.Page{Size: "letter", WidthIn: 8.5, HeightIn: 11},
		Layout: layout.Layout{
			WidthIn:       8.5,
			CheckHeightIn: 3.5,
			Stub1Enabled:  true,
			Stub1HeightIn: 3,
			CutLine1In:    &cut,
		},
		View: layout.View{Zoom: 1},
		Fields: layout.LayoutProfile{
			"payee":      {X: 1, Y: 1, W: 4, H: 0.4, FontIn: 0.16},
			"amount":     {X: 6, Y: 1, W: 1.5, H: 0.4, FontIn: 0.16},
			"stub1_memo": {X: 0.5, Y: 0.5, W: 3, H: 0.3, FontIn: 0.14},
		},
	}
}

func newTestSurface(m *layout.Model, ptr *fakePointer, changes *[]LayoutChange) *Surface {
	return New(m, Options{
		EditMode: true,
		Resolver: binding.NewResolver(binding.DefaultDateFormat()),
		Pointer:  ptr,
		OnChange: func(c LayoutChange) { *changes = append(*changes, c) },
	})
}

func TestRenderUsesZoomedPixels(t *testing.T) {
	m := testModel()
	m.View.Zoom = 1.5
	s := New(m, Options{Resolver: binding.NewResolver(binding.DefaultDateFormat())})

	v := s.Render(layout.SingleCheck(&layout.CheckData{Payee: "Acme Corp", Amount: "12.5"}))

	assert.InDelta(t, 8.5*96*1.5, v.WidthPx, 1e-9)
	assert.InDelta(t, 6.5*96*1.5, v.HeightPx, 1e-9)
	require.Len(t, v.Boxes, 2, "empty fields are omitted outside edit mode")
	payee := v.Boxes[0]
	assert.Equal(t, "payee", payee.Key)
	assert.Equal(t, "Acme Corp", payee.Text)
	assert.InDelta(t, 144, payee.X, 1e-9)
	assert.InDelta(t, 144, payee.Y, 1e-9)
	assert.InDelta(t, 576, payee.W, 1e-9)
	assert.InDelta(t, 0.16*96*1.5, payee.FontPx, 1e-9)
	assert.InDelta(t, payee.X+payee.W-HandleSizePx, payee.Handle.X, 1e-9)
	assert.Equal(t, "$12.50", v.Boxes[1].Text)

	require.Len(t, v.Guides, 1)
	assert.InDelta(t, 3.5*96*1.5, v.Guides[0].Y, 1e-9)
}

func TestRenderEditModeShowsEmptyFields(t *testing.T) {
	s := New(testModel(), Options{EditMode: true})
	v := s.Render(layout.SingleCheck(nil))
	require.Len(t, v.Boxes, 3)
	for _, b := range v.Boxes {
		assert.True(t, b.Empty, b.Key)
	}
	stub := v.Boxes[2]
	assert.Equal(t, "stub1_memo", stub.Key)
	assert.InDelta(t, (0.5+3.5)*96, stub.Y, 1e-9)
}

func TestRenderTemplateBackgroundPerCheck(t *testing.T) {
	m := testModel()
	m.Template = &layout.Template{Src: "check.png", Opacity: 0.4, Fit: layout.FitCover}
	s := New(m, Options{SheetMode: true})

	v := s.Render(layout.SheetChecks(nil, nil, nil))
	require.Len(t, v.Backgrounds, 3)
	assert.InDelta(t, 2*3.5*96, v.Backgrounds[2].Y, 1e-9)
	assert.InDelta(t, 0.4, v.Backgrounds[0].Opacity, 1e-9)
	assert.Len(t, v.Guides, 2)
}

func TestDragMovesFieldWithoutClamping(t *testing.T) {
	m := testModel()
	ptr := &fakePointer{}
	var changes []LayoutChange
	s := newTestSurface(m, ptr, &changes)

	s.PointerDown(Pointer{X: 200, Y: 110})
	st, ok := s.State().(Dragging)
	require.True(t, ok, "expected dragging, got %s", s.State().Name())
	assert.Equal(t, "payee", st.FieldKey)
	assert.Equal(t, 1, ptr.attached)
	require.True(t, ptr.listening())

	ptr.move(Pointer{X: 248, Y: 134})
	assert.InDelta(t, 1.5, m.Fields["payee"].X, 1e-9)
	assert.InDelta(t, 1.25, m.Fields["payee"].Y, 1e-9)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeMove, changes[0].Kind)
	assert.Equal(t, m.Fields["payee"], changes[0].Field)

	ptr.move(Pointer{X: -400, Y: -400})
	assert.Less(t, m.Fields["payee"].X, 0.0)
	assert.Less(t, m.Fields["payee"].Y, 0.0)
	assert.InDelta(t, 4.0, m.Fields["payee"].W, 1e-9, "drag must not change size")

	ptr.up(Pointer{})
	assert.IsType(t, Idle{}, s.State())
	assert.Equal(t, 1, ptr.detached)
	assert.False(t, ptr.listening())
}

func TestDragNormalizesZoom(t *testing.T) {
	m := testModel()
	m.View.Zoom = 2
	ptr := &fakePointer{}
	var changes []LayoutChange
	s := newTestSurface(m, ptr, &changes)

	s.PointerDown(Pointer{X: 300, Y: 200})
	require.IsType(t, Dragging{}, s.State())
	ptr.move(Pointer{X: 396, Y: 200})
	assert.InDelta(t, 1.5, m.Fields["payee"].X, 1e-9)
	assert.InDelta(t, 1.0, m.Fields["payee"].Y, 1e-9)
}

func TestDragStubFieldKeepsSectionRelativeY(t *testing.T) {
	m := testModel()
	ptr := &fakePointer{}
	var changes []LayoutChange
	s := newTestSurface(m, ptr, &changes)

	s.PointerDown(Pointer{X: 100, Y: 390})
	st, ok := s.State().(Dragging)
	require.True(t, ok)
	assert.Equal(t, "stub1_memo", st.FieldKey)
	ptr.move(Pointer{X: 100, Y: 486})
	assert.InDelta(t, 1.5, m.Fields["stub1_memo"].Y, 1e-9)
}

func TestResizeEnforcesMinimum(t *testing.T) {
	m := testModel()
	ptr := &fakePointer{}
	var changes []LayoutChange
	s := newTestSurface(m, ptr, &changes)

	s.PointerDown(Pointer{X: 475, Y: 130})
	st, ok := s.State().(Resizing)
	require.True(t, ok, "handle hit should start resizing, got %s", s.State().Name())
	assert.Equal(t, "payee", st.FieldKey)

	ptr.move(Pointer{X: 475 + 96, Y: 130 + 48})
	assert.InDelta(t, 5.0, m.Fields["payee"].W, 1e-9)
	assert.InDelta(t, 0.9, m.Fields["payee"].H, 1e-9)

	ptr.move(Pointer{X: 0, Y: 0})
	assert.Equal(t, layout.MinFieldWidthIn, m.Fields["payee"].W)
	assert.Equal(t, layout.MinFieldHeightIn, m.Fields["payee"].H)
	assert.InDelta(t, 1.0, m.Fields["payee"].X, 1e-9, "resize must not move the field")
	require.Len(t, changes, 2)
	assert.Equal(t, ChangeResize, changes[1].Kind)
}

func TestHitTestPrefersTopmostBox(t *testing.T) {
	m := testModel()
	m.Fields["memo"] = layout.FieldSpec{X: 1, Y: 1, W: 2, H: 0.4}
	ptr := &fakePointer{}
	var changes []LayoutChange
	s := newTestSurface(m, ptr, &changes)

	s.PointerDown(Pointer{X: 120, Y: 110})
	st, ok := s.State().(Dragging)
	require.True(t, ok)
	assert.Equal(t, "memo", st.FieldKey, "memo is painted after payee")
}

func TestPointerDownIgnoredOutsideEditModeOrWhileActive(t *testing.T) {
	m := testModel()
	ptr := &fakePointer{}
	s := New(m, Options{Pointer: ptr})

	s.PointerDown(Pointer{X: 200, Y: 110})
	assert.IsType(t, Idle{}, s.State())
	assert.Equal(t, 0, ptr.attached)

	s.SetEditMode(true)
	s.PointerDown(Pointer{X: 5, Y: 5})
	assert.IsType(t, Idle{}, s.State(), "miss keeps idle")

	s.PointerDown(Pointer{X: 200, Y: 110})
	s.PointerDown(Pointer{X: 600, Y: 110})
	assert.Equal(t, 1, ptr.attached)
	assert.Equal(t, "payee", s.State().(Dragging).FieldKey)
}

func TestDisablingEditModeReturnsToIdle(t *testing.T) {
	m := testModel()
	ptr := &fakePointer{}
	var changes []LayoutChange
	s := newTestSurface(m, ptr, &changes)

	s.PointerDown(Pointer{X: 475, Y: 130})
	require.True(t, IsActive(s.State()))
	s.SetEditMode(false)
	assert.IsType(t, Idle{}, s.State())
	assert.Equal(t, 1, ptr.detached)

	s.PointerMove(Pointer{X: 900, Y: 900})
	assert.Empty(t, changes, "moves after returning to idle are ignored")
}
