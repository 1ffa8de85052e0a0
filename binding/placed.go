package binding

import "github.com/ByLCY/checkpress/layout"

// ResolvedField pairs a placed field with its display text.
type ResolvedField struct {
	layout.PlacedField
	Text string
}

// ResolvePlaced resolves the text of every placed field against the data routed to its slot.
// Both the editing surface and the print document call this; neither resolves values on its own.
func (r Resolver) ResolvePlaced(placed []layout.PlacedField, data layout.SlotData) []ResolvedField {
	out := make([]ResolvedField, 0, len(placed))
	for _, pf := range placed {
		out = append(out, ResolvedField{
			PlacedField: pf,
			Text:        r.Resolve(pf.Key, data.For(pf.Slot)),
		})
	}
	return out
}
