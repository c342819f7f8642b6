package edgedetection

import "github.com/ironsheep/edge-filter-mcp/internal/filter"

func newConfigWidget(useForMasks bool) *filter.FormWidget {
	d := DefaultSettings()
	w := filter.NewFormWidget(ID().ID, 1, []filter.Field{
		{
			Name: PropHorizRadius, Label: "Horizontal radius", Kind: filter.FieldSlider,
			Min: MinRadius, Max: MaxRadius, Step: 1, Suffix: " px", Default: d.HorizRadius,
		},
		{
			Name: PropVertRadius, Label: "Vertical radius", Kind: filter.FieldSlider,
			Min: MinRadius, Max: MaxRadius, Step: 1, Suffix: " px", Default: d.VertRadius,
		},
		{
			Name: PropLockAspect, Label: "Lock aspect ratio", Kind: filter.FieldCheck,
			Default: d.LockAspect,
		},
		{
			Name: PropType, Label: "Formula", Kind: filter.FieldCombo,
			Options: []filter.Option{
				{Value: Prewitt.String(), Label: "Prewitt"},
				{Value: SobelVector.String(), Label: "Sobel"},
				{Value: Simple.String(), Label: "Simple"},
			},
			Default: d.Type.String(),
		},
		{
			Name: PropOutput, Label: "Output", Kind: filter.FieldCombo,
			Options: []filter.Option{
				{Value: Pythagorean.String(), Label: "All sides"},
				{Value: YGrowth.String(), Label: "Top edge"},
				{Value: YFall.String(), Label: "Bottom edge"},
				{Value: XFall.String(), Label: "Right edge"},
				{Value: XGrowth.String(), Label: "Left edge"},
				{Value: Radian.String(), Label: "Direction in radians"},
			},
			Default: d.Output.String(),
		},
		{
			Name: PropTransparency, Label: "Output as alpha", Kind: filter.FieldCheck,
			Default: d.Transparency,
		},
	})

	// A mask is a single selection channel; there is no separate alpha.
	if useForMasks {
		w.SetHidden(PropTransparency, true)
	}

	w.OnChange = syncAspect
	return w
}

// syncAspect keeps both radii equal while the aspect lock is on.
func syncAspect(w *filter.FormWidget, changed string) {
	locked, _ := w.Value(PropLockAspect)
	if on, _ := locked.(bool); !on {
		return
	}

	var from, to string
	switch changed {
	case PropHorizRadius, PropLockAspect:
		from, to = PropHorizRadius, PropVertRadius
	case PropVertRadius:
		from, to = PropVertRadius, PropHorizRadius
	default:
		return
	}
	v, _ := w.Value(from)
	_ = w.Set(to, v)
}
