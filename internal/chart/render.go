package chart

// Render lays out spec on the fixed 500x300 surface. It returns nil when the
// spec has no data or an unsupported type: nothing is drawn and that is not
// an error. Rendering is deterministic.
func Render(spec Spec) *Scene {
	if len(spec.Data) == 0 || !spec.Supported() {
		return nil
	}

	s := &Scene{Type: spec.Type, Width: Width, Height: Height}

	if spec.Options.Title != "" {
		s.add(Text{Class: "title", X: Width / 2, Y: 25, Anchor: AnchorMiddle, Fill: ColorTitle, Size: 14, Bold: true, Content: spec.Options.Title})
	}

	switch spec.Type {
	case Bar:
		drawBar(s, spec)
	case Line:
		drawLine(s, spec)
	case Scatter:
		drawScatter(s, spec)
	case Pie:
		drawPie(s, spec)
	}

	if spec.Options.XLabel != "" {
		s.add(Text{Class: "x-label", X: Width / 2, Y: Height - 10, Anchor: AnchorMiddle, Fill: ColorMuted, Size: 10, Content: spec.Options.XLabel})
	}
	if spec.Options.YLabel != "" {
		s.add(Text{Class: "y-label", X: -Height / 2, Y: 15, Anchor: AnchorMiddle, Fill: ColorMuted, Size: 10, Rotate: -90, Content: spec.Options.YLabel})
	}
	return s
}

// valueScale is the shared [0, max] niced linear scale of the y axis.
func valueScale(data []Record, key string) Linear {
	return NewLinear(0, maxOf(data, key), PlotHeight, 0).Nice(defaultTicks)
}

func drawBar(s *Scene, spec Spec) {
	xKey, yKey := spec.Keys()
	x := NewBand(keysOf(spec.Data, xKey), 0, PlotWidth, 0.2)
	y := valueScale(spec.Data, yKey)

	bottomBandAxis(s, x)
	leftAxis(s, y)

	for _, r := range spec.Data {
		v, ok := number(r[yKey])
		if !ok {
			continue
		}
		bx, _ := x.Map(label(r[xKey]))
		top := y.Map(v)
		s.add(Rect{
			Class: "bar",
			X:     MarginLeft + bx,
			Y:     MarginTop + top,
			W:     x.Bandwidth(),
			H:     max(0, PlotHeight-top),
			RX:    4,
			Fill:  ColorAccent,
		})
	}
}

func drawLine(s *Scene, spec Spec) {
	xKey, yKey := spec.Keys()
	x := NewPoint(keysOf(spec.Data, xKey), 0, PlotWidth)
	y := valueScale(spec.Data, yKey)

	bottomBandAxis(s, x)
	leftAxis(s, y)

	curve := newMonotoneX()
	var dots []Element
	for _, r := range spec.Data {
		v, ok := number(r[yKey])
		if !ok {
			continue
		}
		px, _ := x.Map(label(r[xKey]))
		cx, cy := MarginLeft+px, MarginTop+y.Map(v)
		curve.point(cx, cy)
		dots = append(dots, Circle{Class: "dot", CX: cx, CY: cy, R: 4, Fill: ColorAccent, Opacity: 1})
	}
	s.add(Path{Class: "line", D: curve.end(), Fill: "none", Stroke: ColorAccent, StrokeWidth: 2})
	s.add(dots...)
}

func drawScatter(s *Scene, spec Spec) {
	xKey, yKey := spec.Keys()
	x := NewLinear(0, maxOf(spec.Data, xKey), 0, PlotWidth).Nice(defaultTicks)
	y := valueScale(spec.Data, yKey)

	bottomLinearAxis(s, x)
	leftAxis(s, y)

	for _, r := range spec.Data {
		vx, okx := number(r[xKey])
		vy, oky := number(r[yKey])
		if !okx || !oky {
			continue
		}
		s.add(Circle{
			Class:   "point",
			CX:      MarginLeft + x.Map(vx),
			CY:      MarginTop + y.Map(vy),
			R:       5,
			Fill:    ColorAccent,
			Opacity: 0.7,
		})
	}
}

func drawPie(s *Scene, spec Spec) {
	labelKey, valueKey := spec.Keys()
	radius := min(PlotWidth, PlotHeight) / 2.0
	cx, cy := float64(MarginLeft+PlotWidth/2.0), float64(MarginTop+PlotHeight/2.0)

	values := make([]float64, len(spec.Data))
	for i, r := range spec.Data {
		values[i], _ = number(r[valueKey])
	}

	wedges := pieLayout(values)
	for _, w := range wedges {
		s.add(Path{Class: "arc", D: arcPath(w, cx, cy, radius), Fill: Category10[w.index%len(Category10)]})
	}
	for _, w := range wedges {
		lx, ly := centroid(w, cx, cy, radius)
		s.add(Text{Class: "arc-label", X: lx, Y: ly, Anchor: AnchorMiddle, Fill: ColorTitle, Size: 10, Content: label(spec.Data[w.index][labelKey])})
	}
}

const tickSize = 6

// bottomBandAxis draws the x axis of a band or point scale.
func bottomBandAxis(s *Scene, x Band) {
	y0 := float64(MarginTop + PlotHeight)
	s.add(Path{Class: "domain", D: bottomDomain(y0), Fill: "none", Stroke: ColorAxis, StrokeWidth: 1})
	for _, key := range x.Domain() {
		bx, _ := x.Map(key)
		tx := MarginLeft + bx + x.Bandwidth()/2
		s.add(Rule{Class: "tick", X1: tx, Y1: y0, X2: tx, Y2: y0 + tickSize, Stroke: ColorAxis})
		s.add(Text{Class: "tick-label", X: tx, Y: y0 + tickSize + 3 + 7.1, Anchor: AnchorMiddle, Fill: ColorMuted, Size: 10, Content: key})
	}
}

// bottomLinearAxis draws the x axis of a linear scale.
func bottomLinearAxis(s *Scene, x Linear) {
	y0 := float64(MarginTop + PlotHeight)
	s.add(Path{Class: "domain", D: bottomDomain(y0), Fill: "none", Stroke: ColorAxis, StrokeWidth: 1})
	values, step := x.Ticks(defaultTicks)
	format := tickFormat(step)
	for _, v := range values {
		tx := MarginLeft + x.Map(v)
		s.add(Rule{Class: "tick", X1: tx, Y1: y0, X2: tx, Y2: y0 + tickSize, Stroke: ColorAxis})
		s.add(Text{Class: "tick-label", X: tx, Y: y0 + tickSize + 3 + 7.1, Anchor: AnchorMiddle, Fill: ColorMuted, Size: 10, Content: format(v)})
	}
}

// leftAxis draws the y axis of a linear scale.
func leftAxis(s *Scene, y Linear) {
	var d pathBuilder
	d.moveTo(MarginLeft-tickSize, MarginTop+y.R0)
	d.lineTo(MarginLeft, MarginTop+y.R0)
	d.lineTo(MarginLeft, MarginTop+y.R1)
	d.lineTo(MarginLeft-tickSize, MarginTop+y.R1)
	s.add(Path{Class: "domain", D: d.String(), Fill: "none", Stroke: ColorAxis, StrokeWidth: 1})

	values, step := y.Ticks(defaultTicks)
	format := tickFormat(step)
	for _, v := range values {
		ty := MarginTop + y.Map(v)
		s.add(Rule{Class: "tick", X1: MarginLeft - tickSize, Y1: ty, X2: MarginLeft, Y2: ty, Stroke: ColorAxis})
		s.add(Text{Class: "tick-label", X: MarginLeft - tickSize - 3, Y: ty + 3.2, Anchor: AnchorEnd, Fill: ColorMuted, Size: 10, Content: format(v)})
	}
}

func bottomDomain(y0 float64) string {
	var d pathBuilder
	d.moveTo(MarginLeft, y0+tickSize)
	d.lineTo(MarginLeft, y0)
	d.lineTo(MarginLeft+PlotWidth, y0)
	d.lineTo(MarginLeft+PlotWidth, y0+tickSize)
	return d.String()
}
