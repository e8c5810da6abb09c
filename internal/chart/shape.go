package chart

import (
	"math"
	"strings"
)

// pathBuilder accumulates SVG path data with fixed coordinate precision.
type pathBuilder struct {
	sb strings.Builder
}

func (p *pathBuilder) moveTo(x, y float64) {
	p.sb.WriteString("M" + num(x) + "," + num(y))
}

func (p *pathBuilder) lineTo(x, y float64) {
	p.sb.WriteString("L" + num(x) + "," + num(y))
}

func (p *pathBuilder) curveTo(x1, y1, x2, y2, x, y float64) {
	p.sb.WriteString("C" + num(x1) + "," + num(y1) + "," + num(x2) + "," + num(y2) + "," + num(x) + "," + num(y))
}

func (p *pathBuilder) arcTo(r float64, large, sweep bool, x, y float64) {
	p.sb.WriteString("A" + num(r) + "," + num(r) + ",0," + flag(large) + "," + flag(sweep) + "," + num(x) + "," + num(y))
}

func (p *pathBuilder) close() { p.sb.WriteString("Z") }

func (p *pathBuilder) String() string { return p.sb.String() }

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// monotoneX interpolates points with a cubic curve that is monotone in y
// between neighbours and never overshoots the data (Steffen's method).
type monotoneX struct {
	path           pathBuilder
	x0, y0, x1, y1 float64
	t0             float64
	n              int
}

func newMonotoneX() *monotoneX {
	nan := math.NaN()
	return &monotoneX{x0: nan, y0: nan, x1: nan, y1: nan}
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// slope3 is the tangent at (x1,y1) given its two neighbours.
func (m *monotoneX) slope3(x2, y2 float64) float64 {
	h0 := m.x1 - m.x0
	h1 := x2 - m.x1
	d0, d1 := h0, h1
	if d0 == 0 && h1 < 0 {
		d0 = math.Copysign(0, -1)
	}
	if d1 == 0 && h0 < 0 {
		d1 = math.Copysign(0, -1)
	}
	s0 := (m.y1 - m.y0) / d0
	s1 := (y2 - m.y1) / d1
	p := (s0*h1 + s1*h0) / (h0 + h1)
	t := (sign(s0) + sign(s1)) * math.Min(math.Min(math.Abs(s0), math.Abs(s1)), 0.5*math.Abs(p))
	if math.IsNaN(t) {
		return 0
	}
	return t
}

// slope2 is the one-sided tangent at an end point.
func (m *monotoneX) slope2(t float64) float64 {
	h := m.x1 - m.x0
	if h != 0 {
		return (3*(m.y1-m.y0)/h - t) / 2
	}
	return t
}

func (m *monotoneX) segment(t0, t1 float64) {
	dx := (m.x1 - m.x0) / 3
	m.path.curveTo(m.x0+dx, m.y0+dx*t0, m.x1-dx, m.y1-dx*t1, m.x1, m.y1)
}

func (m *monotoneX) point(x, y float64) {
	if x == m.x1 && y == m.y1 {
		return
	}
	t1 := math.NaN()
	switch m.n {
	case 0:
		m.n = 1
		m.path.moveTo(x, y)
	case 1:
		m.n = 2
	case 2:
		m.n = 3
		t1 = m.slope3(x, y)
		m.segment(m.slope2(t1), t1)
	default:
		t1 = m.slope3(x, y)
		m.segment(m.t0, t1)
	}
	m.x0, m.x1 = m.x1, x
	m.y0, m.y1 = m.y1, y
	m.t0 = t1
}

func (m *monotoneX) end() string {
	switch m.n {
	case 2:
		m.path.lineTo(m.x1, m.y1)
	case 3:
		m.segment(m.t0, m.slope2(m.t0))
	}
	return m.path.String()
}

// wedge is one slice of a pie layout. Angles are radians clockwise from
// twelve o'clock.
type wedge struct {
	index      int
	value      float64
	startAngle float64
	endAngle   float64
}

// pieLayout assigns each value an angular extent proportional to it. Input
// order is kept and the first wedge starts at angle 0. Non-positive values
// get an empty wedge.
func pieLayout(values []float64) []wedge {
	sum := 0.0
	for _, v := range values {
		if v > 0 {
			sum += v
		}
	}
	k := 0.0
	if sum > 0 {
		k = 2 * math.Pi / sum
	}
	out := make([]wedge, len(values))
	a := 0.0
	for i, v := range values {
		da := 0.0
		if v > 0 {
			da = v * k
		}
		out[i] = wedge{index: i, value: v, startAngle: a, endAngle: a + da}
		a += da
	}
	return out
}

const arcEpsilon = 1e-12

// arcPath draws a filled wedge of radius r centred at (cx, cy).
func arcPath(w wedge, cx, cy, r float64) string {
	var p pathBuilder
	a0 := w.startAngle - math.Pi/2
	a1 := w.endAngle - math.Pi/2
	da := w.endAngle - w.startAngle
	x0, y0 := cx+r*math.Cos(a0), cy+r*math.Sin(a0)

	switch {
	case da >= 2*math.Pi-arcEpsilon:
		p.moveTo(x0, y0)
		p.arcTo(r, true, true, 2*cx-x0, 2*cy-y0)
		p.arcTo(r, true, true, x0, y0)
	case da <= arcEpsilon:
		p.moveTo(x0, y0)
		p.lineTo(cx, cy)
	default:
		p.moveTo(x0, y0)
		p.arcTo(r, da > math.Pi, true, cx+r*math.Cos(a1), cy+r*math.Sin(a1))
		p.lineTo(cx, cy)
	}
	p.close()
	return p.String()
}

// centroid is the midpoint of the wedge at half the radius.
func centroid(w wedge, cx, cy, r float64) (float64, float64) {
	a := (w.startAngle+w.endAngle)/2 - math.Pi/2
	return cx + math.Cos(a)*r/2, cy + math.Sin(a)*r/2
}
