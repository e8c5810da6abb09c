package chart

import (
	"math"
	"strconv"
)

// Surface dimensions, in logical units.
const (
	Width  = 500
	Height = 300

	MarginTop    = 40
	MarginRight  = 30
	MarginBottom = 50
	MarginLeft   = 60

	PlotWidth  = Width - MarginLeft - MarginRight
	PlotHeight = Height - MarginTop - MarginBottom
)

// Colors used by the renderer.
const (
	ColorAccent = "#10b981"
	ColorTitle  = "white"
	ColorMuted  = "#888"
	ColorAxis   = "#333"
)

// Category10 is the categorical palette used for pie wedges.
var Category10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Element is one drawable primitive of a Scene.
type Element interface {
	isElement()
}

// Rect is an axis-aligned, optionally rounded rectangle.
type Rect struct {
	Class      string
	X, Y, W, H float64
	RX         float64
	Fill       string
}

// Circle is a filled disc.
type Circle struct {
	Class   string
	CX, CY  float64
	R       float64
	Fill    string
	Opacity float64
}

// Path is arbitrary SVG path data.
type Path struct {
	Class       string
	D           string
	Fill        string
	Stroke      string
	StrokeWidth float64
}

// Rule is a straight stroke.
type Rule struct {
	Class          string
	X1, Y1, X2, Y2 float64
	Stroke         string
}

// Anchor is the horizontal alignment of a Text.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Text is a single line label. X and Y are the baseline anchor point; when
// Rotate is non-zero they are expressed in the rotated frame, as in SVG's
// transform="rotate(...)".
type Text struct {
	Class   string
	X, Y    float64
	Anchor  Anchor
	Fill    string
	Size    float64
	Bold    bool
	Rotate  float64
	Content string
}

func (Rect) isElement() {}
func (Circle) isElement() {}
func (Path) isElement() {}
func (Rule) isElement() {}
func (Text) isElement() {}

// Scene is a fully laid out chart.
type Scene struct {
	Type     Type
	Width    float64
	Height   float64
	Elements []Element
}

func (s *Scene) add(e ...Element) { s.Elements = append(s.Elements, e...) }

// num formats a coordinate with at most three decimals.
func num(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
