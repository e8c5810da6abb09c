// Package segment splits a model reply into an ordered sequence of typed
// segments: markdown prose, chart specs, malformed chart payloads and HTML
// previews.
package segment

import "github.com/comigor/nexucore/internal/chart"

// Kind discriminates the segment variants.
type Kind string

const (
	KindText       Kind = "text"
	KindChart      Kind = "chart"
	KindChartError Kind = "chart-error"
	KindPreview    Kind = "preview"
)

// ChartErrorNotice is shown in place of a chart whose payload is not valid JSON.
const ChartErrorNotice = "Failed to render visualization: Invalid JSON"

// Span is a half-open byte range [Start, End) of the reply text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len is the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Segment is one of Text, Chart, ChartError or Preview. The set is closed:
// consumers dispatch through Accept and a Visitor.
type Segment interface {
	Kind() Kind
	Span() Span
	Accept(v Visitor) error
	isSegment()
}

// Visitor handles every segment variant. Adding a variant breaks all
// visitors at compile time.
type Visitor interface {
	VisitText(Text) error
	VisitChart(Chart) error
	VisitChartError(ChartError) error
	VisitPreview(Preview) error
}

// Text is a run of markdown source between blocks.
type Text struct {
	Content string
	Pos     Span
}

// Chart is a fenced chart block whose payload decoded into a spec.
type Chart struct {
	Spec chart.Spec
	Pos  Span
}

// ChartError is a fenced chart block whose payload failed to decode. Raw is
// the payload exactly as it appeared between the fences.
type ChartError struct {
	Raw    string
	Notice string
	Pos    Span
}

// Preview is a fenced HTML block, carried through unparsed.
type Preview struct {
	Markup string
	Pos    Span
}

func (Text) Kind() Kind       { return KindText }
func (Chart) Kind() Kind      { return KindChart }
func (ChartError) Kind() Kind { return KindChartError }
func (Preview) Kind() Kind    { return KindPreview }

func (s Text) Span() Span       { return s.Pos }
func (s Chart) Span() Span      { return s.Pos }
func (s ChartError) Span() Span { return s.Pos }
func (s Preview) Span() Span    { return s.Pos }

func (s Text) Accept(v Visitor) error       { return v.VisitText(s) }
func (s Chart) Accept(v Visitor) error      { return v.VisitChart(s) }
func (s ChartError) Accept(v Visitor) error { return v.VisitChartError(s) }
func (s Preview) Accept(v Visitor) error    { return v.VisitPreview(s) }

func (Text) isSegment()       {}
func (Chart) isSegment()      {}
func (ChartError) isSegment() {}
func (Preview) isSegment()    {}

// Walk visits segs in order and stops at the first error.
func Walk(segs []Segment, v Visitor) error {
	for _, s := range segs {
		if err := s.Accept(v); err != nil {
			return err
		}
	}
	return nil
}
