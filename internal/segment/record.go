package segment

import "github.com/comigor/nexucore/internal/chart"

// Record is the flat JSON view of a segment used by the HTTP API and the MCP
// tools. Only the fields of its kind are set.
type Record struct {
	Kind    Kind        `json:"kind"`
	Content string      `json:"content,omitempty"`
	Spec    *chart.Spec `json:"spec,omitempty"`
	Raw     string      `json:"raw,omitempty"`
	Notice  string      `json:"notice,omitempty"`
	Markup  string      `json:"markup,omitempty"`
	Span    Span        `json:"span"`
}

type recorder struct {
	out []Record
}

func (r *recorder) VisitText(s Text) error {
	r.out = append(r.out, Record{Kind: KindText, Content: s.Content, Span: s.Pos})
	return nil
}

func (r *recorder) VisitChart(s Chart) error {
	spec := s.Spec
	r.out = append(r.out, Record{Kind: KindChart, Spec: &spec, Span: s.Pos})
	return nil
}

func (r *recorder) VisitChartError(s ChartError) error {
	r.out = append(r.out, Record{Kind: KindChartError, Raw: s.Raw, Notice: s.Notice, Span: s.Pos})
	return nil
}

func (r *recorder) VisitPreview(s Preview) error {
	r.out = append(r.out, Record{Kind: KindPreview, Markup: s.Markup, Span: s.Pos})
	return nil
}

// Records converts segs into their JSON view.
func Records(segs []Segment) []Record {
	r := &recorder{out: make([]Record, 0, len(segs))}
	_ = Walk(segs, r)
	return r.out
}
