package segment

import (
	"cmp"
	"slices"
	"strings"

	"github.com/comigor/nexucore/internal/chart"
	"github.com/comigor/nexucore/internal/logger"
)

// Fence is the token that opens and closes every block.
const Fence = "```"

// Marker is a recognised block tag, e.g. "json-d3" for charts.
type Marker struct {
	Tag  string
	Kind Kind
}

// DefaultMarkers are the blocks a reply may carry, in registration order.
var DefaultMarkers = []Marker{
	{Tag: "json-d3", Kind: KindChart},
	{Tag: "html-preview", Kind: KindPreview},
}

// Match is one fenced block found in the reply. Start and End bound the whole
// block including both fences; Payload is the content between them.
type Match struct {
	Start   int
	End     int
	Marker  int
	Kind    Kind
	Payload string
}

// Extractor finds fenced blocks for a fixed set of markers.
type Extractor struct {
	markers []Marker
}

// NewExtractor builds an extractor for markers, or DefaultMarkers when none
// are given. Marker order decides ties between blocks starting at the same
// offset.
func NewExtractor(markers ...Marker) *Extractor {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	return &Extractor{markers: slices.Clone(markers)}
}

// Scan returns every block of every marker, sorted by start offset. Each
// marker is scanned on its own, left to right, without overlap inside the
// marker; matches of different markers may overlap and are resolved by
// Sequence.
func (e *Extractor) Scan(text string) []Match {
	var matches []Match
	for i, m := range e.markers {
		matches = append(matches, scanMarker(text, i, m)...)
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Marker, b.Marker)
	})
	return matches
}

// scanMarker finds "```tag\n<payload>\n```" blocks. The payload ends at the
// first closing fence after the opening line.
func scanMarker(text string, index int, m Marker) []Match {
	open := Fence + m.Tag + "\n"
	closing := "\n" + Fence

	var out []Match
	pos := 0
	for pos < len(text) {
		i := strings.Index(text[pos:], open)
		if i < 0 {
			break
		}
		start := pos + i
		body := start + len(open)
		j := strings.Index(text[body:], closing)
		if j < 0 {
			break
		}
		end := body + j + len(closing)
		out = append(out, Match{
			Start:   start,
			End:     end,
			Marker:  index,
			Kind:    m.Kind,
			Payload: text[body : body+j],
		})
		pos = end
	}
	return out
}

// Split scans text and sequences the result.
func (e *Extractor) Split(text string) []Segment {
	return Sequence(text, e.Scan(text))
}

// Split segments text with DefaultMarkers.
func Split(text string) []Segment {
	return NewExtractor().Split(text)
}

// Sequence turns sorted matches into the final segment list. Text between
// blocks is emitted only when non-empty, and a match that starts inside an
// already emitted block is dropped.
func Sequence(text string, matches []Match) []Segment {
	var out []Segment
	cursor := 0
	for _, m := range matches {
		if m.Start < cursor {
			logger.L.Debug("Dropping overlapping block", "kind", m.Kind, "start", m.Start, "cursor", cursor)
			continue
		}
		if m.Start > cursor {
			out = append(out, Text{Content: text[cursor:m.Start], Pos: Span{Start: cursor, End: m.Start}})
		}
		out = append(out, classify(text, m))
		cursor = m.End
	}
	if cursor < len(text) {
		out = append(out, Text{Content: text[cursor:], Pos: Span{Start: cursor, End: len(text)}})
	}
	return out
}

func classify(text string, m Match) Segment {
	pos := Span{Start: m.Start, End: m.End}
	switch m.Kind {
	case KindChart:
		spec, err := chart.Parse(m.Payload)
		if err != nil {
			logger.L.Warn("Failed to parse chart block", "error", err, "start", m.Start)
			return ChartError{Raw: m.Payload, Notice: ChartErrorNotice, Pos: pos}
		}
		return Chart{Spec: spec, Pos: pos}
	case KindPreview:
		return Preview{Markup: m.Payload, Pos: pos}
	}
	// Unknown marker kinds are kept as source text.
	return Text{Content: text[m.Start:m.End], Pos: pos}
}
