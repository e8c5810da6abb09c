package segment

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/comigor/nexucore/internal/chart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pieBlock = "```json-d3\n{\"type\":\"pie\",\"data\":[{\"label\":\"X\",\"value\":1},{\"label\":\"Y\",\"value\":3}]}\n```"

func reconstruct(text string, segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(text[s.Span().Start:s.Span().End])
	}
	return sb.String()
}

func TestSplitWithoutMarkers(t *testing.T) {
	assert.Empty(t, Split(""))

	text := "# Title\n\nSome *markdown* with ```go\ncode\n``` inside."
	segs := Split(text)
	require.Len(t, segs, 1)
	txt, ok := segs[0].(Text)
	require.True(t, ok)
	assert.Equal(t, text, txt.Content)
	assert.Equal(t, Span{Start: 0, End: len(text)}, txt.Pos)
}

func TestSplitTextChartText(t *testing.T) {
	text := "Here is the trend:\n" + pieBlock + "\nAs you can see."
	segs := Split(text)
	require.Len(t, segs, 3)

	assert.Equal(t, KindText, segs[0].Kind())
	assert.Equal(t, KindChart, segs[1].Kind())
	assert.Equal(t, KindText, segs[2].Kind())
	assert.Equal(t, text, reconstruct(text, segs))
	assert.Equal(t, pieBlock, text[segs[1].Span().Start:segs[1].Span().End])
}

func TestSplitPieScenario(t *testing.T) {
	text := "A\n" + pieBlock + "\nB"
	segs := Split(text)
	require.Len(t, segs, 3)

	assert.Equal(t, Text{Content: "A\n", Pos: Span{Start: 0, End: 2}}, segs[0])

	c, ok := segs[1].(Chart)
	require.True(t, ok)
	assert.Equal(t, chart.Pie, c.Spec.Type)
	require.Len(t, c.Spec.Data, 2)
	assert.Equal(t, "X", c.Spec.Data[0]["label"])
	assert.Equal(t, 3.0, c.Spec.Data[1]["value"])

	end, ok := segs[2].(Text)
	require.True(t, ok)
	assert.Equal(t, "\nB", end.Content)

	scene := chart.Render(c.Spec)
	require.NotNil(t, scene)
}

func TestSplitMismatchedChartShapeIsNotAnError(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		title    string
		drawable bool
	}{
		{name: "numeric title", payload: `{"type":"bar","data":[{"label":"A","value":1}],"options":{"title":2024}}`, title: "2024", drawable: true},
		{name: "boolean axis label", payload: `{"type":"line","data":[{"x":"a","y":1}],"options":{"xLabel":true}}`, drawable: true},
		{name: "data object", payload: `{"type":"bar","data":{}}`},
		{name: "data string", payload: `{"type":"pie","data":"none"}`},
		{name: "top-level array", payload: `[1,2,3]`},
		{name: "numeric type", payload: `{"type":7,"data":[{"label":"A","value":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Split("```json-d3\n" + tt.payload + "\n```")
			require.Len(t, segs, 1)
			c, ok := segs[0].(Chart)
			require.True(t, ok, "got %s", segs[0].Kind())
			assert.Equal(t, tt.title, c.Spec.Options.Title)
			assert.Equal(t, tt.drawable, chart.Render(c.Spec) != nil)
		})
	}
}

func TestSplitInvalidChartKeepsRawPayload(t *testing.T) {
	payload := "{\"type\": \"bar\", \"data\": [ oops"
	text := "before\n```json-d3\n" + payload + "\n```\nafter"
	segs := Split(text)
	require.Len(t, segs, 3)

	ce, ok := segs[1].(ChartError)
	require.True(t, ok)
	assert.Equal(t, payload, ce.Raw)
	assert.Equal(t, ChartErrorNotice, ce.Notice)
	assert.Equal(t, "\nafter", segs[2].(Text).Content)
}

func TestSplitPreview(t *testing.T) {
	segs := Split("```html-preview\n<div>Hi</div>\n```")
	require.Len(t, segs, 1)
	p, ok := segs[0].(Preview)
	require.True(t, ok)
	assert.Equal(t, "<div>Hi</div>", p.Markup)
}

func TestSplitBackToBackCharts(t *testing.T) {
	text := pieBlock + pieBlock
	segs := Split(text)
	require.Len(t, segs, 2)
	for _, s := range segs {
		assert.Equal(t, KindChart, s.Kind())
		assert.NotZero(t, s.Span().Len())
	}
	assert.Equal(t, text, reconstruct(text, segs))
}

func TestSplitNeverEmitsEmptyText(t *testing.T) {
	text := "```html-preview\n<p>a</p>\n```" + pieBlock + "\n\n```html-preview\n<p>b</p>\n```"
	segs := Split(text)
	require.Len(t, segs, 4)
	for _, s := range segs {
		if txt, ok := s.(Text); ok {
			assert.NotEmpty(t, txt.Content)
		}
	}
	assert.Equal(t, []Kind{KindPreview, KindChart, KindText, KindPreview}, kinds(segs))
	assert.Equal(t, text, reconstruct(text, segs))
}

func TestSplitMixedOrder(t *testing.T) {
	text := "intro\n```html-preview\n<b>x</b>\n```\nmid\n" + pieBlock + "\noutro"
	segs := Split(text)
	assert.Equal(t, []Kind{KindText, KindPreview, KindText, KindChart, KindText}, kinds(segs))
	assert.Equal(t, text, reconstruct(text, segs))
}

func TestSplitUnclosedFenceIsText(t *testing.T) {
	text := "start\n```json-d3\n{\"type\":\"bar\"}"
	segs := Split(text)
	require.Len(t, segs, 1)
	assert.Equal(t, KindText, segs[0].Kind())
}

func TestSequenceTieBreaksByRegistrationOrder(t *testing.T) {
	e := NewExtractor(
		Marker{Tag: "x", Kind: KindPreview},
		Marker{Tag: "x", Kind: KindChart},
	)
	text := "```x\n{}\n```"
	matches := e.Scan(text)
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].Marker)

	segs := Sequence(text, matches)
	require.Len(t, segs, 1)
	assert.Equal(t, KindPreview, segs[0].Kind())
}

func TestSequenceDropsOverlappingMatch(t *testing.T) {
	text := "```json-d3\n```html-preview\n<p>\n```"
	segs := Split(text)
	require.Len(t, segs, 1)
	ce, ok := segs[0].(ChartError)
	require.True(t, ok)
	assert.Equal(t, "```html-preview\n<p>", ce.Raw)
}

func TestScanPayloadBoundaries(t *testing.T) {
	text := "```json-d3\n\n```"
	matches := NewExtractor().Scan(text)
	require.Len(t, matches, 1)
	assert.Equal(t, "", matches[0].Payload)
	assert.Equal(t, len(text), matches[0].End)

	assert.Empty(t, NewExtractor().Scan("```json-d3\n```"))
}

func TestRecords(t *testing.T) {
	text := "A\n" + pieBlock + "\n```json-d3\nnope\n```"
	recs := Records(Split(text))
	require.Len(t, recs, 4)

	assert.Equal(t, KindText, recs[0].Kind)
	require.NotNil(t, recs[1].Spec)
	assert.Equal(t, chart.Pie, recs[1].Spec.Type)
	assert.Equal(t, "nope", recs[3].Raw)

	raw, err := json.Marshal(recs[3])
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"chart-error","raw":"nope","notice":"Failed to render visualization: Invalid JSON","span":{"start":`+itoa(recs[3].Span.Start)+`,"end":`+itoa(len(text))+`}}`, string(raw))
}

func kinds(segs []Segment) []Kind {
	out := make([]Kind, len(segs))
	for i, s := range segs {
		out[i] = s.Kind()
	}
	return out
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
