package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comigor/nexucore/internal/segment"
)

const reply = "# Findings\n\n| a | b |\n|---|---|\n| 1 | 2 |\n" +
	"```json-d3\n{\"type\":\"bar\",\"data\":[{\"label\":\"A\",\"value\":2}],\"options\":{\"title\":\"Growth\"}}\n```" +
	"\nthen\n" +
	"```json-d3\n{broken\n```" +
	"```html-preview\n<button>Go</button>\n```"

func TestHTMLComposer(t *testing.T) {
	blocks, err := HTML(reply)
	require.NoError(t, err)
	require.Len(t, blocks, 5)

	assert.Equal(t, segment.KindText, blocks[0].Kind)
	assert.Contains(t, blocks[0].HTML, "<h1>Findings</h1>")
	assert.Contains(t, blocks[0].HTML, "<table>")

	assert.Equal(t, segment.KindChart, blocks[1].Kind)
	assert.Contains(t, blocks[1].HTML, "<svg")
	assert.Contains(t, blocks[1].HTML, "Growth")

	assert.Equal(t, segment.KindText, blocks[2].Kind)

	assert.Equal(t, segment.KindChartError, blocks[3].Kind)
	assert.Contains(t, blocks[3].HTML, segment.ChartErrorNotice)

	assert.Equal(t, segment.KindPreview, blocks[4].Kind)
	assert.Contains(t, blocks[4].HTML, `sandbox="allow-scripts"`)
	assert.NotContains(t, blocks[4].HTML, "<button>")
}

func TestHTMLComposerEmptyChart(t *testing.T) {
	blocks, err := HTML("```json-d3\n{\"type\":\"pie\",\"data\":[]}\n```")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Contains(t, blocks[0].HTML, "chart-empty")
	assert.NotContains(t, blocks[0].HTML, "<svg")
}

func TestHTMLComposerDropsRawHTMLInProse(t *testing.T) {
	blocks, err := HTML("hello <script>alert(1)</script>")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.NotContains(t, blocks[0].HTML, "<script>")
}

func TestTerminalComposer(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	c, err := NewTerminalComposer(&out, dir, 80)
	require.NoError(t, err)
	at := time.UnixMilli(1700000000000)
	c.Now = func() time.Time { return at }

	twoCharts := "hello world\n" +
		"```json-d3\n{\"type\":\"line\",\"data\":[{\"x\":\"a\",\"y\":1},{\"x\":\"b\",\"y\":2}]}\n```" +
		"```json-d3\n{\"type\":\"pie\",\"data\":[{\"label\":\"a\",\"value\":1}]}\n```" +
		"```html-preview\n<p>hi</p>\n```"
	require.NoError(t, c.Compose(segment.Split(twoCharts)))

	text := out.String()
	assert.Contains(t, text, "hello")
	assert.Contains(t, text, "[chart] untitled (line, 2 records)")
	assert.Contains(t, text, "[preview] saved to")

	first := filepath.Join(dir, "nexucore-viz-1700000000000.svg")
	second := filepath.Join(dir, "nexucore-viz-1700000000001.svg")
	require.FileExists(t, first)
	require.FileExists(t, second)

	design, err := os.ReadFile(filepath.Join(dir, "nexucore-design.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(design))
}

func TestTerminalComposerKeepsEveryPreview(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	c, err := NewTerminalComposer(&out, dir, 80)
	require.NoError(t, err)

	reply := "```html-preview\n<p>one</p>\n```\n" +
		"```html-preview\n<p>two</p>\n```\n" +
		"```html-preview\n<p>three</p>\n```"
	require.NoError(t, c.Compose(segment.Split(reply)))

	for name, want := range map[string]string{
		"nexucore-design.html":   "<p>one</p>",
		"nexucore-design-2.html": "<p>two</p>",
		"nexucore-design-3.html": "<p>three</p>",
	} {
		got, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Equal(t, want, string(got), name)
	}
}

func TestTerminalComposerWithoutOutDir(t *testing.T) {
	var out bytes.Buffer
	c, err := NewTerminalComposer(&out, "", 80)
	require.NoError(t, err)

	require.NoError(t, c.Compose(segment.Split("```json-d3\nnot json\n```")))
	assert.Contains(t, out.String(), segment.ChartErrorNotice)
	assert.False(t, strings.Contains(out.String(), "saved to"))
}
