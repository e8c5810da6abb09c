package mcptools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comigor/nexucore/internal/chart"
	"github.com/comigor/nexucore/internal/segment"
)

func call(t *testing.T, m *ToolManager, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool, err := m.GetTool(name)
	require.NoError(t, err)
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := Handler(tool)(context.Background(), req)
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func manager() *ToolManager {
	at := time.UnixMilli(1700000000000)
	return Default(chart.Exporter{App: "nexucore", Now: func() time.Time { return at }})
}

func TestToolManager(t *testing.T) {
	m := manager()
	var names []string
	for _, tool := range m.List() {
		names = append(names, tool.Name())
		def := Definition(tool)
		assert.Equal(t, tool.Name(), def.Name)
		assert.NotEmpty(t, def.Description)
	}
	assert.Equal(t, []string{"preview_document", "render_chart", "segment_response"}, names)

	_, err := m.GetTool("nope")
	require.Error(t, err)
	assert.NotNil(t, m.NewServer("nexucore", "test"))
}

func TestSegmentTool(t *testing.T) {
	res := call(t, manager(), "segment_response", map[string]any{
		"text": "A\n```json-d3\n{\"type\":\"pie\",\"data\":[{\"label\":\"X\",\"value\":1}]}\n```\nB",
	})
	require.False(t, res.IsError)

	var recs []segment.Record
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &recs))
	require.Len(t, recs, 3)
	assert.Equal(t, segment.KindChart, recs[1].Kind)
	assert.Equal(t, "\nB", recs[2].Content)
}

func TestChartToolSVG(t *testing.T) {
	res := call(t, manager(), "render_chart", map[string]any{
		"spec": map[string]any{"type": "bar", "data": []any{map[string]any{"label": "a", "value": 3}}},
	})
	require.False(t, res.IsError)
	assert.True(t, strings.HasPrefix(text(t, res), "<svg"))
}

func TestChartToolSpecAsString(t *testing.T) {
	res := call(t, manager(), "render_chart", map[string]any{
		"spec":   `{"type":"line","data":[{"x":"a","y":1},{"x":"b","y":2}]}`,
		"format": "png",
	})
	require.False(t, res.IsError)
	img, ok := res.Content[0].(mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.NotEmpty(t, img.Data)
}

func TestChartToolErrors(t *testing.T) {
	res := call(t, manager(), "render_chart", map[string]any{"spec": "{nope"})
	assert.True(t, res.IsError)
	assert.Equal(t, segment.ChartErrorNotice, text(t, res))

	res = call(t, manager(), "render_chart", map[string]any{"spec": map[string]any{"type": "pie", "data": []any{}}})
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "Nothing to draw")
}

func TestPreviewTool(t *testing.T) {
	res := call(t, manager(), "preview_document", map[string]any{"markup": "<div>Hi</div>"})
	require.False(t, res.IsError)
	assert.Contains(t, text(t, res), "<div>Hi</div>")

	res = call(t, manager(), "preview_document", map[string]any{})
	assert.True(t, res.IsError)
}
