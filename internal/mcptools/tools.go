package mcptools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/comigor/nexucore/internal/chart"
	"github.com/comigor/nexucore/internal/sandbox"
	"github.com/comigor/nexucore/internal/segment"
)

// Default returns a manager holding the segment_response, render_chart and
// preview_document tools.
func Default(exporter chart.Exporter) *ToolManager {
	m := NewToolManager()
	m.RegisterTool(SegmentTool{})
	m.RegisterTool(ChartTool{Exporter: exporter})
	m.RegisterTool(PreviewTool{})
	return m
}

// SegmentTool splits a model reply into typed segments.
type SegmentTool struct{}

func (SegmentTool) Name() string { return "segment_response" }

func (SegmentTool) Description() string {
	return "Splits a markdown reply into ordered segments: text, chart (```json-d3 blocks), chart-error and preview (```html-preview blocks)."
}

func (SegmentTool) Params() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("text", mcp.Required(), mcp.Description("The raw reply text")),
	}
}

func (SegmentTool) Run(_ context.Context, args string) (*mcp.CallToolResult, error) {
	var in struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return nil, err
	}
	out, err := json.Marshal(segment.Records(segment.Split(in.Text)))
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

// ChartTool renders a chart spec to SVG or PNG.
type ChartTool struct {
	Exporter chart.Exporter
}

func (ChartTool) Name() string { return "render_chart" }

func (ChartTool) Description() string {
	return `Renders a chart spec {"type":"bar|line|scatter|pie","data":[...],"options":{...}} as SVG markup or a PNG image.`
}

func (ChartTool) Params() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithObject("spec", mcp.Required(), mcp.Description("Chart spec with type, data and options")),
		mcp.WithString("format", mcp.Description("svg (default) or png"), mcp.Enum("svg", "png")),
	}
}

func (t ChartTool) Run(_ context.Context, args string) (*mcp.CallToolResult, error) {
	var in struct {
		Spec   json.RawMessage `json:"spec"`
		Format string          `json:"format"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return nil, err
	}
	raw := in.Spec
	// Some clients send the spec as a JSON string.
	var s string
	if json.Unmarshal(raw, &s) == nil {
		raw = json.RawMessage(s)
	}
	spec, err := chart.Parse(string(raw))
	if err != nil {
		return mcp.NewToolResultError(segment.ChartErrorNotice), nil
	}

	format := chart.Format(in.Format)
	if format == "" {
		format = chart.FormatSVG
	}
	exp, err := t.Exporter.Export(spec, format)
	if errors.Is(err, chart.ErrEmptyChart) {
		return mcp.NewToolResultText("Nothing to draw: the chart has no data or an unsupported type."), nil
	}
	if err != nil {
		return nil, err
	}
	if format == chart.FormatPNG {
		return mcp.NewToolResultImage(exp.Name, base64.StdEncoding.EncodeToString(exp.Body), exp.ContentType), nil
	}
	return mcp.NewToolResultText(string(exp.Body)), nil
}

// PreviewTool wraps HTML markup in the sandbox host document.
type PreviewTool struct{}

func (PreviewTool) Name() string { return "preview_document" }

func (PreviewTool) Description() string {
	return "Wraps HTML markup in the standalone preview document used by the sandboxed iframe."
}

func (PreviewTool) Params() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("markup", mcp.Required(), mcp.Description("HTML markup to embed verbatim")),
	}
}

func (PreviewTool) Run(_ context.Context, args string) (*mcp.CallToolResult, error) {
	var in struct {
		Markup *string `json:"markup"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return nil, err
	}
	if in.Markup == nil {
		return nil, fmt.Errorf("markup is required")
	}
	return mcp.NewToolResultText(sandbox.HostDocument(*in.Markup)), nil
}
