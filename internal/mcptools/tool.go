// Package mcptools exposes the segmentation, chart and preview pipeline as
// MCP tools so other agents can render NexuCore-style replies.
package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// Tool is the interface for all tools. Run receives the call arguments as a
// JSON object.
type Tool interface {
	Name() string
	Description() string
	Params() []mcp.ToolOption
	Run(ctx context.Context, args string) (*mcp.CallToolResult, error)
}
