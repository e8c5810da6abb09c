package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/comigor/nexucore/internal/logger"
)

// ToolManager manages the available tools
type ToolManager struct {
	tools map[string]Tool
}

// NewToolManager creates a new ToolManager
func NewToolManager() *ToolManager {
	return &ToolManager{
		tools: make(map[string]Tool),
	}
}

// RegisterTool registers a new tool
func (m *ToolManager) RegisterTool(tool Tool) {
	m.tools[tool.Name()] = tool
}

// GetTool retrieves a tool by name
func (m *ToolManager) GetTool(name string) (Tool, error) {
	tool, ok := m.tools[name]
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return tool, nil
}

// List returns all registered tools sorted by name
func (m *ToolManager) List() []Tool {
	ts := make([]Tool, 0, len(m.tools))
	for _, t := range m.tools {
		ts = append(ts, t)
	}
	slices.SortFunc(ts, func(a, b Tool) int { return strings.Compare(a.Name(), b.Name()) })
	return ts
}

// Definition builds the MCP tool declaration of t.
func Definition(t Tool) mcp.Tool {
	opts := append([]mcp.ToolOption{mcp.WithDescription(t.Description())}, t.Params()...)
	return mcp.NewTool(t.Name(), opts...)
}

// Handler adapts t to an MCP tool handler.
func Handler(t Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		logger.L.Debug("MCP tool invoked", "tool", t.Name(), "args", string(args))
		res, err := t.Run(ctx, string(args))
		if err != nil {
			logger.L.Warn("MCP tool failed", "tool", t.Name(), "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return res, nil
	}
}

// NewServer returns an MCP server publishing every registered tool.
func (m *ToolManager) NewServer(name, version string) *server.MCPServer {
	s := server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	for _, t := range m.List() {
		s.AddTool(Definition(t), Handler(t))
		logger.L.Info("Registered MCP tool", "tool", t.Name())
	}
	return s
}
