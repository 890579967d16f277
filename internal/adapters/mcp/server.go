package mcpadapter

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kmalykh/bank-assistant/internal/core/ports"
)

// Server exposes retrieval tools to MCP clients over stdio.
type Server struct {
	mcpServer *server.MCPServer
}

func New(version string, tools ...ports.Tool) *Server {
	s := server.NewMCPServer("bank-assistant", version, server.WithToolCapabilities(false))
	for _, tool := range tools {
		registerTool(s, tool)
	}
	return &Server{mcpServer: s}
}

func registerTool(s *server.MCPServer, tool ports.Tool) {
	def := mcp.NewTool(tool.Name(),
		mcp.WithDescription(tool.Description()),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("User question for the bank knowledge base"),
		),
	)
	s.AddTool(def, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out, err := tool.Invoke(ctx, map[string]any{"query": query})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	})
}

func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
