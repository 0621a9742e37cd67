// ABOUTME: MCP server initialization and configuration for riddleking.
// ABOUTME: Exposes riddle preview, posting, and history tools for AI agent access.
package mcp

import (
	"context"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/riddleking/internal/bot"
	"github.com/2389-research/riddleking/internal/storage"
)

// Server wraps the MCP server with the publish cycle and history store.
type Server struct {
	mcp     *gomcp.Server
	cycle   *bot.Cycle
	history storage.HistoryStore
	version string
}

// ServerOption configures optional Server settings.
type ServerOption func(*Server)

// WithVersion sets the version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer creates an MCP server with riddle capabilities.
func NewServer(cycle *bot.Cycle, history storage.HistoryStore, opts ...ServerOption) (*Server, error) {
	if cycle == nil {
		return nil, fmt.Errorf("publish cycle is required")
	}
	if history == nil {
		return nil, fmt.Errorf("history store is required")
	}

	s := &Server{
		cycle:   cycle,
		history: history,
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "riddleking",
			Version: s.version,
		},
		nil,
	)

	s.registerRiddleTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}

func toolError(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolText(text string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: text}},
	}
}
