// ABOUTME: MCP tool implementations for riddle operations.
// ABOUTME: Registers preview_riddle, post_riddle, and read_history tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/riddleking/internal/bot"
	"github.com/2389-research/riddleking/internal/formatter"
)

const defaultHistoryLimit = 20

func (s *Server) registerRiddleTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "preview_riddle",
		Description: "Pick the next unposted riddle and show the post text without publishing it.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {}
		}`),
	}, s.handlePreviewRiddle)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "post_riddle",
		Description: "Publish the next unposted riddle now and record it in the history.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"confirm": {"type": "boolean", "description": "Must be true; guards against accidental posts."}
			},
			"required": ["confirm"]
		}`),
	}, s.handlePostRiddle)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "read_history",
		Description: "List the IDs of riddles already posted, most recent first.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"limit": {"type": "number", "description": "Maximum number of IDs to return (default 20, 0 for all)"}
			}
		}`),
	}, s.handleReadHistory)
}

func (s *Server) handlePreviewRiddle(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	item, text, err := s.cycle.Preview(ctx)
	if err != nil {
		return toolError("failed to preview riddle: %v", err), nil
	}

	return toolText(fmt.Sprintf("Next riddle (ID: %s, %d characters):\n\n%s", item.ID, formatter.Length(text), text)), nil
}

func (s *Server) handlePostRiddle(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Confirm bool `json:"confirm"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if !args.Confirm {
		return toolError("confirm must be true to publish"), nil
	}

	record, err := s.cycle.Run(ctx)
	if err != nil {
		if errors.Is(err, bot.ErrCycleInProgress) {
			return toolError("a riddle is already being posted, try again shortly"), nil
		}
		return toolError("failed to post riddle: %v", err), nil
	}

	return toolText(fmt.Sprintf("Posted riddle %s (post ID: %s)", record.ItemID, record.PostID)), nil
}

func (s *Server) handleReadHistory(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	args := struct {
		Limit *int `json:"limit"`
	}{}
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return toolError("invalid arguments: %v", err), nil
		}
	}

	limit := defaultHistoryLimit
	if args.Limit != nil {
		limit = *args.Limit
	}
	if limit < 0 {
		return toolError("limit must not be negative"), nil
	}

	ids := s.history.Load()
	if len(ids) == 0 {
		return toolText("No riddles posted yet."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d riddles posted.\n", len(ids)))
	shown := 0
	for i := len(ids) - 1; i >= 0; i-- {
		if limit > 0 && shown >= limit {
			break
		}
		sb.WriteString(fmt.Sprintf("- %s\n", ids[i]))
		shown++
	}

	return toolText(sb.String()), nil
}
