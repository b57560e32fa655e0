package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/nunnai/marketmentor/internal/format"
	"github.com/nunnai/marketmentor/internal/mentor"
	"github.com/nunnai/marketmentor/internal/search"
)

func (s *Server) handleAskMentor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	ans, err := s.answerer.Process(ctx, question)
	if errors.Is(err, mentor.ErrEmptyQuestion) {
		return mcp.NewToolResultError("question must not be blank"), nil
	}
	if err != nil {
		s.logger.Error("mcp ask failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("question failed: %v", err)), nil
	}
	if ans.Failed {
		return mcp.NewToolResultError(ans.Text), nil
	}

	return mcp.NewToolResultText(ans.Text), nil
}

func (s *Server) handleWebSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	engine := request.GetString("engine", "you.com")
	se, ok := s.searchers[engine]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown search engine %q", engine)), nil
	}

	limit := request.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}

	return mcp.NewToolResultText(search.Text(ctx, se, query, limit, s.logger)), nil
}

func (s *Server) handleFormatAnswer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}

	html := format.Format(text)
	if request.GetBool("footer", true) {
		html = s.footer.Append(html)
	}
	return mcp.NewToolResultText(html), nil
}
