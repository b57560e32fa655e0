package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nunnai/marketmentor/internal/format"
	"github.com/nunnai/marketmentor/internal/mentor"
	"github.com/nunnai/marketmentor/internal/search"
)

type stubAnswerer struct {
	answer mentor.Answer
	err    error
	asked  []string
}

func (s *stubAnswerer) Process(_ context.Context, q string) (mentor.Answer, error) {
	s.asked = append(s.asked, q)
	return s.answer, s.err
}

type stubSearcher struct {
	name    string
	results []search.Result
	limit   int
}

func (s *stubSearcher) Name() string      { return s.name }
func (s *stubSearcher) NoResults() string { return "nothing from " + s.name }
func (s *stubSearcher) Search(_ context.Context, _ string, n int) ([]search.Result, error) {
	s.limit = n
	return s.results, nil
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content, "empty tool result")
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T, want mcp.TextContent", result.Content[0])
	return tc.Text
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool     mcp.Tool
		wantName string
	}{
		{askMentorTool, "ask_mentor"},
		{webSearchTool, "web_search"},
		{formatAnswerTool, "format_answer"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			assert.Equal(t, tt.wantName, tt.tool.Name)
			assert.NotEmpty(t, tt.tool.Description)
		})
	}
}

func TestNewServer(t *testing.T) {
	you := &stubSearcher{name: "you.com"}
	srv := NewServer(&stubAnswerer{}, []search.Searcher{you}, format.DefaultFooter, nil)
	require.NotNil(t, srv.mcp)
	assert.Equal(t, search.Searcher(you), srv.searchers["you.com"])
}

func TestHandleAskMentor(t *testing.T) {
	ctx := context.Background()

	t.Run("answer", func(t *testing.T) {
		a := &stubAnswerer{answer: mentor.Answer{Text: "Use **Retail Link**.", Route: mentor.RouteKeyword}}
		srv := NewServer(a, nil, format.DefaultFooter, nil)

		result, err := srv.handleAskMentor(ctx, call(map[string]any{"question": "Where are my sales?"}))
		require.NoError(t, err)
		require.False(t, result.IsError, "unexpected tool error: %v", result.Content)
		assert.Equal(t, "Use **Retail Link**.", textOf(t, result))
		assert.Equal(t, []string{"Where are my sales?"}, a.asked)
	})

	t.Run("missing question", func(t *testing.T) {
		srv := NewServer(&stubAnswerer{}, nil, format.DefaultFooter, nil)
		result, _ := srv.handleAskMentor(ctx, call(map[string]any{}))
		assert.True(t, result.IsError)
	})

	t.Run("blank question", func(t *testing.T) {
		srv := NewServer(&stubAnswerer{err: mentor.ErrEmptyQuestion}, nil, format.DefaultFooter, nil)
		result, _ := srv.handleAskMentor(ctx, call(map[string]any{"question": "  "}))
		assert.True(t, result.IsError)
	})

	t.Run("pipeline error", func(t *testing.T) {
		srv := NewServer(&stubAnswerer{err: errors.New("boom")}, nil, format.DefaultFooter, nil)
		result, _ := srv.handleAskMentor(ctx, call(map[string]any{"question": "q"}))
		assert.True(t, result.IsError)
		assert.Contains(t, textOf(t, result), "boom")
	})

	t.Run("generation failed", func(t *testing.T) {
		a := &stubAnswerer{answer: mentor.Answer{Text: mentor.GenerationFailed, Route: mentor.RouteModel, Failed: true}}
		srv := NewServer(a, nil, format.DefaultFooter, nil)
		result, _ := srv.handleAskMentor(ctx, call(map[string]any{"question": "q"}))
		assert.True(t, result.IsError, "failed generation is reported as a tool error")
	})
}

func TestHandleWebSearch(t *testing.T) {
	ctx := context.Background()
	you := &stubSearcher{name: "you.com", results: []search.Result{{Title: "OTIF", URL: "https://x", Snippet: "on time"}}}
	google := &stubSearcher{name: "google"}
	srv := NewServer(&stubAnswerer{}, []search.Searcher{you, google}, format.DefaultFooter, nil)

	result, _ := srv.handleWebSearch(ctx, call(map[string]any{"query": "otif"}))
	require.False(t, result.IsError, "unexpected tool error: %v", result.Content)
	assert.Contains(t, textOf(t, result), "Title: OTIF")
	assert.Equal(t, 5, you.limit, "default limit")

	result, _ = srv.handleWebSearch(ctx, call(map[string]any{"query": "otif", "engine": "google", "limit": 3}))
	assert.Equal(t, "nothing from google", textOf(t, result))
	assert.Equal(t, 3, google.limit)

	result, _ = srv.handleWebSearch(ctx, call(map[string]any{"query": "otif", "engine": "bing"}))
	assert.True(t, result.IsError, "unknown engine")
}

func TestHandleFormatAnswer(t *testing.T) {
	ctx := context.Background()
	srv := NewServer(&stubAnswerer{}, nil, format.DefaultFooter, nil)

	result, _ := srv.handleFormatAnswer(ctx, call(map[string]any{"text": "Hello world"}))
	assert.Equal(t, "<p>Hello world</p>"+format.DefaultFooter.HTML(), textOf(t, result))

	result, _ = srv.handleFormatAnswer(ctx, call(map[string]any{"text": "Hello world", "footer": false}))
	assert.Equal(t, "<p>Hello world</p>", textOf(t, result))

	result, _ = srv.handleFormatAnswer(ctx, call(map[string]any{}))
	assert.True(t, result.IsError, "missing text")
}
