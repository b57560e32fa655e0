// Package mcp exposes the mentor pipeline to AI agents over the Model Context
// Protocol.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/nunnai/marketmentor/internal/format"
	"github.com/nunnai/marketmentor/internal/mentor"
	"github.com/nunnai/marketmentor/internal/search"
)

// Version is reported to MCP clients.
var Version = "dev"

// Answerer turns a question into an answer.
type Answerer interface {
	Process(ctx context.Context, question string) (mentor.Answer, error)
}

// Server wraps an MCP server with the mentor tools registered.
type Server struct {
	answerer  Answerer
	searchers map[string]search.Searcher
	footer    format.Footer
	logger    *zap.Logger
	mcp       *server.MCPServer
}

// NewServer creates an MCP server. Searchers are addressed by their Name.
func NewServer(a Answerer, searchers []search.Searcher, footer format.Footer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		answerer:  a,
		searchers: make(map[string]search.Searcher, len(searchers)),
		footer:    footer,
		logger:    logger,
	}
	for _, se := range searchers {
		s.searchers[se.Name()] = se
	}

	s.mcp = server.NewMCPServer(
		"market-mentor",
		Version,
		server.WithToolCapabilities(false),
	)
	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(askMentorTool, s.handleAskMentor)
	s.mcp.AddTool(webSearchTool, s.handleWebSearch)
	s.mcp.AddTool(formatAnswerTool, s.handleFormatAnswer)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
