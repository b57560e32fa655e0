package mcp

import "github.com/mark3labs/mcp-go/mcp"

var askMentorTool = mcp.NewTool("ask_mentor",
	mcp.WithDescription("Ask Market Mentor a question about selling to Walmart. Off-topic questions get a short refusal."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The supplier's question"),
	),
)

var webSearchTool = mcp.NewTool("web_search",
	mcp.WithDescription("Run one of the mentor's web searches and return the formatted hits."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Search query"),
	),
	mcp.WithString("engine",
		mcp.Description("Search engine to use (default you.com)"),
		mcp.Enum("you.com", "google"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results (default 5)"),
	),
)

var formatAnswerTool = mcp.NewTool("format_answer",
	mcp.WithDescription("Convert raw answer text into the HTML fragment the chat widget renders."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Raw answer text"),
	),
	mcp.WithBoolean("footer",
		mcp.Description("Append the support footer (default true)"),
	),
)
