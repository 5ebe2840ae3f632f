// Package mcpserver exposes the support bot as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"supportbot/internal/analytics"
	"supportbot/internal/chat"
	"supportbot/internal/domain"
)

// Bot answers questions with retrieval-augmented generation.
type Bot interface {
	ProcessQuery(ctx context.Context, query string) (chat.Result, error)
	ResetChat() chat.Status
}

// Searcher queries the knowledge base without generation.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}

// AnalyticsPort reports aggregated interaction statistics.
type AnalyticsPort interface {
	GetAnalytics(ctx context.Context) analytics.Report
}

// Deps holds dependencies for the MCP server.
type Deps struct {
	Bot       Bot
	Searcher  Searcher
	Analytics AnalyticsPort // optional; get_analytics is only registered when set
	Version   string
}

// New creates an MCP server with the support tools registered.
func New(deps Deps) *server.MCPServer {
	if deps.Version == "" {
		deps.Version = "dev"
	}
	s := server.NewMCPServer(
		"supportbot",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithInstructions("Customer support assistant backed by the store's FAQ and product documentation."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("ask",
			mcp.WithDescription("Ask the support assistant a question. Answers are grounded on the knowledge base and the conversation so far."),
			mcp.WithString("query", mcp.Description("The customer's question"), mcp.Required()),
		),
		ask(deps),
	)

	s.AddTool(
		mcp.NewTool("search_knowledge_base",
			mcp.WithDescription("Search the FAQ and documentation and return the relevant passages with their scores."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 3)")),
		),
		searchKnowledgeBase(deps),
	)

	s.AddTool(
		mcp.NewTool("reset_chat",
			mcp.WithDescription("Clear the conversation history of the assistant."),
		),
		resetChat(deps),
	)

	if deps.Analytics != nil {
		s.AddTool(
			mcp.NewTool("get_analytics",
				mcp.WithDescription("Return interaction counts by category and context usage."),
			),
			getAnalytics(deps),
		)
	}

	return s
}

func ask(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}
		res, err := deps.Bot.ProcessQuery(ctx, query)
		if err != nil {
			return mcpError(fmt.Sprintf("ask failed: %v", err)), nil
		}
		return mcpJSON(struct {
			Response string   `json:"response"`
			Sources  []string `json:"sources"`
		}{res.Response, domain.ContextSources(res.ContextDocs)})
	}
}

func searchKnowledgeBase(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}
		limit := req.GetInt("limit", chat.DefaultTopK)
		if limit <= 0 {
			limit = chat.DefaultTopK
		}
		if limit > 50 {
			limit = 50
		}
		results, err := deps.Searcher.Search(ctx, query, limit)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}
		if len(results) == 0 {
			return mcpText("[]"), nil
		}
		return mcpJSON(results)
	}
}

func resetChat(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcpText(deps.Bot.ResetChat().Status), nil
	}
}

func getAnalytics(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcpJSON(deps.Analytics.GetAnalytics(ctx))
	}
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
