// ABOUTME: MCP tool definitions and registration for the kiosk retrieval server
// ABOUTME: Defines JSON schemas for the search and health tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kssem/kiosk-retrieval/internal/config"
	"github.com/kssem/kiosk-retrieval/internal/retrieval"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, service *retrieval.Service, cfg *config.Config) *Handlers {
	handlers := &Handlers{
		service: service,
		cfg:     cfg,
	}

	// 1. search_snippets - Semantic search over the college knowledge base
	server.AddTool(mcp.Tool{
		Name:        "search_snippets",
		Description: "Search the college knowledge base for snippets semantically related to a query. Returns ranked snippets with titles, summaries and contact details.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Free-text search query",
				},
				"max_results": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results to return (default: 5)",
					"default":     5,
				},
				"ids": map[string]interface{}{
					"type":        "string",
					"description": "Optional comma-separated snippet ids to restrict results to",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchSnippets)

	// 2. retrieval_health - Report index readiness and corpus size
	server.AddTool(mcp.Tool{
		Name:        "retrieval_health",
		Description: "Report whether the retrieval index is loaded and how many snippets it serves.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.RetrievalHealth)

	return handlers
}
