// ABOUTME: MCP tool handler implementations for the kiosk retrieval server
// ABOUTME: Maps the query service's error taxonomy onto MCP tool results
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kssem/kiosk-retrieval/internal/config"
	"github.com/kssem/kiosk-retrieval/internal/retrieval"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	service *retrieval.Service
	cfg     *config.Config
}

// SearchSnippets handles the search_snippets tool
func (h *Handlers) SearchSnippets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	maxResults := request.GetInt("max_results", h.cfg.DefaultResults)

	var idFilter map[string]struct{}
	if raw := request.GetString("ids", ""); raw != "" {
		idFilter = make(map[string]struct{})
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				idFilter[id] = struct{}{}
			}
		}
	}

	results, err := h.service.Search(ctx, query, maxResults, idFilter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	response := map[string]interface{}{
		"query":   strings.TrimSpace(query),
		"results": results,
		"count":   len(results),
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// RetrievalHealth handles the retrieval_health tool
func (h *Handlers) RetrievalHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count, err := h.service.Ready()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("retrieval resources unavailable: %v", err)), nil
	}

	responseJSON, err := json.Marshal(map[string]interface{}{
		"ok":        true,
		"vec_count": count,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}
