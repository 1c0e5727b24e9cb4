// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to query the snippet index via stdio
package commands

import (
	"log"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kssem/kiosk-retrieval/internal/config"
	"github.com/kssem/kiosk-retrieval/internal/mcp"
	"github.com/kssem/kiosk-retrieval/internal/retrieval"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs the retrieval service as an MCP (Model Context Protocol) server,
exposing snippet search over stdio.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  kiosk mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "kiosk": {
  #       "command": "kiosk",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil && !quiet {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.OpenAIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set - search queries will fail")
	}

	manager := retrieval.NewManager(cfg)
	defer manager.Close()

	count, err := manager.Ready()
	if err != nil {
		return err
	}
	service := retrieval.NewService(manager, cfg.MaxResults)

	server := mcpserver.NewMCPServer(
		"KSSEM Kiosk Retrieval",
		versionInfo.Version,
	)
	mcp.RegisterTools(server, service, cfg)

	log.Printf("Kiosk retrieval MCP server starting on stdio (%d snippets)...", count)
	return mcpserver.ServeStdio(server)
}
