// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Entry point for build, search, mcp and version subcommands
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kiosk",
		Short: "Semantic snippet retrieval for the KSSEM campus kiosk",
		Long: `kiosk - semantic retrieval over the college knowledge base

Builds a vector index from the structured college record and answers
free-text queries against it, either directly, over HTTP, or as an MCP
server for LLM agents.

Examples:
  kiosk build --input data/college.json
  kiosk search "hostel facilities"
  kiosk mcp`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, json")

	cmd.AddCommand(NewBuildCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
