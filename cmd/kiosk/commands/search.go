// ABOUTME: CLI command to query the built index from the terminal
// ABOUTME: Supports table and JSON output plus snippet-id filtering
package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kssem/kiosk-retrieval/internal/config"
	"github.com/kssem/kiosk-retrieval/internal/retrieval"
)

var (
	searchLimit int
	searchIDs   string
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the snippet index",
		Long: `Search the built snippet index with a free-text query.

Embeds the query via OpenAI and returns the closest snippets by
cosine similarity.

Examples:
  kiosk search "hostel facilities"
  kiosk search --limit 10 "computer science placements"
  kiosk search --format json "admission process"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum results to return (default from KIOSK_DEFAULT_RESULTS)")
	cmd.Flags().StringVar(&searchIDs, "ids", "", "Comma-separated snippet ids to restrict results to")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY not set - query embedding requires it")
	}

	limit := searchLimit
	if limit == 0 {
		limit = cfg.DefaultResults
	}
	if err := validatePositiveInt(limit, "limit"); err != nil {
		return err
	}

	var idFilter map[string]struct{}
	if searchIDs != "" {
		idFilter = make(map[string]struct{})
		for _, id := range strings.Split(searchIDs, ",") {
			if id = strings.TrimSpace(id); id != "" {
				idFilter[id] = struct{}{}
			}
		}
	}

	manager := retrieval.NewManager(cfg)
	defer manager.Close()
	service := retrieval.NewService(manager, cfg.MaxResults)

	results, err := service.Search(cmd.Context(), args[0], limit, idFilter)
	if err != nil {
		return fmt.Errorf("searching snippets: %w", err)
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No snippets found for query: %s\n", args[0])
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
	} else {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "SCORE\tSECTION\tTITLE\tSUMMARY\n")
		fmt.Fprintf(w, "-----\t-------\t-----\t-------\n")
		for _, result := range results {
			fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\n",
				result.Score,
				result.Section,
				truncate(result.Title, 30),
				truncate(result.ShortSummary, 60))
		}
		w.Flush()

		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d result(s)\n", len(results))
		}
	}

	return nil
}
