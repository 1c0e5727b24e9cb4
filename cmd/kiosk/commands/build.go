// ABOUTME: CLI command to build the retrieval artifacts from a college record
// ABOUTME: Runs extract, embed and index stages, replacing prior artifacts
package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kssem/kiosk-retrieval/internal/config"
	"github.com/kssem/kiosk-retrieval/internal/indexer"
	"github.com/kssem/kiosk-retrieval/internal/llm"
	"github.com/kssem/kiosk-retrieval/internal/snippet"
)

var (
	buildInput           string
	buildIndexKind       string
	buildWriteEmbeddings bool
)

// NewBuildCmd creates the build command
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the vector index from a college record",
		Long: `Build the vector index from a structured college record.

Extracts snippets from the record, embeds them via OpenAI, and writes
the index, metadata store and snippet document into the data directory.
A rebuild replaces all prior artifacts; there is no incremental mode.

Examples:
  kiosk build
  kiosk build --input data/college.json --index hnsw
  kiosk build --write-embeddings`,
		RunE: runBuild,
	}

	cmd.Flags().StringVar(&buildInput, "input", indexer.DefaultSource, "College record JSON file")
	cmd.Flags().StringVar(&buildIndexKind, "index", "", "Index kind: flat or hnsw (default from KIOSK_INDEX)")
	cmd.Flags().BoolVar(&buildWriteEmbeddings, "write-embeddings", false, "Also persist the raw embedding matrix")

	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if buildIndexKind != "" {
		cfg.IndexKind = buildIndexKind
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if cfg.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY not set - building requires embedding access")
	}

	college, err := snippet.LoadCollegeFile(buildInput)
	if err != nil {
		return fmt.Errorf("loading college record: %w", err)
	}

	embedder, err := newEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("initializing embedding client: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Building %s index from %s...\n", cfg.IndexKind, buildInput)
	}

	artifacts, err := indexer.Build(cmd.Context(), college, embedder, cfg, indexer.Options{
		Source:          buildInput,
		WriteEmbeddings: buildWriteEmbeddings,
	})
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if !quiet {
		green := color.New(color.FgGreen).SprintFunc()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s Indexed %d snippets (dim %d)\n", green("✓"), artifacts.Count, artifacts.Dimension)
		fmt.Fprintf(out, "  index:    %s\n", artifacts.IndexPath)
		fmt.Fprintf(out, "  metadata: %s\n", artifacts.MetadataPath)
		fmt.Fprintf(out, "  snippets: %s\n", artifacts.SnippetsPath)
		if artifacts.EmbeddingsPath != "" {
			fmt.Fprintf(out, "  matrix:   %s\n", artifacts.EmbeddingsPath)
		}
	}
	return nil
}

func newEmbedderFromConfig(cfg *config.Config) (llm.Embedder, error) {
	clientCfg := llm.DefaultConfig(cfg.OpenAIKey)
	clientCfg.Model = cfg.EmbeddingModel
	clientCfg.Dimension = cfg.VectorDim
	clientCfg.MaxRetries = cfg.MaxRetries
	clientCfg.RetryDelay = cfg.RetryDelay
	clientCfg.Timeout = cfg.Timeout
	return llm.NewOpenAIClient(clientCfg)
}
