// ABOUTME: Centralized configuration for the snippet retrieval system
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// Artifact file names within the data directory. The builder and the
// resource manager must agree on these.
const (
	IndexFile      = "snippets.index"
	MetadataFile   = "snippets.db"
	EmbeddingsFile = "snippets_embs.bin"
	SnippetsFile   = "snippets.json"
	BlobsDir       = "blobs"
)

// Config holds all configuration for the retrieval system.
type Config struct {
	// Artifact locations
	DataDir string

	// OpenAI settings
	OpenAIKey      string
	EmbeddingModel string
	VectorDim      int
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Build settings
	BatchSize          int
	IndexKind          string
	HNSWM              int
	HNSWEfConstruction int
	HNSWEfSearch       int

	// Query settings
	MaxResults     int
	DefaultResults int

	// Server settings
	ListenAddr string
}

// DefaultDataDir returns the default artifact directory following XDG spec.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = xdg.DataHome
	}
	return filepath.Join(dataHome, "kiosk-retrieval")
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:            getEnv("KIOSK_DATA_DIR", DefaultDataDir()),
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel:     getEnv("KIOSK_EMBEDDING_MODEL", "text-embedding-3-small"),
		VectorDim:          getEnvInt("KIOSK_VECTOR_DIMENSION", 1536),
		Timeout:            getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:         getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:         getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		BatchSize:          getEnvInt("KIOSK_BATCH_SIZE", 64),
		IndexKind:          getEnv("KIOSK_INDEX", "flat"),
		HNSWM:              getEnvInt("KIOSK_HNSW_M", 32),
		HNSWEfConstruction: getEnvInt("KIOSK_HNSW_EF_CONSTRUCTION", 200),
		HNSWEfSearch:       getEnvInt("KIOSK_HNSW_EF_SEARCH", 50),
		MaxResults:         getEnvInt("KIOSK_MAX_RESULTS", 50),
		DefaultResults:     getEnvInt("KIOSK_DEFAULT_RESULTS", 5),
		ListenAddr:         getEnv("KIOSK_LISTEN_ADDR", ":8001"),
	}

	return cfg, cfg.Validate()
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.VectorDim <= 0 {
		return fmt.Errorf("KIOSK_VECTOR_DIMENSION must be positive, got %d", c.VectorDim)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("KIOSK_BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.IndexKind != "flat" && c.IndexKind != "hnsw" {
		return fmt.Errorf("KIOSK_INDEX must be flat or hnsw, got %q", c.IndexKind)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("KIOSK_MAX_RESULTS must be positive, got %d", c.MaxResults)
	}
	if c.DefaultResults <= 0 || c.DefaultResults > c.MaxResults {
		return fmt.Errorf("KIOSK_DEFAULT_RESULTS must be 1-%d, got %d", c.MaxResults, c.DefaultResults)
	}
	return nil
}

// IndexPath returns the vector index artifact path.
func (c *Config) IndexPath() string {
	return filepath.Join(c.DataDir, IndexFile)
}

// MetadataPath returns the metadata store artifact path.
func (c *Config) MetadataPath() string {
	return filepath.Join(c.DataDir, MetadataFile)
}

// EmbeddingsPath returns the optional raw embedding matrix path.
func (c *Config) EmbeddingsPath() string {
	return filepath.Join(c.DataDir, EmbeddingsFile)
}

// SnippetsPath returns the debug snippet document path.
func (c *Config) SnippetsPath() string {
	return filepath.Join(c.DataDir, SnippetsFile)
}

// BlobsPath returns the per-snippet full-text blob directory.
func (c *Config) BlobsPath() string {
	return filepath.Join(c.DataDir, BlobsDir)
}

// Helper functions

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
