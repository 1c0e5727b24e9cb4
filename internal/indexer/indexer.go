// ABOUTME: Build pipeline: college record → snippets → vectors → artifacts
// ABOUTME: Stages artifacts and renames into place only after full success
package indexer

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/kssem/kiosk-retrieval/internal/config"
	"github.com/kssem/kiosk-retrieval/internal/encoder"
	"github.com/kssem/kiosk-retrieval/internal/index"
	"github.com/kssem/kiosk-retrieval/internal/llm"
	"github.com/kssem/kiosk-retrieval/internal/models"
	"github.com/kssem/kiosk-retrieval/internal/snippet"
	"github.com/kssem/kiosk-retrieval/internal/storage/sqlite"
)

// DefaultSource is the provenance prefix when none is supplied.
const DefaultSource = "data/college.json"

// Options tune one build run.
type Options struct {
	// Source is the provenance prefix recorded in snippet sourcePaths.
	Source string
	// WriteEmbeddings also persists the raw embedding matrix for
	// offline debugging and reuse. Not required for serving.
	WriteEmbeddings bool
}

// Artifacts describes the output of a successful build.
type Artifacts struct {
	IndexPath      string
	MetadataPath   string
	SnippetsPath   string
	EmbeddingsPath string
	Count          int
	Dimension      int
}

// Build runs the full pipeline and atomically replaces prior artifacts.
// Any failure aborts the build with previous artifacts left intact.
// Rebuilds are wholesale; there is no append mode.
func Build(ctx context.Context, college *models.CollegeRecord, embedder llm.Embedder, cfg *config.Config, opts Options) (*Artifacts, error) {
	if opts.Source == "" {
		opts.Source = DefaultSource
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	builder := snippet.NewBuilder(cfg.BlobsPath(), opts.Source)
	snippets, err := builder.Build(college)
	if err != nil {
		return nil, err
	}
	if len(snippets) == 0 {
		return nil, fmt.Errorf("no snippets extracted from college record; refusing to build an empty index")
	}

	vectors, err := encoder.New(embedder, cfg.BatchSize).Encode(ctx, snippets)
	if err != nil {
		return nil, err
	}

	kind := index.Kind(cfg.IndexKind)
	idx, err := index.New(kind, embedder.Dimension(), index.HNSWParams{
		M:              cfg.HNSWM,
		EfConstruction: cfg.HNSWEfConstruction,
		EfSearch:       cfg.HNSWEfSearch,
	})
	if err != nil {
		return nil, err
	}
	if err := idx.Add(vectors); err != nil {
		return nil, err
	}

	// Stage everything under temp names first so a failure half-way never
	// leaves a new index beside an old metadata store.
	staged := make(map[string]string)
	stage := func(final string) string {
		tmp := filepath.Join(filepath.Dir(final), ".tmp-"+filepath.Base(final))
		staged[tmp] = final
		return tmp
	}
	cleanup := func() {
		for tmp := range staged {
			_ = os.Remove(tmp)
		}
	}

	if err := idx.Save(stage(cfg.IndexPath())); err != nil {
		cleanup()
		return nil, err
	}
	if err := writeMetadata(stage(cfg.MetadataPath()), snippets); err != nil {
		cleanup()
		return nil, err
	}
	if err := writeSnippetsDoc(stage(cfg.SnippetsPath()), snippets); err != nil {
		cleanup()
		return nil, err
	}
	if opts.WriteEmbeddings {
		if err := writeEmbeddings(stage(cfg.EmbeddingsPath()), vectors); err != nil {
			cleanup()
			return nil, err
		}
	}

	for tmp, final := range staged {
		if err := os.Rename(tmp, final); err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to commit artifact %s: %w", final, err)
		}
	}

	artifacts := &Artifacts{
		IndexPath:    cfg.IndexPath(),
		MetadataPath: cfg.MetadataPath(),
		SnippetsPath: cfg.SnippetsPath(),
		Count:        idx.Len(),
		Dimension:    idx.Dimension(),
	}
	if opts.WriteEmbeddings {
		artifacts.EmbeddingsPath = cfg.EmbeddingsPath()
	}
	return artifacts, nil
}

func writeMetadata(path string, snippets []models.Snippet) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace staged metadata: %w", err)
	}
	db, err := sqlite.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return sqlite.NewSnippetStore(db).ReplaceAll(snippets)
}

func writeSnippetsDoc(path string, snippets []models.Snippet) error {
	data, err := json.MarshalIndent(snippets, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snippets document: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// writeEmbeddings persists the N x D matrix as little-endian float32 rows
// behind a count/dimension header.
func writeEmbeddings(path string, vectors [][]float32) error {
	if len(vectors) == 0 {
		return fmt.Errorf("no vectors to write")
	}
	dim := len(vectors[0])
	buf := make([]byte, 8+len(vectors)*dim*4)
	binary.LittleEndian.PutUint32(buf[0:], uint32(len(vectors)))
	binary.LittleEndian.PutUint32(buf[4:], uint32(dim))
	off := 8
	for _, v := range vectors {
		for _, x := range v {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(x))
			off += 4
		}
	}
	return os.WriteFile(path, buf, 0644)
}
