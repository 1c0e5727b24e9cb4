// ABOUTME: Corpus encoder turning snippets into normalized embedding vectors
// ABOUTME: Batches for throughput; output order always equals input order
package encoder

import (
	"context"
	"fmt"

	"github.com/kssem/kiosk-retrieval/internal/llm"
	"github.com/kssem/kiosk-retrieval/internal/models"
)

// DefaultBatchSize mirrors the batch size used by the index build tooling.
const DefaultBatchSize = 64

// Encoder embeds snippet text through an Embedder in fixed-size batches.
type Encoder struct {
	embedder  llm.Embedder
	batchSize int
}

// New creates an Encoder. A non-positive batchSize falls back to the default.
func New(embedder llm.Embedder, batchSize int) *Encoder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Encoder{embedder: embedder, batchSize: batchSize}
}

// Encode returns one unit-norm vector per snippet, in snippet order.
// Any embedder failure aborts the whole encode; there is no zero-vector
// fallback.
func (e *Encoder) Encode(ctx context.Context, snippets []models.Snippet) ([][]float32, error) {
	texts := make([]string, len(snippets))
	for i := range snippets {
		texts[i] = snippets[i].EmbeddingText()
	}

	dim := e.embedder.Dimension()
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))

		batch, err := e.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d: %w", start, end, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedding batch %d-%d: expected %d vectors, got %d", start, end, end-start, len(batch))
		}

		for i, v := range batch {
			if len(v) != dim {
				return nil, fmt.Errorf("snippet %s: invalid embedding dimension: expected %d, got %d",
					snippets[start+i].ID, dim, len(v))
			}
			if err := models.NormalizeL2(v); err != nil {
				return nil, fmt.Errorf("snippet %s: %w", snippets[start+i].ID, err)
			}
			vectors = append(vectors, v)
		}
	}

	return vectors, nil
}
