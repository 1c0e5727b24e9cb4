// ABOUTME: Tests for the corpus encoder
// ABOUTME: Verifies batching, order preservation and the normalization invariant
package encoder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/kssem/kiosk-retrieval/internal/models"
)

// stubEmbedder returns a distinct, deterministic vector per input text and
// records the batch sizes it was called with.
type stubEmbedder struct {
	dim        int
	batchSizes []int
	fail       bool
	zero       bool
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if s.fail {
		return nil, errors.New("model unavailable")
	}
	s.batchSizes = append(s.batchSizes, len(texts))

	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, s.dim)
		if !s.zero {
			// Cheap deterministic fingerprint of the text.
			for j, r := range text {
				v[(j+int(r))%s.dim] += float32(r%13) + 1
			}
			v[0] += 1
		}
		out[i] = v
	}
	return out, nil
}

func (s *stubEmbedder) Dimension() int { return s.dim }

func makeSnippets(n int) []models.Snippet {
	snippets := make([]models.Snippet, n)
	for i := range snippets {
		snippets[i] = models.Snippet{
			ID:      fmt.Sprintf("about-20260101120000-%d", i+1),
			Section: "about",
			Title:   fmt.Sprintf("sentinel title %d alpha bravo", i),
		}
	}
	return snippets
}

func TestEncoder_OrderPreservedAcrossBatches(t *testing.T) {
	emb := &stubEmbedder{dim: 16}
	snippets := makeSnippets(5)

	// Reference: one big batch.
	whole, err := New(emb, 100).Encode(context.Background(), snippets)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	emb2 := &stubEmbedder{dim: 16}
	batched, err := New(emb2, 2).Encode(context.Background(), snippets)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if len(batched) != len(snippets) {
		t.Fatalf("Encode() returned %d vectors, want %d", len(batched), len(snippets))
	}
	for i := range whole {
		for j := range whole[i] {
			if whole[i][j] != batched[i][j] {
				t.Fatalf("vector %d differs between batch sizes: batching reordered output", i)
			}
		}
	}

	wantBatches := []int{2, 2, 1}
	if len(emb2.batchSizes) != len(wantBatches) {
		t.Fatalf("batch sizes = %v, want %v", emb2.batchSizes, wantBatches)
	}
	for i, want := range wantBatches {
		if emb2.batchSizes[i] != want {
			t.Errorf("batch %d size = %d, want %d", i, emb2.batchSizes[i], want)
		}
	}
}

func TestEncoder_VectorsAreUnitNorm(t *testing.T) {
	emb := &stubEmbedder{dim: 16}
	vectors, err := New(emb, 3).Encode(context.Background(), makeSnippets(7))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	for i, v := range vectors {
		if math.Abs(float64(models.Norm(v))-1) > models.NormTolerance {
			t.Errorf("vector %d norm = %v, want 1", i, models.Norm(v))
		}
	}
}

func TestEncoder_EmbedderFailureIsFatal(t *testing.T) {
	emb := &stubEmbedder{dim: 16, fail: true}
	if _, err := New(emb, 2).Encode(context.Background(), makeSnippets(3)); err == nil {
		t.Error("Encode() should fail when the embedder is unavailable")
	}
}

func TestEncoder_ZeroVectorRejected(t *testing.T) {
	emb := &stubEmbedder{dim: 16, zero: true}
	if _, err := New(emb, 2).Encode(context.Background(), makeSnippets(2)); err == nil {
		t.Error("Encode() should reject zero vectors")
	}
}

func TestEncoder_EmptyCorpus(t *testing.T) {
	emb := &stubEmbedder{dim: 16}
	vectors, err := New(emb, 2).Encode(context.Background(), nil)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(vectors) != 0 {
		t.Errorf("Encode() returned %d vectors for empty corpus", len(vectors))
	}
	if len(emb.batchSizes) != 0 {
		t.Error("embedder should not be called for an empty corpus")
	}
}
