// ABOUTME: Exact flat index: brute-force inner-product scan over all vectors
// ABOUTME: O(N*D) per query, exact top-k, insertion order for ties
package index

import (
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/kssem/kiosk-retrieval/internal/models"
)

// Flat stores all vectors and scans them on every query.
type Flat struct {
	dim     int
	vectors [][]float32
}

// NewFlat creates an empty flat index for vectors of the given dimension.
func NewFlat(dim int) (*Flat, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", dim)
	}
	return &Flat{dim: dim}, nil
}

func (f *Flat) Add(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), f.dim)
		}
	}
	f.vectors = append(f.vectors, vectors...)
	return nil
}

func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("query has dimension %d, want %d", len(query), f.dim)
	}
	if k <= 0 || len(f.vectors) == 0 {
		return nil, nil
	}

	hits := make([]Hit, len(f.vectors))
	for pos, v := range f.vectors {
		hits[pos] = Hit{Score: models.Dot(query, v), Pos: pos}
	}
	// Stable keeps insertion order among equal scores.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func (f *Flat) Save(path string) error {
	return saveArtifact(path, KindFlat, f.dim, f.vectors, nil)
}

func (f *Flat) Len() int       { return len(f.vectors) }
func (f *Flat) Dimension() int { return f.dim }
func (f *Flat) Kind() Kind     { return KindFlat }

func loadFlat(tx *bbolt.Tx) (*Flat, error) {
	dim, vectors, err := loadVectors(tx)
	if err != nil {
		return nil, err
	}
	return &Flat{dim: dim, vectors: vectors}, nil
}
