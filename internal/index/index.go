// ABOUTME: Vector index capability with two variants: exact flat and HNSW
// ABOUTME: Handles the shared bbolt artifact format and kind dispatch on load
package index

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"time"

	"go.etcd.io/bbolt"
)

// Kind selects the index variant at build configuration time.
type Kind string

const (
	// KindFlat stores all vectors and scans them exactly. Appropriate
	// below roughly 10^4 vectors.
	KindFlat Kind = "flat"
	// KindHNSW is a hierarchical proximity graph trading a small
	// ranking-accuracy loss for sub-linear query time.
	KindHNSW Kind = "hnsw"
)

// Hit is one search result: an inner-product score and the 0-based
// insertion position of the matched vector.
type Hit struct {
	Score float32
	Pos   int
}

// Index is the similarity-search capability. Position i corresponds to the
// i-th vector added; the metadata store relies on that correspondence.
// Implementations are safe for concurrent Search after Add/Load complete.
type Index interface {
	// Add appends vectors in order. All vectors must match the index dimension.
	Add(vectors [][]float32) error
	// Search returns up to k hits ordered by descending inner product.
	// k larger than the vector count is clamped. Tie order among equal
	// scores is variant-defined and not guaranteed stable.
	Search(query []float32, k int) ([]Hit, error)
	// Save persists the index wholesale to a single artifact file.
	Save(path string) error
	// Len returns the number of stored vectors.
	Len() int
	// Dimension returns the vector dimension.
	Dimension() int
	// Kind identifies the variant.
	Kind() Kind
}

// New creates an empty index of the given kind.
func New(kind Kind, dim int, params HNSWParams) (Index, error) {
	switch kind {
	case KindFlat:
		return NewFlat(dim)
	case KindHNSW:
		return NewHNSW(dim, params)
	default:
		return nil, fmt.Errorf("unknown index kind %q", kind)
	}
}

var (
	bucketMeta    = []byte("meta")
	bucketVectors = []byte("vectors")
	bucketGraph   = []byte("graph")
)

// Load reads an index artifact written by Save, dispatching on the stored
// kind. A missing artifact surfaces as an os.ErrNotExist-wrapping error so
// the resource manager can fail startup with a clear message.
func Load(path string) (Index, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("index artifact %s: %w", path, err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{ReadOnly: true, Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open index artifact %s: %w", path, err)
	}
	defer db.Close()

	var idx Index
	err = db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if meta == nil {
			return fmt.Errorf("artifact has no meta bucket")
		}
		kind := Kind(meta.Get([]byte("kind")))
		switch kind {
		case KindFlat:
			loaded, err := loadFlat(tx)
			if err != nil {
				return err
			}
			idx = loaded
		case KindHNSW:
			loaded, err := loadHNSW(tx)
			if err != nil {
				return err
			}
			idx = loaded
		default:
			return fmt.Errorf("unknown index kind %q", kind)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load index artifact %s: %w", path, err)
	}
	return idx, nil
}

// saveArtifact writes the meta and vectors buckets common to both variants,
// then lets extra persist variant-specific state. The file is recreated
// wholesale; there is no append mode.
func saveArtifact(path string, kind Kind, dim int, vectors [][]float32, extra func(tx *bbolt.Tx) error) error {
	if len(vectors) == 0 {
		return fmt.Errorf("refusing to save empty index")
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace index artifact: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return fmt.Errorf("failed to create index artifact %s: %w", path, err)
	}
	defer db.Close()

	return db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucket(bucketMeta)
		if err != nil {
			return err
		}
		if err := meta.Put([]byte("kind"), []byte(kind)); err != nil {
			return err
		}
		if err := meta.Put([]byte("dimension"), u32(uint32(dim))); err != nil {
			return err
		}
		if err := meta.Put([]byte("count"), u32(uint32(len(vectors)))); err != nil {
			return err
		}

		vecs, err := tx.CreateBucket(bucketVectors)
		if err != nil {
			return err
		}
		for pos, v := range vectors {
			if err := vecs.Put(u32(uint32(pos)), vectorToBlob(v)); err != nil {
				return err
			}
		}

		if extra != nil {
			return extra(tx)
		}
		return nil
	})
}

// loadVectors reads the shared meta and vector buckets.
func loadVectors(tx *bbolt.Tx) (dim int, vectors [][]float32, err error) {
	meta := tx.Bucket(bucketMeta)
	dim = int(readU32(meta.Get([]byte("dimension"))))
	count := int(readU32(meta.Get([]byte("count"))))
	if dim <= 0 || count <= 0 {
		return 0, nil, fmt.Errorf("corrupt artifact: dimension=%d count=%d", dim, count)
	}

	vecs := tx.Bucket(bucketVectors)
	if vecs == nil {
		return 0, nil, fmt.Errorf("corrupt artifact: no vectors bucket")
	}
	vectors = make([][]float32, count)
	for pos := 0; pos < count; pos++ {
		blob := vecs.Get(u32(uint32(pos)))
		if blob == nil {
			return 0, nil, fmt.Errorf("corrupt artifact: missing vector %d", pos)
		}
		v := blobToVector(blob)
		if len(v) != dim {
			return 0, nil, fmt.Errorf("corrupt artifact: vector %d has dimension %d, want %d", pos, len(v), dim)
		}
		vectors[pos] = v
	}
	return dim, vectors, nil
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func readU32(b []byte) uint32 {
	if len(b) != 4 {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func vectorToBlob(v []float32) []byte {
	blob := make([]byte, len(v)*4)
	for i, x := range v {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(x))
	}
	return blob
}

func blobToVector(blob []byte) []float32 {
	v := make([]float32, len(blob)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return v
}
