// ABOUTME: Approximate graph-based index: hierarchical navigable proximity graph
// ABOUTME: Inner-product similarity over unit-norm vectors, sub-linear queries
package index

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/kssem/kiosk-retrieval/internal/models"
)

// maxLevelCap bounds the layer count regardless of corpus size.
const maxLevelCap = 16

// HNSWParams configure graph construction and search breadth.
type HNSWParams struct {
	// M is the neighbor degree per layer (layer 0 allows 2M).
	M int
	// EfConstruction is the candidate-list breadth during insertion.
	EfConstruction int
	// EfSearch is the candidate-list breadth during queries.
	EfSearch int
}

// DefaultHNSWParams mirror the construction parameters the index build
// tooling has always used.
func DefaultHNSWParams() HNSWParams {
	return HNSWParams{M: 32, EfConstruction: 200, EfSearch: 50}
}

func (p *HNSWParams) applyDefaults() {
	def := DefaultHNSWParams()
	if p.M <= 0 {
		p.M = def.M
	}
	if p.EfConstruction <= 0 {
		p.EfConstruction = def.EfConstruction
	}
	if p.EfSearch <= 0 {
		p.EfSearch = def.EfSearch
	}
}

type hnswNode struct {
	Level     int     `json:"level"`
	Neighbors [][]int `json:"neighbors"`
}

// HNSW is a hierarchical proximity graph over the stored vectors.
// Vectors must be unit-norm: internally the graph orders candidates by
// negated inner product, which for unit vectors is monotone with
// Euclidean distance.
type HNSW struct {
	dim      int
	params   HNSWParams
	vectors  [][]float32
	nodes    []*hnswNode
	entry    int
	topLevel int
	rng      *rand.Rand
}

// NewHNSW creates an empty graph index. Zero-valued params fall back to
// the defaults.
func NewHNSW(dim int, params HNSWParams) (*HNSW, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", dim)
	}
	params.applyDefaults()
	return &HNSW{
		dim:      dim,
		params:   params,
		topLevel: -1,
		// Fixed seed keeps rebuilds of the same corpus identical.
		rng: rand.New(rand.NewPCG(1, 1)),
	}, nil
}

func (h *HNSW) Add(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != h.dim {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), h.dim)
		}
	}
	for _, v := range vectors {
		h.insert(v)
	}
	return nil
}

func (h *HNSW) insert(vector []float32) {
	pos := len(h.vectors)
	h.vectors = append(h.vectors, vector)

	level := h.randomLevel()
	node := &hnswNode{Level: level, Neighbors: make([][]int, level+1)}
	h.nodes = append(h.nodes, node)

	if h.topLevel < 0 {
		h.entry = pos
		h.topLevel = level
		return
	}

	ep := h.entry
	for l := h.topLevel; l > level; l-- {
		ep = h.greedyClosest(vector, ep, l)
	}

	for l := min(level, h.topLevel); l >= 0; l-- {
		candidates := h.searchLayer(vector, ep, h.params.EfConstruction, l)

		m := h.params.M
		if l == 0 {
			m = 2 * h.params.M
		}
		if len(candidates) > m {
			candidates = candidates[:m]
		}

		neighbors := make([]int, len(candidates))
		for i, c := range candidates {
			neighbors[i] = c.pos
		}
		node.Neighbors[l] = neighbors

		for _, n := range neighbors {
			h.connect(n, pos, l, m)
		}
		if len(neighbors) > 0 {
			ep = neighbors[0]
		}
	}

	if level > h.topLevel {
		h.entry = pos
		h.topLevel = level
	}
}

// connect links pos into neighbor's list at the given level, pruning back
// to limit by keeping the closest neighbors.
func (h *HNSW) connect(neighbor, pos, level, limit int) {
	n := h.nodes[neighbor]
	n.Neighbors[level] = append(n.Neighbors[level], pos)
	if len(n.Neighbors[level]) <= limit {
		return
	}

	base := h.vectors[neighbor]
	list := n.Neighbors[level]
	sort.SliceStable(list, func(i, j int) bool {
		return h.negDot(base, list[i]) < h.negDot(base, list[j])
	})
	n.Neighbors[level] = list[:limit]
}

func (h *HNSW) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != h.dim {
		return nil, fmt.Errorf("query has dimension %d, want %d", len(query), h.dim)
	}
	if k <= 0 || h.topLevel < 0 {
		return nil, nil
	}

	ep := h.entry
	for l := h.topLevel; l > 0; l-- {
		ep = h.greedyClosest(query, ep, l)
	}

	ef := max(h.params.EfSearch, k)
	candidates := h.searchLayer(query, ep, ef, 0)

	if k < len(candidates) {
		candidates = candidates[:k]
	}
	hits := make([]Hit, len(candidates))
	for i, c := range candidates {
		hits[i] = Hit{Score: -c.dist, Pos: c.pos}
	}
	return hits, nil
}

// greedyClosest walks a single layer to the locally nearest node.
func (h *HNSW) greedyClosest(query []float32, ep, level int) int {
	curr := ep
	currDist := h.queryDist(query, curr)

	for changed := true; changed; {
		changed = false
		for _, n := range h.nodes[curr].Neighbors[level] {
			if d := h.queryDist(query, n); d < currDist {
				curr, currDist = n, d
				changed = true
			}
		}
	}
	return curr
}

type scoredPos struct {
	pos  int
	dist float32
}

// searchLayer is a best-first expansion at one level, returning up to ef
// candidates sorted closest-first.
func (h *HNSW) searchLayer(query []float32, ep, ef, level int) []scoredPos {
	visited := map[int]bool{ep: true}
	start := scoredPos{pos: ep, dist: h.queryDist(query, ep)}
	candidates := []scoredPos{start}
	results := []scoredPos{start}

	for len(candidates) > 0 {
		c := candidates[0]
		candidates = candidates[1:]

		if len(results) >= ef && c.dist > results[len(results)-1].dist {
			break
		}

		for _, n := range h.nodes[c.pos].Neighbors[level] {
			if visited[n] {
				continue
			}
			visited[n] = true
			d := h.queryDist(query, n)
			if len(results) < ef || d < results[len(results)-1].dist {
				sp := scoredPos{pos: n, dist: d}
				candidates = append(candidates, sp)
				results = append(results, sp)

				sort.SliceStable(results, func(i, j int) bool { return results[i].dist < results[j].dist })
				if len(results) > ef {
					results = results[:ef]
				}
				sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })
			}
		}
	}
	return results
}

func (h *HNSW) queryDist(query []float32, pos int) float32 {
	return -models.Dot(query, h.vectors[pos])
}

func (h *HNSW) negDot(base []float32, pos int) float32 {
	return -models.Dot(base, h.vectors[pos])
}

func (h *HNSW) randomLevel() int {
	lvl := 0
	for h.rng.Float64() < 0.5 && lvl < maxLevelCap {
		lvl++
	}
	return lvl
}

func (h *HNSW) Save(path string) error {
	return saveArtifact(path, KindHNSW, h.dim, h.vectors, func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		for key, val := range map[string]uint32{
			"m":               uint32(h.params.M),
			"ef_construction": uint32(h.params.EfConstruction),
			"ef_search":       uint32(h.params.EfSearch),
			"entry":           uint32(h.entry),
			"top_level":       uint32(h.topLevel),
		} {
			if err := meta.Put([]byte(key), u32(val)); err != nil {
				return err
			}
		}

		graph, err := tx.CreateBucket(bucketGraph)
		if err != nil {
			return err
		}
		for pos, node := range h.nodes {
			data, err := json.Marshal(node)
			if err != nil {
				return err
			}
			if err := graph.Put(u32(uint32(pos)), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (h *HNSW) Len() int       { return len(h.vectors) }
func (h *HNSW) Dimension() int { return h.dim }
func (h *HNSW) Kind() Kind     { return KindHNSW }

func loadHNSW(tx *bbolt.Tx) (*HNSW, error) {
	dim, vectors, err := loadVectors(tx)
	if err != nil {
		return nil, err
	}

	meta := tx.Bucket(bucketMeta)
	h := &HNSW{
		dim: dim,
		params: HNSWParams{
			M:              int(readU32(meta.Get([]byte("m")))),
			EfConstruction: int(readU32(meta.Get([]byte("ef_construction")))),
			EfSearch:       int(readU32(meta.Get([]byte("ef_search")))),
		},
		vectors:  vectors,
		entry:    int(readU32(meta.Get([]byte("entry")))),
		topLevel: int(readU32(meta.Get([]byte("top_level")))),
		rng:      rand.New(rand.NewPCG(1, 1)),
	}
	h.params.applyDefaults()

	graph := tx.Bucket(bucketGraph)
	if graph == nil {
		return nil, fmt.Errorf("corrupt artifact: no graph bucket")
	}
	h.nodes = make([]*hnswNode, len(vectors))
	for pos := range vectors {
		data := graph.Get(u32(uint32(pos)))
		if data == nil {
			return nil, fmt.Errorf("corrupt artifact: missing graph node %d", pos)
		}
		var node hnswNode
		if err := json.Unmarshal(data, &node); err != nil {
			return nil, fmt.Errorf("corrupt artifact: graph node %d: %w", pos, err)
		}
		h.nodes[pos] = &node
	}
	return h, nil
}
