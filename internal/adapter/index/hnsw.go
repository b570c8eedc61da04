package index

import (
	"fmt"

	"github.com/coder/hnsw"

	"docsearch/internal/domain"
	"docsearch/internal/port"
)

// HNSW is an approximate index backed by github.com/coder/hnsw. The graph is
// built once with ef_construction as its search breadth and then switched to
// the query-time ef.
type HNSW struct {
	graph     *hnsw.Graph[int]
	vectors   [][]float32
	dimension int
}

var _ port.VectorIndex = (*HNSW)(nil)

func newHNSW(vectors [][]float32, dim int, params port.IndexParams) *HNSW {
	g := hnsw.NewGraph[int]()
	g.Distance = hnsw.CosineDistance
	if params.M > 0 {
		g.M = params.M
	}
	if params.EfConstruction > 0 {
		g.EfSearch = params.EfConstruction
	}

	nodes := make([]hnsw.Node[int], len(vectors))
	for i, v := range vectors {
		nodes[i] = hnsw.MakeNode(i, v)
	}
	if len(nodes) > 0 {
		g.Add(nodes...)
	}
	g.EfSearch = DefaultEf

	return &HNSW{graph: g, vectors: vectors, dimension: dim}
}

func (h *HNSW) SetEf(ef int) error {
	if ef < 1 {
		return fmt.Errorf("%w: ef must be >= 1, got %d", domain.ErrInvalidConfiguration, ef)
	}
	h.graph.EfSearch = ef
	return nil
}

func (h *HNSW) Search(query []float32, k int) ([]int, []float32, error) {
	if k < 1 {
		return nil, nil, fmt.Errorf("%w: k must be >= 1, got %d", domain.ErrInvalidConfiguration, k)
	}
	if len(h.vectors) == 0 {
		return nil, nil, nil
	}
	if err := checkQuery(query, h.dimension); err != nil {
		return nil, nil, err
	}
	if k > len(h.vectors) {
		k = len(h.vectors)
	}

	seen := make(map[int]struct{}, k)
	results := make([]scored, 0, k)
	for _, node := range h.graph.Search(query, k) {
		if _, dup := seen[node.Key]; dup {
			continue
		}
		seen[node.Key] = struct{}{}
		results = append(results, scored{id: node.Key, dist: cosineDistance(query, h.vectors[node.Key])})
	}

	// A sparse graph can come back short; top up from an exact scan so the
	// caller always gets min(k, Len()) results.
	if len(results) < k {
		results = h.topUp(query, k, results, seen)
	}

	sortScored(results)
	if len(results) > k {
		results = results[:k]
	}
	ids, dists := split(results)
	return ids, dists, nil
}

func (h *HNSW) topUp(query []float32, k int, results []scored, seen map[int]struct{}) []scored {
	rest := make([]scored, 0, len(h.vectors)-len(seen))
	for i, v := range h.vectors {
		if _, ok := seen[i]; ok {
			continue
		}
		rest = append(rest, scored{id: i, dist: cosineDistance(query, v)})
	}
	sortScored(rest)
	need := k - len(results)
	if need > len(rest) {
		need = len(rest)
	}
	return append(results, rest[:need]...)
}

func (h *HNSW) Len() int {
	return len(h.vectors)
}

func (h *HNSW) Dimension() int {
	return h.dimension
}
