// Package index provides the nearest-neighbour indexes queried by the search
// session: an HNSW graph and an exact flat scan. Both are built once from a
// static corpus and use cosine distance.
package index

import (
	"fmt"
	"math"
	"sort"

	"docsearch/internal/domain"
	"docsearch/internal/port"
)

// Backend names accepted by Build.
const (
	BackendHNSW = "hnsw"
	BackendFlat = "flat"
)

// DefaultEf is the query-time search breadth used until SetEf is called.
const DefaultEf = 50

// Build constructs the named backend over vectors. Vector i gets internal id i.
func Build(backend string, vectors [][]float32, params port.IndexParams) (port.VectorIndex, error) {
	dim, err := validate(vectors, params)
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendHNSW:
		return newHNSW(vectors, dim, params), nil
	case BackendFlat:
		return newFlat(vectors, dim), nil
	default:
		return nil, fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidConfiguration, backend)
	}
}

func validate(vectors [][]float32, params port.IndexParams) (int, error) {
	if params.Metric != "cosine" {
		return 0, fmt.Errorf("%w: unsupported metric %q", domain.ErrInvalidConfiguration, params.Metric)
	}
	if params.MaxElements != len(vectors) {
		return 0, fmt.Errorf("%w: max_elements %d does not match %d vectors", domain.ErrInvalidConfiguration, params.MaxElements, len(vectors))
	}
	if len(vectors) == 0 {
		return 0, nil
	}

	dim := len(vectors[0])
	if dim == 0 {
		return 0, fmt.Errorf("%w: empty vector at position 0", domain.ErrInvalidConfiguration)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return 0, fmt.Errorf("%w: vector %d has dimension %d, expected %d", domain.ErrInvalidConfiguration, i, len(v), dim)
		}
	}
	return dim, nil
}

func checkQuery(query []float32, dim int) error {
	if len(query) != dim {
		return fmt.Errorf("%w: query has dimension %d, index has %d", domain.ErrDimensionMismatch, len(query), dim)
	}
	return nil
}

// cosineDistance returns 1 - cos(a, b), clamped to [0, 2]. A zero vector is
// treated as orthogonal to everything.
func cosineDistance(a, b []float32) float32 {
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	d := 1 - dotProduct/(math.Sqrt(normA)*math.Sqrt(normB))
	return float32(math.Max(0, math.Min(2, d)))
}

type scored struct {
	id   int
	dist float32
}

// sortScored orders by ascending distance, ties by id, so results are stable
// within one build.
func sortScored(s []scored) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].dist != s[j].dist {
			return s[i].dist < s[j].dist
		}
		return s[i].id < s[j].id
	})
}

func split(s []scored) ([]int, []float32) {
	ids := make([]int, len(s))
	dists := make([]float32, len(s))
	for i, r := range s {
		ids[i] = r.id
		dists[i] = r.dist
	}
	return ids, dists
}
