package index

import (
	"fmt"

	"docsearch/internal/domain"
	"docsearch/internal/port"
)

// Flat scans every vector. It is exact and serves as the recall baseline
// for HNSW.
type Flat struct {
	vectors   [][]float32
	dimension int
}

var _ port.VectorIndex = (*Flat)(nil)

func newFlat(vectors [][]float32, dim int) *Flat {
	return &Flat{vectors: vectors, dimension: dim}
}

// SetEf is accepted for interface compatibility; an exact scan has no breadth knob.
func (f *Flat) SetEf(ef int) error {
	if ef < 1 {
		return fmt.Errorf("%w: ef must be >= 1, got %d", domain.ErrInvalidConfiguration, ef)
	}
	return nil
}

func (f *Flat) Search(query []float32, k int) ([]int, []float32, error) {
	if k < 1 {
		return nil, nil, fmt.Errorf("%w: k must be >= 1, got %d", domain.ErrInvalidConfiguration, k)
	}
	if len(f.vectors) == 0 {
		return nil, nil, nil
	}
	if err := checkQuery(query, f.dimension); err != nil {
		return nil, nil, err
	}

	all := make([]scored, len(f.vectors))
	for i, v := range f.vectors {
		all[i] = scored{id: i, dist: cosineDistance(query, v)}
	}
	sortScored(all)

	if k > len(all) {
		k = len(all)
	}
	ids, dists := split(all[:k])
	return ids, dists, nil
}

func (f *Flat) Len() int {
	return len(f.vectors)
}

func (f *Flat) Dimension() int {
	return f.dimension
}
