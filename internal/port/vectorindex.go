package port

// IndexParams configures a vector index build.
type IndexParams struct {
	Metric         string // only "cosine" is supported
	MaxElements    int    // must equal the number of vectors
	EfConstruction int
	M              int
}

// VectorIndex is an immutable nearest-neighbour index built once from a
// static corpus. Internal ids are the build-order positions of the vectors.
type VectorIndex interface {
	// SetEf sets the query-time search breadth. Higher is slower with better recall.
	SetEf(ef int) error

	// Search returns min(k, Len()) ids with their cosine distances,
	// sorted by ascending distance.
	Search(query []float32, k int) (ids []int, distances []float32, err error)

	// Len returns the number of indexed vectors.
	Len() int

	// Dimension returns the vector dimension of the index.
	Dimension() int
}
