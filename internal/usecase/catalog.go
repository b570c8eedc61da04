package usecase

import (
	"errors"
	"fmt"
	"os"

	"docsearch/internal/adapter/index"
	"docsearch/internal/adapter/table"
	"docsearch/internal/domain"
	"docsearch/internal/logger"
	"docsearch/internal/port"
)

// Catalog is the build-order mapping from index-internal ids to chunks.
// Position i holds the chunk whose vector was inserted with id i.
type Catalog struct {
	chunks  []domain.Chunk
	vectors [][]float32
}

// NewCatalog keeps rows in the order given.
func NewCatalog(rows []domain.ChunkVector) *Catalog {
	c := &Catalog{
		chunks:  make([]domain.Chunk, len(rows)),
		vectors: make([][]float32, len(rows)),
	}
	for i, r := range rows {
		c.chunks[i] = r.Chunk
		c.vectors[i] = r.Vector
	}
	return c
}

// LoadCatalog reads a chunk+embedding table. Unparseable rows are logged and
// skipped; surviving rows must agree on the vector dimension.
func LoadCatalog(path string) (*Catalog, []table.RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rows, rowErrs, err := table.ReadChunkVectors(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, re := range rowErrs {
		logger.Warn("%s: skipping %v", path, re)
	}

	if len(rows) > 0 {
		dim := len(rows[0].Vector)
		for i, r := range rows {
			if len(r.Vector) != dim {
				return nil, rowErrs, fmt.Errorf("%w: %s: chunk %d has dimension %d, expected %d",
					domain.ErrInvalidConfiguration, path, i, len(r.Vector), dim)
			}
		}
	}

	logger.Debug("loaded %d chunks from %s (%d rows skipped)", len(rows), path, len(rowErrs))
	return NewCatalog(rows), rowErrs, nil
}

// Lookup returns the chunk stored under index id.
func (c *Catalog) Lookup(id int) (domain.Chunk, bool) {
	if id < 0 || id >= len(c.chunks) {
		return domain.Chunk{}, false
	}
	return c.chunks[id], true
}

func (c *Catalog) Len() int {
	return len(c.chunks)
}

// Vectors returns the vectors in build order. The slice is shared.
func (c *Catalog) Vectors() [][]float32 {
	return c.vectors
}

// IndexOptions holds the tuning knobs for BuildIndex.
type IndexOptions struct {
	Backend        string
	Metric         string
	M              int
	EfConstruction int
	Ef             int
}

// BuildIndex builds the vector index over the catalog in one blocking call
// and applies the query-time ef.
func BuildIndex(c *Catalog, opts IndexOptions) (port.VectorIndex, error) {
	params := port.IndexParams{
		Metric:         opts.Metric,
		MaxElements:    c.Len(),
		EfConstruction: opts.EfConstruction,
		M:              opts.M,
	}

	idx, err := index.Build(opts.Backend, c.vectors, params)
	if err != nil {
		return nil, err
	}
	if err := idx.SetEf(opts.Ef); err != nil {
		return nil, err
	}
	return idx, nil
}

// wrapProvider classifies an error from an external collaborator. Errors that
// already carry a taxonomy sentinel pass through.
func wrapProvider(err error) error {
	for _, sentinel := range []error{
		domain.ErrInvalidConfiguration,
		domain.ErrDimensionMismatch,
		domain.ErrMalformedInput,
		domain.ErrProviderFailure,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrProviderFailure, err)
}
