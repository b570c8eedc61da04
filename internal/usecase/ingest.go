package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"docsearch/internal/adapter/chunker"
	"docsearch/internal/adapter/fs"
	"docsearch/internal/adapter/table"
	"docsearch/internal/domain"
	"docsearch/internal/logger"
	"docsearch/internal/port"
)

// ProgressFunc is called after each embedding batch with the number of chunks
// embedded so far.
type ProgressFunc func(done, total int)

// IngestUseCase turns document tables into chunk tables, optionally with
// embeddings.
type IngestUseCase struct {
	walker    *fs.Walker
	segmenter port.Segmenter
	chunker   *chunker.SentenceChunker
	embedder  port.Embedder
	batchSize int
}

// NewIngestUseCase creates a new ingest use case. embedder may be nil when
// only Chunk is used.
func NewIngestUseCase(
	walker *fs.Walker,
	segmenter port.Segmenter,
	chunker *chunker.SentenceChunker,
	embedder port.Embedder,
	batchSize int,
) *IngestUseCase {
	if batchSize < 1 {
		batchSize = 32
	}
	return &IngestUseCase{
		walker:    walker,
		segmenter: segmenter,
		chunker:   chunker,
		embedder:  embedder,
		batchSize: batchSize,
	}
}

// IngestResult summarises one run.
type IngestResult struct {
	RunID          string
	Files          int
	BytesRead      int64
	Documents      int
	EmptyDocuments int
	Chunks         int
	Dimension      int
	Elapsed        time.Duration
}

// Ingest reads source, chunks and embeds every document, and writes the
// chunk+embedding table to target. Nothing is written unless every step
// succeeds.
func (u *IngestUseCase) Ingest(ctx context.Context, source, target string, progress ProgressFunc) (*IngestResult, error) {
	if u.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", domain.ErrInvalidConfiguration)
	}
	start := time.Now()

	chunks, result, err := u.buildChunks(source)
	if err != nil {
		return nil, err
	}

	rows, err := u.Embed(ctx, chunks, progress)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		result.Dimension = len(rows[0].Vector)
	}

	err = table.WriteFileAtomic(target, func(w io.Writer) error {
		return table.WriteChunkVectors(w, rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", target, err)
	}

	result.Elapsed = time.Since(start)
	logger.Info("ingest %s: %d documents, %d chunks -> %s", result.RunID, result.Documents, result.Chunks, target)
	return result, nil
}

// Chunk runs normalisation, segmentation and chunking only and writes the
// chunk table to target.
func (u *IngestUseCase) Chunk(source, target string) (*IngestResult, error) {
	start := time.Now()

	chunks, result, err := u.buildChunks(source)
	if err != nil {
		return nil, err
	}

	err = table.WriteFileAtomic(target, func(w io.Writer) error {
		return table.WriteChunks(w, chunks)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", target, err)
	}

	result.Elapsed = time.Since(start)
	return result, nil
}

func (u *IngestUseCase) buildChunks(source string) ([]domain.Chunk, *IngestResult, error) {
	result := &IngestResult{RunID: uuid.NewString()}

	docs, err := u.LoadDocuments(source, result)
	if err != nil {
		return nil, nil, err
	}

	chunks, empty := u.BuildChunks(docs)
	result.Documents = len(docs)
	result.EmptyDocuments = empty
	result.Chunks = len(chunks)
	return chunks, result, nil
}

// LoadDocuments reads every table the source names. Ids are dense across
// files unless a table carries its own ID column; either way they must be
// unique over the whole run.
func (u *IngestUseCase) LoadDocuments(source string, result *IngestResult) ([]domain.Document, error) {
	files, err := u.walker.Resolve(source)
	if err != nil {
		return nil, err
	}

	var docs []domain.Document
	seen := make(map[int]string)
	for _, file := range files {
		logger.Debug("reading %s", file.Path)

		f, err := os.Open(file.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", file.Path, err)
		}
		fileDocs, err := table.ReadDocuments(f, len(docs))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file.Path, err)
		}

		for _, d := range fileDocs {
			if prev, dup := seen[d.ID]; dup {
				return nil, fmt.Errorf("%w: %s: document id %d already used in %s", domain.ErrMalformedInput, file.Path, d.ID, prev)
			}
			seen[d.ID] = file.Path
		}
		docs = append(docs, fileDocs...)

		if result != nil {
			result.Files++
			result.BytesRead += file.Size
		}
	}
	return docs, nil
}

// BuildChunks normalises and segments each document and groups the sentences
// into chunks. It also reports how many documents produced no sentences.
func (u *IngestUseCase) BuildChunks(docs []domain.Document) ([]domain.Chunk, int) {
	sentences := make(map[int][]string, len(docs))
	empty := 0
	for _, doc := range docs {
		s := u.segmenter.Segment(chunker.Normalize(doc.Text))
		if len(s) == 0 {
			empty++
			logger.Debug("document %d (%q) has no sentences", doc.ID, doc.Title)
		}
		sentences[doc.ID] = s
	}
	return u.chunker.Build(docs, sentences), empty
}

// Embed embeds chunk texts in batches, preserving order. The provider must
// return one vector per chunk, all of the same dimension.
func (u *IngestUseCase) Embed(ctx context.Context, chunks []domain.Chunk, progress ProgressFunc) ([]domain.ChunkVector, error) {
	rows := make([]domain.ChunkVector, 0, len(chunks))
	dim := 0

	for start := 0; start < len(chunks); start += u.batchSize {
		end := start + u.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, end-start)
		for i, c := range chunks[start:end] {
			texts[i] = c.Text
		}

		vectors, err := u.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, wrapProvider(err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("%w: provider returned %d vectors for %d chunks", domain.ErrProviderFailure, len(vectors), len(texts))
		}

		for i, v := range vectors {
			if dim == 0 {
				dim = len(v)
			}
			if len(v) == 0 || len(v) != dim {
				return nil, fmt.Errorf("%w: chunk %d embedded with dimension %d, expected %d", domain.ErrProviderFailure, start+i, len(v), dim)
			}
			rows = append(rows, domain.ChunkVector{Chunk: chunks[start+i], Vector: v})
		}

		if progress != nil {
			progress(end, len(chunks))
		}
	}
	return rows, nil
}
