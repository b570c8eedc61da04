// Package table reads and writes the CSV tables that connect ingestion and
// querying: the document input, the chunk table and the chunk table with an
// embedding column.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"docsearch/internal/domain"
)

// Column names shared by every table this package touches.
const (
	ColumnID        = "ID"
	ColumnTitle     = "Title"
	ColumnText      = "Text"
	ColumnChunk     = "sentence_chunk"
	ColumnEmbedding = "embedding"
)

// RowError describes a row excluded while loading a chunk+embedding table.
type RowError struct {
	Row int // 1-based data row, header excluded
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// ReadDocuments reads a document table with at least Title and Text columns.
// An ID column is kept when present; otherwise ids are assigned densely from
// startID in row order.
func ReadDocuments(r io.Reader, startID int) ([]domain.Document, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: document table is empty", domain.ErrMalformedInput)
		}
		return nil, malformed(err)
	}
	cols := indexColumns(header)

	titleCol, ok := cols[ColumnTitle]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s column", domain.ErrMalformedInput, ColumnTitle)
	}
	textCol, ok := cols[ColumnText]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s column", domain.ErrMalformedInput, ColumnText)
	}
	idCol, hasID := cols[ColumnID]

	var docs []domain.Document
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed(err)
		}

		id := startID + row - 1
		if hasID {
			id, err = strconv.Atoi(strings.TrimSpace(rec[idCol]))
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: bad %s %q", domain.ErrMalformedInput, row, ColumnID, rec[idCol])
			}
		}
		docs = append(docs, domain.Document{ID: id, Title: rec[titleCol], Text: rec[textCol]})
	}
	return docs, nil
}

// WriteChunks writes the chunk table: ID, Title, sentence_chunk.
func WriteChunks(w io.Writer, chunks []domain.Chunk) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnID, ColumnTitle, ColumnChunk}); err != nil {
		return err
	}
	for _, c := range chunks {
		if err := cw.Write([]string{strconv.Itoa(c.DocumentID), c.Title, c.Text}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteChunkVectors writes the chunk table with an embedding column.
func WriteChunkVectors(w io.Writer, rows []domain.ChunkVector) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnID, ColumnTitle, ColumnChunk, ColumnEmbedding}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{strconv.Itoa(r.Chunk.DocumentID), r.Chunk.Title, r.Chunk.Text, FormatVector(r.Vector)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadChunkVectors loads a chunk+embedding table. Rows that fail to parse are
// returned as RowErrors and left out; structural problems with the table
// itself fail the whole read.
func ReadChunkVectors(r io.Reader) ([]domain.ChunkVector, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%w: chunk table is empty", domain.ErrMalformedInput)
		}
		return nil, nil, malformed(err)
	}
	cols := indexColumns(header)
	for _, name := range []string{ColumnID, ColumnTitle, ColumnChunk, ColumnEmbedding} {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("%w: missing %s column", domain.ErrMalformedInput, name)
		}
	}

	var (
		rows    []domain.ChunkVector
		rowErrs []RowError
	)
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, malformed(err)
		}

		cv, err := parseChunkVector(rec, cols)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: row, Err: err})
			continue
		}
		rows = append(rows, cv)
	}
	return rows, rowErrs, nil
}

func parseChunkVector(rec []string, cols map[string]int) (domain.ChunkVector, error) {
	for _, i := range cols {
		if i >= len(rec) {
			return domain.ChunkVector{}, fmt.Errorf("%w: expected %d fields, got %d", domain.ErrMalformedInput, len(cols), len(rec))
		}
	}

	id, err := strconv.Atoi(strings.TrimSpace(rec[cols[ColumnID]]))
	if err != nil {
		return domain.ChunkVector{}, fmt.Errorf("%w: bad %s %q", domain.ErrMalformedInput, ColumnID, rec[cols[ColumnID]])
	}
	vec, err := ParseVector(rec[cols[ColumnEmbedding]])
	if err != nil {
		return domain.ChunkVector{}, err
	}

	return domain.ChunkVector{
		Chunk: domain.Chunk{
			DocumentID: id,
			Title:      rec[cols[ColumnTitle]],
			Text:       rec[cols[ColumnChunk]],
		},
		Vector: vec,
	}, nil
}

// WriteFileAtomic writes through a temp file in the target directory and
// renames it into place only when write succeeds.
func WriteFileAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	return cols
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)
}
