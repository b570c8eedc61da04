package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"docsearch/internal/domain"
)

// DefaultChunkSize is the number of sentences per chunk used by ingestion.
const DefaultChunkSize = 10

// periodBeforeCapital matches a period glued to the next sentence's first letter.
var periodBeforeCapital = regexp.MustCompile(`\.([A-Z])`)

// SentenceChunker groups each document's sentences into fixed-size windows.
type SentenceChunker struct {
	size int
}

// NewSentenceChunker returns a chunker that puts up to size sentences in each chunk.
func NewSentenceChunker(size int) (*SentenceChunker, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: chunk size must be >= 1, got %d", domain.ErrInvalidConfiguration, size)
	}
	return &SentenceChunker{size: size}, nil
}

// Size returns the number of sentences per chunk.
func (c *SentenceChunker) Size() int {
	return c.size
}

// Build chunks documents in input order. A document with n sentences yields
// ceil(n/size) chunks; a document with none yields no chunks. Inputs are not
// modified.
func (c *SentenceChunker) Build(docs []domain.Document, sentencesByDoc map[int][]string) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		for _, window := range SplitWindows(sentencesByDoc[doc.ID], c.size) {
			chunks = append(chunks, domain.Chunk{
				DocumentID: doc.ID,
				Title:      doc.Title,
				Text:       JoinSentences(window),
			})
		}
	}
	return chunks
}

// SplitWindows partitions items into consecutive windows of size elements;
// the last window holds the remainder. The windows share backing storage
// with items.
func SplitWindows(items []string, size int) [][]string {
	if size < 1 || len(items) == 0 {
		return nil
	}
	windows := make([][]string, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		windows = append(windows, items[start:end:end])
	}
	return windows
}

// JoinSentences concatenates a window of sentences into chunk text. Sentences
// are joined without a separator (segmenters keep trailing whitespace), double
// spaces are collapsed, the result is trimmed, and a space is put back between
// a period and a directly following capital letter.
func JoinSentences(window []string) string {
	joined := strings.Join(window, "")
	joined = strings.ReplaceAll(joined, "  ", " ")
	joined = strings.TrimSpace(joined)
	return RepairPeriodSpacing(joined)
}

// RepairPeriodSpacing turns "word.Next" into "word. Next". Other terminal
// punctuation is left as is.
func RepairPeriodSpacing(text string) string {
	return periodBeforeCapital.ReplaceAllString(text, ". ${1}")
}
