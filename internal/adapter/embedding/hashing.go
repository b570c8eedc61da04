package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"docsearch/internal/adapter/analyzer"
)

// HashingEmbedder is a deterministic, offline embedder. Each word and word
// bigram is hashed into a signed bucket and the result is L2-normalized, so
// texts sharing vocabulary land close together under cosine distance.
type HashingEmbedder struct {
	dimension int
	tokenizer *analyzer.Tokenizer
}

func NewHashingEmbedder(dimension int) *HashingEmbedder {
	if dimension <= 0 {
		dimension = 256
	}
	return &HashingEmbedder{
		dimension: dimension,
		tokenizer: analyzer.NewTokenizer(true),
	}
}

func (e *HashingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = e.vector(text)
	}
	return embeddings, nil
}

func (e *HashingEmbedder) EmbedOne(_ context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

func (e *HashingEmbedder) vector(text string) []float32 {
	features := e.tokenizer.Features(text)
	if len(features) == 0 {
		// Keep the vector non-zero so cosine distance stays defined.
		features = []string{strings.ToLower(strings.TrimSpace(text))}
	}

	vec := make([]float32, e.dimension)
	for _, f := range features {
		h := fnv.New64a()
		h.Write([]byte(f))
		sum := h.Sum64()
		bucket := int(sum % uint64(e.dimension))
		if sum&(1<<63) != 0 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		// Opposite-signed features cancelled out.
		vec[0] = 1
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

func (e *HashingEmbedder) Dimension() int {
	return e.dimension
}

func (e *HashingEmbedder) ModelName() string {
	return "hashing"
}
