// Package embedding holds the embedding providers used at ingestion and at
// query time.
package embedding

import (
	"context"
	"fmt"

	"docsearch/internal/domain"
	"docsearch/internal/port"
)

func providerError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domain.ErrProviderFailure}, args...)...)
}

// checkVectors verifies a provider response: one vector per input, all of the
// provider's dimension.
func checkVectors(vectors [][]float32, want, dimension int) error {
	if len(vectors) != want {
		return providerError("expected %d embeddings, got %d", want, len(vectors))
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return providerError("missing embedding for input %d", i)
		}
		if dimension > 0 && len(v) != dimension {
			return providerError("embedding %d has dimension %d, expected %d", i, len(v), dimension)
		}
	}
	return nil
}

func embedOne(ctx context.Context, e port.Embedder, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, providerError("expected 1 embedding, got %d", len(vectors))
	}
	return vectors[0], nil
}

func preview(body []byte) string {
	if len(body) > 200 {
		return string(body[:200])
	}
	return string(body)
}

var (
	_ port.Embedder = (*OpenAIEmbedder)(nil)
	_ port.Embedder = (*OllamaEmbedder)(nil)
	_ port.Embedder = (*HashingEmbedder)(nil)
)
