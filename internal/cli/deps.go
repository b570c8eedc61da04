package cli

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"docsearch/config"
	"docsearch/internal/adapter/chunker"
	"docsearch/internal/adapter/embedding"
	"docsearch/internal/adapter/fs"
	"docsearch/internal/adapter/segmenter"
	"docsearch/internal/domain"
	"docsearch/internal/port"
	"docsearch/internal/usecase"
)

func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	timeout := time.Duration(cfg.Embedding.TimeoutSecs) * time.Second

	switch cfg.Embedding.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			BaseURL:   cfg.Embedding.BaseURL,
			APIKeyEnv: cfg.Embedding.APIKeyEnv,
			Model:     cfg.Embedding.Model,
			Dimension: cfg.Embedding.Dimension,
			Timeout:   timeout,

			RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		})
	case "ollama":
		return embedding.NewOllamaEmbedder(embedding.OllamaConfig{
			BaseURL:   cfg.Embedding.BaseURL,
			Model:     cfg.Embedding.Model,
			Dimension: cfg.Embedding.Dimension,
			Device:    embedding.Device(cfg.Embedding.Device),
			Timeout:   timeout,

			RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		})
	case "mock":
		return embedding.NewHashingEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrInvalidConfiguration, cfg.Embedding.Provider)
	}
}

func newSegmenter(cfg *config.Config) (port.Segmenter, error) {
	switch cfg.Ingest.Segmenter {
	case "punkt":
		return segmenter.NewPunkt()
	case "regex":
		return segmenter.NewRegex(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported segmenter: %s", domain.ErrInvalidConfiguration, cfg.Ingest.Segmenter)
	}
}

// newIngestUseCase wires the ingest pipeline. embedder may be nil for
// chunk-only runs.
func newIngestUseCase(cfg *config.Config, embedder port.Embedder) (*usecase.IngestUseCase, error) {
	seg, err := newSegmenter(cfg)
	if err != nil {
		return nil, err
	}
	ch, err := chunker.NewSentenceChunker(cfg.Ingest.ChunkSize)
	if err != nil {
		return nil, err
	}
	return usecase.NewIngestUseCase(fs.NewWalker(nil, nil), seg, ch, embedder, cfg.Embedding.BatchSize), nil
}

func indexOptions(cfg *config.Config) usecase.IndexOptions {
	return usecase.IndexOptions{
		Backend:        cfg.Index.Backend,
		Metric:         cfg.Index.Metric,
		M:              cfg.Index.M,
		EfConstruction: cfg.Index.EfConstruction,
		Ef:             cfg.Index.Ef,
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// argOr returns args[i] when present, otherwise def.
func argOr(args []string, i int, def string) string {
	if len(args) > i && args[i] != "" {
		return args[i]
	}
	return def
}
