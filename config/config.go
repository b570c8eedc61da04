package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"docsearch/internal/domain"
)

// Config holds all configuration for docsearch.
type Config struct {
	Ingest    IngestConfig    `yaml:"ingest" toml:"ingest"`
	Embedding EmbeddingConfig `yaml:"embedding" toml:"embedding"`
	Index     IndexConfig     `yaml:"index" toml:"index"`
	Query     QueryConfig     `yaml:"query" toml:"query"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// IngestConfig holds document ingestion and chunking configuration.
type IngestConfig struct {
	SourcePath string `yaml:"source_path" toml:"source_path"`
	TargetPath string `yaml:"target_path" toml:"target_path"`
	ChunkPath  string `yaml:"chunk_path" toml:"chunk_path"`
	ChunkSize  int    `yaml:"chunk_size" toml:"chunk_size"` // sentences per chunk
	Segmenter  string `yaml:"segmenter" toml:"segmenter"`   // "regex", "punkt"
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider" toml:"provider"` // "openai", "ollama", "mock"
	Model       string `yaml:"model" toml:"model"`
	BaseURL     string `yaml:"base_url" toml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env" toml:"api_key_env"`
	Dimension   int    `yaml:"dimension" toml:"dimension"` // 0 derives it from the model
	BatchSize   int    `yaml:"batch_size" toml:"batch_size"`
	Device      string `yaml:"device" toml:"device"` // "auto", "cpu", "gpu"
	TimeoutSecs int    `yaml:"timeout_secs" toml:"timeout_secs"`

	// RequestsPerSecond throttles calls to the provider; 0 disables throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second" toml:"requests_per_second"`
}

// IndexConfig holds vector index configuration.
type IndexConfig struct {
	Backend        string `yaml:"backend" toml:"backend"` // "hnsw", "flat"
	Metric         string `yaml:"metric" toml:"metric"`
	M              int    `yaml:"m" toml:"m"`
	EfConstruction int    `yaml:"ef_construction" toml:"ef_construction"`
	Ef             int    `yaml:"ef" toml:"ef"`
}

// QueryConfig holds interactive query configuration.
type QueryConfig struct {
	TopK      int    `yaml:"top_k" toml:"top_k"`
	WrapWidth int    `yaml:"wrap_width" toml:"wrap_width"`
	ExitToken string `yaml:"exit_token" toml:"exit_token"`
	Prompt    string `yaml:"prompt" toml:"prompt"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			SourcePath: "./data/medium.csv",
			TargetPath: "./data/chunks_and_embeddings_df.csv",
			ChunkPath:  "./data/chunks.csv",
			ChunkSize:  10,
			Segmenter:  "regex",
		},
		Embedding: EmbeddingConfig{
			Provider:    "ollama",
			Model:       "nomic-embed-text",
			APIKeyEnv:   "OPENAI_API_KEY",
			BatchSize:   32,
			Device:      "auto",
			TimeoutSecs: 60,
		},
		Index: IndexConfig{
			Backend:        "hnsw",
			Metric:         "cosine",
			M:              16,
			EfConstruction: 200,
			Ef:             50,
		},
		Query: QueryConfig{
			TopK:      5,
			WrapWidth: 80,
			ExitToken: "exit",
			Prompt:    "Please enter query: ",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML or TOML file, chosen by extension.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	applyDefaults(cfg)

	return cfg, nil
}

// LoadFromDir loads the first config file found in dir: docsearch.yaml,
// docsearch.toml, then .docsearch/config.yaml.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{
		"docsearch.yaml",
		"docsearch.toml",
		filepath.Join(".docsearch", "config.yaml"),
	} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return DefaultConfig(), nil
}

// Save writes the configuration as YAML, or TOML for a .toml path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var data []byte
	var err error
	if isTOML(path) {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks values that would otherwise fail deep inside ingestion or
// index construction.
func (c *Config) Validate() error {
	switch {
	case c.Ingest.ChunkSize < 1:
		return invalid("ingest.chunk_size must be >= 1, got %d", c.Ingest.ChunkSize)
	case c.Index.M < 2:
		return invalid("index.m must be >= 2, got %d", c.Index.M)
	case c.Index.EfConstruction < 1:
		return invalid("index.ef_construction must be >= 1, got %d", c.Index.EfConstruction)
	case c.Index.Ef < 1:
		return invalid("index.ef must be >= 1, got %d", c.Index.Ef)
	case c.Query.TopK < 1:
		return invalid("query.top_k must be >= 1, got %d", c.Query.TopK)
	case c.Embedding.BatchSize < 1:
		return invalid("embedding.batch_size must be >= 1, got %d", c.Embedding.BatchSize)
	case c.Embedding.Dimension < 0:
		return invalid("embedding.dimension must be >= 0, got %d", c.Embedding.Dimension)
	case c.Embedding.RequestsPerSecond < 0:
		return invalid("embedding.requests_per_second must be >= 0, got %g", c.Embedding.RequestsPerSecond)
	}

	if c.Index.Metric != "cosine" {
		return invalid("unsupported index.metric: %s", c.Index.Metric)
	}
	switch c.Index.Backend {
	case "hnsw", "flat":
	default:
		return invalid("unsupported index.backend: %s", c.Index.Backend)
	}
	switch c.Ingest.Segmenter {
	case "punkt", "regex":
	default:
		return invalid("unsupported ingest.segmenter: %s", c.Ingest.Segmenter)
	}
	switch c.Embedding.Provider {
	case "openai", "ollama", "mock":
	default:
		return invalid("unsupported embedding.provider: %s", c.Embedding.Provider)
	}
	switch c.Embedding.Device {
	case "auto", "cpu", "gpu":
	default:
		return invalid("unsupported embedding.device: %s", c.Embedding.Device)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domain.ErrInvalidConfiguration}, args...)...)
}

// applyDefaults fills string settings that an explicit empty value in YAML
// would otherwise clear. Numeric zero values are left to Validate.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Ingest.SourcePath == "" {
		cfg.Ingest.SourcePath = def.Ingest.SourcePath
	}
	if cfg.Ingest.TargetPath == "" {
		cfg.Ingest.TargetPath = def.Ingest.TargetPath
	}
	if cfg.Ingest.ChunkPath == "" {
		cfg.Ingest.ChunkPath = def.Ingest.ChunkPath
	}
	if cfg.Ingest.Segmenter == "" {
		cfg.Ingest.Segmenter = def.Ingest.Segmenter
	}
	if cfg.Embedding.Device == "" {
		cfg.Embedding.Device = def.Embedding.Device
	}
	if cfg.Index.Backend == "" {
		cfg.Index.Backend = def.Index.Backend
	}
	if cfg.Index.Metric == "" {
		cfg.Index.Metric = def.Index.Metric
	}
	if cfg.Query.ExitToken == "" {
		cfg.Query.ExitToken = def.Query.ExitToken
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
