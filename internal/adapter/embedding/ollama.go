package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"docsearch/internal/domain"
)

// Device selects where a local model runs.
type Device string

const (
	DeviceAuto Device = "auto" // let the server decide, GPU when present
	DeviceCPU  Device = "cpu"
	DeviceGPU  Device = "gpu"
)

// allLayers asks Ollama to offload every model layer to the GPU.
const allLayers = 999

// OllamaConfig configures the native Ollama /api/embed client.
type OllamaConfig struct {
	BaseURL           string
	Model             string
	Dimension         int
	Device            Device
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 means unlimited
}

// OllamaEmbedder talks to a local Ollama server. Device placement is an
// explicit construction parameter rather than something probed at runtime.
type OllamaEmbedder struct {
	baseURL   string
	model     string
	dimension int
	device    Device
	client    *http.Client
	limiter   *rate.Limiter
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Input   []string       `json:"input"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

func NewOllamaEmbedder(cfg OllamaConfig) (*OllamaEmbedder, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	device := cfg.Device
	if device == "" {
		device = DeviceAuto
	}
	switch device {
	case DeviceAuto, DeviceCPU, DeviceGPU:
	default:
		return nil, fmt.Errorf("%w: unknown device %q", domain.ErrInvalidConfiguration, device)
	}

	dimension := cfg.Dimension
	if dimension <= 0 {
		dimension = ollamaModelDimension(cfg.Model)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &OllamaEmbedder{
		baseURL:   baseURL,
		model:     cfg.Model,
		dimension: dimension,
		device:    device,
		client:    &http.Client{Timeout: timeout},
		limiter:   newLimiter(cfg.RequestsPerSecond),
	}, nil
}

func ollamaModelDimension(model string) int {
	switch model {
	case "mxbai-embed-large":
		return 1024
	case "all-minilm":
		return 384
	default:
		return 768
	}
}

func (e *OllamaEmbedder) options() map[string]any {
	switch e.device {
	case DeviceCPU:
		return map[string]any{"num_gpu": 0}
	case DeviceGPU:
		return map[string]any{"num_gpu": allLayers}
	default:
		return nil
	}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := wait(ctx, e.limiter); err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(ollamaRequest{
		Model:   e.model,
		Input:   texts,
		Options: e.options(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, providerError("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providerError("failed to read response: %w", err)
	}

	var out ollamaResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, providerError("failed to parse response (status %d, body: %s): %w", resp.StatusCode, preview(body), err)
	}
	if resp.StatusCode != http.StatusOK || out.Error != "" {
		return nil, providerError("ollama returned status %d: %s", resp.StatusCode, out.Error)
	}

	if err := checkVectors(out.Embeddings, len(texts), e.dimension); err != nil {
		return nil, err
	}
	return out.Embeddings, nil
}

func (e *OllamaEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	return embedOne(ctx, e, text)
}

func (e *OllamaEmbedder) Dimension() int {
	return e.dimension
}

func (e *OllamaEmbedder) ModelName() string {
	return e.model
}

// Device returns the configured execution device.
func (e *OllamaEmbedder) Device() Device {
	return e.device
}
