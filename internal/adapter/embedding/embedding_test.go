package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsearch/internal/domain"
)

func TestOpenAIEmbedder_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)

		// Answer out of order; the client must reorder by index.
		resp := embeddingResponse{}
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, embeddingData{
				Index:     i,
				Embedding: []float32{float32(i), 1, 0},
			})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	t.Setenv("TEST_EMBED_KEY", "secret")
	emb, err := NewOpenAIEmbedder(OpenAIConfig{
		BaseURL:   server.URL,
		APIKeyEnv: "TEST_EMBED_KEY",
		Model:     "test-model",
		Dimension: 3,
	})
	require.NoError(t, err)

	vectors, err := emb.Embed(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 1, 0}, {1, 1, 0}, {2, 1, 0}}, vectors)

	one, err := emb.EmbedOne(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, one)
}

func TestOpenAIEmbedder_MissingKey(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY_MISSING", "")
	_, err := NewOpenAIEmbedder(OpenAIConfig{APIKeyEnv: "TEST_EMBED_KEY_MISSING", Model: "m"})
	assert.True(t, errors.Is(err, domain.ErrInvalidConfiguration), "got %v", err)
}

func TestOpenAIEmbedder_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}},
		{"api error", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":{"message":"bad model","type":"invalid_request_error"}}`))
		}},
		{"wrong dimension", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":[{"index":0,"embedding":[1,2]}]}`))
		}},
		{"missing vector", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":[]}`))
		}},
		{"garbage", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}},
	}

	t.Setenv("TEST_EMBED_KEY", "secret")
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			emb, err := NewOpenAIEmbedder(OpenAIConfig{
				BaseURL:   server.URL,
				APIKeyEnv: "TEST_EMBED_KEY",
				Model:     "m",
				Dimension: 3,
			})
			require.NoError(t, err)

			_, err = emb.EmbedOne(context.Background(), "q")
			assert.True(t, errors.Is(err, domain.ErrProviderFailure), "got %v", err)
		})
	}
}

func TestOllamaEmbedder_DeviceOptions(t *testing.T) {
	tests := []struct {
		device  Device
		numGPU  any
		options bool
	}{
		{DeviceAuto, nil, false},
		{DeviceCPU, float64(0), true},
		{DeviceGPU, float64(allLayers), true},
	}

	for _, tc := range tests {
		t.Run(string(tc.device), func(t *testing.T) {
			var got map[string]any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/embed", r.URL.Path)
				var req map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				got = req
				w.Write([]byte(`{"model":"m","embeddings":[[0.5,0.5]]}`))
			}))
			defer server.Close()

			emb, err := NewOllamaEmbedder(OllamaConfig{
				BaseURL:   server.URL + "/",
				Model:     "m",
				Dimension: 2,
				Device:    tc.device,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.device, emb.Device())

			vec, err := emb.EmbedOne(context.Background(), "hello")
			require.NoError(t, err)
			assert.Equal(t, []float32{0.5, 0.5}, vec)

			opts, ok := got["options"].(map[string]any)
			assert.Equal(t, tc.options, ok)
			if tc.options {
				assert.Equal(t, tc.numGPU, opts["num_gpu"])
			}
		})
	}
}

func TestOllamaEmbedder_UnknownDevice(t *testing.T) {
	_, err := NewOllamaEmbedder(OllamaConfig{Model: "m", Device: "tpu"})
	assert.True(t, errors.Is(err, domain.ErrInvalidConfiguration), "got %v", err)
}

func TestOllamaEmbedder_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model \"m\" not found"}`))
	}))
	defer server.Close()

	emb, err := NewOllamaEmbedder(OllamaConfig{BaseURL: server.URL, Model: "m", Dimension: 2})
	require.NoError(t, err)

	_, err = emb.Embed(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrProviderFailure))
	assert.Contains(t, err.Error(), "not found")
}

func TestHashingEmbedder(t *testing.T) {
	emb := NewHashingEmbedder(64)
	ctx := context.Background()

	vectors, err := emb.Embed(ctx, []string{
		"vector databases store embeddings",
		"vector databases store embeddings",
		"the weather is sunny today",
		"",
	})
	require.NoError(t, err)
	require.Len(t, vectors, 4)

	for _, v := range vectors {
		assert.Len(t, v, 64)
		var norm float32
		for _, x := range v {
			norm += x * x
		}
		assert.InDelta(t, 1.0, norm, 1e-5)
	}
	assert.Equal(t, vectors[0], vectors[1])

	query, err := emb.EmbedOne(ctx, "store embeddings in vector databases")
	require.NoError(t, err)
	assert.Greater(t, dot(query, vectors[0]), dot(query, vectors[2]))
}

func dot(a, b []float32) float32 {
	var s float32
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func TestRateLimiter(t *testing.T) {
	unlimited := newLimiter(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, wait(context.Background(), unlimited))
	}

	limited := newLimiter(0.5)
	assert.True(t, limited.Allow(), "first request uses the burst")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, wait(ctx, limited), domain.ErrProviderFailure)
}
