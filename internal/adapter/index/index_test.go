package index

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsearch/internal/domain"
	"docsearch/internal/port"
)

func params(n int) port.IndexParams {
	return port.IndexParams{Metric: "cosine", MaxElements: n, EfConstruction: 200, M: 16}
}

func randomVectors(rng *rand.Rand, n, dim int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		v := make([]float32, dim)
		for j := range v {
			v[j] = rng.Float32()*2 - 1
		}
		out[i] = v
	}
	return out
}

func TestBuild_Validation(t *testing.T) {
	vecs := [][]float32{{1, 0}, {0, 1}}

	tests := []struct {
		name    string
		backend string
		vectors [][]float32
		params  port.IndexParams
	}{
		{"euclidean metric", BackendHNSW, vecs, port.IndexParams{Metric: "l2", MaxElements: 2, M: 16, EfConstruction: 200}},
		{"max elements mismatch", BackendHNSW, vecs, params(3)},
		{"ragged vectors", BackendFlat, [][]float32{{1, 0}, {0, 1, 0}}, params(2)},
		{"empty vector", BackendFlat, [][]float32{{}}, params(1)},
		{"unknown backend", "faiss", vecs, params(2)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.backend, tc.vectors, tc.params)
			assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
		})
	}
}

func TestSearch_ResultCountAndOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, backend := range []string{BackendHNSW, BackendFlat} {
		for _, n := range []int{1, 3, 5, 40} {
			vecs := randomVectors(rng, n, 16)
			idx, err := Build(backend, vecs, params(n))
			require.NoError(t, err)
			require.NoError(t, idx.SetEf(50))

			ids, dists, err := idx.Search(randomVectors(rng, 1, 16)[0], 5)
			require.NoError(t, err)

			want := 5
			if n < want {
				want = n
			}
			assert.Len(t, ids, want, "%s n=%d", backend, n)
			assert.Len(t, dists, want)

			seen := map[int]bool{}
			for i, id := range ids {
				assert.False(t, seen[id], "duplicate id %d", id)
				seen[id] = true
				assert.GreaterOrEqual(t, id, 0)
				assert.Less(t, id, n)
				if i > 0 {
					assert.LessOrEqual(t, dists[i-1], dists[i])
				}
			}
		}
	}
}

func TestSearch_SelfIsNearest(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	vecs := randomVectors(rng, 50, 8)

	for _, backend := range []string{BackendHNSW, BackendFlat} {
		idx, err := Build(backend, vecs, params(len(vecs)))
		require.NoError(t, err)

		ids, dists, err := idx.Search(vecs[17], 5)
		require.NoError(t, err)
		require.NotEmpty(t, ids)
		assert.Equal(t, 17, ids[0], backend)
		assert.InDelta(t, 0, dists[0], 1e-5)
	}
}

func TestSearch_DimensionMismatch(t *testing.T) {
	vecs := [][]float32{{1, 0, 0}, {0, 1, 0}}
	for _, backend := range []string{BackendHNSW, BackendFlat} {
		idx, err := Build(backend, vecs, params(2))
		require.NoError(t, err)

		_, _, err = idx.Search([]float32{1, 0}, 5)
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch, backend)
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	for _, backend := range []string{BackendHNSW, BackendFlat} {
		idx, err := Build(backend, nil, params(0))
		require.NoError(t, err)
		assert.Equal(t, 0, idx.Len())

		ids, dists, err := idx.Search([]float32{1, 2}, 5)
		require.NoError(t, err)
		assert.Empty(t, ids)
		assert.Empty(t, dists)
	}
}

func TestSetEf_Invalid(t *testing.T) {
	idx, err := Build(BackendHNSW, [][]float32{{1, 0}}, params(1))
	require.NoError(t, err)
	assert.ErrorIs(t, idx.SetEf(0), domain.ErrInvalidConfiguration)
}

func TestCosineDistance(t *testing.T) {
	assert.InDelta(t, 0, cosineDistance([]float32{1, 0}, []float32{2, 0}), 1e-6)
	assert.InDelta(t, 1, cosineDistance([]float32{1, 0}, []float32{0, 3}), 1e-6)
	assert.InDelta(t, 2, cosineDistance([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	assert.InDelta(t, 1, cosineDistance([]float32{0, 0}, []float32{1, 0}), 1e-6)
}

func TestHNSW_RecallAgainstFlat(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	vecs := randomVectors(rng, 300, 24)

	approx, err := Build(BackendHNSW, vecs, params(len(vecs)))
	require.NoError(t, err)
	exact, err := Build(BackendFlat, vecs, params(len(vecs)))
	require.NoError(t, err)

	var hits, total int
	for q := 0; q < 20; q++ {
		query := randomVectors(rng, 1, 24)[0]
		got, _, err := approx.Search(query, 5)
		require.NoError(t, err)
		want, _, err := exact.Search(query, 5)
		require.NoError(t, err)

		truth := map[int]bool{}
		for _, id := range want {
			truth[id] = true
		}
		for _, id := range got {
			if truth[id] {
				hits++
			}
		}
		total += len(want)
	}
	assert.GreaterOrEqual(t, float64(hits)/float64(total), 0.8)
}
