package usecase

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"docsearch/internal/adapter/index"
	"docsearch/internal/domain"
	"docsearch/internal/port"
)

// BenchmarkResult compares the configured approximate index against an
// exact scan over the same catalog.
type BenchmarkResult struct {
	Chunks    int
	Dimension int
	Queries   int
	K         int
	Recall    float64 // mean recall@K of the approximate index
	BuildANN  time.Duration
	BuildFlat time.Duration
	MeanANN   time.Duration
	MeanFlat  time.Duration
}

// Benchmark issues queries built by jittering randomly chosen catalog vectors
// and measures how many of the exact top-k the approximate index finds.
func Benchmark(c *Catalog, opts IndexOptions, k, queries int, seed int64) (*BenchmarkResult, error) {
	if c.Len() == 0 {
		return nil, fmt.Errorf("%w: catalog is empty", domain.ErrMalformedInput)
	}
	if k < 1 || queries < 1 {
		return nil, fmt.Errorf("%w: k and queries must be >= 1", domain.ErrInvalidConfiguration)
	}

	res := &BenchmarkResult{Chunks: c.Len(), Dimension: len(c.vectors[0]), Queries: queries, K: k}

	start := time.Now()
	ann, err := BuildIndex(c, opts)
	if err != nil {
		return nil, err
	}
	res.BuildANN = time.Since(start)

	flatOpts := opts
	flatOpts.Backend = index.BackendFlat
	start = time.Now()
	exact, err := BuildIndex(c, flatOpts)
	if err != nil {
		return nil, err
	}
	res.BuildFlat = time.Since(start)

	rng := rand.New(rand.NewSource(seed))
	var recallSum float64
	var annTotal, flatTotal time.Duration
	for q := 0; q < queries; q++ {
		query := jitter(rng, c.vectors[rng.Intn(c.Len())], 0.05)

		got, d, err := timedSearch(ann, query, k)
		if err != nil {
			return nil, err
		}
		annTotal += d

		want, d, err := timedSearch(exact, query, k)
		if err != nil {
			return nil, err
		}
		flatTotal += d

		recallSum += recall(got, want)
	}

	res.Recall = recallSum / float64(queries)
	res.MeanANN = annTotal / time.Duration(queries)
	res.MeanFlat = flatTotal / time.Duration(queries)
	return res, nil
}

func timedSearch(idx port.VectorIndex, query []float32, k int) ([]int, time.Duration, error) {
	start := time.Now()
	ids, _, err := idx.Search(query, k)
	return ids, time.Since(start), err
}

func recall(got, want []int) float64 {
	if len(want) == 0 {
		return 1
	}
	truth := make(map[int]struct{}, len(want))
	for _, id := range want {
		truth[id] = struct{}{}
	}
	hits := 0
	for _, id := range got {
		if _, ok := truth[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(want))
}

func jitter(rng *rand.Rand, v []float32, scale float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x + float32(rng.NormFloat64()*scale)
	}
	return out
}

// Report writes a human-readable summary.
func (r *BenchmarkResult) Report(w io.Writer, backend string) {
	fmt.Fprintln(w, "INDEX BENCHMARK")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Chunks:     %d\n", r.Chunks)
	fmt.Fprintf(w, "Dimension:  %d\n", r.Dimension)
	fmt.Fprintf(w, "Queries:    %d (k=%d)\n", r.Queries, r.K)
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintf(w, "%-8s build %-12s mean query %s\n", backend, r.BuildANN.Round(time.Microsecond), r.MeanANN.Round(time.Microsecond))
	fmt.Fprintf(w, "%-8s build %-12s mean query %s\n", "flat", r.BuildFlat.Round(time.Microsecond), r.MeanFlat.Round(time.Microsecond))
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Recall@%d:  %.3f\n", r.K, r.Recall)
}
