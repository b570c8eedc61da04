package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"docsearch/config"
	"docsearch/internal/adapter/index"
	"docsearch/internal/logger"
	"docsearch/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "", "Path to config file (default ./docsearch.yaml)")
	table := flag.String("table", "", "Chunk+embedding table (default from config)")
	topK := flag.Int("k", 5, "Neighbours per query")
	queries := flag.Int("n", 200, "Number of queries")
	seed := flag.Int64("seed", 1, "Query sampling seed")
	efList := flag.String("ef", "", "Comma-separated ef values to sweep (default from config)")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *cfgPath != "" {
		cfg, err = config.Load(*cfgPath)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))

	path := *table
	if path == "" {
		path = cfg.Ingest.TargetPath
	}

	start := time.Now()
	catalog, rowErrs, err := usecase.LoadCatalog(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d chunks from %s in %s (%d rows skipped)\n\n",
		catalog.Len(), path, time.Since(start).Round(time.Millisecond), len(rowErrs))

	efs, err := parseEfs(*efList, cfg.Index.Ef)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := usecase.IndexOptions{
		Backend:        index.BackendHNSW,
		Metric:         cfg.Index.Metric,
		M:              cfg.Index.M,
		EfConstruction: cfg.Index.EfConstruction,
	}

	for _, ef := range efs {
		opts.Ef = ef
		res, err := usecase.Benchmark(catalog, opts, *topK, *queries, *seed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Benchmark failed (ef=%d): %v\n", ef, err)
			os.Exit(1)
		}
		fmt.Printf("ef=%d\n", ef)
		res.Report(os.Stdout, index.BackendHNSW)
		fmt.Println()
	}
}

func parseEfs(list string, def int) ([]int, error) {
	if strings.TrimSpace(list) == "" {
		return []int{def}, nil
	}
	var efs []int
	for _, f := range strings.Split(list, ",") {
		var ef int
		if _, err := fmt.Sscanf(strings.TrimSpace(f), "%d", &ef); err != nil || ef < 1 {
			return nil, fmt.Errorf("bad ef value %q", f)
		}
		efs = append(efs, ef)
	}
	return efs, nil
}
