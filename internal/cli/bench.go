package cli

import (
	"github.com/spf13/cobra"

	"docsearch/internal/usecase"
)

var (
	benchK       int
	benchQueries int
	benchSeed    int64
)

var benchCmd = &cobra.Command{
	Use:   "bench [source_path]",
	Short: "Measure index recall and latency against an exact scan",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().IntVarP(&benchK, "top-k", "k", 0, "neighbours per query (default from config)")
	benchCmd.Flags().IntVarP(&benchQueries, "queries", "n", 200, "number of queries")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 1, "query sampling seed")
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	source := argOr(args, 0, cfg.Ingest.TargetPath)

	catalog, _, err := usecase.LoadCatalog(source)
	if err != nil {
		return err
	}

	k := cfg.Query.TopK
	if benchK > 0 {
		k = benchK
	}

	res, err := usecase.Benchmark(catalog, indexOptions(cfg), k, benchQueries, benchSeed)
	if err != nil {
		return err
	}

	res.Report(cmd.OutOrStdout(), cfg.Index.Backend)
	return nil
}
