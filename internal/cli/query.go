package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docsearch/internal/usecase"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query [source_path]",
	Short: "Search a chunk+embedding table",
	Long: `Load a chunk+embedding table, build the vector index, and answer queries.
Without -q it reads queries from standard input until "exit".

Examples:
  docsearch query
  docsearch query data/chunks_and_embeddings_df.csv
  docsearch query -q "attention mechanisms" --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "run a single query and exit")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON (with -q)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	source := argOr(args, 0, cfg.Ingest.TargetPath)

	catalog, _, err := usecase.LoadCatalog(source)
	if err != nil {
		return err
	}
	idx, err := usecase.BuildIndex(catalog, indexOptions(cfg))
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	topK := cfg.Query.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}
	session, err := usecase.NewSession(embedder, idx, catalog, usecase.SessionConfig{
		TopK:      topK,
		ExitToken: cfg.Query.ExitToken,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	renderer := usecase.NewRenderer(out, cfg.Query.WrapWidth, out == os.Stdout && isTerminal(os.Stdout))

	if queryText == "" {
		if queryJSON {
			return fmt.Errorf("--json requires -q")
		}
		return session.Run(cmd.Context(), cmd.InOrStdin(), renderer, cfg.Query.Prompt)
	}

	outcome := session.Step(cmd.Context(), queryText)
	if queryJSON {
		if err := usecase.WriteJSON(out, outcome); err != nil {
			return err
		}
	} else if outcome.Err == nil {
		renderer.Outcome(outcome)
	}
	return outcome.Err
}
