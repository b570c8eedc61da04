package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docsearch/config"
	"docsearch/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docsearch",
	Short: "Semantic search over a table of documents",
	Long: `docsearch chunks documents into groups of sentences, embeds each chunk,
and answers natural-language queries with the nearest chunks from an HNSW index.

Example usage:
  docsearch ingest data/medium.csv data/chunks_and_embeddings_df.csv
  docsearch query data/chunks_and_embeddings_df.csv
  docsearch query -q "how do transformers work" --json`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, wdErr := os.Getwd()
			if wdErr != nil {
				return fmt.Errorf("failed to get working directory: %w", wdErr)
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
		if verbose {
			logger.SetLevel(logger.LevelDebug)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./docsearch.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func GetConfig() *config.Config {
	return cfg
}
