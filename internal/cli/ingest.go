package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docsearch/internal/usecase"
)

var ingestQuiet bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [source_path] [target_path]",
	Short: "Chunk and embed documents into a chunk+embedding table",
	Long: `Read a CSV table with Title and Text columns, split each document into
sentences, group them into chunks, embed every chunk, and write the result.

source_path may be a file, a directory, or a glob such as "data/**/*.csv".

Examples:
  docsearch ingest
  docsearch ingest data/medium.csv data/chunks_and_embeddings_df.csv`,
	Args: cobra.MaximumNArgs(2),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVar(&ingestQuiet, "quiet", false, "hide the progress bar")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	source := argOr(args, 0, cfg.Ingest.SourcePath)
	target := argOr(args, 1, cfg.Ingest.TargetPath)

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	ingestUC, err := newIngestUseCase(cfg, embedder)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if ingestQuiet {
			return
		}
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)
		}
		bar.Set(done)
	}

	result, err := ingestUC.Ingest(cmd.Context(), source, target, progress)
	if err != nil {
		return err
	}

	printSummary(cmd, result, target)
	fmt.Fprintf(cmd.OutOrStdout(), "  Embedding dim:  %d (%s)\n", result.Dimension, embedder.ModelName())
	return nil
}

func printSummary(cmd *cobra.Command, result *usecase.IngestResult, target string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s\n", target)
	fmt.Fprintf(out, "  Files read:     %d (%s)\n", result.Files, humanize.Bytes(uint64(result.BytesRead)))
	fmt.Fprintf(out, "  Documents:      %d\n", result.Documents)
	if result.EmptyDocuments > 0 {
		fmt.Fprintf(out, "  No sentences:   %d\n", result.EmptyDocuments)
	}
	fmt.Fprintf(out, "  Chunks:         %d\n", result.Chunks)
	fmt.Fprintf(out, "  Elapsed:        %s\n", result.Elapsed.Round(time.Millisecond))
}
