package cli

import (
	"github.com/spf13/cobra"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [source_path] [target_path]",
	Short: "Write the chunk table without embeddings",
	Long: `Split documents into sentence chunks and write ID, Title and sentence_chunk
columns. Useful for inspecting chunk boundaries before paying for embeddings.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runChunk,
}

func init() {
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	source := argOr(args, 0, cfg.Ingest.SourcePath)
	target := argOr(args, 1, cfg.Ingest.ChunkPath)

	ingestUC, err := newIngestUseCase(cfg, nil)
	if err != nil {
		return err
	}

	result, err := ingestUC.Chunk(source, target)
	if err != nil {
		return err
	}
	printSummary(cmd, result, target)
	return nil
}
