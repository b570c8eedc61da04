package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsearch/internal/domain"
	"docsearch/internal/logger"
)

const testConfig = `
ingest:
  chunk_size: 2
  segmenter: regex
embedding:
  provider: mock
  dimension: 64
  batch_size: 2
query:
  top_k: 3
`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetQueryFlags() {
	queryText = ""
	queryTopK = 0
	queryJSON = false
}

func TestIngestThenQuery(t *testing.T) {
	logger.SetOutput(&bytes.Buffer{})
	t.Cleanup(resetQueryFlags)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "docsearch.yaml")
	source := filepath.Join(dir, "docs.csv")
	target := filepath.Join(dir, "out", "chunks_and_embeddings.csv")
	chunks := filepath.Join(dir, "chunks.csv")

	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfig), 0o644))
	require.NoError(t, os.WriteFile(source, []byte("Title,Text\n"+
		"Alpha,Cats purr softly. Cats sleep all day. Dogs bark loudly.\n"+
		"Beta,Rockets launch into orbit. Satellites circle the planet.\n"), 0o644))

	out, err := execute(t, "", "--config", cfgPath, "ingest", "--quiet", source, target)
	require.NoError(t, err)
	assert.Contains(t, out, "Chunks:         3")
	assert.FileExists(t, target)

	out, err = execute(t, "", "--config", cfgPath, "chunk", source, chunks)
	require.NoError(t, err)
	data, err := os.ReadFile(chunks)
	require.NoError(t, err)
	assert.Equal(t, "ID,Title,sentence_chunk\n"+
		"0,Alpha,Cats purr softly. Cats sleep all day.\n"+
		"0,Alpha,Dogs bark loudly.\n"+
		"1,Beta,Rockets launch into orbit. Satellites circle the planet.\n", string(data))

	resetQueryFlags()
	out, err = execute(t, "", "--config", cfgPath, "query", target, "-q", "Dogs bark loudly.", "--json")
	require.NoError(t, err)

	var result struct {
		Query string             `json:"query"`
		Hits  []domain.SearchHit `json:"hits"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Hits, 3)
	assert.Equal(t, "Dogs bark loudly.", result.Hits[0].Text)
	assert.Equal(t, 0, result.Hits[0].DocumentID)
	assert.InDelta(t, 0, result.Hits[0].Distance, 1e-5)

	resetQueryFlags()
	out, err = execute(t, "Rockets launch into orbit. Satellites circle the planet.\nexit\n", "--config", cfgPath, "query", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Type 'exit' to terminate")
	assert.Contains(t, out, "Results:\nDistance: ")
	assert.Contains(t, out, "ID: 1\n")
}

func TestQuery_MissingTable(t *testing.T) {
	logger.SetOutput(&bytes.Buffer{})
	t.Cleanup(resetQueryFlags)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "docsearch.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfig), 0o644))

	_, err := execute(t, "", "--config", cfgPath, "query", filepath.Join(dir, "absent.csv"))
	assert.Error(t, err)
}

func TestInvalidConfigIsRejected(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "docsearch.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("ingest:\n  chunk_size: 0\n"), 0o644))

	_, err := execute(t, "", "--config", cfgPath, "chunk", "x.csv", filepath.Join(dir, "c.csv"))
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}
