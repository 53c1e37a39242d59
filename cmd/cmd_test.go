package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentic-research/flowline/internal/ingest"
	"github.com/agentic-research/flowline/internal/store"
	"github.com/agentic-research/flowline/internal/trie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDedupCmd(t *testing.T) {
	t.Run("stdin", func(t *testing.T) {
		out, err := execute(t, `[[1,2,3],[1,2],[4,5],[1,2]]`, "dedup", "-q")
		require.NoError(t, err)
		assert.Equal(t, "[[1,2],[4,5],[1,2,3]]\n", out)
	})

	t.Run("file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "paths.json", `[["a","b"],["a"],["a","b"]]`)
		out, err := execute(t, "", "dedup", "-q", path)
		require.NoError(t, err)
		assert.Equal(t, `[["a"],["a","b"]]`+"\n", out)
	})

	t.Run("numbers keep their text", func(t *testing.T) {
		out, err := execute(t, `[[1],[1.0],[1]]`, "dedup", "-q", "-")
		require.NoError(t, err)
		assert.Equal(t, "[[1],[1.0]]\n", out)
	})

	t.Run("empty", func(t *testing.T) {
		out, err := execute(t, `[]`, "dedup", "-q")
		require.NoError(t, err)
		assert.Equal(t, "[]\n", out)
	})

	t.Run("object element", func(t *testing.T) {
		_, err := execute(t, `[[{"a":1}]]`, "dedup", "-q")
		assert.ErrorIs(t, err, trie.ErrMalformedPath)
	})

	t.Run("bad json", func(t *testing.T) {
		_, err := execute(t, `[[1,`, "dedup", "-q")
		assert.ErrorContains(t, err, "decode paths")
	})
}

func TestEstimateCmd(t *testing.T) {
	dir := t.TempDir()
	csv := writeFile(t, dir, "rows.csv", "a,b\n1,2\n3,4\n5,6\n")

	t.Run("file", func(t *testing.T) {
		out, err := execute(t, "", "estimate", "-q", csv)
		require.NoError(t, err)
		assert.Equal(t, "rows=3 size=6\n", out)
	})

	t.Run("table", func(t *testing.T) {
		dbPath := filepath.Join(dir, "rows.db")
		st, err := store.Open(dbPath)
		require.NoError(t, err)
		f := ingest.NewFrame("a")
		for range 5 {
			f.Append("x")
		}
		_, err = st.ReplaceFrame(context.Background(), "LINEAGE_RAW", f, nil)
		require.NoError(t, err)
		require.NoError(t, st.Close())

		out, err := execute(t, "", "estimate", "-q", "--db", dbPath, "--table", "LINEAGE_RAW")
		require.NoError(t, err)
		assert.Equal(t, "rows=5 size=10\n", out)
	})

	t.Run("nothing given", func(t *testing.T) {
		_, err := execute(t, "", "estimate", "-q")
		assert.ErrorContains(t, err, "nothing to estimate")
	})

	t.Run("db without table", func(t *testing.T) {
		_, err := execute(t, "", "estimate", "-q", "--db", filepath.Join(dir, "x.db"))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "", "estimate", "-q", filepath.Join(dir, "nope.csv"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestRunCmd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "edges.csv", "SourcePath,TargetPath,TargetObjectType\na,b,Table\nb,c,View\n")
	cfgPath := writeFile(t, dir, "flowline.yaml", `
sources:
  - name: manta
    path: edges.csv
store:
  path: out.db
log:
  level: debug
`)

	out, err := execute(t, "", "run", "-q", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "flows:  1 of 1 paths")
	assert.FileExists(t, filepath.Join(dir, "out.db"))

	st, err := store.Open(filepath.Join(dir, "out.db"))
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	n, err := st.CountRows(context.Background(), "LINEAGE_FLOW")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRunCmd_BadConfig(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "flowline.yaml", "sources: []\n")
	_, err := execute(t, "", "run", "-q", "-c", cfgPath)
	assert.ErrorContains(t, err, "invalid config")
}

func TestRunCmd_LogFile(t *testing.T) {
	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")
	writeFile(t, dir, "edges.csv", "SourcePath,TargetPath,TargetObjectType\na,b,Table\n")
	cfgPath := writeFile(t, dir, "flowline.yaml", "sources:\n  - name: s\n    path: edges.csv\n")

	_, err := execute(t, "", "run", "-q", "--log-dir", logDir, "-c", cfgPath)
	require.NoError(t, err)

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "flowline_"))

	data, err := os.ReadFile(filepath.Join(logDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"pipeline finished"`)
	assert.Contains(t, string(data), `"component":"pipeline"`)
}
