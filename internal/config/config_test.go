package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "flowline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: DWH
    path: data/dwh.csv
  - name: MART
    path: /abs/mart.json
    selector: $.edges[*]
    disabled: true
lineage:
  split: ";"
columns:
  Extra: EXTRA_COL
store:
  path: out.db
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, filepath.Join(dir, "data/dwh.csv"), cfg.Sources[0].Path)
	assert.Equal(t, "/abs/mart.json", cfg.Sources[1].Path)
	assert.Equal(t, "json", cfg.Sources[1].SourceFormat())
	assert.Equal(t, "csv", cfg.Sources[0].SourceFormat())

	enabled := cfg.EnabledSources()
	require.Len(t, enabled, 1)
	assert.Equal(t, "DWH", enabled[0].Name)

	// Unset fields keep their defaults.
	assert.Equal(t, "SourcePath", cfg.Lineage.SourceColumn)
	assert.Equal(t, ";", cfg.Lineage.Split)
	assert.Equal(t, "LINEAGE_RAW", cfg.Store.RawTable)
	assert.Equal(t, filepath.Join(dir, "out.db"), cfg.Store.Path)
	assert.Equal(t, 10000, cfg.Store.BatchSize)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Column names merge with the built-in table.
	assert.Equal(t, "EXTRA_COL", cfg.Columns["Extra"])
	assert.Equal(t, "ROOT_ID", cfg.Columns["Root_ID"])
}

func TestLoad_Rejects(t *testing.T) {
	tests := map[string]string{
		"no sources": `store: {path: x.db}`,
		"source without path": `
sources:
  - name: A
`,
		"bad format": `
sources:
  - {name: A, path: a.txt, format: xml}
`,
		"bad table name": `
sources:
  - {name: A, path: a.csv}
store:
  raw_table: "raw; DROP"
`,
		"same tables": `
sources:
  - {name: A, path: a.csv}
store:
  raw_table: T
  flow_table: T
`,
		"same lineage columns": `
sources:
  - {name: A, path: a.csv}
lineage:
  source_column: X
  target_column: X
`,
		"bad level": `
sources:
  - {name: A, path: a.csv}
log: {level: loud}
`,
		"zero batch": `
sources:
  - {name: A, path: a.csv}
store: {batch_size: 0}
`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "sources: [unterminated"))
	assert.Error(t, err)
}

func TestDefault_DoesNotShareColumnMap(t *testing.T) {
	a := Default()
	a.Columns["Root_ID"] = "CHANGED"
	assert.Equal(t, "ROOT_ID", Default().Columns["Root_ID"])
	assert.Equal(t, "ROOT_ID", DefaultColumnNames["Root_ID"])
}

func TestDefault_ValidOnceSourcesAdded(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate())

	cfg.Sources = []Source{{Name: "A", Path: "a.csv"}}
	assert.NoError(t, cfg.Validate())
}
