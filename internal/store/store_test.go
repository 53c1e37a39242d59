package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/agentic-research/flowline/internal/ingest"
	"github.com/agentic-research/flowline/internal/sizing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "lineage.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func flowFrame(n int) *ingest.Frame {
	f := ingest.NewFrame("ROOT_ID", "STEP_NODE", "FLOW", "NODE")
	for i := range n {
		f.Append("1", fmt.Sprint(i+1), "a,b", fmt.Sprintf("n%d", i))
	}
	return f
}

func TestColumnType(t *testing.T) {
	assert.Equal(t, "TEXT", ColumnType(""))
	assert.Equal(t, "TIMESTAMP", ColumnType("datetime"))
	assert.Equal(t, "INTEGER", ColumnType(" INTEGER "))
}

func TestFrameColumns(t *testing.T) {
	f := ingest.NewFrame("ROOT_ID", "FLOW", ingest.UpdateTimeColumn)
	cols := FrameColumns(f, map[string]string{"ROOT_ID": "INTEGER"})
	assert.Equal(t, []Column{
		{Name: "ROOT_ID", Type: "INTEGER"},
		{Name: "FLOW", Type: "TEXT"},
		{Name: ingest.UpdateTimeColumn, Type: "TIMESTAMP"},
	}, cols)
}

func TestStore_CreateInsertRead(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	f := flowFrame(3)
	f.Rows[1][2] = "" // stored as NULL
	require.NoError(t, s.CreateTable(ctx, "LINEAGE_FLOW", FrameColumns(f, nil)))

	n, err := s.InsertFrame(ctx, "LINEAGE_FLOW", f)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := s.CountRows(ctx, "LINEAGE_FLOW")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	var nulls int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM LINEAGE_FLOW WHERE FLOW IS NULL`).Scan(&nulls))
	assert.Equal(t, 1, nulls)

	back, err := s.ReadFrame(ctx, "LINEAGE_FLOW")
	require.NoError(t, err)
	assert.Equal(t, f.Columns, back.Columns)
	assert.Equal(t, f.Rows, back.Rows)
}

func TestStore_InsertBatches(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, WithBatchSize(4))

	f := flowFrame(10)
	n, err := s.ReplaceFrame(ctx, "FLOWS", f, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	count, err := s.CountRows(ctx, "FLOWS")
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestStore_ReplaceFrameDropsOldRows(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.ReplaceFrame(ctx, "RAW", flowFrame(5), nil)
	require.NoError(t, err)
	_, err = s.ReplaceFrame(ctx, "RAW", flowFrame(2), nil)
	require.NoError(t, err)

	count, err := s.CountRows(ctx, "RAW")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_InsertEmptyFrame(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	n, err := s.InsertFrame(ctx, "ANY", ingest.NewFrame("a"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStore_InsertIntoMissingTable(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.InsertFrame(ctx, "NOPE", flowFrame(1))
	assert.Error(t, err)
}

func TestStore_RejectsBadTableNames(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, name := range []string{"", "a b", "t; DROP TABLE x", `"q"`} {
		assert.ErrorIs(t, s.CreateTable(ctx, name, []Column{{Name: "a"}}), ErrInvalidTable, name)
		assert.ErrorIs(t, s.DropTable(ctx, name), ErrInvalidTable, name)
		_, err := s.CountRows(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidTable, name)
	}

	assert.Error(t, s.CreateTable(ctx, "EMPTY", nil))
}

func TestStore_QuotesColumnNames(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	f := ingest.NewFrame("Source Path", `odd"name`, "select")
	f.Append("a", "b", "c")
	_, err := s.ReplaceFrame(ctx, "ODD", f, nil)
	require.NoError(t, err)

	back, err := s.ReadFrame(ctx, "ODD")
	require.NoError(t, err)
	assert.Equal(t, f.Columns, back.Columns)
	assert.Equal(t, f.Rows, back.Rows)
}

func TestStore_FeedsSizeEstimate(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	_, err := s.ReplaceFrame(ctx, "LINEAGE_RAW", flowFrame(7), nil)
	require.NoError(t, err)

	est, err := sizing.Size(ctx, sizing.Source{Query: &sizing.CountQuery{DB: s.DB(), Table: "LINEAGE_RAW"}})
	require.NoError(t, err)
	assert.Equal(t, 14, est.Size)
}
