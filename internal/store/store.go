// Package store writes pipeline frames to a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agentic-research/flowline/internal/ingest"
	"github.com/agentic-research/flowline/internal/sizing"
	_ "modernc.org/sqlite"
)

// ErrInvalidTable is returned for a table name that is not a plain identifier.
var ErrInvalidTable = errors.New("invalid table name")

// Column is one column definition of a created table.
type Column struct {
	Name string
	Type string
}

// Store is a SQLite database holding lineage tables.
type Store struct {
	db        *sql.DB
	logger    *slog.Logger
	batchSize int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBatchSize sets how many rows are inserted per transaction.
func WithBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// Open opens (creating if needed) the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// Bulk-load tuning.
	for _, pragma := range []string{"PRAGMA synchronous = OFF", "PRAGMA journal_mode = MEMORY"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Store{
		db:        db,
		logger:    slog.New(slog.DiscardHandler),
		batchSize: 10000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DB exposes the connection, e.g. for sizing.CountQuery.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ColumnType maps a declared type to the stored one. DATETIME becomes
// TIMESTAMP; an empty type is TEXT.
func ColumnType(t string) string {
	t = strings.TrimSpace(t)
	switch strings.ToUpper(t) {
	case "":
		return "TEXT"
	case "DATETIME":
		return "TIMESTAMP"
	}
	return t
}

// FrameColumns derives column definitions for f. types overrides the
// default TEXT per column; UPDATE_TIME defaults to TIMESTAMP.
func FrameColumns(f *ingest.Frame, types map[string]string) []Column {
	cols := make([]Column, len(f.Columns))
	for i, name := range f.Columns {
		t := types[name]
		if t == "" && name == ingest.UpdateTimeColumn {
			t = "TIMESTAMP"
		}
		cols[i] = Column{Name: name, Type: ColumnType(t)}
	}
	return cols
}

// CreateTable creates table with cols unless it exists.
func (s *Store) CreateTable(ctx context.Context, table string, cols []Column) error {
	name, err := quoteTable(table)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return fmt.Errorf("create %s: no columns", table)
	}
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quoteIdent(c.Name) + " " + ColumnType(c.Type)
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", name, strings.Join(defs, ", "))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}
	s.logger.Debug("created table", "table", table, "columns", len(cols))
	return nil
}

// DropTable drops table if it exists.
func (s *Store) DropTable(ctx context.Context, table string) error {
	name, err := quoteTable(table)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return fmt.Errorf("drop %s: %w", table, err)
	}
	return nil
}

// CountRows returns the number of rows in table.
func (s *Store) CountRows(ctx context.Context, table string) (int, error) {
	name, err := quoteTable(table)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+name).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// InsertFrame inserts every row of f into table, committing every batch
// size rows. Empty cells are stored as NULL. It returns the rows written.
func (s *Store) InsertFrame(ctx context.Context, table string, f *ingest.Frame) (int, error) {
	name, err := quoteTable(table)
	if err != nil {
		return 0, err
	}
	if f.Len() == 0 {
		s.logger.Warn("no rows to insert", "table", table)
		return 0, nil
	}

	cols := make([]string, len(f.Columns))
	marks := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		cols[i] = quoteIdent(c)
		marks[i] = "?"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", name, strings.Join(cols, ", "), strings.Join(marks, ", "))

	written := 0
	for start := 0; start < f.Len(); start += s.batchSize {
		end := min(start+s.batchSize, f.Len())
		if err := s.insertBatch(ctx, query, f.Rows[start:end]); err != nil {
			return written, fmt.Errorf("insert into %s: %w", table, err)
		}
		written = end
	}
	s.logger.Info("inserted rows", "table", table, "rows", written)
	return written, nil
}

func (s *Store) insertBatch(ctx context.Context, query string, rows [][]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, 0)
	for _, row := range rows {
		args = args[:0]
		for _, cell := range row {
			if cell == "" {
				args = append(args, nil)
			} else {
				args = append(args, cell)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ReplaceFrame drops table, recreates it from f's columns and inserts f.
func (s *Store) ReplaceFrame(ctx context.Context, table string, f *ingest.Frame, types map[string]string) (int, error) {
	if err := s.DropTable(ctx, table); err != nil {
		return 0, err
	}
	if err := s.CreateTable(ctx, table, FrameColumns(f, types)); err != nil {
		return 0, err
	}
	return s.InsertFrame(ctx, table, f)
}

// ReadFrame reads table back as strings, in rowid order. NULL reads as "".
func (s *Store) ReadFrame(ctx context.Context, table string) (*ingest.Frame, error) {
	name, err := quoteTable(table)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+name+" ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	f := ingest.NewFrame(cols...)
	cells := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make([]string, len(cols))
		for i, c := range cells {
			row[i] = c.String
		}
		f.Append(row...)
	}
	return f, rows.Err()
}

func quoteTable(table string) (string, error) {
	if !sizing.ValidIdentifier(table) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = quoteIdent(p)
	}
	return strings.Join(parts, "."), nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
