// Package sizing estimates a hash table bucket count from a data source.
//
// The estimate is twice the observed row count, which keeps the load factor
// at or below 0.5 for the rows the source held when it was measured.
package sizing

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
)

var (
	// ErrAmbiguousSource is returned when a Source selects more than one mode.
	ErrAmbiguousSource = errors.New("more than one size source given")
	// ErrInvalidIdentifier is returned for a table name that is not a plain
	// (optionally schema-qualified) SQL identifier.
	ErrInvalidIdentifier = errors.New("invalid table identifier")
)

// RowCounter is an in-memory tabular structure. Len is called even when the
// RowCounter holds a typed nil pointer, so implementations handle a nil
// receiver.
type RowCounter interface {
	Len() int
}

// Querier runs a single-row query. *sql.DB, *sql.Conn and *sql.Tx satisfy it.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CountQuery counts the rows of Table over an open connection.
type CountQuery struct {
	DB    Querier
	Table string
}

// Source selects where rows are counted. At most one field may be set.
type Source struct {
	File  string     // delimited text file with one header line
	Table RowCounter // in-memory rows
	Query *CountQuery
}

// Estimate is the outcome of an estimation. OK is false when the Source
// selected nothing to count.
type Estimate struct {
	Rows int
	Size int
	OK   bool
}

// TableSize returns Size, or 1 when there was nothing to size from, so the
// result can always be passed to hashtable.New.
func (e Estimate) TableSize() int {
	return max(e.Size, 1)
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$#]*(\.[A-Za-z_][A-Za-z0-9_$#]*)?$`)

// ValidIdentifier reports whether name is safe to place unquoted in SQL.
func ValidIdentifier(name string) bool {
	return identRe.MatchString(name)
}

// Size estimates a bucket count for src. With no source selected it returns
// an Estimate with OK false and a nil error.
func Size(ctx context.Context, src Source) (Estimate, error) {
	modes := 0
	if src.File != "" {
		modes++
	}
	if src.Table != nil {
		modes++
	}
	if src.Query != nil {
		modes++
	}
	if modes > 1 {
		return Estimate{}, ErrAmbiguousSource
	}

	var (
		rows int
		err  error
	)
	switch {
	case src.File != "":
		rows, err = countFileRecords(src.File)
	case src.Table != nil:
		rows = src.Table.Len()
	case src.Query != nil && src.Query.DB != nil:
		rows, err = countTableRows(ctx, src.Query.DB, src.Query.Table)
	default:
		return Estimate{}, nil
	}
	if err != nil {
		return Estimate{}, err
	}

	rows = max(rows, 0)
	return Estimate{Rows: rows, Size: 2 * rows, OK: true}, nil
}

// countFileRecords counts newline-delimited lines and subtracts the header.
// A final line without a trailing newline still counts.
func countFileRecords(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	n, err := CountLines(f)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return n - 1, nil
}

// CountLines counts the lines in r.
func CountLines(r io.Reader) (int, error) {
	buf := make([]byte, 64*1024)
	lines := 0
	var (
		last byte
		seen bool
	)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			lines += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
			seen = true
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if seen && last != '\n' {
		lines++
	}
	return lines, nil
}

func countTableRows(ctx context.Context, db Querier, table string) (int, error) {
	if !ValidIdentifier(table) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, table)
	}
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows of %s: %w", table, err)
	}
	return n, nil
}
