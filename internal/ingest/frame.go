package ingest

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrNoColumn is returned when a named column does not exist.
var ErrNoColumn = errors.New("no such column")

// Frame is a small column-ordered table of string cells.
// Every row has exactly len(Columns) cells.
type Frame struct {
	Columns []string
	Rows    [][]string
}

// NewFrame returns an empty frame with the given columns.
func NewFrame(columns ...string) *Frame {
	return &Frame{Columns: slices.Clone(columns)}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Index returns the position of column name, or -1.
func (f *Frame) Index(name string) int {
	return slices.Index(f.Columns, name)
}

// Append adds a row, padding or truncating it to the frame's width.
func (f *Frame) Append(row ...string) {
	r := make([]string, len(f.Columns))
	copy(r, row)
	f.Rows = append(f.Rows, r)
}

// Column returns a copy of the cells of column name.
func (f *Frame) Column(name string) ([]string, error) {
	i := f.Index(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoColumn, name)
	}
	out := make([]string, len(f.Rows))
	for r, row := range f.Rows {
		out[r] = row[i]
	}
	return out, nil
}

// Set assigns value to column name in every row, adding the column when it
// does not exist yet.
func (f *Frame) Set(name, value string) {
	i := f.Index(name)
	if i < 0 {
		f.Columns = append(f.Columns, name)
		for r := range f.Rows {
			f.Rows[r] = append(f.Rows[r], value)
		}
		return
	}
	for r := range f.Rows {
		f.Rows[r][i] = value
	}
}

// Rename renames columns found in names. Columns not in names are kept.
func (f *Frame) Rename(names map[string]string) {
	for i, c := range f.Columns {
		if n, ok := names[c]; ok && n != "" {
			f.Columns[i] = n
		}
	}
}

// DropUnnamed removes columns with an empty name or an "Unnamed" prefix,
// the placeholders spreadsheet exports leave for index columns.
func (f *Frame) DropUnnamed() {
	keep := make([]int, 0, len(f.Columns))
	for i, c := range f.Columns {
		if c != "" && !strings.HasPrefix(c, "Unnamed") {
			keep = append(keep, i)
		}
	}
	if len(keep) == len(f.Columns) {
		return
	}
	f.Columns = project(f.Columns, keep)
	for r, row := range f.Rows {
		f.Rows[r] = project(row, keep)
	}
}

func project(row []string, keep []int) []string {
	out := make([]string, len(keep))
	for j, i := range keep {
		out[j] = row[i]
	}
	return out
}

// Concat stacks frames vertically. The result has the union of their columns
// in first-seen order; cells a frame has no column for are empty.
func Concat(frames ...*Frame) *Frame {
	out := &Frame{}
	for _, f := range frames {
		if f == nil {
			continue
		}
		for _, c := range f.Columns {
			if !slices.Contains(out.Columns, c) {
				out.Columns = append(out.Columns, c)
			}
		}
	}
	for _, f := range frames {
		if f == nil {
			continue
		}
		pos := make([]int, len(f.Columns))
		for i, c := range f.Columns {
			pos[i] = out.Index(c)
		}
		for _, row := range f.Rows {
			r := make([]string, len(out.Columns))
			for i, cell := range row {
				r[pos[i]] = cell
			}
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}
