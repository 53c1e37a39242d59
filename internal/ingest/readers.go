package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/spf13/cast"
)

// DefaultSelector picks every element of a top-level JSON array.
const DefaultSelector = "$[*]"

// ReadCSV reads a comma-separated file whose first line is the header.
// Short rows are padded with empty cells and long rows truncated.
func ReadCSV(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	frame, err := DecodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	return frame, nil
}

// DecodeCSV decodes CSV from r. See ReadCSV.
func DecodeCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Frame{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	frame := NewFrame(header...)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		frame.Append(rec...)
	}
	return frame, nil
}

// ReadJSON reads a JSON document and turns the values matched by selector
// into rows. Object matches contribute one column per key; other matches a
// single "value" column. An empty selector means DefaultSelector.
func ReadJSON(path, selector string) (*Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	frame, err := DecodeJSON(data, selector)
	if err != nil {
		return nil, fmt.Errorf("read json %s: %w", path, err)
	}
	return frame, nil
}

// DecodeJSON decodes data. See ReadJSON.
func DecodeJSON(data []byte, selector string) (*Frame, error) {
	if selector == "" {
		selector = DefaultSelector
	}
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	matches := x.Get(doc)
	records := make([]map[string]string, 0, len(matches))
	var columns []string
	for _, m := range matches {
		rec := map[string]string{}
		switch v := m.(type) {
		case map[string]any:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				rec[k] = cell(v[k])
				if !slices.Contains(columns, k) {
					columns = append(columns, k)
				}
			}
		default:
			rec["value"] = cell(v)
			if !slices.Contains(columns, "value") {
				columns = append(columns, "value")
			}
		}
		records = append(records, rec)
	}

	frame := NewFrame(columns...)
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = rec[c]
		}
		frame.Append(row...)
	}
	return frame, nil
}

// cell renders a decoded JSON value as a table cell. Nested values are kept
// as compact JSON.
func cell(v any) string {
	switch v.(type) {
	case nil:
		return ""
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("<json error: %v>", err)
		}
		return string(b)
	}
	return cast.ToString(v)
}
