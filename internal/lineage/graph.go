// Package lineage turns lineage edge rows into a directed graph and the
// flows (node paths) running through it.
package lineage

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/agentic-research/flowline/internal/config"
	"github.com/agentic-research/flowline/internal/hashtable"
	"github.com/agentic-research/flowline/internal/ingest"
)

// ErrTooManyPaths is returned by Paths when enumeration exceeds its limit.
var ErrTooManyPaths = errors.New("too many paths")

// Graph is a directed graph over named lineage nodes. Node names are
// interned to dense ids through a fixed-size hash table.
type Graph struct {
	ids   *hashtable.Table[string, int]
	names []string
	out   [][]int
	indeg []int
	edges int
}

// NewGraph returns an empty graph whose name index has size buckets.
func NewGraph(size int) (*Graph, error) {
	ids, err := hashtable.New[string, int](size)
	if err != nil {
		return nil, fmt.Errorf("node index: %w", err)
	}
	return &Graph{ids: ids}, nil
}

// Intern returns the id of name, adding the node if needed.
func (g *Graph) Intern(name string) (int, error) {
	id, err := g.ids.Lookup(name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, hashtable.ErrNotFound) {
		return 0, err
	}
	id = len(g.names)
	if err := g.ids.Insert(name, id); err != nil {
		return 0, err
	}
	g.names = append(g.names, name)
	g.out = append(g.out, nil)
	g.indeg = append(g.indeg, 0)
	return id, nil
}

// ID returns the id of name, or -1.
func (g *Graph) ID(name string) int {
	return g.ids.Get(name, -1)
}

// Name returns the name of node id.
func (g *Graph) Name(id int) string {
	return g.names[id]
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.names)
}

// Edges returns the number of distinct edges.
func (g *Graph) Edges() int {
	return g.edges
}

// IndexStats reports how node names spread over the name index.
func (g *Graph) IndexStats() hashtable.Stats {
	return g.ids.Stats()
}

// Successors returns the targets of edges leaving id, in insertion order.
func (g *Graph) Successors(id int) []int {
	return g.out[id]
}

// AddEdge adds src -> dst. Repeated edges are ignored.
func (g *Graph) AddEdge(src, dst string) error {
	s, err := g.Intern(src)
	if err != nil {
		return fmt.Errorf("node %q: %w", src, err)
	}
	d, err := g.Intern(dst)
	if err != nil {
		return fmt.Errorf("node %q: %w", dst, err)
	}
	if slices.Contains(g.out[s], d) {
		return nil
	}
	g.out[s] = append(g.out[s], d)
	g.indeg[d]++
	g.edges++
	return nil
}

// Build reads edges from frame. Each row links every name in its source
// cell to every name in its target cell (cells may pack several names
// separated by cfg.Split). When cfg.TypeColumn and cfg.FilterTypes are both
// set, only rows whose type is listed contribute edges, and the type column
// must exist.
func Build(frame *ingest.Frame, cfg config.Lineage, size int) (*Graph, error) {
	si := frame.Index(cfg.SourceColumn)
	if si < 0 {
		return nil, fmt.Errorf("%w: %s", ingest.ErrNoColumn, cfg.SourceColumn)
	}
	ti := frame.Index(cfg.TargetColumn)
	if ti < 0 {
		return nil, fmt.Errorf("%w: %s", ingest.ErrNoColumn, cfg.TargetColumn)
	}
	ki := -1
	if cfg.TypeColumn != "" && len(cfg.FilterTypes) > 0 {
		if ki = frame.Index(cfg.TypeColumn); ki < 0 {
			return nil, fmt.Errorf("%w: %s", ingest.ErrNoColumn, cfg.TypeColumn)
		}
	}

	g, err := NewGraph(size)
	if err != nil {
		return nil, err
	}
	for _, row := range frame.Rows {
		if ki >= 0 && !slices.Contains(cfg.FilterTypes, strings.TrimSpace(row[ki])) {
			continue
		}
		for _, src := range splitNames(row[si], cfg.Split) {
			for _, dst := range splitNames(row[ti], cfg.Split) {
				if err := g.AddEdge(src, dst); err != nil {
					return nil, err
				}
			}
		}
	}
	return g, nil
}

func splitNames(cell, sep string) []string {
	parts := []string{cell}
	if sep != "" {
		parts = strings.Split(cell, sep)
	}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
