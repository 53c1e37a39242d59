package lineage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentic-research/flowline/internal/ingest"
)

// Columns of the frame produced by Flows.
const (
	RootIDColumn   = "Root_ID"
	StepNodeColumn = "Step_Node"
	FlowColumn     = "Flow"
	NodeColumn     = "Node"
)

// Paths enumerates simple paths from every source node (no incoming edges)
// to every node where the walk cannot continue: a sink, or a node whose
// successors are all already on the path. Nodes no source reaches (pure
// cycles) are then used as starts, in id order. A limit > 0 caps the number
// of paths; exceeding it returns ErrTooManyPaths.
func (g *Graph) Paths(limit int) ([][]string, error) {
	var (
		out     [][]string
		reached = make([]bool, g.Len())
		onPath  = make([]bool, g.Len())
		stack   []int
	)

	var walk func(id int) error
	walk = func(id int) error {
		reached[id] = true
		onPath[id] = true
		stack = append(stack, id)
		defer func() {
			onPath[id] = false
			stack = stack[:len(stack)-1]
		}()

		extended := false
		for _, next := range g.out[id] {
			if onPath[next] {
				continue
			}
			extended = true
			if err := walk(next); err != nil {
				return err
			}
		}
		if extended {
			return nil
		}
		if limit > 0 && len(out) >= limit {
			return fmt.Errorf("%w: limit %d", ErrTooManyPaths, limit)
		}
		path := make([]string, len(stack))
		for i, n := range stack {
			path[i] = g.names[n]
		}
		out = append(out, path)
		return nil
	}

	for id := range g.Len() {
		if g.indeg[id] == 0 {
			if err := walk(id); err != nil {
				return nil, err
			}
		}
	}
	for id := range g.Len() {
		if !reached[id] {
			if err := walk(id); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Flows lays paths out as rows: one row per node per path, numbered by
// path (Root_ID, from 1) and position (Step_Node, from 1). Flow holds the
// whole path joined with sep.
func Flows(paths [][]string, sep string) *ingest.Frame {
	f := ingest.NewFrame(RootIDColumn, StepNodeColumn, FlowColumn, NodeColumn)
	for i, p := range paths {
		flow := strings.Join(p, sep)
		for j, node := range p {
			f.Append(strconv.Itoa(i+1), strconv.Itoa(j+1), flow, node)
		}
	}
	return f
}
