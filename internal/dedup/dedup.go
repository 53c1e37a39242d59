// Package dedup filters repeated lineage paths out of a path collection.
package dedup

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/agentic-research/flowline/internal/trie"
)

// Deduplicator removes paths already represented in a fresh trie.
type Deduplicator struct {
	Logger *slog.Logger
}

// New returns a Deduplicator logging to logger. A nil logger discards output.
func New(logger *slog.Logger) *Deduplicator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Deduplicator{Logger: logger}
}

// RemoveSubsets is Deduplicator.RemoveSubsets without logging.
func RemoveSubsets[E comparable](paths [][]E) ([][]E, error) {
	return Run(New(nil), paths)
}

// Run sorts paths by length (stable, so equal-length paths keep their input
// order) and keeps each path the trie does not already hold as an exact,
// terminal path. Kept paths are returned in the order they were kept, as
// copies; the input is not modified.
//
// Only exact repeats are dropped. A longer path is kept even when a shorter
// kept path is its prefix, and a shorter path is never removed because a
// longer one contains it.
func Run[E comparable](d *Deduplicator, paths [][]E) ([][]E, error) {
	for i, p := range paths {
		if err := trie.Validate(p); err != nil {
			return nil, fmt.Errorf("path %d: %w", i, err)
		}
	}

	sorted := slices.Clone(paths)
	slices.SortStableFunc(sorted, func(a, b []E) int {
		return cmp.Compare(len(a), len(b))
	})

	tr := trie.New[E]()
	kept := make([][]E, 0, len(sorted))
	for _, p := range sorted {
		if tr.ContainsExact(p) {
			d.Logger.Debug("dropping repeated path", "path", p)
			continue
		}
		kept = append(kept, slices.Clone(p))
		tr.Insert(p)
		d.Logger.Debug("kept path", "path", p, "kept", len(kept))
	}

	d.Logger.Info("deduplicated paths", "in", len(paths), "kept", len(kept))
	return kept, nil
}
