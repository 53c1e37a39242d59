// Package pipeline runs the lineage ETL end to end: load sources, size the
// node index, build the lineage graph, enumerate and deduplicate flows, and
// write the raw and flow tables.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/agentic-research/flowline/internal/config"
	"github.com/agentic-research/flowline/internal/dedup"
	"github.com/agentic-research/flowline/internal/ingest"
	"github.com/agentic-research/flowline/internal/lineage"
	"github.com/agentic-research/flowline/internal/sizing"
	"github.com/agentic-research/flowline/internal/store"
	"github.com/google/uuid"
)

// ErrNoSources is returned when every configured source is disabled.
var ErrNoSources = errors.New("no enabled sources")

// Result summarizes a run.
type Result struct {
	RunID     string
	Rows      int // raw rows loaded
	TableSize int // node index buckets
	Nodes     int
	Edges     int
	Paths     int // before dedup
	Flows     int // after dedup
	FlowRows  int
	Elapsed   time.Duration
}

// Runner executes the pipeline for one configuration.
type Runner struct {
	Config *config.Config
	Logger *slog.Logger
	// Now stamps UPDATE_TIME; defaults to time.Now.
	Now func() time.Time
	// MaxPaths caps path enumeration. Zero means no cap.
	MaxPaths int
}

// New returns a Runner for cfg. A nil logger discards output.
func New(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{Config: cfg, Logger: logger, Now: time.Now}
}

// Run executes every stage in order and stops at the first error.
//
// Paths from the graph are already distinct (edges are deduplicated and
// every start node is walked once), so the dedup stage keeps them all and
// Result.Flows equals Result.Paths. It stays in the pipeline as the guard
// that stored flows are unique.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString()}
	log := r.Logger.With("run_id", res.RunID)
	cfg := r.Config

	sources := cfg.EnabledSources()
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	stamp := time.Now()
	if r.Now != nil {
		stamp = r.Now()
	}
	loader := ingest.NewLoader(log.With("stage", "load"))
	loader.Now = func() time.Time { return stamp }
	raw, err := loader.Load(ctx, sources)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	res.Rows = raw.Len()

	est, err := sizing.Size(ctx, sizing.Source{Table: raw})
	if err != nil {
		return nil, fmt.Errorf("estimate: %w", err)
	}
	res.TableSize = est.TableSize()
	log.Info("estimated node index", "rows", est.Rows, "size", res.TableSize)

	g, err := lineage.Build(raw, cfg.Lineage, res.TableSize)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	res.Nodes, res.Edges = g.Len(), g.Edges()
	stats := g.IndexStats()
	log.Info("built lineage graph",
		"nodes", res.Nodes,
		"edges", res.Edges,
		"load_factor", stats.LoadFactor,
		"longest_chain", stats.LongestChain)

	paths, err := g.Paths(r.MaxPaths)
	if err != nil {
		return nil, fmt.Errorf("paths: %w", err)
	}
	res.Paths = len(paths)

	kept, err := dedup.Run(dedup.New(log.With("stage", "dedup")), paths)
	if err != nil {
		return nil, fmt.Errorf("dedup: %w", err)
	}
	res.Flows = len(kept)

	sep := cfg.Lineage.Split
	if sep == "" {
		sep = ","
	}
	flows := lineage.Flows(kept, sep)
	flows.Set(ingest.UpdateTimeColumn, stamp.Format(ingest.TimeLayout))
	raw.Rename(cfg.Columns)
	flows.Rename(cfg.Columns)
	res.FlowRows = flows.Len()

	if err := r.write(ctx, log, raw, flows); err != nil {
		return nil, err
	}

	res.Elapsed = time.Since(start)
	log.Info("pipeline finished",
		"rows", res.Rows,
		"paths", res.Paths,
		"flows", res.Flows,
		"elapsed", res.Elapsed)
	return res, nil
}

func (r *Runner) write(ctx context.Context, log *slog.Logger, raw, flows *ingest.Frame) error {
	cfg := r.Config.Store
	st, err := store.Open(cfg.Path,
		store.WithLogger(log.With("stage", "store")),
		store.WithBatchSize(cfg.BatchSize))
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if _, err := st.ReplaceFrame(ctx, cfg.RawTable, raw, nil); err != nil {
		return fmt.Errorf("write %s: %w", cfg.RawTable, err)
	}
	if _, err := st.ReplaceFrame(ctx, cfg.FlowTable, flows, nil); err != nil {
		return fmt.Errorf("write %s: %w", cfg.FlowTable, err)
	}
	return nil
}
