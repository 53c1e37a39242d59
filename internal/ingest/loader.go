package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agentic-research/flowline/internal/config"
	"golang.org/x/sync/errgroup"
)

// Column names the loader adds to every row.
const (
	TableNameColumn  = "Table_name"
	UpdateTimeColumn = "UPDATE_TIME"
)

// TimeLayout is the format of UPDATE_TIME cells.
const TimeLayout = "2006-01-02 15:04:05"

// Loader reads configured sources into one frame.
type Loader struct {
	Logger *slog.Logger
	// Now stamps UPDATE_TIME. Defaults to time.Now.
	Now func() time.Time
	// Parallel caps concurrent reads. Zero means one per source.
	Parallel int
}

// NewLoader returns a Loader logging to logger.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{Logger: logger, Now: time.Now}
}

// Load reads every source concurrently, tags each row with its source name,
// stacks the frames in source order and stamps UPDATE_TIME. Placeholder
// index columns are dropped.
func (l *Loader) Load(ctx context.Context, sources []config.Source) (*Frame, error) {
	frames := make([]*Frame, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	if l.Parallel > 0 {
		g.SetLimit(l.Parallel)
	}
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			f, err := readSource(src)
			if err != nil {
				return fmt.Errorf("source %s: %w", src.Name, err)
			}
			f.DropUnnamed()
			f.Set(TableNameColumn, src.Name)
			frames[i] = f
			l.Logger.Info("loaded source",
				"source", src.Name,
				"path", src.Path,
				"rows", f.Len(),
				"elapsed", time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := Concat(frames...)
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	out.Set(UpdateTimeColumn, now().Format(TimeLayout))
	return out, nil
}

func readSource(src config.Source) (*Frame, error) {
	switch src.SourceFormat() {
	case "json":
		return ReadJSON(src.Path, src.Selector)
	case "csv":
		return ReadCSV(src.Path)
	}
	return nil, fmt.Errorf("unsupported format %q", src.Format)
}
