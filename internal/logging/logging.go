// Package logging builds the process-wide slog loggers.
//
// A Provider is created once at startup and passed to each component that
// logs; components ask it for a logger tagged with their name. Output goes to
// stderr and, when Config.Dir is set, to a JSON file named
// "{service}_{YYYY-MM-DD}.log" in that directory.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config configures a Provider. The zero value logs Info and above to stderr
// as text.
type Config struct {
	Level   string // debug, info, warn, error
	Dir     string // file logging directory; "" disables it, "~" expands
	Service string
	JSON    bool // JSON instead of text on stderr
	Quiet   bool // no stderr output

	// Writer replaces stderr. Used by tests.
	Writer io.Writer
}

// Provider hands out component loggers sharing one set of handlers.
type Provider struct {
	base *slog.Logger
	file *os.File
}

// ParseLevel maps a level name to a slog level. The empty string is Info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New builds a Provider. The returned Provider must be closed to release the
// log file.
func New(cfg Config) (*Provider, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handlers []slog.Handler
	if !cfg.Quiet {
		w := cfg.Writer
		if w == nil {
			w = os.Stderr
		}
		if cfg.JSON {
			handlers = append(handlers, slog.NewJSONHandler(w, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(w, opts))
		}
	}

	p := &Provider{}
	if cfg.Dir != "" {
		dir := expandPath(cfg.Dir)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create log dir %s: %w", dir, err)
		}
		service := cfg.Service
		if service == "" {
			service = "flowline"
		}
		name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		p.file = f
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
	}

	var h slog.Handler
	switch len(handlers) {
	case 0:
		h = slog.DiscardHandler
	case 1:
		h = handlers[0]
	default:
		h = &multiHandler{handlers: handlers}
	}
	if cfg.Service != "" {
		h = h.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})
	}
	p.base = slog.New(h)
	return p, nil
}

// Discard returns a Provider that drops everything.
func Discard() *Provider {
	return &Provider{base: slog.New(slog.DiscardHandler)}
}

// Logger returns a logger tagged with component.
func (p *Provider) Logger(component string) *slog.Logger {
	if p == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.base.With("component", component)
}

// Close closes the log file, if any.
func (p *Provider) Close() error {
	if p == nil || p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	return err
}

// multiHandler fans records out to several handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
