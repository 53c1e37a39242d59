// Package config loads and validates the pipeline configuration.
package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/agentic-research/flowline/internal/sizing"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full pipeline configuration.
type Config struct {
	Sources []Source          `yaml:"sources" validate:"required,min=1,dive"`
	Lineage Lineage           `yaml:"lineage"`
	Columns map[string]string `yaml:"columns"`
	Store   Store             `yaml:"store"`
	Log     Log               `yaml:"log"`
}

// Source is one input file.
type Source struct {
	// Name is stored in the Table_name column of every row from this source.
	Name string `yaml:"name" validate:"required"`
	Path string `yaml:"path" validate:"required"`
	// Format is inferred from the extension when empty.
	Format string `yaml:"format" validate:"omitempty,oneof=csv json"`
	// Selector is a JSONPath picking the records of a JSON source.
	Selector string `yaml:"selector"`
	// Disabled sources are skipped.
	Disabled bool `yaml:"disabled"`
}

// Lineage names the columns lineage edges are read from.
type Lineage struct {
	SourceColumn string `yaml:"source_column" validate:"required"`
	TargetColumn string `yaml:"target_column" validate:"required,nefield=SourceColumn"`
	// TypeColumn and FilterTypes restrict edges to rows whose type is listed.
	TypeColumn  string   `yaml:"type_column"`
	FilterTypes []string `yaml:"filter_types"`
	// Split separates several node names packed into one cell.
	Split string `yaml:"split"`
}

// Store configures the SQLite output database.
type Store struct {
	Path      string `yaml:"path" validate:"required"`
	RawTable  string `yaml:"raw_table" validate:"required,sqlident"`
	FlowTable string `yaml:"flow_table" validate:"required,sqlident,nefield=RawTable"`
	BatchSize int    `yaml:"batch_size" validate:"gte=1"`
}

// Log configures logging.
type Log struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
}

// Default returns the built-in configuration. It has no sources, so it does
// not validate until some are added.
func Default() *Config {
	return &Config{
		Lineage: Lineage{
			SourceColumn: "SourcePath",
			TargetColumn: "TargetPath",
			TypeColumn:   "TargetObjectType",
			FilterTypes:  []string{"Table", "View", "PLSQL"},
			Split:        ",",
		},
		Columns: maps.Clone(DefaultColumnNames),
		Store: Store{
			Path:      "flowline.db",
			RawTable:  "LINEAGE_RAW",
			FlowTable: "LINEAGE_FLOW",
			BatchSize: 10000,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads a YAML file over the defaults and validates the result.
// Relative source and store paths are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.resolvePaths(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) resolvePaths(base string) {
	for i := range c.Sources {
		if !filepath.IsAbs(c.Sources[i].Path) {
			c.Sources[i].Path = filepath.Join(base, c.Sources[i].Path)
		}
	}
	if c.Store.Path != ":memory:" && !filepath.IsAbs(c.Store.Path) {
		c.Store.Path = filepath.Join(base, c.Store.Path)
	}
}

// EnabledSources returns the sources that are not disabled, in order.
func (c *Config) EnabledSources() []Source {
	var out []Source
	for _, s := range c.Sources {
		if !s.Disabled {
			out = append(out, s)
		}
	}
	return out
}

// SourceFormat returns s.Format, or the format implied by the extension.
func (s Source) SourceFormat() string {
	if s.Format != "" {
		return s.Format
	}
	if filepath.Ext(s.Path) == ".json" {
		return "json"
	}
	return "csv"
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
		return sizing.ValidIdentifier(fl.Field().String())
	})
	return v
}
