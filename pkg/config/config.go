package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ja7ad/foamcheck/pkg/residual"
	"github.com/ja7ad/foamcheck/pkg/termination"
	"github.com/ja7ad/foamcheck/pkg/types"
)

// ErrInvalid reports a configuration that failed validation.
var ErrInvalid = errors.New("config: invalid")

// Config is the file layout of foamcheck.yaml. Every section is optional;
// missing keys keep their defaults.
type Config struct {
	Residuals   ResidualsConfig   `yaml:"residuals"`
	Termination TerminationConfig `yaml:"termination"`
	Output      OutputConfig      `yaml:"output"`
}

// ResidualsConfig configures log extraction.
type ResidualsConfig struct {
	ChunkSize     types.Bytes `yaml:"chunk_size"`
	Fields        []string    `yaml:"fields"`
	TimePattern   string      `yaml:"time_pattern"`
	SolverPattern string      `yaml:"solver_pattern"`
}

// TerminationConfig configures the stabilization scan and the series layout.
type TerminationConfig struct {
	LevelThreshold  float64 `yaml:"level_threshold"`
	SpreadThreshold float64 `yaml:"spread_threshold"`
	WindowSize      int     `yaml:"window_size"`
	SkipRows        int     `yaml:"skip_rows"`
	TimeColumn      int     `yaml:"time_column"`
	ValueColumn     int     `yaml:"value_column"`
}

// OutputConfig selects the CSV delimiter.
type OutputConfig struct {
	Delimiter string `yaml:"delimiter"`
}

// Default returns the built-in configuration.
func Default() Config {
	ro := termination.DefaultReadOptions()
	return Config{
		Residuals: ResidualsConfig{
			ChunkSize:     residual.DefaultChunkSize,
			Fields:        append([]string(nil), residual.DefaultFields...),
			TimePattern:   residual.DefaultTimePattern,
			SolverPattern: residual.DefaultSolverPattern,
		},
		Termination: TerminationConfig{
			LevelThreshold:  0.5,
			SpreadThreshold: 0.1,
			WindowSize:      20000,
			SkipRows:        ro.SkipRows,
			TimeColumn:      ro.TimeColumn,
			ValueColumn:     ro.ValueColumn,
		},
		Output: OutputConfig{Delimiter: ";"},
	}
}

// Load reads path over the defaults and validates the result. An empty path
// returns the defaults. A missing file is an error: it was asked for.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and that the patterns compile.
func (c Config) Validate() error {
	if c.Residuals.ChunkSize == 0 || c.Residuals.ChunkSize > residual.MaxChunkSize {
		return fmt.Errorf("%w: residuals.chunk_size must be in 1..%s, got %s",
			ErrInvalid, residual.MaxChunkSize.Humanized(), c.Residuals.ChunkSize.Humanized())
	}
	if len(c.Residuals.Fields) == 0 {
		return fmt.Errorf("%w: residuals.fields is empty", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Residuals.Fields))
	for _, f := range c.Residuals.Fields {
		if f == "" || seen[f] {
			return fmt.Errorf("%w: residuals.fields: empty or duplicate name %q", ErrInvalid, f)
		}
		seen[f] = true
	}
	if _, err := c.Patterns(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if _, err := termination.NewExact(c.Scanner()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	t := c.Termination
	if t.SkipRows < 0 || t.TimeColumn < 0 || t.ValueColumn < 0 {
		return fmt.Errorf("%w: termination rows/columns must be >= 0", ErrInvalid)
	}

	if len([]rune(c.Output.Delimiter)) != 1 {
		return fmt.Errorf("%w: output.delimiter must be one character, got %q", ErrInvalid, c.Output.Delimiter)
	}
	return nil
}

// Patterns compiles the residual matchers.
func (c Config) Patterns() (residual.Patterns, error) {
	return residual.CompilePatterns(c.Residuals.TimePattern, c.Residuals.SolverPattern)
}

// Extractor returns the extractor configuration.
func (c Config) Extractor() (residual.Config, error) {
	p, err := c.Patterns()
	if err != nil {
		return residual.Config{}, err
	}
	return residual.Config{
		Fields:    append([]string(nil), c.Residuals.Fields...),
		ChunkSize: c.Residuals.ChunkSize,
		Patterns:  p,
	}, nil
}

// Scanner returns the stabilization criteria.
func (c Config) Scanner() termination.Config {
	return termination.Config{
		LevelThreshold:  c.Termination.LevelThreshold,
		SpreadThreshold: c.Termination.SpreadThreshold,
		WindowSize:      c.Termination.WindowSize,
	}
}

// ReadOptions returns the series table layout.
func (c Config) ReadOptions() termination.ReadOptions {
	ro := termination.DefaultReadOptions()
	ro.SkipRows = c.Termination.SkipRows
	ro.TimeColumn = c.Termination.TimeColumn
	ro.ValueColumn = c.Termination.ValueColumn
	return ro
}

// Comma returns the CSV delimiter.
func (c Config) Comma() rune {
	r := []rune(c.Output.Delimiter)
	if len(r) != 1 {
		return ';'
	}
	return r[0]
}
