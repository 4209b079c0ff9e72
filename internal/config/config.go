package config

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"cocon/cooc/internal/errors"
)

// TemporalMode selects how a paper's (year, month) is compared against a
// sample's temporal anchor during pruning.
type TemporalMode string

const (
	// TemporalStrict keeps a paper only if year < anchorYear AND month < anchorMonth.
	TemporalStrict TemporalMode = "strict"
	// TemporalLexicographic keeps a paper only if (year, month) < (anchorYear, anchorMonth).
	TemporalLexicographic TemporalMode = "lexicographic"
)

// Config holds every parameter of a sampling run. It is passed explicitly
// into the sampler; nothing in the core reads process-wide state.
type Config struct {
	// Samples is the requested number of positive samples. <= 0 means the
	// natural distribution with no subsampling.
	Samples int `yaml:"samples"`
	// Seed makes shuffling reproducible. nil means unseeded.
	Seed *int64 `yaml:"seed"`
	// IndexCap stops index construction once this many distinct pairs exist. 0 = uncapped.
	IndexCap int `yaml:"index_cap"`
	// Workers bounds parallel pruning. 0 = GOMAXPROCS.
	Workers int `yaml:"workers"`
	// Hops is the neighborhood radius around a pair's endpoints.
	Hops int `yaml:"hops"`
	// MonthFloor is the minimum month anchor assigned to corrupted records.
	MonthFloor   int          `yaml:"month_floor"`
	TemporalMode TemporalMode `yaml:"temporal_mode"`
	// Reprune re-applies the neighborhood expansion on the pruned graph.
	Reprune bool         `yaml:"reprune"`
	Export  ExportConfig `yaml:"export"`
}

// ExportConfig controls where sample files are written.
type ExportConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// Default returns the reference parameters.
func Default() *Config {
	return &Config{
		Samples:      0,
		Hops:         2,
		MonthFloor:   7,
		TemporalMode: TemporalStrict,
		Reprune:      true,
		Export: ExportConfig{
			Prefix: "pair_graph_sample",
		},
	}
}

// Load reads a YAML file on top of Default. Unknown keys and type
// mismatches (e.g. a non-integer seed) are configuration errors.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	return Parse(data)
}

// Parse decodes YAML bytes on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Mark(errors.Wrap(err, "decoding config"), errors.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects parameter combinations that would make a run meaningless.
func (c *Config) Validate() error {
	if c.IndexCap < 0 {
		return errors.NewConfigError("index_cap must be >= 0, got %d", c.IndexCap)
	}
	if c.Workers < 0 {
		return errors.NewConfigError("workers must be >= 0, got %d", c.Workers)
	}
	if c.Hops < 1 {
		return errors.NewConfigError("hops must be >= 1, got %d", c.Hops)
	}
	if c.MonthFloor < 1 || c.MonthFloor > 12 {
		return errors.NewConfigError("month_floor must be in 1..12, got %d", c.MonthFloor)
	}
	switch c.TemporalMode {
	case TemporalStrict, TemporalLexicographic:
	default:
		return errors.WithHint(
			errors.NewConfigError("unknown temporal_mode %q", c.TemporalMode),
			"use \"strict\" or \"lexicographic\"",
		)
	}
	return nil
}

// Seeded reports whether a seed was configured.
func (c *Config) Seeded() bool { return c.Seed != nil }
