package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocon/cooc/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.Hops)
	assert.Equal(t, 7, cfg.MonthFloor)
	assert.Equal(t, TemporalStrict, cfg.TemporalMode)
	assert.True(t, cfg.Reprune)
	assert.False(t, cfg.Seeded())
	assert.Equal(t, "pair_graph_sample", cfg.Export.Prefix)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
samples: 7000
seed: 42
index_cap: 100000
workers: 4
temporal_mode: lexicographic
export:
  dir: /tmp/samples
`))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Samples)
	require.True(t, cfg.Seeded())
	assert.Equal(t, int64(42), *cfg.Seed)
	assert.Equal(t, 100000, cfg.IndexCap)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, TemporalLexicographic, cfg.TemporalMode)
	assert.Equal(t, "/tmp/samples", cfg.Export.Dir)
	// untouched keys keep their defaults
	assert.Equal(t, 2, cfg.Hops)
	assert.Equal(t, "pair_graph_sample", cfg.Export.Prefix)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_NegativeSamplesMeansNatural(t *testing.T) {
	cfg, err := Parse([]byte("samples: -1\n"))
	require.NoError(t, err)
	assert.Equal(t, -1, cfg.Samples)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"non-integer seed", "seed: abc\n"},
		{"unknown key", "sample_count: 3\n"},
		{"negative cap", "index_cap: -5\n"},
		{"negative workers", "workers: -1\n"},
		{"zero hops", "hops: 0\n"},
		{"month floor too large", "month_floor: 13\n"},
		{"unknown temporal mode", "temporal_mode: fuzzy\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.IsConfigError(err), "want config error, got %v", err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cooc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("samples: 10\nseed: 7\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Samples)
	assert.Equal(t, int64(7), *cfg.Seed)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.False(t, errors.IsConfigError(err))
}
