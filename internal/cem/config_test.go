package cem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_AppliesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
grid:
  rows: 40
  cols: 120
waves:
  height: 1.5
run:
  duration: 100
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.Grid.Rows)
	assert.Equal(t, 120, cfg.Grid.Cols)
	assert.Equal(t, 1.5, cfg.Waves.Height)
	assert.Equal(t, 100.0, cfg.Run.Duration)

	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultConfig().Grid.Spacing, cfg.Grid.Spacing)
	assert.Equal(t, DefaultConfig().Sediment, cfg.Sediment)
}

func TestLoadConfig_RejectsOutOfRangeValues(t *testing.T) {
	path := writeConfig(t, "waves:\n  height: -2\n")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "validation failed")
}

func TestLoadConfig_RejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "grid:\n  colums: 20\n")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "validation failed")
}

func TestLoadConfig_RejectsShoreOutsideDomain(t *testing.T) {
	path := writeConfig(t, `
grid:
  rows: 10
  spacing: 100
  shore_position: 5000
`)

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "does not fit")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/cem.yaml")
	assert.ErrorContains(t, err, "failed to read config")
}
