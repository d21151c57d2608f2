// Package forcing loads and watches a wave forcing file: a small YAML
// document overriding the wave climate, and optionally the bedload input,
// of a running model. Only the keys present in the file are applied.
package forcing

import (
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.yaml.in/yaml/v3"

	"github.com/coastalsim/longshore/internal/cem"
)

// Forcing is one wave forcing snapshot. Nil fields were absent from the
// file and leave the model value untouched.
type Forcing struct {
	WaveHeight *float64 `json:"wave_height" yaml:"wave_height"` // m
	WavePeriod *float64 `json:"wave_period" yaml:"wave_period"` // s
	WaveAngle  *float64 `json:"wave_angle"  yaml:"wave_angle"`  // rad

	// BedloadRate is spread uniformly over the model grid, kg/s in total.
	BedloadRate *float64 `json:"bedload_rate" yaml:"bedload_rate"`
}

// Values maps the snapshot onto SetValue calls for a grid of the given
// size.
func (f Forcing) Values(gridSize int) map[string][]float64 {
	values := make(map[string][]float64)
	if f.WaveHeight != nil {
		values[cem.VarWaveHeight] = []float64{*f.WaveHeight}
	}
	if f.WavePeriod != nil {
		values[cem.VarWavePeriod] = []float64{*f.WavePeriod}
	}
	if f.WaveAngle != nil {
		values[cem.VarWaveAngle] = []float64{*f.WaveAngle}
	}
	if f.BedloadRate != nil && gridSize > 0 {
		per := *f.BedloadRate / float64(gridSize)
		cells := make([]float64, gridSize)
		for i := range cells {
			cells[i] = per
		}
		values[cem.VarBedload] = cells
	}
	return values
}

const forcingSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "wave_height":  {"type": "number", "exclusiveMinimum": 0},
    "wave_period":  {"type": "number", "exclusiveMinimum": 0},
    "wave_angle":   {"type": "number", "minimum": -1.5707963, "maximum": 1.5707963},
    "bedload_rate": {"type": "number", "minimum": 0}
  }
}`

// Load reads and validates a forcing file.
func Load(path string) (*Forcing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("forcing: failed to read file: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("forcing: invalid YAML: %w", err)
	}

	schema, err := jsonschema.CompileString("forcing.schema.json", forcingSchema)
	if err != nil {
		return nil, fmt.Errorf("forcing: failed to compile schema: %w", err)
	}

	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("forcing: validation failed: %w", err)
	}

	var f Forcing
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("forcing: failed to unmarshal into Forcing struct: %w", err)
	}

	return &f, nil
}
