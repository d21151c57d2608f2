package cem

import (
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.yaml.in/yaml/v3"
)

// Config holds the run configuration for the coastline evolution model.
type Config struct {
	Grid     GridConfig     `json:"grid"     yaml:"grid"`
	Waves    WaveConfig     `json:"waves"    yaml:"waves"`
	Sediment SedimentConfig `json:"sediment" yaml:"sediment"`
	Run      RunConfig      `json:"run"      yaml:"run"`
}

// GridConfig describes the plan-view domain. Rows run cross-shore (row zero
// is the landward edge), columns run alongshore. Cells are square.
type GridConfig struct {
	Rows          int     `json:"rows"           yaml:"rows"`
	Cols          int     `json:"cols"           yaml:"cols"`
	Spacing       float64 `json:"spacing"        yaml:"spacing"`        // m
	ShorePosition float64 `json:"shore_position" yaml:"shore_position"` // m from the landward edge
	ShoreNoise    float64 `json:"shore_noise"    yaml:"shore_noise"`    // m, amplitude of the initial perturbation
}

// WaveConfig describes the deep-water wave climate driving the model. Angle
// is the wave approach direction relative to the regional shore normal,
// positive for waves arriving from the low-column side. When Stochastic is
// set, the approach angle is drawn each step from the two-parameter climate
// (Asymmetry, HighFraction) instead of staying fixed.
type WaveConfig struct {
	Height       float64 `json:"height"        yaml:"height"`        // m
	Period       float64 `json:"period"        yaml:"period"`        // s
	Angle        float64 `json:"angle"         yaml:"angle"`         // rad
	Stochastic   bool    `json:"stochastic"    yaml:"stochastic"`
	Asymmetry    float64 `json:"asymmetry"     yaml:"asymmetry"`     // fraction arriving from the low-column side
	HighFraction float64 `json:"high_fraction" yaml:"high_fraction"` // fraction arriving above 45 degrees
	Seed         int64   `json:"seed"          yaml:"seed"`
}

// SedimentConfig describes the cross-shore profile the transported sand is
// spread over.
type SedimentConfig struct {
	ShorefaceDepth float64 `json:"shoreface_depth" yaml:"shoreface_depth"` // m
	BermHeight     float64 `json:"berm_height"     yaml:"berm_height"`     // m
	ShelfSlope     float64 `json:"shelf_slope"     yaml:"shelf_slope"`
}

// RunConfig describes the model clock. Times are in days.
type RunConfig struct {
	TimeStep float64 `json:"time_step" yaml:"time_step"`
	Duration float64 `json:"duration"  yaml:"duration"`
}

// DefaultConfig returns the configuration used when Initialize is called
// with an empty path.
func DefaultConfig() Config {
	return Config{
		Grid: GridConfig{
			Rows:          50,
			Cols:          200,
			Spacing:       1000,
			ShorePosition: 15000,
			ShoreNoise:    0.25,
		},
		Waves: WaveConfig{
			Height:       2.0,
			Period:       7.0,
			Angle:        0,
			Stochastic:   true,
			Asymmetry:    0.55,
			HighFraction: 0.35,
			Seed:         17,
		},
		Sediment: SedimentConfig{
			ShorefaceDepth: 10,
			BermHeight:     2,
			ShelfSlope:     0.001,
		},
		Run: RunConfig{
			TimeStep: 1,
			Duration: 3650,
		},
	}
}

// configSchema constrains model configuration files. Every section is
// optional; present values must be in range.
const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "grid": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "rows":           {"type": "integer", "minimum": 3},
        "cols":           {"type": "integer", "minimum": 3},
        "spacing":        {"type": "number", "exclusiveMinimum": 0},
        "shore_position": {"type": "number", "minimum": 0},
        "shore_noise":    {"type": "number", "minimum": 0}
      }
    },
    "waves": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "height":        {"type": "number", "exclusiveMinimum": 0},
        "period":        {"type": "number", "exclusiveMinimum": 0},
        "angle":         {"type": "number", "minimum": -1.5707963, "maximum": 1.5707963},
        "stochastic":    {"type": "boolean"},
        "asymmetry":     {"type": "number", "minimum": 0, "maximum": 1},
        "high_fraction": {"type": "number", "minimum": 0, "maximum": 1},
        "seed":          {"type": "integer"}
      }
    },
    "sediment": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "shoreface_depth": {"type": "number", "exclusiveMinimum": 0},
        "berm_height":     {"type": "number", "minimum": 0},
        "shelf_slope":     {"type": "number", "exclusiveMinimum": 0}
      }
    },
    "run": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "time_step": {"type": "number", "exclusiveMinimum": 0},
        "duration":  {"type": "number", "exclusiveMinimum": 0}
      }
    }
  }
}`

// LoadConfig reads a YAML configuration file, validates it against the
// embedded schema and applies it over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cem: failed to read config: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("cem: invalid YAML: %w", err)
	}

	schema, err := jsonschema.CompileString("cem.schema.json", configSchema)
	if err != nil {
		return cfg, fmt.Errorf("cem: failed to compile schema: %w", err)
	}

	if err := schema.Validate(raw); err != nil {
		return cfg, fmt.Errorf("cem: config validation failed: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cem: failed to unmarshal into Config struct: %w", err)
	}

	if err := cfg.check(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// check covers the cross-field constraints the schema cannot express.
func (c Config) check() error {
	if c.Grid.ShorePosition >= float64(c.Grid.Rows)*c.Grid.Spacing {
		return fmt.Errorf("cem: shore_position %g m does not fit a domain of %d rows at %g m spacing",
			c.Grid.ShorePosition, c.Grid.Rows, c.Grid.Spacing)
	}
	if c.Run.TimeStep > c.Run.Duration {
		return fmt.Errorf("cem: time_step %g d exceeds run duration %g d", c.Run.TimeStep, c.Run.Duration)
	}
	return nil
}
