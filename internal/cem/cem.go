// Package cem implements a cellular one-line coastline evolution model
// behind the bmi.Model interface. The plan-view domain is a uniform grid of
// square cells; waves arriving at an angle to the shore drive an alongshore
// sediment flux whose divergence moves the shoreline of each column.
package cem

import (
	"context"
	"math"
	"math/rand"

	"github.com/coastalsim/longshore/bmi"
)

// ComponentName is the name the model reports over the wire.
const ComponentName = "Coastline Evolution Model"

// ModelName is the registry key the model binds under.
const ModelName = "cem"

// Register binds the model's factory into a registry.
func Register(reg *bmi.Registry) error {
	return reg.Register(ModelName, func() bmi.Model { return New() })
}

type runState int

const (
	stateCreated runState = iota
	stateInitialized
	stateFinalized
)

// Model is one coastline evolution run. It is not safe for concurrent use;
// the serving layer serializes access.
type Model struct {
	cfg   Config
	state runState
	rng   *rand.Rand

	rows, cols int
	dx         float64 // cell size, m

	shoreline []float64 // per-column shoreline position, m seaward of row zero
	depth     []float64 // sea_water__depth, per cell
	elevation []float64 // land_surface__elevation, per cell
	bedload   []float64 // bedload input rate, kg/s, per cell

	waveHeight float64
	wavePeriod float64
	waveAngle  float64
	// waveAngleHeld pins the angle to the last externally set value,
	// suppressing stochastic climate draws.
	waveAngleHeld bool

	clock, dt, end float64 // days

	vars map[string]*variable
}

var _ bmi.Model = (*Model)(nil)

// New constructs an uninitialized model.
func New() *Model {
	return &Model{}
}

// ComponentName reports the model's declared name. It is valid before
// Initialize.
func (m *Model) ComponentName() string {
	return ComponentName
}

// Initialize loads the configuration file at path, or the built-in defaults
// when path is empty, and builds the initial coastline.
func (m *Model) Initialize(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch m.state {
	case stateInitialized:
		return bmi.ErrAlreadyInitialized
	case stateFinalized:
		return bmi.ErrFinalized
	}

	cfg := DefaultConfig()
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	m.cfg = cfg
	m.rng = rand.New(rand.NewSource(cfg.Waves.Seed))
	m.rows = cfg.Grid.Rows
	m.cols = cfg.Grid.Cols
	m.dx = cfg.Grid.Spacing

	m.shoreline = make([]float64, m.cols)
	for j := range m.shoreline {
		m.shoreline[j] = cfg.Grid.ShorePosition + cfg.Grid.ShoreNoise*(2*m.rng.Float64()-1)
	}

	cells := m.rows * m.cols
	m.depth = make([]float64, cells)
	m.elevation = make([]float64, cells)
	m.bedload = make([]float64, cells)

	m.waveHeight = cfg.Waves.Height
	m.wavePeriod = cfg.Waves.Period
	m.waveAngle = cfg.Waves.Angle
	m.waveAngleHeld = false

	m.clock = 0
	m.dt = cfg.Run.TimeStep
	m.end = cfg.Run.Duration

	m.buildVars()
	m.derive()
	m.state = stateInitialized

	return nil
}

// Update advances the model by one time step, shortened if the nominal step
// would cross the end of the run. Once the clock has reached EndTime it
// returns bmi.ErrEndOfModelTime and leaves the state untouched.
func (m *Model) Update() error {
	if err := m.requireRunning(); err != nil {
		return err
	}
	if m.clock >= m.end {
		return bmi.ErrEndOfModelTime
	}

	dt := m.dt
	if m.clock+dt > m.end {
		dt = m.end - m.clock
	}
	m.step(dt)
	m.clock += dt

	return nil
}

// UpdateUntil advances the model until its clock reaches t, taking a
// fractional final step when needed.
func (m *Model) UpdateUntil(t float64) error {
	if err := m.requireRunning(); err != nil {
		return err
	}

	for m.clock < t {
		if m.clock >= m.end {
			return bmi.ErrEndOfModelTime
		}
		dt := math.Min(m.dt, t-m.clock)
		dt = math.Min(dt, m.end-m.clock)
		m.step(dt)
		m.clock += dt
	}

	return nil
}

// Finalize releases model state. Every operation except ComponentName
// fails with bmi.ErrFinalized afterwards.
func (m *Model) Finalize() error {
	if m.state == stateFinalized {
		return bmi.ErrFinalized
	}

	m.shoreline = nil
	m.depth = nil
	m.elevation = nil
	m.bedload = nil
	m.vars = nil
	m.state = stateFinalized

	return nil
}

// StartTime reports the model clock value at the start of the run.
func (m *Model) StartTime() float64 { return 0 }

// EndTime reports the model clock value the run ends at.
func (m *Model) EndTime() float64 { return m.end }

// CurrentTime reports the current model clock value.
func (m *Model) CurrentTime() float64 { return m.clock }

// TimeStep reports the nominal increment of one Update call.
func (m *Model) TimeStep() float64 { return m.dt }

// TimeUnits reports the units of the model clock.
func (m *Model) TimeUnits() string { return "d" }

func (m *Model) requireRunning() error {
	switch m.state {
	case stateCreated:
		return bmi.ErrNotInitialized
	case stateFinalized:
		return bmi.ErrFinalized
	}
	return nil
}
