package cem

import (
	"github.com/coastalsim/longshore/bmi"
)

// CSDMS Standard Names of the model's variables.
const (
	VarWaveHeight = "sea_surface_water_wave__height"
	VarWavePeriod = "sea_surface_water_wave__period"
	VarWaveAngle  = "sea_surface_water_wave__azimuth_angle_of_opposite_of_phase_velocity"
	VarBedload    = "land_surface_water_sediment~bedload__mass_flow_rate"
	VarWaterDepth = "sea_water__depth"
	VarElevation  = "land_surface__elevation"
)

// Grid identifiers. Grid zero is the plan-view cell grid; grid one is the
// degenerate scalar grid.
const (
	gridCells  = 0
	gridScalar = 1
)

const bytesPerItem = 8 // float64

type variable struct {
	grid   int
	units  string
	input  bool
	output bool
	get    func(dst []float64)
	set    func(src []float64) // nil for read-only variables
}

// buildVars constructs the variable table. Called from Initialize, after
// the state arrays exist.
func (m *Model) buildVars() {
	m.vars = map[string]*variable{
		VarWaveHeight: {
			grid:  gridScalar,
			units: "m",
			input: true,
			get:   func(dst []float64) { dst[0] = m.waveHeight },
			set:   func(src []float64) { m.waveHeight = src[0] },
		},
		VarWavePeriod: {
			grid:  gridScalar,
			units: "s",
			input: true,
			get:   func(dst []float64) { dst[0] = m.wavePeriod },
			set:   func(src []float64) { m.wavePeriod = src[0] },
		},
		VarWaveAngle: {
			grid:  gridScalar,
			units: "rad",
			input: true,
			get:   func(dst []float64) { dst[0] = m.waveAngle },
			set: func(src []float64) {
				m.waveAngle = src[0]
				m.waveAngleHeld = true
			},
		},
		VarBedload: {
			grid:  gridCells,
			units: "kg s-1",
			input: true,
			get:   func(dst []float64) { copy(dst, m.bedload) },
			set:   func(src []float64) { copy(m.bedload, src) },
		},
		VarWaterDepth: {
			grid:   gridCells,
			units:  "m",
			output: true,
			get:    func(dst []float64) { copy(dst, m.depth) },
		},
		VarElevation: {
			grid:   gridCells,
			units:  "m",
			output: true,
			get:    func(dst []float64) { copy(dst, m.elevation) },
		},
	}
}

// InputVarNames lists the variables the model accepts through SetValue.
func (m *Model) InputVarNames() []string {
	return []string{VarWaveHeight, VarWavePeriod, VarWaveAngle, VarBedload}
}

// OutputVarNames lists the variables the model exposes through Value.
func (m *Model) OutputVarNames() []string {
	return []string{VarWaterDepth, VarElevation}
}

func (m *Model) lookupVar(name string) (*variable, error) {
	if err := m.requireRunning(); err != nil {
		return nil, err
	}
	v, ok := m.vars[name]
	if !ok {
		return nil, bmi.ErrUnknownVar
	}
	return v, nil
}

// VarGrid reports the identifier of the grid a variable is defined on.
func (m *Model) VarGrid(name string) (int, error) {
	v, err := m.lookupVar(name)
	if err != nil {
		return 0, err
	}
	return v.grid, nil
}

// VarType reports a variable's element type.
func (m *Model) VarType(name string) (bmi.VarType, error) {
	if _, err := m.lookupVar(name); err != nil {
		return "", err
	}
	return bmi.VarTypeFloat64, nil
}

// VarUnits reports a variable's units.
func (m *Model) VarUnits(name string) (string, error) {
	v, err := m.lookupVar(name)
	if err != nil {
		return "", err
	}
	return v.units, nil
}

// VarItemSize reports the size in bytes of one element of a variable.
func (m *Model) VarItemSize(name string) (int, error) {
	if _, err := m.lookupVar(name); err != nil {
		return 0, err
	}
	return bytesPerItem, nil
}

// VarNBytes reports the total size in bytes of a variable.
func (m *Model) VarNBytes(name string) (int, error) {
	v, err := m.lookupVar(name)
	if err != nil {
		return 0, err
	}
	size, err := m.GridSize(v.grid)
	if err != nil {
		return 0, err
	}
	return size * bytesPerItem, nil
}

// VarLocation reports where on its grid a variable is defined.
func (m *Model) VarLocation(name string) (bmi.VarLocation, error) {
	if _, err := m.lookupVar(name); err != nil {
		return "", err
	}
	return bmi.VarLocationNode, nil
}

// Value copies the current values of a variable into dst.
func (m *Model) Value(name string, dst []float64) error {
	v, err := m.lookupVar(name)
	if err != nil {
		return err
	}
	size, _ := m.GridSize(v.grid)
	if len(dst) != size {
		return bmi.ErrSizeMismatch
	}
	v.get(dst)
	return nil
}

// ValueAtIndices copies the values at the given flat grid indices into dst.
func (m *Model) ValueAtIndices(name string, dst []float64, indices []int) error {
	v, err := m.lookupVar(name)
	if err != nil {
		return err
	}
	if len(dst) != len(indices) {
		return bmi.ErrSizeMismatch
	}
	size, _ := m.GridSize(v.grid)
	full := make([]float64, size)
	v.get(full)
	for i, idx := range indices {
		if idx < 0 || idx >= size {
			return bmi.ErrIndexOutOfRange
		}
		dst[i] = full[idx]
	}
	return nil
}

// SetValue replaces the values of a variable with src.
func (m *Model) SetValue(name string, src []float64) error {
	v, err := m.lookupVar(name)
	if err != nil {
		return err
	}
	if v.set == nil {
		return bmi.ErrReadOnlyVar
	}
	size, _ := m.GridSize(v.grid)
	if len(src) != size {
		return bmi.ErrSizeMismatch
	}
	v.set(src)
	return nil
}

// SetValueAtIndices writes src to the given flat grid indices.
func (m *Model) SetValueAtIndices(name string, indices []int, src []float64) error {
	v, err := m.lookupVar(name)
	if err != nil {
		return err
	}
	if v.set == nil {
		return bmi.ErrReadOnlyVar
	}
	if len(src) != len(indices) {
		return bmi.ErrSizeMismatch
	}
	size, _ := m.GridSize(v.grid)
	full := make([]float64, size)
	v.get(full)
	for i, idx := range indices {
		if idx < 0 || idx >= size {
			return bmi.ErrIndexOutOfRange
		}
		full[idx] = src[i]
	}
	v.set(full)
	return nil
}

func (m *Model) lookupGrid(grid int) error {
	if err := m.requireRunning(); err != nil {
		return err
	}
	if grid != gridCells && grid != gridScalar {
		return bmi.ErrUnknownGrid
	}
	return nil
}

// GridType reports the topology of a grid.
func (m *Model) GridType(grid int) (bmi.GridType, error) {
	if err := m.lookupGrid(grid); err != nil {
		return "", err
	}
	if grid == gridScalar {
		return bmi.GridTypeScalar, nil
	}
	return bmi.GridTypeUniformRectilinear, nil
}

// GridRank reports the number of dimensions of a grid.
func (m *Model) GridRank(grid int) (int, error) {
	if err := m.lookupGrid(grid); err != nil {
		return 0, err
	}
	if grid == gridScalar {
		return 0, nil
	}
	return 2, nil
}

// GridSize reports the total number of elements of a grid.
func (m *Model) GridSize(grid int) (int, error) {
	if err := m.lookupGrid(grid); err != nil {
		return 0, err
	}
	if grid == gridScalar {
		return 1, nil
	}
	return m.rows * m.cols, nil
}

// GridShape reports the extent of each grid dimension, slowest varying
// first. The scalar grid has no dimensions.
func (m *Model) GridShape(grid int) ([]int, error) {
	if err := m.lookupGrid(grid); err != nil {
		return nil, err
	}
	if grid == gridScalar {
		return []int{}, nil
	}
	return []int{m.rows, m.cols}, nil
}

// GridSpacing reports the distance between adjacent grid nodes along each
// dimension.
func (m *Model) GridSpacing(grid int) ([]float64, error) {
	if err := m.lookupGrid(grid); err != nil {
		return nil, err
	}
	if grid == gridScalar {
		return []float64{}, nil
	}
	return []float64{m.dx, m.dx}, nil
}

// GridOrigin reports the coordinates of the lower-left grid corner.
func (m *Model) GridOrigin(grid int) ([]float64, error) {
	if err := m.lookupGrid(grid); err != nil {
		return nil, err
	}
	if grid == gridScalar {
		return []float64{}, nil
	}
	return []float64{0, 0}, nil
}
