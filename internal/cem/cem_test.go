package cem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coastalsim/longshore/bmi"
)

func newInitialized(t *testing.T) *Model {
	t.Helper()

	m := New()
	require.NoError(t, m.Initialize(context.Background(), ""))
	return m
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestModel_ComponentName(t *testing.T) {
	m := New()

	// The name must be available before Initialize.
	name := m.ComponentName()
	assert.Equal(t, ComponentName, name)
	assert.NotEmpty(t, name)
	assert.LessOrEqual(t, len(name), bmi.MaxComponentName)
}

func TestModel_Lifecycle(t *testing.T) {
	m := New()

	assert.ErrorIs(t, m.Update(), bmi.ErrNotInitialized)
	assert.ErrorIs(t, m.Value(VarWaterDepth, nil), bmi.ErrNotInitialized)

	require.NoError(t, m.Initialize(context.Background(), ""))
	assert.ErrorIs(t, m.Initialize(context.Background(), ""), bmi.ErrAlreadyInitialized)

	require.NoError(t, m.Update())

	require.NoError(t, m.Finalize())
	assert.ErrorIs(t, m.Update(), bmi.ErrFinalized)
	assert.ErrorIs(t, m.Finalize(), bmi.ErrFinalized)
}

func TestModel_EndOfModelTime(t *testing.T) {
	path := writeConfig(t, "run:\n  time_step: 1\n  duration: 3\n")

	m := New()
	require.NoError(t, m.Initialize(context.Background(), path))

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Update())
	}
	assert.Equal(t, 3.0, m.CurrentTime())

	// Past the end every further Update reports the same indicator.
	assert.ErrorIs(t, m.Update(), bmi.ErrEndOfModelTime)
	assert.ErrorIs(t, m.Update(), bmi.ErrEndOfModelTime)
	assert.Equal(t, 3.0, m.CurrentTime())
}

func TestModel_UpdateUntilFractionalStep(t *testing.T) {
	m := newInitialized(t)

	require.NoError(t, m.UpdateUntil(2.5))
	assert.Equal(t, 2.5, m.CurrentTime())

	require.NoError(t, m.UpdateUntil(3))
	assert.Equal(t, 3.0, m.CurrentTime())
}

func TestModel_TimeMetadata(t *testing.T) {
	m := newInitialized(t)

	assert.Equal(t, 0.0, m.StartTime())
	assert.Equal(t, 3650.0, m.EndTime())
	assert.Equal(t, 1.0, m.TimeStep())
	assert.Equal(t, "d", m.TimeUnits())
}

func TestModel_VarTableCoversDeclaredNames(t *testing.T) {
	m := newInitialized(t)

	names := append(m.InputVarNames(), m.OutputVarNames()...)
	assert.Len(t, names, len(m.vars))

	for _, name := range names {
		_, err := m.VarGrid(name)
		assert.NoError(t, err, "variable %q has no table entry", name)

		typ, err := m.VarType(name)
		assert.NoError(t, err)
		assert.Equal(t, bmi.VarTypeFloat64, typ)

		units, err := m.VarUnits(name)
		assert.NoError(t, err)
		assert.NotEmpty(t, units)
	}

	_, err := m.VarGrid("no_such__variable")
	assert.ErrorIs(t, err, bmi.ErrUnknownVar)
}

func TestModel_GridMetadata(t *testing.T) {
	m := newInitialized(t)

	typ, err := m.GridType(0)
	require.NoError(t, err)
	assert.Equal(t, bmi.GridTypeUniformRectilinear, typ)

	rank, err := m.GridRank(0)
	require.NoError(t, err)
	assert.Equal(t, 2, rank)

	shape, err := m.GridShape(0)
	require.NoError(t, err)
	assert.Equal(t, []int{50, 200}, shape)

	size, err := m.GridSize(0)
	require.NoError(t, err)
	assert.Equal(t, 10000, size)

	spacing, err := m.GridSpacing(0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1000, 1000}, spacing)

	typ, err = m.GridType(1)
	require.NoError(t, err)
	assert.Equal(t, bmi.GridTypeScalar, typ)

	rank, err = m.GridRank(1)
	require.NoError(t, err)
	assert.Equal(t, 0, rank)

	size, err = m.GridSize(1)
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	_, err = m.GridType(7)
	assert.ErrorIs(t, err, bmi.ErrUnknownGrid)
}

func TestModel_ValueRoundTrip(t *testing.T) {
	m := newInitialized(t)

	require.NoError(t, m.SetValue(VarWaveHeight, []float64{3.5}))

	got := make([]float64, 1)
	require.NoError(t, m.Value(VarWaveHeight, got))
	assert.Equal(t, 3.5, got[0])

	nbytes, err := m.VarNBytes(VarWaterDepth)
	require.NoError(t, err)
	assert.Equal(t, 10000*8, nbytes)

	depth := make([]float64, 10000)
	require.NoError(t, m.Value(VarWaterDepth, depth))

	// Landward cells are dry, the seaward edge is submerged.
	assert.Equal(t, 0.0, depth[0])
	assert.Greater(t, depth[len(depth)-1], 0.0)
}

func TestModel_ValueBufferSizeChecked(t *testing.T) {
	m := newInitialized(t)

	assert.ErrorIs(t, m.Value(VarWaterDepth, make([]float64, 3)), bmi.ErrSizeMismatch)
	assert.ErrorIs(t, m.SetValue(VarWaveHeight, []float64{1, 2}), bmi.ErrSizeMismatch)
	assert.ErrorIs(t, m.SetValue(VarWaterDepth, make([]float64, 10000)), bmi.ErrReadOnlyVar)
}

func TestModel_ValueAtIndices(t *testing.T) {
	m := newInitialized(t)

	require.NoError(t, m.SetValueAtIndices(VarBedload, []int{0, 1}, []float64{10, 20}))

	got := make([]float64, 3)
	require.NoError(t, m.ValueAtIndices(VarBedload, got, []int{0, 1, 2}))
	assert.Equal(t, []float64{10, 20, 0}, got)

	assert.ErrorIs(t, m.ValueAtIndices(VarBedload, make([]float64, 1), []int{10000}), bmi.ErrIndexOutOfRange)
	assert.ErrorIs(t, m.ValueAtIndices(VarBedload, make([]float64, 2), []int{0}), bmi.ErrSizeMismatch)
}

func TestModel_SetWaveAngleSuppressesClimateDraws(t *testing.T) {
	m := newInitialized(t)

	require.NoError(t, m.SetValue(VarWaveAngle, []float64{0.3}))

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Update())
	}

	got := make([]float64, 1)
	require.NoError(t, m.Value(VarWaveAngle, got))
	assert.Equal(t, 0.3, got[0])
}

func TestModel_StochasticRunIsDeterministic(t *testing.T) {
	run := func() []float64 {
		m := New()
		require.NoError(t, m.Initialize(context.Background(), ""))
		for i := 0; i < 30; i++ {
			require.NoError(t, m.Update())
		}
		out := make([]float64, 10000)
		require.NoError(t, m.Value(VarWaterDepth, out))
		return out
	}

	assert.Equal(t, run(), run())
}

func TestModel_ClosedBoundariesConserveSand(t *testing.T) {
	path := writeConfig(t, "waves:\n  stochastic: false\n  angle: 0.4\n")

	m := New()
	require.NoError(t, m.Initialize(context.Background(), path))

	var before float64
	for _, s := range m.shoreline {
		before += s
	}

	for i := 0; i < 50; i++ {
		require.NoError(t, m.Update())
	}

	var after float64
	for _, s := range m.shoreline {
		after += s
	}

	// No bedload input and closed lateral boundaries: the total plan-view
	// sand area must not change.
	assert.InDelta(t, before, after, 1e-3)
}

func TestModel_BedloadInputGrowsShoreline(t *testing.T) {
	path := writeConfig(t, "waves:\n  stochastic: false\n  angle: 0\n")

	m := New()
	require.NoError(t, m.Initialize(context.Background(), path))

	bedload := make([]float64, 10000)
	bedload[100] = 50 // kg/s into column 100
	require.NoError(t, m.SetValue(VarBedload, bedload))

	before := m.shoreline[100]
	for i := 0; i < 10; i++ {
		require.NoError(t, m.Update())
	}

	assert.Greater(t, m.shoreline[100], before)
}
