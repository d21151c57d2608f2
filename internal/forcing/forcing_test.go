package forcing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coastalsim/longshore/internal/cem"
)

func writeForcing(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forcing.yaml")
	writeForcing(t, path, "wave_height: 3.2\nwave_angle: 0.5\n")

	f, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, f.WaveHeight)
	assert.Equal(t, 3.2, *f.WaveHeight)
	require.NotNil(t, f.WaveAngle)
	assert.Equal(t, 0.5, *f.WaveAngle)
	assert.Nil(t, f.WavePeriod)
	assert.Nil(t, f.BedloadRate)
}

func TestLoad_RejectsOutOfRangeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forcing.yaml")
	writeForcing(t, path, "wave_height: -1\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "validation failed")
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forcing.yaml")
	writeForcing(t, path, "wave_heigth: 2\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "validation failed")
}

func TestForcing_Values(t *testing.T) {
	height := 2.0
	rate := 100.0
	f := Forcing{WaveHeight: &height, BedloadRate: &rate}

	values := f.Values(4)

	assert.Equal(t, []float64{2.0}, values[cem.VarWaveHeight])
	assert.Equal(t, []float64{25, 25, 25, 25}, values[cem.VarBedload])
	assert.NotContains(t, values, cem.VarWavePeriod)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forcing.yaml")
	writeForcing(t, path, "wave_height: 1.0\n")

	reloaded := make(chan *Forcing, 1)
	w, err := NewWatcher(path, func(f *Forcing, err error) {
		require.NoError(t, err)
		reloaded <- f
	})
	require.NoError(t, err)

	require.NotNil(t, w.Snapshot().WaveHeight)
	assert.Equal(t, 1.0, *w.Snapshot().WaveHeight)

	writeForcing(t, path, "wave_height: 2.0\n")

	select {
	case f := <-reloaded:
		require.NotNil(t, f.WaveHeight)
		assert.Equal(t, 2.0, *f.WaveHeight)
		assert.Equal(t, uint32(1), w.ReloadCount())
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload after write")
	}
}
