package bmirpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequest_RequiresOp(t *testing.T) {
	_, err := DecodeRequest(nil)
	assert.ErrorContains(t, err, "empty request envelope")

	s, err := EncodeRequest("", nil)
	require.NoError(t, err)
	_, err = DecodeRequest(s)
	assert.ErrorContains(t, err, "no op field")
}

func TestRequest_TypedParams(t *testing.T) {
	s, err := EncodeRequest(OpSetValueAtIndices, map[string]any{
		"name":    "sea_water__depth",
		"indices": []int{3, 7},
		"values":  []float64{1.5, 2.5},
	})
	require.NoError(t, err)

	req, err := DecodeRequest(s)
	require.NoError(t, err)
	assert.Equal(t, OpSetValueAtIndices, req.Op)

	name, ok := req.String("name")
	assert.True(t, ok)
	assert.Equal(t, "sea_water__depth", name)

	indices, ok := req.Ints("indices")
	assert.True(t, ok)
	assert.Equal(t, []int{3, 7}, indices)

	values, ok := req.Floats("values")
	assert.True(t, ok)
	assert.Equal(t, []float64{1.5, 2.5}, values)

	_, ok = req.Float("absent")
	assert.False(t, ok)
}

func TestEncodeResult_NormalizesSlices(t *testing.T) {
	s, err := EncodeResult(map[string]any{
		"shape": []int{50, 200},
		"names": []string{"a", "b"},
		"time":  1.5,
	})
	require.NoError(t, err)

	fields := DecodeResult(s)
	assert.Equal(t, []any{50.0, 200.0}, fields["shape"])
	assert.Equal(t, []any{"a", "b"}, fields["names"])
	assert.Equal(t, 1.5, fields["time"])
}
