package bmi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()

	err := reg.Register("cem", func() Model { return nil })
	assert.NoError(t, err)

	_, ok := reg.Get("cem")
	assert.True(t, ok)

	// Ensure a missing model returns false
	_, ok = reg.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	reg := NewRegistry()

	err := reg.Register("cem", func() Model { return nil })
	assert.NoError(t, err)

	err = reg.Register("cem", func() Model { return nil })
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry()

	assert.Empty(t, reg.Names())

	assert.NoError(t, reg.Register("waves", func() Model { return nil }))
	assert.NoError(t, reg.Register("cem", func() Model { return nil }))

	assert.Equal(t, []string{"cem", "waves"}, reg.Names())
}
