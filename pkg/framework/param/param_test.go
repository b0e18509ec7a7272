package param

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterValidate(t *testing.T) {
	require.NoError(t, New("Index", 0, 11, 0).Validate())

	tests := map[string]*Parameter{
		"empty name":      New("", 0, 1, 0),
		"long name":       New("ThisNameIsFarTooLong", 0, 1, 0),
		"inverted range":  New("Inv", 1, 0, 0),
		"default outside": New("Out", 0, 1, 2),
	}
	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, p.Validate())
		})
	}
}

func TestParameterClamp(t *testing.T) {
	p := New("Index", 0, 11, 3)

	assert.Equal(t, float32(0), p.Clamp(-4))
	assert.Equal(t, float32(11), p.Clamp(40))
	assert.Equal(t, float32(5.5), p.Clamp(5.5))
	assert.Equal(t, float32(3), p.Clamp(float32(math.NaN())))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(New("Index", 0, 11, 0), New("Gain", 0, 2, 1)))

	assert.Equal(t, 2, r.Count())
	assert.Equal(t, "Gain", r.GetByIndex(1).Name)
	assert.Nil(t, r.GetByIndex(2))
	assert.Nil(t, r.GetByIndex(-1))

	assert.Error(t, r.Add(New("Index", 0, 1, 0)), "duplicate names rejected")
	assert.Len(t, r.All(), 2)
}

func TestBlock(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(New("Index", 0, 11, 0), New("Gain", 0, 2, 1)))

	b := NewBlock(r)
	assert.Equal(t, 2, b.Len())

	v, ok := b.Get(1)
	require.True(t, ok)
	assert.Equal(t, float32(1), v, "defaults applied")

	assert.True(t, b.Set(0, 7))
	v, _ = b.Get(0)
	assert.Equal(t, float32(7), v)

	assert.True(t, b.Set(0, 99))
	v, _ = b.Get(0)
	assert.Equal(t, float32(11), v, "clamped to max")

	assert.False(t, b.Set(2, 1))
	_, ok = b.Get(2)
	assert.False(t, ok)
}
