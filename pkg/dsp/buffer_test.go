package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSilence(t *testing.T) {
	buf := []float32{1, 1, 1, 1, 1, 1}

	n := Silence(buf, 2, 2)

	assert.Equal(t, 4, n)
	assert.Equal(t, []float32{0, 0, 0, 0, 1, 1}, buf)
}

func TestSilenceBoundedByLength(t *testing.T) {
	buf := []float32{1, 1, 1}

	assert.Equal(t, 3, Silence(buf, 256, 2))
	assert.Equal(t, []float32{0, 0, 0}, buf)
	assert.Equal(t, 0, Silence(buf, 0, 2))
	assert.Equal(t, 0, Silence(nil, 4, 2))
}
