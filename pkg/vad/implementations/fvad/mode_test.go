package fvad

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameSupported(t *testing.T) {
	assert.True(t, frameSupported(48000, 480))
	assert.True(t, frameSupported(48000, 960))
	assert.True(t, frameSupported(16000, 160))
	assert.True(t, frameSupported(8000, 240))
	assert.False(t, frameSupported(48000, 512))
	assert.False(t, frameSupported(44100, 441))
}

func TestSupported(t *testing.T) {
	assert.Equal(t, Available, Supported(48000, 480))
	assert.False(t, Supported(48000, 512))
}

func TestToInt16(t *testing.T) {
	assert.Equal(t, int16(0), toInt16(0))
	assert.Equal(t, int16(math.MaxInt16), toInt16(1))
	assert.Equal(t, int16(math.MaxInt16), toInt16(2))
	assert.Equal(t, int16(math.MinInt16), toInt16(-2))
}
