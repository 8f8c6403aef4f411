package deepfilternet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFrames(frames, bins int) [][]complex64 {
	result := make([][]complex64, frames)
	for t := range result {
		result[t] = make([]complex64, bins)
	}
	return result
}

func TestDeepFilterIdentity(t *testing.T) {
	spec := [][]complex64{
		{1 + 1i, 2, 100},
		{3, 4i, 200},
	}
	const nbDF, order = 2, 1
	coefs := make([]float32, len(spec)*nbDF*order*2)
	for idx := 0; idx < len(coefs); idx += 2 {
		coefs[idx] = 1
	}
	output := newFrames(2, 3)
	output[0][2], output[1][2] = 7, 8

	require.NoError(t, DeepFilter(spec, coefs, nbDF, order, 0, output))
	assert.Equal(t, [][]complex64{
		{1 + 1i, 2, 7},
		{3, 4i, 8},
	}, output)
}

func TestDeepFilterTaps(t *testing.T) {
	spec := [][]complex64{{1}, {10}, {100}, {1000}}
	const nbDF, order, lookahead = 1, 3, 1

	t.Run("PastTap", func(t *testing.T) {
		coefs := make([]float32, len(spec)*nbDF*order*2)
		for frame := range spec {
			coefs[frame*order*2+0] = 1
		}
		output := newFrames(len(spec), 1)
		require.NoError(t, DeepFilter(spec, coefs, nbDF, order, lookahead, output))
		assert.Equal(t, [][]complex64{{0}, {1}, {10}, {100}}, output)
	})

	t.Run("FutureTap", func(t *testing.T) {
		coefs := make([]float32, len(spec)*nbDF*order*2)
		for frame := range spec {
			coefs[frame*order*2+4] = 1
		}
		output := newFrames(len(spec), 1)
		require.NoError(t, DeepFilter(spec, coefs, nbDF, order, lookahead, output))
		assert.Equal(t, [][]complex64{{10}, {100}, {1000}, {0}}, output)
	})

	t.Run("ComplexCoefficient", func(t *testing.T) {
		coefs := make([]float32, len(spec)*nbDF*order*2)
		for frame := range spec {
			coefs[frame*order*2+3] = 1 // i at the current frame
		}
		output := newFrames(len(spec), 1)
		require.NoError(t, DeepFilter(spec, coefs, nbDF, order, lookahead, output))
		assert.Equal(t, [][]complex64{{1i}, {10i}, {100i}, {1000i}}, output)
	})
}

func TestDeepFilterInvalid(t *testing.T) {
	spec := newFrames(2, 4)
	assert.Error(t, DeepFilter(spec, make([]float32, 3), 2, 1, 0, newFrames(2, 4)))
	assert.Error(t, DeepFilter(spec, make([]float32, 2*2*2), 2, 1, 0, newFrames(1, 4)))
	assert.Error(t, DeepFilter(spec, make([]float32, 2*2*2), 2, 1, 1, newFrames(2, 4)))
	assert.Error(t, DeepFilter(spec, make([]float32, 2*8*2), 8, 1, 0, newFrames(2, 4)))
}

func TestEncoderInputs(t *testing.T) {
	erb := [][]float32{{1, 2}, {3, 4}, {5, 6}}
	spec := [][]complex64{{1 + 2i}, {3 + 4i}, {5 + 6i}}

	featERB, featSpec := encoderInputs(erb, spec, 0)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, featERB)
	assert.Equal(t, []float32{1, 3, 5, 2, 4, 6}, featSpec)

	featERB, featSpec = encoderInputs(erb, spec, 1)
	assert.Equal(t, []float32{3, 4, 5, 6, 0, 0}, featERB)
	assert.Equal(t, []float32{3, 5, 0, 4, 6, 0}, featSpec)

	featERB, featSpec = encoderInputs(erb, spec, 5)
	assert.Equal(t, make([]float32, 6), featERB)
	assert.Equal(t, make([]float32, 6), featSpec)

	featERB, featSpec = encoderInputs(nil, nil, 2)
	assert.Empty(t, featERB)
	assert.Empty(t, featSpec)
}

func TestUnpackMask(t *testing.T) {
	mask, err := unpackMask([]float32{1, 2, 3, 4, 5, 6}, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 2}, {3, 4}, {5, 6}}, mask)

	_, err = unpackMask([]float32{1, 2, 3}, 2, 2)
	assert.Error(t, err)
}

func TestMean(t *testing.T) {
	assert.Equal(t, 2.0, mean([]float32{1, 2, 3}))
	assert.True(t, mean(nil) != mean(nil))
}
