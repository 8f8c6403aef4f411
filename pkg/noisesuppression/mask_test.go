package noisesuppression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostFilter(t *testing.T) {
	mask := []float32{0, 0.1, 0.5, 0.9, 1}
	orig := append([]float32(nil), mask...)
	PostFilter(mask, DefaultPostFilterBeta)

	assert.Equal(t, float32(0), mask[0])
	assert.InDelta(t, 1, mask[4], 1e-6)
	for idx := 1; idx < 4; idx++ {
		assert.Less(t, mask[idx], orig[idx], "idx:%d", idx)
		assert.Greater(t, mask[idx], float32(0), "idx:%d", idx)
	}
	// noisier bands are attenuated relatively stronger
	assert.Less(t, mask[1]/orig[1], mask[3]/orig[3])
}

func TestApplyBandGains(t *testing.T) {
	frame := []complex64{1, 1i, 2 + 2i, -1}
	out := make([]complex64, len(frame))
	require.NoError(t, ApplyBandGains(frame, []float32{0.5, 2}, []int{1, 3}, out))
	assert.Equal(t, []complex64{0.5, 2i, 4 + 4i, -2}, out)

	assert.Error(t, ApplyBandGains(frame, []float32{1}, []int{1, 3}, out))
	assert.Error(t, ApplyBandGains(frame, []float32{1, 1}, []int{1, 2}, out))
	assert.Error(t, ApplyBandGains(frame, []float32{1, 1}, []int{1, 3}, out[:2]))
}

func TestMaskSpectrogram(t *testing.T) {
	frames := [][]complex64{{1, 1}, {2, 2}}
	masked, err := MaskSpectrogram(frames, [][]float32{{0}, {0.5}}, []int{2})
	require.NoError(t, err)
	assert.Equal(t, [][]complex64{{0, 0}, {1, 1}}, masked)
	assert.Equal(t, complex64(2), frames[1][0])

	_, err = MaskSpectrogram(frames, [][]float32{{0}}, []int{2})
	assert.Error(t, err)
}
