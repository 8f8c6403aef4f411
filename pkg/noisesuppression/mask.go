package noisesuppression

import (
	"fmt"
	"math"

	"github.com/xaionaro-go/dfenhance/pkg/dfstate"
)

const (
	DefaultPostFilterBeta = 0.02
	postFilterEpsilon     = 1e-12
)

// PostFilter slightly over-attenuates bands with a low gain, in place:
// the noisier a band the stronger it is suppressed.
func PostFilter(mask []float32, beta float32) {
	for idx, m := range mask {
		mSin := m * float32(math.Sin(math.Pi*float64(m)/2))
		ratio := m / max(mSin, postFilterEpsilon)
		mask[idx] = (1 + beta) * m / (1 + beta*ratio*ratio)
	}
}

// ApplyBandGains multiplies every bin of a single frame by the gain of its band.
func ApplyBandGains(frame []complex64, gains []float32, widths []int, output []complex64) error {
	if len(gains) != len(widths) {
		return fmt.Errorf("expected %d band gains, got %d", len(widths), len(gains))
	}
	if len(frame) != len(output) {
		return fmt.Errorf("the lengths of input and output are not equal: %d != %d", len(frame), len(output))
	}
	var bins int
	for _, width := range widths {
		bins += width
	}
	if bins != len(frame) {
		return fmt.Errorf("the bands cover %d bins, but the frame has %d", bins, len(frame))
	}

	binGains := make([]float32, bins)
	dfstate.ExpandBands(gains, widths, binGains)
	for idx, c := range frame {
		g := binGains[idx]
		output[idx] = complex(real(c)*g, imag(c)*g)
	}
	return nil
}

// MaskSpectrogram applies per-band gains ([frame][band]) to every frame of
// a single channel and returns the masked copy.
func MaskSpectrogram(frames [][]complex64, gains [][]float32, widths []int) ([][]complex64, error) {
	if len(frames) != len(gains) {
		return nil, fmt.Errorf("expected gains for %d frames, got %d", len(frames), len(gains))
	}
	result := make([][]complex64, len(frames))
	for t, frame := range frames {
		result[t] = make([]complex64, len(frame))
		if err := ApplyBandGains(frame, gains[t], widths, result[t]); err != nil {
			return nil, fmt.Errorf("frame %d: %w", t, err)
		}
	}
	return result, nil
}
