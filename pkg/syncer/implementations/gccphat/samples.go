package gccphat

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/xaionaro-go/dfenhance/pkg/audio"
)

// Mixdown averages the channels of the first maxSamples samples of buf;
// maxSamples <= 0 means all of them.
func Mixdown(buf *audio.Buffer, maxSamples int) []float64 {
	length := buf.Len()
	if maxSamples > 0 {
		length = min(length, maxSamples)
	}
	result := make([]float64, length)
	if len(buf.Samples) == 0 {
		return result
	}
	for _, samples := range buf.Samples {
		for idx := range result {
			result[idx] += float64(samples[idx])
		}
	}
	for idx := range result {
		result[idx] /= float64(len(buf.Samples))
	}
	return result
}

// CrossCorrelate calculates the sample shift of 'fcomp' relative to 'fref' using GCC-PHAT.
// fref and fcomp are the spectra of the zero-padded reference and comparison, of the same length.
// Only the bins within [minFreq, maxFreq] are considered; zero disables a limit.
//
// Returns (shift, confidence, error). A positive shift means 'comp' leads 'ref'.
func CrossCorrelate(fref, fcomp []complex128, sampleRate float64, minFreq, maxFreq float64) (float64, float64, error) {
	if sampleRate <= 0 {
		return 0, 0, fmt.Errorf("sampleRate must be positive: got %v", sampleRate)
	}
	if len(fref) != len(fcomp) {
		return 0, 0, fmt.Errorf("fref and fcomp must have same length: %d != %d", len(fref), len(fcomp))
	}
	n := len(fref)
	if n == 0 {
		return 0, 0, nil
	}

	binMin, binMax := 0, n/2
	if minFreq > 0 {
		binMin = int(minFreq * float64(n) / sampleRate)
	}
	if maxFreq > 0 && maxFreq < sampleRate/2 {
		binMax = int(maxFreq * float64(n) / sampleRate)
	}

	crossSpectrum, activeBins := whitenedCrossSpectrum(fref, fcomp, binMin, binMax)
	if activeBins == 0 {
		return 0, 0, nil
	}

	correlation := fft.IFFT(crossSpectrum)
	peakIdx, peakVal := peak(correlation)

	// comp(t) = ref(t-lag)
	lag := float64(peakIdx)
	if peakIdx > n/2 {
		lag -= float64(n)
	}
	if peakIdx > 0 && peakIdx < n-1 {
		lag += parabolicOffset(
			cmplx.Abs(correlation[peakIdx-1]),
			peakVal,
			cmplx.Abs(correlation[peakIdx+1]),
		)
	}

	// a perfect match gives a peak of activeBins/n: activeBins unit bins
	// in the spectrum, and IFFT divides by n
	confidence := min(peakVal*float64(n)/float64(activeBins), 1)

	return -lag, confidence, nil
}

// whitenedCrossSpectrum returns comp*conj(ref) normalized to unit
// magnitude within the band, and zero elsewhere. Bins more than 60 dB
// below the strongest one are zeroed too, to not amplify noise.
func whitenedCrossSpectrum(fref, fcomp []complex128, binMin, binMax int) ([]complex128, int) {
	n := len(fref)
	result := make([]complex128, n)

	var maxMag float64
	for i := range result {
		result[i] = fcomp[i] * cmplx.Conj(fref[i])
		maxMag = max(maxMag, cmplx.Abs(result[i]))
	}
	threshold := maxMag * 0.001

	activeBins := 0
	for i, prod := range result {
		bin := i
		if i > n/2 {
			bin = n - i
		}
		mag := cmplx.Abs(prod)
		if bin < binMin || bin > binMax || mag <= threshold || mag <= 1e-12 {
			result[i] = 0
			continue
		}
		result[i] = prod / complex(mag, 0)
		activeBins++
	}
	return result, activeBins
}

func peak(values []complex128) (int, float64) {
	maxIdx, maxVal := 0, -1.0
	for i, v := range values {
		if a := cmplx.Abs(v); a > maxVal {
			maxIdx, maxVal = i, a
		}
	}
	return maxIdx, maxVal
}

// parabolicOffset returns the sub-sample position of the vertex of the
// parabola through three equidistant points, relative to the middle one.
func parabolicOffset(y1, y2, y3 float64) float64 {
	denom := y1 - 2*y2 + y3
	if math.Abs(denom) <= 1e-12 {
		return 0
	}
	return (y1 - y3) / (2 * denom)
}
