package dfstate

import (
	"math"
)

const (
	meanNormInitFirst = -60.
	meanNormInitLast  = -90.
	unitNormInitFirst = 0.001
	unitNormInitLast  = 0.0001
)

func linspace(first, last float64, n int) []float32 {
	result := make([]float32, n)
	if n == 1 {
		result[0] = float32(first)
		return result
	}
	step := (last - first) / float64(n-1)
	for idx := range result {
		result[idx] = float32(first + step*float64(idx))
	}
	return result
}

// NormAlpha returns the decay factor of the exponential normalization
// for a time constant tau (in seconds), rounded to the fewest (at least
// three) decimals that keep it below 1.
func NormAlpha(sampleRate, hopSize int, tau float64) float32 {
	dt := float64(hopSize) / float64(sampleRate)
	alpha := math.Exp(-dt / tau)
	for precision := 3; ; precision++ {
		p := math.Pow10(precision)
		a := math.Round(alpha*p) / p
		if a < 1 || precision >= 15 {
			return float32(a)
		}
	}
}

// ERBNorm applies an exponential mean normalization to the ERB features
// in place and returns them. The running mean of every channel starts
// from a linear ramp of -60..-90 dB.
func ERBNorm(erb [][][]float32, alpha float32) [][][]float32 {
	for _, frames := range erb {
		if len(frames) == 0 {
			continue
		}
		state := linspace(meanNormInitFirst, meanNormInitLast, len(frames[0]))
		for _, frame := range frames {
			for idx, x := range frame {
				state[idx] = x*(1-alpha) + state[idx]*alpha
				frame[idx] = (x - state[idx]) / 40
			}
		}
	}
	return erb
}

// UnitNorm returns a copy of the first nbBins bins of every frame
// normalized by an exponential running mean of their magnitudes.
func UnitNorm(spec Spectrogram, nbBins int, alpha float32) Spectrogram {
	result := make(Spectrogram, len(spec))
	for ch, frames := range spec {
		state := linspace(unitNormInitFirst, unitNormInitLast, nbBins)
		result[ch] = make([][]complex64, len(frames))
		for t, frame := range frames {
			out := make([]complex64, nbBins)
			for idx, c := range frame[:nbBins] {
				norm := float32(math.Hypot(float64(real(c)), float64(imag(c))))
				state[idx] = norm*(1-alpha) + state[idx]*alpha
				s := sqrt32(state[idx])
				out[idx] = complex(real(c)/s, imag(c)/s)
			}
			result[ch][t] = out
		}
	}
	return result
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
