package dfstate

import (
	"math"
)

func freq2erb(freqHz float64) float64 {
	return 9.265 * math.Log1p(freqHz/(24.7*9.265))
}

func erb2freq(nErb float64) float64 {
	return 24.7 * 9.265 * (math.Exp(nErb/9.265) - 1)
}

// erbWidths splits the fftSize/2+1 frequency bins into nbBands bands
// equally spaced on the ERB scale, each band being at least
// minNbFreqs bins wide.
func erbWidths(sampleRate, fftSize, nbBands, minNbFreqs int) []int {
	nyqFreq := float64(sampleRate / 2)
	freqWidth := float64(sampleRate) / float64(fftSize)
	erbLow := freq2erb(0)
	erbHigh := freq2erb(nyqFreq)
	step := (erbHigh - erbLow) / float64(nbBands)

	widths := make([]int, nbBands)
	prevFreq := 0
	freqOver := 0
	for idx := range widths {
		f := erb2freq(erbLow + float64(idx+1)*step)
		fb := int(math.Round(f / freqWidth))
		nbFreqs := fb - prevFreq - freqOver
		if nbFreqs < minNbFreqs {
			// the band is too narrow, borrow bins from the next one
			freqOver = minNbFreqs - nbFreqs
			nbFreqs = minNbFreqs
		} else {
			freqOver = 0
		}
		widths[idx] = nbFreqs
		prevFreq = fb
	}

	// the Nyquist bin
	widths[nbBands-1]++

	var total int
	for _, w := range widths {
		total += w
	}
	widths[nbBands-1] -= total - (fftSize/2 + 1)
	return widths
}

// BandPowers computes the mean power of the bins of every band.
func BandPowers(frame []complex64, widths []int, output []float32) {
	bin := 0
	for band, width := range widths {
		var sum float32
		for _, c := range frame[bin : bin+width] {
			sum += real(c)*real(c) + imag(c)*imag(c)
		}
		output[band] = sum / float32(width)
		bin += width
	}
}

// ExpandBands spreads a per-band value over all bins of the band.
func ExpandBands(bands []float32, widths []int, output []float32) {
	bin := 0
	for band, width := range widths {
		for idx := bin; idx < bin+width; idx++ {
			output[idx] = bands[band]
		}
		bin += width
	}
}

// ERB computes the band powers of every frame, in decibels if db is set.
// The result is indexed as [channel][frame][band].
func ERB(spec Spectrogram, widths []int, db bool) [][][]float32 {
	result := make([][][]float32, len(spec))
	for ch, frames := range spec {
		result[ch] = make([][]float32, len(frames))
		for t, frame := range frames {
			bands := make([]float32, len(widths))
			BandPowers(frame, widths, bands)
			if db {
				for idx, v := range bands {
					bands[idx] = float32(10 * math.Log10(float64(v)+1e-10))
				}
			}
			result[ch][t] = bands
		}
	}
	return result
}
