// Package dfstate implements the STFT analysis/synthesis and ERB feature
// extraction used by DeepFilterNet-style speech enhancement models.
//
// Analysis uses a Vorbis window over fftSize samples with a hop of
// hopSize samples; analysis followed by synthesis reconstructs the
// input delayed by fftSize-hopSize samples.
package dfstate

import (
	"fmt"
	"math"
)

// Spectrogram is indexed as [channel][frame][bin].
type Spectrogram [][][]complex64

func NewSpectrogram(channels, frames, bins int) Spectrogram {
	spec := make(Spectrogram, channels)
	for ch := range spec {
		spec[ch] = make([][]complex64, frames)
		for t := range spec[ch] {
			spec[ch][t] = make([]complex64, bins)
		}
	}
	return spec
}

func (s Spectrogram) Channels() int {
	return len(s)
}

func (s Spectrogram) Frames() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

func (s Spectrogram) Bins() int {
	if len(s) == 0 || len(s[0]) == 0 {
		return 0
	}
	return len(s[0][0])
}

func (s Spectrogram) Clone() Spectrogram {
	result := make(Spectrogram, len(s))
	for ch := range s {
		result[ch] = make([][]complex64, len(s[ch]))
		for t := range s[ch] {
			result[ch][t] = append([]complex64(nil), s[ch][t]...)
		}
	}
	return result
}

// State holds the immutable DSP configuration. It is safe for
// concurrent use; per-channel streaming memory lives in ChannelState.
type State struct {
	SampleRate    int
	FFTSize       int
	HopSize       int
	NbBands       int
	MinNbERBFreqs int

	Window []float32
	WNorm  float32

	erbWidths []int
	fft       realFFT
}

func New(
	sampleRate int,
	fftSize int,
	hopSize int,
	nbBands int,
	minNbERBFreqs int,
) (*State, error) {
	switch {
	case sampleRate <= 0:
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	case fftSize <= 0 || fftSize%2 != 0:
		return nil, fmt.Errorf("FFT size must be positive and even, got %d", fftSize)
	case hopSize <= 0 || hopSize > fftSize:
		return nil, fmt.Errorf("hop size must be within (0, %d], got %d", fftSize, hopSize)
	case nbBands <= 0 || minNbERBFreqs <= 0:
		return nil, fmt.Errorf("amount of bands (%d) and minimal band width (%d) must be positive", nbBands, minNbERBFreqs)
	case nbBands*minNbERBFreqs > fftSize/2+1:
		return nil, fmt.Errorf("%d bands of at least %d bins do not fit into %d bins", nbBands, minNbERBFreqs, fftSize/2+1)
	}

	s := &State{
		SampleRate:    sampleRate,
		FFTSize:       fftSize,
		HopSize:       hopSize,
		NbBands:       nbBands,
		MinNbERBFreqs: minNbERBFreqs,
		Window:        vorbisWindow(fftSize),
		WNorm:         float32(2 * float64(hopSize) / (float64(fftSize) * float64(fftSize))),
		fft:           newRealFFT(fftSize),
	}
	s.erbWidths = erbWidths(sampleRate, fftSize, nbBands, minNbERBFreqs)
	return s, nil
}

func vorbisWindow(size int) []float32 {
	window := make([]float32, size)
	halfSize := float64(size / 2)
	for idx := range window {
		sin := math.Sin(0.5 * math.Pi * (float64(idx) + 0.5) / halfSize)
		window[idx] = float32(math.Sin(0.5 * math.Pi * sin * sin))
	}
	return window
}

// FreqSize is the amount of frequency bins of one frame.
func (s *State) FreqSize() int {
	return s.FFTSize/2 + 1
}

// Delay is the amount of samples the analysis-synthesis loop delays
// the signal by.
func (s *State) Delay() int {
	return s.FFTSize - s.HopSize
}

// ERBWidths returns the amount of frequency bins in every ERB band.
func (s *State) ERBWidths() []int {
	return append([]int(nil), s.erbWidths...)
}

// ChannelState is the streaming memory of a single channel.
type ChannelState struct {
	*State

	analysisMem  []float32
	synthesisMem []float32
	frame        []float32
	scratch      []complex128
}

func (s *State) NewChannelState() *ChannelState {
	return &ChannelState{
		State:        s,
		analysisMem:  make([]float32, s.FFTSize-s.HopSize),
		synthesisMem: make([]float32, s.FFTSize-s.HopSize),
		frame:        make([]float32, s.FFTSize),
		scratch:      make([]complex128, s.FFTSize),
	}
}

// Reset clears the streaming memory, as if no frame was processed yet.
func (c *ChannelState) Reset() {
	clear(c.analysisMem)
	clear(c.synthesisMem)
}

// AnalysisFrame consumes HopSize samples and produces FreqSize bins.
func (c *ChannelState) AnalysisFrame(input []float32, output []complex64) {
	if len(input) != c.HopSize {
		panic(fmt.Errorf("expected %d samples, got %d", c.HopSize, len(input)))
	}
	if len(output) != c.FreqSize() {
		panic(fmt.Errorf("expected %d bins, got %d", c.FreqSize(), len(output)))
	}

	memLen := len(c.analysisMem)
	for idx, v := range c.analysisMem {
		c.frame[idx] = v * c.Window[idx]
	}
	for idx, v := range input {
		c.frame[memLen+idx] = v * c.Window[memLen+idx]
	}

	if memLen > 0 {
		split := memLen - c.HopSize
		if split > 0 {
			copy(c.analysisMem, c.analysisMem[c.HopSize:])
			copy(c.analysisMem[split:], input)
		} else {
			copy(c.analysisMem, input[c.HopSize-memLen:])
		}
	}

	c.fft.Forward(c.frame, output, c.WNorm, c.scratch)
}

// SynthesisFrame consumes FreqSize bins and produces HopSize samples.
func (c *ChannelState) SynthesisFrame(input []complex64, output []float32) {
	if len(input) != c.FreqSize() {
		panic(fmt.Errorf("expected %d bins, got %d", c.FreqSize(), len(input)))
	}
	if len(output) != c.HopSize {
		panic(fmt.Errorf("expected %d samples, got %d", c.HopSize, len(output)))
	}

	c.fft.Inverse(input, c.frame, c.scratch)
	for idx := range c.frame {
		c.frame[idx] *= c.Window[idx]
	}

	memLen := len(c.synthesisMem)
	for idx := range output {
		output[idx] = c.frame[idx]
		if idx < memLen {
			output[idx] += c.synthesisMem[idx]
		}
	}

	if memLen == 0 {
		return
	}
	tail := c.frame[c.HopSize:]
	split := memLen - c.HopSize
	if split > 0 {
		copy(c.synthesisMem, c.synthesisMem[c.HopSize:])
		for idx := 0; idx < split; idx++ {
			c.synthesisMem[idx] += tail[idx]
		}
		copy(c.synthesisMem[split:], tail[split:])
	} else {
		copy(c.synthesisMem, tail)
	}
}

// Analysis computes the spectrogram of every channel with fresh
// streaming memory. Every channel yields len/HopSize frames of the
// shortest channel; trailing samples which do not form a full hop are
// ignored.
func (s *State) Analysis(samples [][]float32) Spectrogram {
	frames := 0
	for ch, channelSamples := range samples {
		if ch == 0 || len(channelSamples)/s.HopSize < frames {
			frames = len(channelSamples) / s.HopSize
		}
	}
	spec := NewSpectrogram(len(samples), frames, s.FreqSize())
	c := s.NewChannelState()
	for ch, channelSamples := range samples {
		c.Reset()
		for t := range spec[ch] {
			c.AnalysisFrame(channelSamples[t*s.HopSize:(t+1)*s.HopSize], spec[ch][t])
		}
	}
	return spec
}

// Synthesis converts the spectrogram back to HopSize samples per frame
// with fresh streaming memory for every channel.
func (s *State) Synthesis(spec Spectrogram) [][]float32 {
	result := make([][]float32, len(spec))
	c := s.NewChannelState()
	for ch, frames := range spec {
		c.Reset()
		result[ch] = make([]float32, len(frames)*s.HopSize)
		for t, frame := range frames {
			c.SynthesisFrame(frame, result[ch][t*s.HopSize:(t+1)*s.HopSize])
		}
	}
	return result
}
