package dfstate

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomSignal(seed int64, length int) []float32 {
	rng := rand.New(rand.NewSource(seed))
	s := make([]float32, length)
	for idx := range s {
		s[idx] = float32(rng.Float64()*2 - 1)
	}
	return s
}

func TestNew(t *testing.T) {
	s, err := New(48000, 960, 480, 32, 2)
	require.NoError(t, err)
	assert.Equal(t, 481, s.FreqSize())
	assert.Equal(t, 480, s.Delay())
	assert.Len(t, s.Window, 960)
	assert.InDelta(t, 2*480.0/(960*960), s.WNorm, 1e-9)

	for _, args := range [][5]int{
		{0, 960, 480, 32, 2},
		{48000, 961, 480, 32, 2},
		{48000, 960, 0, 32, 2},
		{48000, 960, 1000, 32, 2},
		{48000, 960, 480, 0, 2},
		{48000, 960, 480, 300, 2},
	} {
		_, err := New(args[0], args[1], args[2], args[3], args[4])
		assert.Error(t, err, "%v", args)
	}
}

func TestVorbisWindowPowerComplementary(t *testing.T) {
	w := vorbisWindow(960)
	for idx := 0; idx < 480; idx++ {
		sum := w[idx]*w[idx] + w[idx+480]*w[idx+480]
		assert.InDelta(t, 1, sum, 1e-5, "idx:%d", idx)
	}
}

func TestAnalysisSynthesisReconstruction(t *testing.T) {
	for _, tc := range []struct {
		name    string
		fftSize int
		hopSize int
	}{
		{"DeepFilterNet_960_480", 960, 480},
		{"PowerOfTwo_512_256", 512, 256},
		{"PowerOfTwo_512_128", 512, 128},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(48000, tc.fftSize, tc.hopSize, 16, 2)
			require.NoError(t, err)

			input := randomSignal(1, tc.hopSize*40)
			spec := s.Analysis([][]float32{input})
			require.Equal(t, 40, spec.Frames())
			require.Equal(t, s.FreqSize(), spec.Bins())

			output := s.Synthesis(spec)
			require.Len(t, output[0], len(input))

			d := s.Delay()
			for idx := d; idx < len(output[0]); idx++ {
				require.InDelta(t, input[idx-d], output[0][idx], 1e-4, "idx:%d", idx)
			}
		})
	}
}

func TestAnalysisFrameCount(t *testing.T) {
	s, err := New(16000, 320, 160, 8, 2)
	require.NoError(t, err)
	spec := s.Analysis([][]float32{make([]float32, 1000), make([]float32, 1000)})
	assert.Equal(t, 2, spec.Channels())
	assert.Equal(t, 6, spec.Frames())
	assert.Equal(t, 161, spec.Bins())

	spec = s.Analysis([][]float32{make([]float32, 1000), make([]float32, 500)})
	assert.Equal(t, 3, spec.Frames())
	assert.Len(t, spec[0], 3)

	assert.Equal(t, NewSpectrogram(0, 0, 0), s.Analysis(nil))
}

func TestAnalysisIsolatedChannels(t *testing.T) {
	s, err := New(48000, 960, 480, 32, 2)
	require.NoError(t, err)
	signal := randomSignal(2, 480*10)

	a := s.Analysis([][]float32{signal})
	b := s.Analysis([][]float32{randomSignal(3, 480*10), signal})
	assert.Equal(t, a[0], b[1])
}

func TestStreamingMatchesWholeSignal(t *testing.T) {
	s, err := New(48000, 960, 480, 32, 2)
	require.NoError(t, err)
	signal := randomSignal(4, 480*8)
	whole := s.Analysis([][]float32{signal})

	c := s.NewChannelState()
	frame := make([]complex64, s.FreqSize())
	for tIdx := 0; tIdx < 8; tIdx++ {
		c.AnalysisFrame(signal[tIdx*480:(tIdx+1)*480], frame)
		assert.Equal(t, whole[0][tIdx], frame)
	}

	c.Reset()
	c.AnalysisFrame(signal[:480], frame)
	assert.Equal(t, whole[0][0], frame)
}

func TestSpectrumOfSine(t *testing.T) {
	s, err := New(48000, 960, 480, 32, 2)
	require.NoError(t, err)

	const bin = 20 // 1 kHz
	signal := make([]float32, 480*10)
	for idx := range signal {
		signal[idx] = float32(math.Sin(2 * math.Pi * bin * float64(idx) / 960))
	}
	spec := s.Analysis([][]float32{signal})
	frame := spec[0][5]

	peak := 0
	for idx, c := range frame {
		if abs2(c) > abs2(frame[peak]) {
			peak = idx
		}
	}
	assert.Equal(t, bin, peak)
}

func abs2(c complex64) float32 {
	return real(c)*real(c) + imag(c)*imag(c)
}

func BenchmarkAnalysisSynthesis(b *testing.B) {
	s, err := New(48000, 960, 480, 32, 2)
	require.NoError(b, err)
	signal := [][]float32{randomSignal(5, 48000)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Synthesis(s.Analysis(signal))
	}
}
