package codec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/dfenhance/pkg/audio"
)

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatWAV, FormatFromPath("/a/b.wav"))
	assert.Equal(t, FormatWAV, FormatFromPath("B.WAV"))
	assert.Equal(t, FormatOggVorbis, FormatFromPath("c.ogg"))
	assert.Equal(t, FormatUndefined, FormatFromPath("d.mp3"))
	assert.Equal(t, FormatUndefined, FormatFromPath("noext"))
}

func TestSaveLoadWAV(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stereo.wav")

	in := &audio.Buffer{
		SampleRate: 16000,
		Samples: [][]float32{
			{0, 0.5, -0.5, 0.25, 1.5},
			{0.125, -0.25, 0.75, -1, -2},
		},
	}
	n, err := SaveWAV(ctx, path, in)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(44+2*5*2))

	stat, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(44+2*5*2), stat.Size())

	out, err := Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, audio.SampleRate(16000), out.SampleRate)
	assert.Equal(t, audio.Channel(2), out.Channels())
	require.Equal(t, 5, out.Len())

	const eps = 1.0 / 32768
	for ch := range in.Samples {
		for idx, v := range in.Samples[ch][:4] {
			assert.InDelta(t, v, out.Samples[ch][idx], eps, "ch:%d idx:%d", ch, idx)
		}
	}
	// clamped
	assert.InDelta(t, 32767.0/32768, out.Samples[0][4], eps)
	assert.InDelta(t, -1, out.Samples[1][4], eps)
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := Load(ctx, filepath.Join(dir, "file.mp3"))
	assert.Error(t, err)

	_, err = Load(ctx, filepath.Join(dir, "missing.wav"))
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.wav")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not a RIFF file"), 0640))
	_, err = Load(ctx, garbage)
	assert.Error(t, err)
}

func TestSampleConverter(t *testing.T) {
	conv, err := sampleConverter(wavFormatPCM, 8)
	require.NoError(t, err)
	assert.Equal(t, float32(0), conv(128))
	assert.Equal(t, float32(-1), conv(0))

	conv, err = sampleConverter(wavFormatPCM, 24)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), conv(1<<22))

	conv, err = sampleConverter(wavFormatIEEEFloat, 32)
	require.NoError(t, err)
	assert.Equal(t, float32(0.25), conv(0x3e800000))

	_, err = sampleConverter(wavFormatPCM, 12)
	assert.Error(t, err)
	_, err = sampleConverter(wavFormatIEEEFloat, 64)
	assert.Error(t, err)
}

func TestQuantize(t *testing.T) {
	assert.Equal(t, 0, quantize(0))
	assert.Equal(t, 16384, quantize(0.5))
	assert.Equal(t, 32767, quantize(1))
	assert.Equal(t, -32768, quantize(-1))
	assert.Equal(t, -32768, quantize(-3))
}
