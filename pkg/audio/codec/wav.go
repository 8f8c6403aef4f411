package codec

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/facebookincubator/go-belt/tool/logger"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/xaionaro-go/datacounter"
	"github.com/xaionaro-go/dfenhance/pkg/audio"
	"github.com/xaionaro-go/dfenhance/pkg/audio/planar"
)

const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	outputBitDepth      = 16
	outputScale         = 1 << 15
	outputSampleMinimum = math.MinInt16
	outputSampleMaximum = math.MaxInt16
)

func loadWAV(path string) (*audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open '%s': %w", path, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("'%s' is not a valid WAV file", path)
	}

	intBuf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("unable to read the PCM data of '%s': %w", path, err)
	}
	if intBuf.Format == nil || intBuf.Format.NumChannels <= 0 {
		return nil, fmt.Errorf("'%s' has no channels", path)
	}

	toFloat, err := sampleConverter(int(decoder.WavAudioFormat), intBuf.SourceBitDepth)
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", path, err)
	}

	interleaved := make([]float32, len(intBuf.Data))
	for idx, v := range intBuf.Data {
		interleaved[idx] = toFloat(v)
	}

	samples, err := planar.Planarize(audio.Channel(intBuf.Format.NumChannels), interleaved)
	if err != nil {
		return nil, fmt.Errorf("unable to planarize the samples of '%s': %w", path, err)
	}

	return &audio.Buffer{
		SampleRate: audio.SampleRate(intBuf.Format.SampleRate),
		Samples:    samples,
	}, nil
}

func sampleConverter(wavFormat int, bitDepth int) (func(int) float32, error) {
	if wavFormat == wavFormatIEEEFloat {
		if bitDepth != 32 {
			return nil, fmt.Errorf("unsupported float bit depth: %d", bitDepth)
		}
		return func(v int) float32 {
			return math.Float32frombits(uint32(v))
		}, nil
	}

	switch bitDepth {
	case 8:
		return func(v int) float32 {
			return (float32(v) - 128) / 128
		}, nil
	case 16, 24, 32:
		scale := float32(int64(1) << (bitDepth - 1))
		return func(v int) float32 {
			return float32(v) / scale
		}, nil
	default:
		return nil, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}
}

// countingWriteSeeker passes writes through a byte counter and seeks to
// the underlying file, since the WAV encoder patches the header on Close.
type countingWriteSeeker struct {
	*datacounter.WriterCounter
	Seeker io.Seeker
}

func (w countingWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	return w.Seeker.Seek(offset, whence)
}

// SaveWAV writes the buffer as 16-bit PCM WAV and returns the amount of
// bytes written. Samples outside of [-1, 1) are clamped.
func SaveWAV(
	ctx context.Context,
	path string,
	buf *audio.Buffer,
) (_ret int64, _err error) {
	logger.Tracef(ctx, "SaveWAV: '%s'", path)
	defer func() { logger.Tracef(ctx, "/SaveWAV: '%s': %d %v", path, _ret, _err) }()

	if err := buf.Validate(); err != nil {
		return 0, fmt.Errorf("invalid audio buffer: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("unable to create '%s': %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil && _err == nil {
			_err = fmt.Errorf("unable to close '%s': %w", path, err)
		}
	}()

	w := countingWriteSeeker{
		WriterCounter: datacounter.NewWriterCounter(f),
		Seeker:        f,
	}

	interleaved, err := planar.Unplanarize(buf.Samples)
	if err != nil {
		return 0, fmt.Errorf("unable to interleave the samples: %w", err)
	}
	data := make([]int, len(interleaved))
	for idx, v := range interleaved {
		data[idx] = quantize(v)
	}

	encoder := wav.NewEncoder(w, int(buf.SampleRate), outputBitDepth, int(buf.Channels()), wavFormatPCM)
	err = encoder.Write(&goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: int(buf.Channels()),
			SampleRate:  int(buf.SampleRate),
		},
		Data:           data,
		SourceBitDepth: outputBitDepth,
	})
	if err != nil {
		return int64(w.Count()), fmt.Errorf("unable to write the samples to '%s': %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		return int64(w.Count()), fmt.Errorf("unable to finalize '%s': %w", path, err)
	}

	return int64(w.Count()), nil
}

func quantize(v float32) int {
	s := math.Round(float64(v) * outputScale)
	switch {
	case s > outputSampleMaximum:
		return outputSampleMaximum
	case s < outputSampleMinimum:
		return outputSampleMinimum
	}
	return int(s)
}
