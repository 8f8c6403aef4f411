package codec

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jfreymuth/oggvorbis"
	"github.com/xaionaro-go/dfenhance/pkg/audio"
	"github.com/xaionaro-go/dfenhance/pkg/audio/planar"
)

const oggReadChunkSize = 64 * 1024

func loadOggVorbis(path string) (*audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open '%s': %w", path, err)
	}
	defer f.Close()

	oggReader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize a vorbis reader for '%s': %w", path, err)
	}

	channels := oggReader.Channels()
	if channels <= 0 {
		return nil, fmt.Errorf("'%s' has no channels", path)
	}

	var interleaved []float32
	chunk := make([]float32, oggReadChunkSize*channels)
	for {
		n, err := oggReader.Read(chunk)
		interleaved = append(interleaved, chunk[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to decode '%s': %w", path, err)
		}
	}

	samples, err := planar.Planarize(audio.Channel(channels), interleaved)
	if err != nil {
		return nil, fmt.Errorf("unable to planarize the samples of '%s': %w", path, err)
	}

	return &audio.Buffer{
		SampleRate: audio.SampleRate(oggReader.SampleRate()),
		Samples:    samples,
	}, nil
}
