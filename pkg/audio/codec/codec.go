// Package codec reads audio files into planar float buffers and writes
// them back as 16-bit PCM WAV.
package codec

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/dfenhance/pkg/audio"
)

type Format uint

const (
	FormatUndefined = Format(iota)
	FormatWAV
	FormatOggVorbis
)

func (f Format) String() string {
	switch f {
	case FormatWAV:
		return "wav"
	case FormatOggVorbis:
		return "ogg"
	default:
		return fmt.Sprintf("unknown_format_%d", uint(f))
	}
}

// FormatFromPath detects the container format by the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return FormatWAV
	case ".ogg", ".oga":
		return FormatOggVorbis
	default:
		return FormatUndefined
	}
}

// Load decodes the whole file.
func Load(
	ctx context.Context,
	path string,
) (_ret *audio.Buffer, _err error) {
	logger.Tracef(ctx, "Load: '%s'", path)
	defer func() { logger.Tracef(ctx, "/Load: '%s': %v", path, _err) }()

	var (
		buf *audio.Buffer
		err error
	)
	switch format := FormatFromPath(path); format {
	case FormatWAV:
		buf, err = loadWAV(path)
	case FormatOggVorbis:
		buf, err = loadOggVorbis(path)
	default:
		return nil, fmt.Errorf("unsupported audio file extension of '%s'", path)
	}
	if err != nil {
		return nil, err
	}
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("decoded audio of '%s' is invalid: %w", path, err)
	}
	logger.Debugf(ctx, "loaded '%s': %d channels, %d Hz, %d samples", path, buf.Channels(), buf.SampleRate, buf.Len())
	return buf, nil
}
