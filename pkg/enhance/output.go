package enhance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/dfenhance/pkg/audio"
	"github.com/xaionaro-go/dfenhance/pkg/audio/codec"
)

const (
	ConfigFileName = "config.ini"
	LogFileName    = "enhance.log"
	CheckpointDir  = "checkpoints"
)

var ErrBaseDirNotFound = errors.New("Base directory not found")

// DefaultModelDir is the pretrained model shipped next to the executable.
func DefaultModelDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("unable to get the path of the executable: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), "..", "pretrained_models", "DeepFilterNet"), nil
}

// ResolveModelDir returns the model base directory; an empty dir means
// DefaultModelDir. It fails with ErrBaseDirNotFound if the directory
// does not exist.
func ResolveModelDir(ctx context.Context, dir string) (string, error) {
	if dir == "" {
		var err error
		dir, err = DefaultModelDir()
		if err != nil {
			return "", err
		}
		logger.Infof(ctx, "Using default model at %s", dir)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w at %s", ErrBaseDirNotFound, dir)
	}
	return dir, nil
}

// Suffix is appended to the names of the enhanced files: the name of the
// model directory, plus "_pf" if the post filter is enabled.
func Suffix(modelDir string, postFilter bool) string {
	if abs, err := filepath.Abs(modelDir); err == nil {
		modelDir = abs
	}
	suffix := filepath.Base(modelDir)
	if postFilter {
		suffix += "_pf"
	}
	return suffix
}

// OutputPath returns where the enhanced version of file is saved:
// "<name>_<suffix>.wav", in outputDir if it is not empty, otherwise next
// to file. Only WAV is written, so other extensions are replaced.
func OutputPath(file, outputDir, suffix string) string {
	ext := filepath.Ext(file)
	stem := strings.TrimSuffix(file, ext)
	if codec.FormatFromPath(file) != codec.FormatWAV {
		ext = ".wav"
	}
	outPath := stem
	if suffix != "" {
		outPath += "_" + suffix
	}
	outPath += ext
	if outputDir != "" {
		outPath = filepath.Join(outputDir, filepath.Base(outPath))
	}
	return outPath
}

// SaveAudio writes buf as 16-bit PCM to OutputPath and returns the path
// and the amount of bytes written.
func SaveAudio(
	ctx context.Context,
	file string,
	buf *audio.Buffer,
	outputDir string,
	suffix string,
) (string, int64, error) {
	outPath := OutputPath(file, outputDir, suffix)
	logger.Infof(ctx, "Saving audio file '%s'", outPath)
	n, err := codec.SaveWAV(ctx, outPath, buf)
	if err != nil {
		return outPath, n, fmt.Errorf("unable to save '%s': %w", outPath, err)
	}
	return outPath, n, nil
}
