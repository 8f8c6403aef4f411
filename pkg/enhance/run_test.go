package enhance

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/dfenhance/pkg/audio"
	"github.com/xaionaro-go/dfenhance/pkg/audio/codec"
)

func writeModelDir(t *testing.T, name, cfg string) string {
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, CheckpointDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(cfg), 0o644))
	return dir
}

func writeNoisy(t *testing.T, name string, buf *audio.Buffer) string {
	path := filepath.Join(t.TempDir(), name)
	_, err := codec.SaveWAV(context.Background(), path, buf)
	require.NoError(t, err)
	return path
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	modelDir := writeModelDir(t, "SpectralModel", testConfig+"\n[spectral]\nfloor = 0.1\n")
	outputDir := filepath.Join(t.TempDir(), "enhanced")
	reportPath := filepath.Join(t.TempDir(), "report.yaml")
	files := []string{
		writeNoisy(t, "a.wav", sine(48000, 1, 4800)),
		writeNoisy(t, "b.wav", sine(16000, 2, 1600)),
	}

	report, err := Run(ctx, Options{
		ModelBaseDir:    modelDir,
		OutputDir:       outputDir,
		PostFilter:      true,
		CompensateDelay: true,
		MeasureDelay:    true,
		ReportPath:      reportPath,
		Files:           files,
	})
	require.NoError(t, err)
	assert.Equal(t, "spectral", report.Backend)
	assert.Equal(t, "SpectralModel_pf", report.Suffix)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Files, 2)

	a, err := codec.Load(ctx, filepath.Join(outputDir, "a_SpectralModel_pf.wav"))
	require.NoError(t, err)
	assert.Equal(t, audio.Channel(1), a.Channels())
	assert.Equal(t, 4800, a.Len())

	b, err := codec.Load(ctx, filepath.Join(outputDir, "b_SpectralModel_pf.wav"))
	require.NoError(t, err)
	assert.Equal(t, audio.Channel(2), b.Channels())
	assert.Equal(t, audio.SampleRate(48000), b.SampleRate)
	assert.Equal(t, 4800, b.Len())
	assert.Equal(t, uint32(16000), report.Files[1].InputSampleRate)
	for _, f := range report.Files {
		assert.Greater(t, f.DelayConfidence, 0.0, f.Input)
	}

	written, err := ReadReport(reportPath)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, written.RunID)
	assert.Equal(t, report.Files, written.Files)
}

func TestRunBackendByName(t *testing.T) {
	ctx := context.Background()
	modelDir := writeModelDir(t, "Model", testConfig)
	outputDir := t.TempDir()

	report, err := Run(ctx, Options{
		ModelBaseDir: modelDir,
		OutputDir:    outputDir,
		Backend:      "dummy",
		Files:        []string{writeNoisy(t, "a.wav", sine(48000, 1, 960))},
	})
	require.NoError(t, err)
	assert.Equal(t, "dummy", report.Backend)
	assert.FileExists(t, filepath.Join(outputDir, "a_Model.wav"))
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingBaseDir", func(t *testing.T) {
		_, err := Run(ctx, Options{ModelBaseDir: filepath.Join(t.TempDir(), "missing")})
		assert.ErrorIs(t, err, ErrBaseDirNotFound)
	})

	t.Run("MissingConfig", func(t *testing.T) {
		_, err := Run(ctx, Options{ModelBaseDir: t.TempDir()})
		assert.Error(t, err)
	})

	t.Run("NoBackendDetected", func(t *testing.T) {
		_, err := Run(ctx, Options{ModelBaseDir: writeModelDir(t, "Model", testConfig)})
		assert.Error(t, err)
	})

	t.Run("MissingInput", func(t *testing.T) {
		_, err := Run(ctx, Options{
			ModelBaseDir: writeModelDir(t, "Model", testConfig),
			OutputDir:    t.TempDir(),
			Backend:      "dummy",
			Files:        []string{filepath.Join(t.TempDir(), "missing.wav")},
		})
		assert.Error(t, err)
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		report, err := Run(ctx, Options{
			ModelBaseDir: writeModelDir(t, "Model", testConfig),
			OutputDir:    t.TempDir(),
			Backend:      "dummy",
			Files:        []string{writeNoisy(t, "a.wav", sine(48000, 1, 960))},
		})
		assert.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, report)
		assert.Empty(t, report.Files)
	})
}
