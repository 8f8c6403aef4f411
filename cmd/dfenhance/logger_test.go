package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "enhance.log")

	l, closer, err := newLogger(logger.LevelInfo, true, logPath)
	require.NoError(t, err)
	l.Infof("Model loaded")
	l.Debugf("hidden")
	l.Flush()
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Model loaded")
	assert.NotContains(t, string(b), "hidden")

	disabledPath := filepath.Join(t.TempDir(), "disabled.log")
	l, closer, err = newLogger(logger.LevelInfo, false, disabledPath)
	require.NoError(t, err)
	l.Infof("Model loaded")
	require.NoError(t, closer.Close())
	assert.NoFileExists(t, disabledPath)

	_, _, err = newLogger(logger.LevelInfo, true, filepath.Join(t.TempDir(), "missing", "enhance.log"))
	assert.Error(t, err)
}
