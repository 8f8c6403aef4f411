//go:build fvad
// +build fvad

package fvad

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	ctx := context.Background()
	v, err := New(48000, ModeAggressive)
	require.NoError(t, err)
	defer v.Close()

	for range 3 {
		result, err := v.Classify(ctx, make([]float32, 480*10+100), 480)
		require.NoError(t, err)
		require.Len(t, result, 10)
		for idx, isVoice := range result {
			assert.False(t, isVoice, "silence is voice at frame %d", idx)
		}
	}

	_, err = v.Classify(ctx, make([]float32, 1000), 500)
	assert.Error(t, err)
}

func TestNewInvalid(t *testing.T) {
	_, err := New(44100, ModeAggressive)
	assert.Error(t, err)
	_, err = New(48000, Mode(7))
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	v, err := New(16000, ModeQuality)
	require.NoError(t, err)
	require.NoError(t, v.Close())
	assert.Error(t, v.Close())

	_, err = v.Classify(context.Background(), make([]float32, 160), 160)
	assert.Error(t, err)
}
