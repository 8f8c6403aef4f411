package rnnoise

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/dfenhance/pkg/config"
	"github.com/xaionaro-go/dfenhance/pkg/dfstate"
	"github.com/xaionaro-go/dfenhance/pkg/noisesuppression"
)

func TestFactory(t *testing.T) {
	ctx := context.Background()
	f, ok := noisesuppression.FactoryByName(Name)
	require.True(t, ok)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.ini"), false)
	require.NoError(t, err)
	params := noisesuppression.OpenParams{Config: cfg}
	assert.False(t, f.Detect(ctx, params))

	cfg.Set(Section, "enabled", true)
	assert.Equal(t, Supported, f.Detect(ctx, params))

	_, err = f.New(ctx, params)
	assert.Error(t, err)
}

func TestNewSampleRate(t *testing.T) {
	state, err := dfstate.New(16000, 320, 160, 16, 2)
	require.NoError(t, err)
	_, err = New(state)
	assert.Error(t, err)

	state, err = dfstate.New(SampleRate, 960, 480, 32, 2)
	require.NoError(t, err)
	ns, err := New(state)
	if !Supported {
		assert.Error(t, err)
		return
	}
	require.NoError(t, err)
	require.NoError(t, ns.Close())
}
