package noisesuppression

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/dfenhance/pkg/config"
	"github.com/xaionaro-go/dfenhance/pkg/dfstate"
)

type testFactory struct {
	name   string
	detect bool
	err    error
}

func (f testFactory) Name() string {
	return f.name
}

func (f testFactory) Detect(context.Context, OpenParams) bool {
	return f.detect
}

func (f testFactory) New(_ context.Context, params OpenParams) (NoiseSuppression, error) {
	if f.err != nil {
		return nil, f.err
	}
	return NewDummy(params.Encoding(), 0), nil
}

func withRegistry(t *testing.T, factories map[int]Factory) {
	factoryRegistryLocker.Lock()
	saved := factoryRegistry
	factoryRegistry = map[string]factoryWithPriority{}
	factoryRegistryLocker.Unlock()
	t.Cleanup(func() {
		factoryRegistryLocker.Lock()
		factoryRegistry = saved
		factoryRegistryLocker.Unlock()
	})
	for priority, f := range factories {
		RegisterFactory(priority, f)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	params := OpenParams{ModelParams: config.ModelParams{SampleRate: 48000}}

	t.Run("DummyByName", func(t *testing.T) {
		ns, name, err := Open(ctx, "dummy", params)
		require.NoError(t, err)
		assert.Equal(t, "dummy", name)
		require.IsType(t, &Dummy{}, ns)

		require.NoError(t, ns.ResetState(ctx, 2))
		channels, err := ns.Channels(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, channels)

		spec := dfstate.Spectrogram{{{1, 2}}}
		out, err := ns.SuppressNoise(ctx, &dfstate.Features{Spec: spec})
		require.NoError(t, err)
		assert.Equal(t, spec, out)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, _, err := Open(ctx, "no-such-backend", params)
		assert.Error(t, err)
	})

	t.Run("AutoPriority", func(t *testing.T) {
		withRegistry(t, map[int]Factory{
			10: testFactory{name: "low", detect: true},
			20: testFactory{name: "high", detect: true, err: fmt.Errorf("broken")},
			30: testFactory{name: "undetected", detect: false},
		})
		assert.Equal(t, []string{"undetected", "high", "low"}, factoryNames())

		_, name, err := Open(ctx, BackendAuto, params)
		require.NoError(t, err)
		assert.Equal(t, "low", name)
	})

	t.Run("AutoNothingDetected", func(t *testing.T) {
		withRegistry(t, map[int]Factory{
			10: testFactory{name: "undetected"},
		})
		_, _, err := Open(ctx, BackendAuto, params)
		assert.Error(t, err)
	})

	t.Run("AutoAllFailed", func(t *testing.T) {
		withRegistry(t, map[int]Factory{
			10: testFactory{name: "broken", detect: true, err: fmt.Errorf("broken")},
		})
		_, _, err := Open(ctx, BackendAuto, params)
		assert.ErrorContains(t, err, "broken")
	})

	t.Run("DuplicateName", func(t *testing.T) {
		withRegistry(t, map[int]Factory{
			10: testFactory{name: "same"},
		})
		assert.Panics(t, func() {
			RegisterFactory(20, testFactory{name: "same"})
		})
	})
}

func factoryNames() []string {
	var names []string
	for _, f := range Factories() {
		names = append(names, f.Name())
	}
	return names
}
