// Package rnnoise suppresses noise with RNNoise. It requires building
// with tag 'rnnoise' and the library installed.
package rnnoise

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/dfenhance/pkg/noisesuppression"
)

const (
	Name       = "rnnoise"
	Section    = "rnnoise"
	SampleRate = 48000
)

type factory struct{}

func (factory) Name() string {
	return Name
}

func (factory) Detect(_ context.Context, params noisesuppression.OpenParams) bool {
	return Supported && params.Config != nil && params.Config.HasSection(Section)
}

func (factory) New(_ context.Context, params noisesuppression.OpenParams) (noisesuppression.NoiseSuppression, error) {
	if params.State == nil {
		return nil, fmt.Errorf("DF state is not set")
	}
	ns, err := New(params.State)
	if err != nil {
		return nil, err
	}
	return ns, nil
}

func init() {
	noisesuppression.RegisterFactory(50, factory{})
}
