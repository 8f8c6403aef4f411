package deepfilternet

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/dfenhance/pkg/noisesuppression"
)

type factory struct{}

func (factory) Name() string {
	return Name
}

func (factory) Detect(_ context.Context, params noisesuppression.OpenParams) bool {
	_, err := FindGraphs(params.ModelDir, params.CheckpointDir)
	return err == nil
}

func (factory) New(ctx context.Context, params noisesuppression.OpenParams) (noisesuppression.NoiseSuppression, error) {
	if params.State == nil {
		return nil, fmt.Errorf("DF state is not set")
	}
	graphs, err := FindGraphs(params.ModelDir, params.CheckpointDir)
	if err != nil {
		return nil, err
	}
	p := DefaultParams()
	if params.Config != nil {
		p, err = ParamsFromConfig(params.Config)
		if err != nil {
			return nil, fmt.Errorf("unable to read the parameters: %w", err)
		}
	}
	return New(ctx, params.State, params.ModelParams.NbDF, graphs, p, params.RuntimeLibrary, params.Threads)
}

func init() {
	noisesuppression.RegisterFactory(100, factory{})
}
