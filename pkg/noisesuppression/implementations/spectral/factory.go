package spectral

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
	return params.Config != nil && params.Config.HasSection(Section)
}

func (factory) New(ctx context.Context, params noisesuppression.OpenParams) (noisesuppression.NoiseSuppression, error) {
	if params.State == nil {
		return nil, fmt.Errorf("DF state is not set")
	}
	p := DefaultParams()
	if params.Config != nil {
		var err error
		p, err = ParamsFromConfig(params.Config)
		if err != nil {
			return nil, fmt.Errorf("unable to read the parameters: %w", err)
		}
	}
	return New(ctx, params.State, p)
}

func init() {
	noisesuppression.RegisterFactory(10, factory{})
}
