//go:build !rnnoise
// +build !rnnoise

package rnnoise

import (
	"fmt"

	"github.com/xaionaro-go/dfenhance/pkg/dfstate"
	"github.com/xaionaro-go/dfenhance/pkg/noisesuppression"
)

const Supported = false

type RNNoise = noisesuppression.Dummy

func New(
	state *dfstate.State,
) (*RNNoise, error) {
	return nil, fmt.Errorf("built without tag 'rnnoise'")
}
