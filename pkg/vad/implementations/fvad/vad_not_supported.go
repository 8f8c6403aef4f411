//go:build !fvad
// +build !fvad

package fvad

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/dfenhance/pkg/audio"
	"github.com/xaionaro-go/dfenhance/pkg/vad"
)

const Available = false

type VAD struct{}

var _ vad.VAD = (*VAD)(nil)

func New(
	sampleRate audio.SampleRate,
	mode Mode,
) (*VAD, error) {
	return nil, fmt.Errorf("built without tag 'fvad'")
}

func (*VAD) Close() error {
	return nil
}

func (*VAD) Encoding(context.Context) (audio.Encoding, error) {
	return nil, fmt.Errorf("built without tag 'fvad'")
}

func (*VAD) Channels(context.Context) (audio.Channel, error) {
	return 0, fmt.Errorf("built without tag 'fvad'")
}

func (*VAD) Classify(context.Context, []float32, int) ([]bool, error) {
	return nil, fmt.Errorf("built without tag 'fvad'")
}
