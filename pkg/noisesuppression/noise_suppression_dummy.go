package noisesuppression

import (
	"context"

	"github.com/xaionaro-go/dfenhance/pkg/audio"
	"github.com/xaionaro-go/dfenhance/pkg/dfstate"
)

// Dummy returns the noisy spectrogram as is.
type Dummy struct {
	EncodingValue audio.Encoding
	ChannelsValue audio.Channel
}

var _ NoiseSuppression = (*Dummy)(nil)

func NewDummy(
	encoding audio.Encoding,
	channels audio.Channel,
) *Dummy {
	return &Dummy{
		EncodingValue: encoding,
		ChannelsValue: channels,
	}
}

func (s *Dummy) Close() error {
	return nil
}

func (s *Dummy) Encoding(context.Context) (audio.Encoding, error) {
	return s.EncodingValue, nil
}

func (s *Dummy) Channels(context.Context) (audio.Channel, error) {
	return s.ChannelsValue, nil
}

func (s *Dummy) ResetState(_ context.Context, channels audio.Channel) error {
	s.ChannelsValue = channels
	return nil
}

func (*Dummy) SuppressNoise(_ context.Context, features *dfstate.Features) (dfstate.Spectrogram, error) {
	return features.Spec.Clone(), nil
}

type dummyFactory struct{}

func (dummyFactory) Name() string {
	return "dummy"
}

func (dummyFactory) Detect(context.Context, OpenParams) bool {
	return false
}

func (dummyFactory) New(_ context.Context, params OpenParams) (NoiseSuppression, error) {
	return NewDummy(params.Encoding(), 0), nil
}

func init() {
	RegisterFactory(-1000, dummyFactory{})
}
