package noisesuppression

import (
	"context"

	"github.com/xaionaro-go/dfenhance/pkg/audio"
	"github.com/xaionaro-go/dfenhance/pkg/dfstate"
)

// NoiseSuppression is a speech enhancement model working in the
// STFT domain: it gets the features of the noisy signal and returns the
// enhanced spectrogram of the same shape as features.Spec.
type NoiseSuppression interface {
	audio.AbstractAnalyzer

	// ResetState drops all the recurrent state and prepares the model
	// to process a signal of the given amount of channels.
	ResetState(ctx context.Context, channels audio.Channel) error

	SuppressNoise(ctx context.Context, features *dfstate.Features) (dfstate.Spectrogram, error)
}
