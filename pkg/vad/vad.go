package vad

import (
	"context"

	"github.com/xaionaro-go/dfenhance/pkg/audio"
)

type VAD interface {
	audio.AbstractAnalyzer

	// Classify splits samples into frames of frameSize samples and
	// returns whether each full frame contains voice. Trailing samples
	// which do not form a full frame are ignored.
	Classify(
		ctx context.Context,
		samples []float32,
		frameSize int,
	) ([]bool, error)
}
