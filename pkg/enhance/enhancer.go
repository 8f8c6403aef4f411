// Package enhance runs a noise suppression model over audio files.
package enhance

import (
	"context"
	"fmt"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/dfenhance/pkg/audio"
	"github.com/xaionaro-go/dfenhance/pkg/audio/codec"
	"github.com/xaionaro-go/dfenhance/pkg/audio/resampler"
	"github.com/xaionaro-go/dfenhance/pkg/config"
	"github.com/xaionaro-go/dfenhance/pkg/dfstate"
	"github.com/xaionaro-go/dfenhance/pkg/noisesuppression"
	"github.com/xaionaro-go/dfenhance/pkg/syncer"
)

type Enhancer struct {
	ModelParams config.ModelParams
	State       *dfstate.State
	Model       noisesuppression.NoiseSuppression

	// Alpha is the decay of the running feature normalization.
	Alpha float32

	// Syncer, if set, measures how much the output lags the input.
	Syncer syncer.Syncer
}

func NewEnhancer(
	modelParams config.ModelParams,
	state *dfstate.State,
	model noisesuppression.NoiseSuppression,
) *Enhancer {
	return &Enhancer{
		ModelParams: modelParams,
		State:       state,
		Model:       model,
		Alpha:       dfstate.NormAlpha(modelParams.SampleRate, modelParams.HopSize, modelParams.NormTau),
	}
}

type Result struct {
	// Audio is the enhanced signal at the model sample rate.
	Audio *audio.Buffer

	InputSampleRate audio.SampleRate
	InputDuration   time.Duration

	// ProcessingTime covers the feature extraction and the inference.
	ProcessingTime time.Duration

	// RTFactor is how many times faster than real time the signal
	// was processed.
	RTFactor float64

	// OutputDelay is how many samples the output lags the input by,
	// measured if Enhancer.Syncer is set.
	OutputDelay     float64
	DelayConfidence float64
}

// Enhance loads the audio file and enhances it, see EnhanceBuffer.
func (e *Enhancer) Enhance(
	ctx context.Context,
	file string,
	pad bool,
) (_ret *Result, _err error) {
	logger.Tracef(ctx, "Enhance: '%s'", file)
	defer func() { logger.Tracef(ctx, "/Enhance: '%s': %v", file, _err) }()

	buf, err := codec.Load(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("unable to load '%s': %w", file, err)
	}

	result, err := e.EnhanceBuffer(ctx, buf, pad)
	if err != nil {
		return nil, fmt.Errorf("unable to enhance '%s': %w", file, err)
	}
	logger.Infof(ctx, "Enhanced noisy audio file '%s' in %.1fs (RT factor: %.1f)", file, result.ProcessingTime.Seconds(), result.RTFactor)
	return result, nil
}

// EnhanceBuffer converts the signal to the model sample rate and
// enhances it. The result has the same amount of channels and the same
// duration as the input.
//
// The analysis-synthesis loop delays the signal by FFTSize-HopSize
// samples. If pad is true, the signal is extended by FFTSize zeros and
// the delay is cut off; otherwise the output stays delayed.
func (e *Enhancer) EnhanceBuffer(
	ctx context.Context,
	buf *audio.Buffer,
	pad bool,
) (_ret *Result, _err error) {
	logger.Tracef(ctx, "EnhanceBuffer")
	defer func() { logger.Tracef(ctx, "/EnhanceBuffer: %v", _err) }()

	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid audio: %w", err)
	}
	if err := e.Model.ResetState(ctx, buf.Channels()); err != nil {
		return nil, fmt.Errorf("unable to reset the model state: %w", err)
	}

	result := &Result{
		InputSampleRate: buf.SampleRate,
		InputDuration:   buf.Duration(),
	}

	modelRate := audio.SampleRate(e.ModelParams.SampleRate)
	if buf.SampleRate != modelRate {
		logger.Warnf(ctx, "Audio sampling rate does not match model sampling rate (%d, %d). Resampling...", buf.SampleRate, modelRate)
		var err error
		buf, err = resampler.Resample(ctx, buf, modelRate)
		if err != nil {
			return nil, fmt.Errorf("unable to resample from %d to %d: %w", result.InputSampleRate, modelRate, err)
		}
	}

	origLen := buf.Len()
	hopSize := e.State.HopSize
	input := buf.Copy()
	if pad {
		input.Pad(e.State.FFTSize)
	} else {
		input.Pad((origLen+hopSize-1)/hopSize*hopSize - origLen)
	}

	t0 := time.Now()
	features, err := e.State.Features(input.Samples, e.ModelParams.NbDF, e.Alpha)
	if err != nil {
		return nil, fmt.Errorf("unable to extract the features: %w", err)
	}
	spec, err := e.Model.SuppressNoise(ctx, features)
	if err != nil {
		return nil, fmt.Errorf("unable to suppress the noise: %w", err)
	}
	result.ProcessingTime = time.Since(t0)
	if result.ProcessingTime > 0 {
		result.RTFactor = result.InputDuration.Seconds() / result.ProcessingTime.Seconds()
	}

	if spec.Channels() != features.Channels() || spec.Frames() != features.Frames() {
		return nil, fmt.Errorf("the model returned %d channels of %d frames, expected %d of %d", spec.Channels(), spec.Frames(), features.Channels(), features.Frames())
	}
	enhanced := &audio.Buffer{
		SampleRate: modelRate,
		Samples:    e.State.Synthesis(spec),
	}

	if pad {
		d := e.State.Delay()
		result.Audio = enhanced.Slice(d, origLen+d)
	} else {
		result.Audio = enhanced.Slice(0, origLen)
	}

	if e.Syncer != nil {
		shifts, err := e.Syncer.CalculateShiftBetween(ctx, buf, result.Audio)
		if err != nil {
			return nil, fmt.Errorf("unable to measure the output delay: %w", err)
		}
		result.OutputDelay = -shifts[0].Shift
		result.DelayConfidence = shifts[0].Confidence
		logger.Debugf(ctx, "the output lags the input by %.1f samples (confidence: %.2f)", result.OutputDelay, result.DelayConfidence)
	}
	return result, nil
}
