//go:build rnnoise
// +build rnnoise

package rnnoise

import (
	"context"
	"fmt"
	"math"
	"sync"
	"unsafe"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/dfenhance/pkg/audio"
	"github.com/xaionaro-go/dfenhance/pkg/dfstate"
	"github.com/xaionaro-go/dfenhance/pkg/noisesuppression"
	"github.com/xaionaro-go/observability"
)

/*
#cgo pkg-config: rnnoise
#cgo CFLAGS: -march=native
#include <rnnoise.h>
*/
import "C"

const Supported = true

// RNNoise denoises the time-domain signal with RNNoise and returns the
// spectrogram of the result.
type RNNoise struct {
	Locker        sync.Mutex
	State         *dfstate.State
	ChannelsValue audio.Channel
}

var _ noisesuppression.NoiseSuppression = (*RNNoise)(nil)

var frameSize int

func init() {
	frameSize = int(C.rnnoise_get_frame_size())
}

func New(
	state *dfstate.State,
) (*RNNoise, error) {
	if state.SampleRate != SampleRate {
		return nil, fmt.Errorf("RNNoise works only at %d Hz, the model is configured for %d Hz", SampleRate, state.SampleRate)
	}
	return &RNNoise{
		State: state,
	}, nil
}

func (s *RNNoise) Close() error {
	return nil
}

func (s *RNNoise) Encoding(ctx context.Context) (audio.Encoding, error) {
	return audio.EncodingPCM{
		PCMFormat:  audio.PCMFormatFloat32Native(),
		SampleRate: SampleRate,
	}, nil
}

func (s *RNNoise) Channels(ctx context.Context) (audio.Channel, error) {
	return s.ChannelsValue, nil
}

func (s *RNNoise) ResetState(_ context.Context, channels audio.Channel) error {
	s.Locker.Lock()
	defer s.Locker.Unlock()
	s.ChannelsValue = channels
	return nil
}

func (s *RNNoise) SuppressNoise(
	ctx context.Context,
	features *dfstate.Features,
) (_ret dfstate.Spectrogram, _err error) {
	logger.Tracef(ctx, "SuppressNoise, frames:%d", features.Frames())
	defer func() { logger.Tracef(ctx, "/SuppressNoise, frames:%d: %v", features.Frames(), _err) }()

	s.Locker.Lock()
	defer s.Locker.Unlock()
	if len(features.Audio) != int(s.ChannelsValue) {
		return nil, fmt.Errorf("expected %d channels, got %d", s.ChannelsValue, len(features.Audio))
	}

	denoised := make([][]float32, len(features.Audio))
	var (
		locker     sync.Mutex
		maxVADProb float64
		wg         sync.WaitGroup
	)
	for ch, samples := range features.Audio {
		wg.Add(1)
		observability.Go(ctx, func(ctx context.Context) {
			defer wg.Done()
			out, vadProb := noiseSuppressOneChannel(ctx, samples)
			locker.Lock()
			defer locker.Unlock()
			denoised[ch] = out
			maxVADProb = max(maxVADProb, vadProb)
		})
	}
	wg.Wait()
	logger.Debugf(ctx, "max voice activity probability: %.2f", maxVADProb)

	spec := s.State.Analysis(denoised)
	if spec.Frames() != features.Frames() {
		return nil, fmt.Errorf("expected %d frames, got %d", features.Frames(), spec.Frames())
	}
	return spec, nil
}

// noiseSuppressOneChannel runs a fresh denoiser over samples. The input
// is extended by one frame to flush the denoiser latency, which is then
// cut from the beginning of the output.
func noiseSuppressOneChannel(
	ctx context.Context,
	samples []float32,
) ([]float32, float64) {
	logger.Tracef(ctx, "noiseSuppressOneChannel, len:%d", len(samples))
	denoiseState := C.rnnoise_create(nil)
	defer C.rnnoise_destroy(denoiseState)

	frames := (len(samples)+frameSize-1)/frameSize + 1
	input := make([]float32, frames*frameSize)
	gain(input, samples)
	output := make([]float32, len(input))

	var maxVADProb float64
	for offset := 0; offset < len(input); offset += frameSize {
		vadProb := C.rnnoise_process_frame(
			denoiseState,
			(*C.float)(unsafe.Pointer(unsafe.SliceData(output[offset:offset+frameSize]))),
			(*C.float)(unsafe.Pointer(unsafe.SliceData(input[offset:offset+frameSize]))),
		)
		maxVADProb = max(maxVADProb, float64(vadProb))
	}

	result := output[frameSize : frameSize+len(samples)]
	ungain(result)
	return result, maxVADProb
}

func gain(dst, src []float32) {
	for idx := range src {
		dst[idx] = src[idx] * math.MaxInt16
	}
}

func ungain(buf []float32) {
	for idx := range buf {
		buf[idx] /= math.MaxInt16
	}
}
