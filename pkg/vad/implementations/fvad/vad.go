//go:build fvad
// +build fvad

package fvad

import (
	"context"
	"fmt"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/josharian/fvad"
	"github.com/xaionaro-go/dfenhance/pkg/audio"
	"github.com/xaionaro-go/dfenhance/pkg/vad"
)

const Available = true

type VAD struct {
	Locker     sync.Mutex
	Mode       Mode
	SampleRate audio.SampleRate
	Buffer     []int16

	detector *fvad.Detector
}

var _ vad.VAD = (*VAD)(nil)

func New(
	sampleRate audio.SampleRate,
	mode Mode,
) (*VAD, error) {
	v := &VAD{
		Mode:       mode,
		SampleRate: sampleRate,
		detector:   fvad.NewDetector(),
	}
	if err := v.configure(); err != nil {
		v.detector.Close()
		return nil, err
	}
	return v, nil
}

func (v *VAD) configure() error {
	if err := v.detector.SetSampleRate(int(v.SampleRate)); err != nil {
		return fmt.Errorf("unable to set the sample rate %d: %w", v.SampleRate, err)
	}
	if err := v.detector.SetMode(int(v.Mode)); err != nil {
		return fmt.Errorf("unable to set the mode %d: %w", v.Mode, err)
	}
	return nil
}

func (v *VAD) Close() error {
	v.Locker.Lock()
	defer v.Locker.Unlock()
	if v.detector == nil {
		return fmt.Errorf("already closed")
	}
	v.detector.Close()
	v.detector = nil
	return nil
}

func (v *VAD) Encoding(context.Context) (audio.Encoding, error) {
	return audio.EncodingPCM{
		PCMFormat:  audio.PCMFormatFloat32Native(),
		SampleRate: v.SampleRate,
	}, nil
}

func (v *VAD) Channels(context.Context) (audio.Channel, error) {
	return 1, nil
}

// Classify starts from a clean detector state on every call.
func (v *VAD) Classify(
	ctx context.Context,
	samples []float32,
	frameSize int,
) (_ret []bool, _err error) {
	logger.Tracef(ctx, "Classify, len:%d", len(samples))
	defer func() { logger.Tracef(ctx, "/Classify, len:%d: %v", len(samples), _err) }()

	if !frameSupported(v.SampleRate, frameSize) {
		return nil, fmt.Errorf("frames of %d samples at %d Hz are not supported", frameSize, v.SampleRate)
	}

	v.Locker.Lock()
	defer v.Locker.Unlock()
	if v.detector == nil {
		return nil, fmt.Errorf("the detector is closed")
	}
	v.detector.Reset()
	if err := v.configure(); err != nil {
		return nil, err
	}

	if cap(v.Buffer) < frameSize {
		v.Buffer = make([]int16, frameSize)
	}
	frame := v.Buffer[:frameSize]

	result := make([]bool, len(samples)/frameSize)
	for idx := range result {
		for pos, s := range samples[idx*frameSize : (idx+1)*frameSize] {
			frame[pos] = toInt16(s)
		}
		isVoice, err := v.detector.Process(frame)
		if err != nil {
			return nil, fmt.Errorf("unable to process frame %d: %w", idx, err)
		}
		result[idx] = isVoice
	}
	return result, nil
}
