// Package gccphat measures the delay between two signals using
// Generalized Cross-Correlation with Phase Transform (GCC-PHAT).
//
// The cross-power spectrum of the signals is whitened, so only the phase
// (which encodes the delay) is left, and the peak of its inverse
// transform is the delay. This makes it insensitive to the gain and to
// the spectral shape, which noise suppression changes.
package gccphat

import (
	"context"
	"fmt"
	"time"

	"github.com/mjibson/go-dsp/fft"
	"github.com/xaionaro-go/dfenhance/pkg/audio"
	"github.com/xaionaro-go/dfenhance/pkg/syncer"
)

// DefaultMaxDuration limits how much of the signals is correlated.
const DefaultMaxDuration = 10 * time.Second

type Syncer struct {
	SampleRate audio.SampleRate
	MinFreq    float64
	MaxFreq    float64

	// MaxSamples is how many samples from the beginning of each signal
	// are correlated; zero means all of them.
	MaxSamples int
}

var _ syncer.Syncer = (*Syncer)(nil)

func NewSyncer(
	sampleRate audio.SampleRate,
) (*Syncer, error) {
	if sampleRate == 0 {
		return nil, fmt.Errorf("sample rate is mandatory")
	}
	return &Syncer{
		SampleRate: sampleRate,
		// Speech band: skips low-frequency rumble and the band above
		// where the enhancement usually leaves nothing.
		MinFreq:    100,
		MaxFreq:    12000,
		MaxSamples: int(DefaultMaxDuration * time.Duration(sampleRate) / time.Second),
	}, nil
}

func (s *Syncer) Close() error {
	return nil
}

func (s *Syncer) Encoding(
	ctx context.Context,
) (audio.Encoding, error) {
	return audio.EncodingPCM{
		PCMFormat:  audio.PCMFormatFloat32Native(),
		SampleRate: s.SampleRate,
	}, nil
}

// Channels returns 1: the signals are mixed down before correlating.
func (s *Syncer) Channels(
	ctx context.Context,
) (audio.Channel, error) {
	return 1, nil
}

func (s *Syncer) CalculateShiftBetween(
	ctx context.Context,
	reference *audio.Buffer,
	comparisons ...*audio.Buffer,
) ([]syncer.ShiftResult, error) {
	if reference.SampleRate != s.SampleRate {
		return nil, fmt.Errorf("the reference has sample rate %d, expected %d", reference.SampleRate, s.SampleRate)
	}
	refSamples := Mixdown(reference, s.MaxSamples)

	results := make([]syncer.ShiftResult, len(comparisons))
	for i, comparison := range comparisons {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if comparison.SampleRate != s.SampleRate {
			return nil, fmt.Errorf("comparison %d has sample rate %d, expected %d", i, comparison.SampleRate, s.SampleRate)
		}
		compSamples := Mixdown(comparison, s.MaxSamples)

		// the next power of two of (n1 + n2 - 1) avoids circular
		// convolution artifacts
		n := 1
		for n < len(refSamples)+len(compSamples)-1 {
			n <<= 1
		}

		shift, confidence, err := CrossCorrelate(
			fft.FFT(zeroPadded(refSamples, n)),
			fft.FFT(zeroPadded(compSamples, n)),
			float64(s.SampleRate),
			s.MinFreq,
			s.MaxFreq,
		)
		if err != nil {
			return nil, fmt.Errorf("unable to cross-correlate comparison %d: %w", i, err)
		}
		results[i] = syncer.ShiftResult{
			Shift:      shift,
			Confidence: confidence,
		}
	}
	return results, nil
}

func zeroPadded(samples []float64, size int) []complex128 {
	result := make([]complex128, size)
	for idx, v := range samples {
		result[idx] = complex(v, 0)
	}
	return result
}
