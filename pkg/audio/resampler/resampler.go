package resampler

import (
	"context"
	"fmt"
	"math"

	"github.com/facebookincubator/go-belt/tool/logger"
	resampling "github.com/tphakala/go-audio-resampling"
	"github.com/xaionaro-go/dfenhance/pkg/audio"
)

// OutputLength returns the amount of samples a signal of inLength samples
// has after converting it from inRate to outRate.
func OutputLength(inLength int, inRate, outRate audio.SampleRate) int {
	return int(math.Round(float64(inLength) * float64(outRate) / float64(inRate)))
}

// Resample converts every channel of the buffer to the sample rate dstRate.
// The result always has exactly OutputLength samples per channel and
// sample 0 of the result is aligned with sample 0 of the input.
func Resample(
	ctx context.Context,
	buf *audio.Buffer,
	dstRate audio.SampleRate,
) (_ret *audio.Buffer, _err error) {
	logger.Tracef(ctx, "Resample: %d -> %d", buf.SampleRate, dstRate)
	defer func() { logger.Tracef(ctx, "/Resample: %d -> %d: %v", buf.SampleRate, dstRate, _err) }()

	if buf.SampleRate == 0 || dstRate == 0 {
		return nil, fmt.Errorf("invalid sample rates: %d -> %d", buf.SampleRate, dstRate)
	}
	if buf.SampleRate == dstRate {
		return buf.Copy(), nil
	}

	pad := padding(buf.SampleRate)
	paddedLength := buf.Len() + 2*pad
	start, err := filterOffset(buf.SampleRate, dstRate, paddedLength, pad)
	if err != nil {
		return nil, err
	}
	logger.Tracef(ctx, "resampled signal starts at %d", start)

	outLength := OutputLength(buf.Len(), buf.SampleRate, dstRate)
	result := audio.NewBuffer(dstRate, buf.Channels(), outLength)
	padded := make([]float32, paddedLength)
	for ch, samples := range buf.Samples {
		copy(padded[pad:], samples)
		resampled, err := resampleChannel(padded, buf.SampleRate, dstRate)
		if err != nil {
			return nil, fmt.Errorf("unable to resample channel %d: %w", ch, err)
		}
		copyAligned(result.Samples[ch], resampled, start)
	}
	return result, nil
}

// padding is the amount of silence put before and after the signal, so
// that the filter is primed before the first sample and drained after
// the last one: 200ms.
func padding(rate audio.SampleRate) int {
	return max(int(rate)/5, 1)
}

// filterOffset returns the index in the resampled output which input
// sample at position pad maps to, for a signal of length samples.
func filterOffset(
	srcRate, dstRate audio.SampleRate,
	length, pad int,
) (int, error) {
	impulse := make([]float32, length)
	impulse[pad] = 1
	response, err := resampleChannel(impulse, srcRate, dstRate)
	if err != nil {
		return 0, fmt.Errorf("unable to measure the resampler delay: %w", err)
	}
	peakIdx, peakVal := 0, 0.0
	for idx, v := range response {
		if math.Abs(v) > peakVal {
			peakIdx, peakVal = idx, math.Abs(v)
		}
	}
	if peakVal == 0 {
		return 0, fmt.Errorf("the resampler from %d to %d returned silence for an impulse", srcRate, dstRate)
	}
	return peakIdx, nil
}

func copyAligned(out []float32, resampled []float64, start int) {
	for idx := range out {
		src := start + idx
		if src < 0 || src >= len(resampled) {
			continue
		}
		out[idx] = float32(resampled[src])
	}
}

func resampleChannel(
	samples []float32,
	srcRate, dstRate audio.SampleRate,
) ([]float64, error) {
	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to initialize a resampler from %d to %d: %w", srcRate, dstRate, err)
	}

	input := make([]float64, len(samples))
	for idx, v := range samples {
		input[idx] = float64(v)
	}

	output, err := r.Process(input)
	if err != nil {
		return nil, fmt.Errorf("unable to process: %w", err)
	}
	tail, err := r.Flush()
	if err != nil {
		return nil, fmt.Errorf("unable to flush: %w", err)
	}
	return append(output, tail...), nil
}
