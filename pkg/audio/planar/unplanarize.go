package planar

import (
	"fmt"
)

// Unplanarize interleaves per-channel slices: input[ch][i] goes to
// output[i*channels+ch].
func Unplanarize[T any](input [][]T) ([]T, error) {
	channels := len(input)
	if channels == 0 {
		return nil, fmt.Errorf("the amount of channels is zero")
	}

	samplesPerChan := len(input[0])
	for ch := 1; ch < channels; ch++ {
		if len(input[ch]) != samplesPerChan {
			return nil, fmt.Errorf("the lengths of channels 0 and %d are not equal: %d != %d", ch, samplesPerChan, len(input[ch]))
		}
	}

	output := make([]T, samplesPerChan*channels)
	for ch, samples := range input {
		for samplePos, sample := range samples {
			output[samplePos*channels+ch] = sample
		}
	}

	return output, nil
}
