package planar

import (
	"fmt"

	"github.com/xaionaro-go/dfenhance/pkg/audio"
)

// Planarize splits interleaved samples into per-channel slices:
// input[i*channels+ch] goes to output[ch][i].
func Planarize[T any](channels audio.Channel, input []T) ([][]T, error) {
	if channels == 0 {
		return nil, fmt.Errorf("the amount of channels is zero")
	}
	if len(input)%int(channels) != 0 {
		return nil, fmt.Errorf("expected a message length that is a multiple of %d, but received %d", channels, len(input))
	}

	samplesPerChan := len(input) / int(channels)
	output := make([][]T, channels)
	for ch := range output {
		output[ch] = make([]T, samplesPerChan)
	}

	for samplePos := 0; samplePos < samplesPerChan; samplePos++ {
		inIdxOffset := samplePos * int(channels)
		for ch := 0; ch < int(channels); ch++ {
			output[ch][samplePos] = input[inIdxOffset+ch]
		}
	}

	return output, nil
}
