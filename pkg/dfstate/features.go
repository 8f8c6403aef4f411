package dfstate

import (
	"fmt"
)

// Features is everything a model needs to enhance a signal.
type Features struct {
	// Audio is the time-domain signal the spectrogram was computed from.
	Audio [][]float32

	// Spec is the noisy spectrogram, [channel][frame][bin].
	Spec Spectrogram

	// ERB are the mean-normalized band powers in dB, [channel][frame][band].
	ERB [][][]float32

	// Complex are the unit-normalized lowest bins, [channel][frame][nbDF].
	Complex Spectrogram
}

func (f *Features) Channels() int {
	return f.Spec.Channels()
}

func (f *Features) Frames() int {
	return f.Spec.Frames()
}

// Features computes the spectrogram of audio and the model input
// features derived from it.
func (s *State) Features(
	audio [][]float32,
	nbDF int,
	alpha float32,
) (*Features, error) {
	if nbDF <= 0 || nbDF > s.FreqSize() {
		return nil, fmt.Errorf("the amount of deep-filtered bins must be within (0, %d], got %d", s.FreqSize(), nbDF)
	}
	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("the normalization factor must be within (0, 1), got %f", alpha)
	}

	spec := s.Analysis(audio)
	return &Features{
		Audio:   audio,
		Spec:    spec,
		ERB:     ERBNorm(ERB(spec, s.erbWidths, true), alpha),
		Complex: UnitNorm(spec, nbDF, alpha),
	}, nil
}
