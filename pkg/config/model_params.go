package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ModelParams are the DSP parameters of the model, section [df].
// None of them has a default: a model is only usable with the exact
// parameters it was trained with.
type ModelParams struct {
	SampleRate    int
	FFTSize       int
	HopSize       int
	NbERB         int
	NbDF          int
	NormTau       float64
	MinNbERBFreqs int
}

func (cfg *Config) ModelParams() (ModelParams, error) {
	s := cfg.Section(SectionDF)

	var (
		p    ModelParams
		mErr *multierror.Error
	)
	getInt := func(key string, dst *int) {
		v, err := s.Int(key)
		if err != nil {
			mErr = multierror.Append(mErr, err)
			return
		}
		*dst = v
	}
	getInt("sr", &p.SampleRate)
	getInt("fft_size", &p.FFTSize)
	getInt("hop_size", &p.HopSize)
	getInt("nb_erb", &p.NbERB)
	getInt("nb_df", &p.NbDF)
	getInt("min_nb_erb_freqs", &p.MinNbERBFreqs)
	if v, err := s.Float("norm_tau"); err != nil {
		mErr = multierror.Append(mErr, err)
	} else {
		p.NormTau = v
	}
	if err := mErr.ErrorOrNil(); err != nil {
		return ModelParams{}, fmt.Errorf("unable to read the model parameters from '%s': %w", cfg.Path, err)
	}

	if err := p.Validate(); err != nil {
		return ModelParams{}, fmt.Errorf("invalid model parameters in '%s': %w", cfg.Path, err)
	}
	return p, nil
}

func (p ModelParams) FreqSize() int {
	return p.FFTSize/2 + 1
}

func (p ModelParams) Validate() error {
	switch {
	case p.SampleRate <= 0:
		return fmt.Errorf("sr must be positive, got %d", p.SampleRate)
	case p.FFTSize <= 0 || p.FFTSize%2 != 0:
		return fmt.Errorf("fft_size must be positive and even, got %d", p.FFTSize)
	case p.HopSize <= 0 || p.HopSize > p.FFTSize:
		return fmt.Errorf("hop_size must be within (0, fft_size], got %d", p.HopSize)
	case p.NbERB <= 0:
		return fmt.Errorf("nb_erb must be positive, got %d", p.NbERB)
	case p.NbDF <= 0 || p.NbDF > p.FreqSize():
		return fmt.Errorf("nb_df must be within (0, %d], got %d", p.FreqSize(), p.NbDF)
	case p.MinNbERBFreqs <= 0:
		return fmt.Errorf("min_nb_erb_freqs must be positive, got %d", p.MinNbERBFreqs)
	case p.NbERB*p.MinNbERBFreqs > p.FreqSize():
		return fmt.Errorf("%d bands of at least %d bins do not fit into %d frequency bins", p.NbERB, p.MinNbERBFreqs, p.FreqSize())
	case p.NormTau <= 0:
		return fmt.Errorf("norm_tau must be positive, got %f", p.NormTau)
	}
	return nil
}
