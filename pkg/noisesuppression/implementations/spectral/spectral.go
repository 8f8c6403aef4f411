// Package spectral implements a model-free noise suppression backend:
// the noise power of every ERB band is estimated from the noise-only
// frames of the file and subtracted from every frame.
package spectral

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/dfenhance/pkg/audio"
	"github.com/xaionaro-go/dfenhance/pkg/config"
	"github.com/xaionaro-go/dfenhance/pkg/dfstate"
	"github.com/xaionaro-go/dfenhance/pkg/noisesuppression"
	"github.com/xaionaro-go/dfenhance/pkg/vad"
	"github.com/xaionaro-go/dfenhance/pkg/vad/implementations/fvad"
	"github.com/xaionaro-go/observability"
)

const (
	Name    = "spectral"
	Section = "spectral"
)

type Params struct {
	// OverSubtract scales the estimated noise power before subtracting it.
	OverSubtract float64

	// Floor is the minimal gain of a band.
	Floor float64

	// NoisePercentile is the share (in percents) of the quietest frames
	// considered noise-only.
	NoisePercentile float64

	PostFilter     bool
	PostFilterBeta float64

	// UseVAD enables picking noise-only frames with a voice activity
	// detector instead of by loudness.
	UseVAD  bool
	VADMode fvad.Mode
}

func DefaultParams() Params {
	return Params{
		OverSubtract:    2.0,
		Floor:           0.05,
		NoisePercentile: 20,
		PostFilterBeta:  noisesuppression.DefaultPostFilterBeta,
		VADMode:         fvad.ModeAggressive,
	}
}

// ParamsFromConfig reads section [spectral]; the post-filter switch is
// taken from [deepfilternet] mask_pf, where the command line puts it.
func ParamsFromConfig(cfg *config.Config) (Params, error) {
	p := DefaultParams()
	s := cfg.Section(Section)

	var err error
	if p.OverSubtract, err = s.FloatOr("over_subtract", p.OverSubtract); err != nil {
		return p, err
	}
	if p.Floor, err = s.FloatOr("floor", p.Floor); err != nil {
		return p, err
	}
	if p.NoisePercentile, err = s.FloatOr("noise_percentile", p.NoisePercentile); err != nil {
		return p, err
	}
	if p.PostFilterBeta, err = s.FloatOr("pf_beta", p.PostFilterBeta); err != nil {
		return p, err
	}
	if p.UseVAD, err = s.BoolOr("use_vad", p.UseVAD); err != nil {
		return p, err
	}
	vadMode, err := s.IntOr("vad_mode", int(p.VADMode))
	if err != nil {
		return p, err
	}
	p.VADMode = fvad.Mode(vadMode)

	pf, err := cfg.Section(config.SectionDeepFilterNet).BoolOr("mask_pf", false)
	if err != nil {
		return p, err
	}
	p.PostFilter, err = s.BoolOr("mask_pf", pf)
	if err != nil {
		return p, err
	}

	return p, p.Validate()
}

func (p Params) Validate() error {
	switch {
	case p.OverSubtract < 0:
		return fmt.Errorf("over_subtract must not be negative, got %f", p.OverSubtract)
	case p.Floor < 0 || p.Floor > 1:
		return fmt.Errorf("floor must be within [0, 1], got %f", p.Floor)
	case p.NoisePercentile <= 0 || p.NoisePercentile > 100:
		return fmt.Errorf("noise_percentile must be within (0, 100], got %f", p.NoisePercentile)
	case p.VADMode < fvad.ModeQuality || p.VADMode > fvad.ModeVeryAggressive:
		return fmt.Errorf("vad_mode must be within [0, 3], got %d", p.VADMode)
	}
	return nil
}

type Spectral struct {
	Params        Params
	State         *dfstate.State
	EncodingValue audio.Encoding
	ChannelsValue audio.Channel
	VAD           vad.VAD
}

var _ noisesuppression.NoiseSuppression = (*Spectral)(nil)

func New(
	ctx context.Context,
	state *dfstate.State,
	params Params,
) (*Spectral, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	s := &Spectral{
		Params: params,
		State:  state,
		EncodingValue: audio.EncodingPCM{
			PCMFormat:  audio.PCMFormatFloat32Native(),
			SampleRate: audio.SampleRate(state.SampleRate),
		},
	}
	if params.UseVAD {
		if fvad.Supported(audio.SampleRate(state.SampleRate), state.HopSize) {
			v, err := fvad.New(audio.SampleRate(state.SampleRate), params.VADMode)
			if err != nil {
				return nil, fmt.Errorf("unable to initialize the voice activity detector: %w", err)
			}
			s.VAD = v
		} else if !fvad.Available {
			logger.Warnf(ctx, "voice activity detection is not available in this build, the quietest frames will be used as noise")
		} else {
			logger.Warnf(ctx, "voice activity detection does not support hops of %d samples at %d Hz, the quietest frames will be used as noise", state.HopSize, state.SampleRate)
		}
	}
	logger.Tracef(ctx, "spectral params: %s", spew.Sdump(params))
	return s, nil
}

func (s *Spectral) Close() error {
	if s.VAD != nil {
		return s.VAD.Close()
	}
	return nil
}

func (s *Spectral) Encoding(context.Context) (audio.Encoding, error) {
	return s.EncodingValue, nil
}

func (s *Spectral) Channels(context.Context) (audio.Channel, error) {
	return s.ChannelsValue, nil
}

func (s *Spectral) ResetState(_ context.Context, channels audio.Channel) error {
	s.ChannelsValue = channels
	return nil
}

func (s *Spectral) SuppressNoise(
	ctx context.Context,
	features *dfstate.Features,
) (_ret dfstate.Spectrogram, _err error) {
	logger.Tracef(ctx, "SuppressNoise, frames:%d", features.Frames())
	defer func() { logger.Tracef(ctx, "/SuppressNoise, frames:%d: %v", features.Frames(), _err) }()

	if features.Channels() != int(s.ChannelsValue) {
		return nil, fmt.Errorf("expected %d channels, got %d", s.ChannelsValue, features.Channels())
	}

	result := make(dfstate.Spectrogram, features.Channels())
	var (
		wg     sync.WaitGroup
		locker sync.Mutex
		mErr   *multierror.Error
	)
	for ch := range features.Spec {
		var samples []float32
		if ch < len(features.Audio) {
			samples = features.Audio[ch]
		}
		wg.Add(1)
		observability.Go(ctx, func(ctx context.Context) {
			defer wg.Done()
			out, err := s.suppressNoiseOneChannel(ctx, features.Spec[ch], samples)
			locker.Lock()
			defer locker.Unlock()
			if err != nil {
				mErr = multierror.Append(mErr, fmt.Errorf("channel %d: %w", ch, err))
				return
			}
			result[ch] = out
		})
	}
	wg.Wait()

	if err := mErr.ErrorOrNil(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Spectral) suppressNoiseOneChannel(
	ctx context.Context,
	frames [][]complex64,
	samples []float32,
) ([][]complex64, error) {
	widths := s.State.ERBWidths()
	powers := make([][]float32, len(frames))
	for t, frame := range frames {
		powers[t] = make([]float32, len(widths))
		dfstate.BandPowers(frame, widths, powers[t])
	}

	noiseFrames := s.noiseFrames(ctx, powers, samples)
	noise := make([]float64, len(widths))
	for _, t := range noiseFrames {
		for band, p := range powers[t] {
			noise[band] += float64(p)
		}
	}
	if len(noiseFrames) > 0 {
		for band := range noise {
			noise[band] /= float64(len(noiseFrames))
		}
	}

	gains := make([][]float32, len(frames))
	for t := range frames {
		gains[t] = make([]float32, len(widths))
		for band, p := range powers[t] {
			gains[t][band] = float32(s.gain(float64(p), noise[band]))
		}
		if s.Params.PostFilter {
			noisesuppression.PostFilter(gains[t], float32(s.Params.PostFilterBeta))
		}
	}

	return noisesuppression.MaskSpectrogram(frames, gains, widths)
}

func (s *Spectral) gain(power, noise float64) float64 {
	if power <= 0 {
		return 1
	}
	g := math.Sqrt(max(power-s.Params.OverSubtract*noise, 0) / power)
	return min(max(g, s.Params.Floor), 1)
}

// noiseFrames returns the indexes of the frames considered noise-only.
func (s *Spectral) noiseFrames(
	ctx context.Context,
	powers [][]float32,
	samples []float32,
) []int {
	if len(powers) == 0 {
		return nil
	}
	wanted := max(1, int(float64(len(powers))*s.Params.NoisePercentile/100))

	if s.VAD != nil && len(samples) >= len(powers)*s.State.HopSize {
		isVoice, err := s.VAD.Classify(ctx, samples, s.State.HopSize)
		if err != nil {
			logger.Warnf(ctx, "unable to detect voice activity: %v", err)
		} else {
			var result []int
			for t := range powers {
				if !isVoice[t] {
					result = append(result, t)
				}
			}
			if len(result) >= wanted {
				logger.Debugf(ctx, "%d of %d frames have no voice", len(result), len(powers))
				return result
			}
			logger.Debugf(ctx, "only %d of %d frames have no voice, using the %d quietest frames instead", len(result), len(powers), wanted)
		}
	}

	energy := make([]float64, len(powers))
	for t, bands := range powers {
		for _, p := range bands {
			energy[t] += float64(p)
		}
	}
	order := make([]int, len(powers))
	for idx := range order {
		order[idx] = idx
	}
	sort.SliceStable(order, func(i, j int) bool {
		return energy[order[i]] < energy[order[j]]
	})
	return order[:wanted]
}
