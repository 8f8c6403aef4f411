package deepfilternet

import (
	"fmt"

	"github.com/xaionaro-go/dfenhance/pkg/config"
	"github.com/xaionaro-go/dfenhance/pkg/noisesuppression"
)

// Params are the parameters of the network which are not part of the
// DSP setup.
type Params struct {
	// ConvLookahead is how many frames ahead the convolutions look.
	ConvLookahead int

	// DFOrder is the amount of frames every deep filter spans.
	DFOrder int

	// DFLookahead is how many of DFOrder frames are in the future.
	DFLookahead int

	PostFilter     bool
	PostFilterBeta float64
}

func DefaultParams() Params {
	return Params{
		DFOrder:        5,
		PostFilterBeta: noisesuppression.DefaultPostFilterBeta,
	}
}

func ParamsFromConfig(cfg *config.Config) (Params, error) {
	p := DefaultParams()
	df := cfg.Section(config.SectionDF)
	net := cfg.Section(config.SectionDeepFilterNet)

	var err error
	if p.ConvLookahead, err = net.IntOr("conv_lookahead", p.ConvLookahead); err != nil {
		return p, err
	}
	if p.PostFilter, err = net.BoolOr("mask_pf", p.PostFilter); err != nil {
		return p, err
	}
	if p.PostFilterBeta, err = net.FloatOr("pf_beta", p.PostFilterBeta); err != nil {
		return p, err
	}

	// older configs keep the deep filter setup in [deepfilternet]
	if p.DFOrder, err = net.IntOr("df_order", p.DFOrder); err != nil {
		return p, err
	}
	if p.DFOrder, err = df.IntOr("df_order", p.DFOrder); err != nil {
		return p, err
	}
	if p.DFLookahead, err = net.IntOr("df_lookahead", p.DFLookahead); err != nil {
		return p, err
	}
	if p.DFLookahead, err = df.IntOr("df_lookahead", p.DFLookahead); err != nil {
		return p, err
	}

	return p, p.Validate()
}

func (p Params) Validate() error {
	switch {
	case p.ConvLookahead < 0:
		return fmt.Errorf("conv_lookahead must not be negative, got %d", p.ConvLookahead)
	case p.DFOrder <= 0:
		return fmt.Errorf("df_order must be positive, got %d", p.DFOrder)
	case p.DFLookahead < 0 || p.DFLookahead >= p.DFOrder:
		return fmt.Errorf("df_lookahead must be within [0, %d), got %d", p.DFOrder, p.DFLookahead)
	case p.PostFilterBeta < 0:
		return fmt.Errorf("pf_beta must not be negative, got %f", p.PostFilterBeta)
	}
	return nil
}
