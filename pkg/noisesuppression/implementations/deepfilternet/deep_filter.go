package deepfilternet

import (
	"fmt"
)

// encoderInputs packs the features of one channel into the encoder
// inputs: feat_erb is [1, 1, T, E] and feat_spec is [1, 2, T, F] with the
// real parts first. Frame t gets the features of frame t+lookahead, the
// last lookahead frames get zeros.
func encoderInputs(
	erb [][]float32,
	spec [][]complex64,
	lookahead int,
) (featERB []float32, featSpec []float32) {
	frames := len(erb)
	var nbERB, nbDF int
	if frames > 0 {
		nbERB = len(erb[0])
		nbDF = len(spec[0])
	}

	featERB = make([]float32, frames*nbERB)
	featSpec = make([]float32, 2*frames*nbDF)
	imOffset := frames * nbDF
	for t := 0; t+lookahead < frames; t++ {
		copy(featERB[t*nbERB:(t+1)*nbERB], erb[t+lookahead])
		for f, v := range spec[t+lookahead] {
			featSpec[t*nbDF+f] = real(v)
			featSpec[imOffset+t*nbDF+f] = imag(v)
		}
	}
	return featERB, featSpec
}

// DeepFilter applies the complex filters to the lowest nbDF bins:
//
//	output[t][f] = sum_i spec[t+i-(order-1-lookahead)][f] * coefs[t][f][i]
//
// where frames outside of spec are zeros. coefs are laid out as
// [frame][bin][order][re, im]. Bins starting from nbDF are not touched.
func DeepFilter(
	spec [][]complex64,
	coefs []float32,
	nbDF int,
	order int,
	lookahead int,
	output [][]complex64,
) error {
	frames := len(spec)
	if len(output) != frames {
		return fmt.Errorf("expected %d output frames, got %d", frames, len(output))
	}
	if len(coefs) != frames*nbDF*order*2 {
		return fmt.Errorf("expected %d*%d*%d*2 coefficients, got %d", frames, nbDF, order, len(coefs))
	}
	if lookahead < 0 || lookahead >= order {
		return fmt.Errorf("lookahead %d is out of range [0, %d)", lookahead, order)
	}

	past := order - 1 - lookahead
	for t := 0; t < frames; t++ {
		if len(spec[t]) < nbDF || len(output[t]) < nbDF {
			return fmt.Errorf("frame %d has less than %d bins", t, nbDF)
		}
		for f := 0; f < nbDF; f++ {
			var acc complex64
			base := (t*nbDF + f) * order * 2
			for i := 0; i < order; i++ {
				src := t + i - past
				if src < 0 || src >= frames {
					continue
				}
				c := complex(coefs[base+2*i], coefs[base+2*i+1])
				acc += spec[src][f] * c
			}
			output[t][f] = acc
		}
	}
	return nil
}

// unpackMask converts the [1, 1, T, E] decoder output into per-frame
// band gains.
func unpackMask(data []float32, frames, nbERB int) ([][]float32, error) {
	if len(data) != frames*nbERB {
		return nil, fmt.Errorf("expected a mask of %d*%d values, got %d", frames, nbERB, len(data))
	}
	mask := make([][]float32, frames)
	for t := range mask {
		mask[t] = data[t*nbERB : (t+1)*nbERB]
	}
	return mask, nil
}
