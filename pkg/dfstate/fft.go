package dfstate

import (
	"github.com/brettbuddin/fourier"
	"github.com/mjibson/go-dsp/fft"
)

// realFFT is a real-input FFT of a fixed size. The forward transform
// returns size/2+1 bins, the inverse one is not normalized.
type realFFT struct {
	size       int
	powerOfTwo bool
}

func newRealFFT(size int) realFFT {
	return realFFT{
		size:       size,
		powerOfTwo: size&(size-1) == 0,
	}
}

func (f realFFT) transform(buf []complex128) []complex128 {
	if f.powerOfTwo {
		if err := fourier.Forward(buf); err != nil {
			panic(err)
		}
		return buf
	}
	return fft.FFT(buf)
}

// Forward computes the spectrum of input (len == size) into output
// (len == size/2+1), scaling every bin by norm. buf is a scratch buffer
// of length size.
func (f realFFT) Forward(input []float32, output []complex64, norm float32, buf []complex128) {
	for idx, v := range input {
		buf[idx] = complex(float64(v), 0)
	}
	spectrum := f.transform(buf)
	for idx := range output {
		c := spectrum[idx]
		output[idx] = complex64(complex(real(c)*float64(norm), imag(c)*float64(norm)))
	}
}

// Inverse computes the real signal (len == size) of the Hermitian
// spectrum given by its first size/2+1 bins. The imaginary parts of the
// DC and Nyquist bins are ignored.
func (f realFFT) Inverse(input []complex64, output []float32, buf []complex128) {
	n := f.size
	half := n / 2
	for k := 0; k <= half; k++ {
		c := complex128(input[k])
		if k == 0 || k == half {
			c = complex(real(c), 0)
		}
		// ifft(X) = conj(fft(conj(X))), only the real part is kept
		buf[k] = complex(real(c), -imag(c))
		if k != 0 && k != half {
			buf[n-k] = c
		}
	}
	signal := f.transform(buf)
	for idx := range output {
		output[idx] = float32(real(signal[idx]))
	}
}
