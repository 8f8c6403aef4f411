package audio

import (
	"fmt"
	"time"
)

// Buffer is a planar float audio buffer: Samples[channel][sampleIndex],
// values are expected to be within [-1, 1].
type Buffer struct {
	SampleRate SampleRate
	Samples    [][]float32
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer(sampleRate SampleRate, channels Channel, length int) *Buffer {
	samples := make([][]float32, channels)
	for ch := range samples {
		samples[ch] = make([]float32, length)
	}
	return &Buffer{
		SampleRate: sampleRate,
		Samples:    samples,
	}
}

func (b *Buffer) Channels() Channel {
	return Channel(len(b.Samples))
}

// Len returns the amount of samples per channel.
func (b *Buffer) Len() int {
	if len(b.Samples) == 0 {
		return 0
	}
	return len(b.Samples[0])
}

func (b *Buffer) Duration() time.Duration {
	if b.SampleRate == 0 {
		return 0
	}
	return time.Duration(b.Len()) * time.Second / time.Duration(b.SampleRate)
}

// Validate checks that all channels have the same length.
func (b *Buffer) Validate() error {
	if b.SampleRate == 0 {
		return fmt.Errorf("sample rate is not set")
	}
	if len(b.Samples) == 0 {
		return fmt.Errorf("no channels")
	}
	l := len(b.Samples[0])
	for ch, samples := range b.Samples {
		if len(samples) != l {
			return fmt.Errorf("channel %d has %d samples, while channel 0 has %d", ch, len(samples), l)
		}
	}
	return nil
}

// Pad appends n zero samples to every channel.
func (b *Buffer) Pad(n int) {
	if n <= 0 {
		return
	}
	for ch := range b.Samples {
		b.Samples[ch] = append(b.Samples[ch], make([]float32, n)...)
	}
}

// Slice returns a copy of the samples in range [from, to) of every
// channel. Positions outside of the buffer are filled with zeros.
func (b *Buffer) Slice(from, to int) *Buffer {
	if to < from {
		to = from
	}
	result := NewBuffer(b.SampleRate, b.Channels(), to-from)
	for ch, samples := range b.Samples {
		srcFrom, srcTo := max(from, 0), min(to, len(samples))
		if srcFrom >= srcTo {
			continue
		}
		copy(result.Samples[ch][srcFrom-from:], samples[srcFrom:srcTo])
	}
	return result
}

func (b *Buffer) Copy() *Buffer {
	return b.Slice(0, b.Len())
}
