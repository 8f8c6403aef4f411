// Package fvad implements voice activity detection with the WebRTC VAD.
//
// The detector links libfvad through cgo and is only built with the tag
// 'fvad'; without it Available is false and New fails.
package fvad

import (
	"math"
	"time"

	"github.com/xaionaro-go/dfenhance/pkg/audio"
)

// Mode is the aggressiveness of the detector: 0 is the least and 3 is
// the most aggressive at filtering out non-voice.
type Mode int

const (
	ModeQuality = Mode(iota)
	ModeLowBitrate
	ModeAggressive
	ModeVeryAggressive
)

var supportedSampleRates = []audio.SampleRate{8000, 16000, 32000, 48000}

// Supported reports whether frames of frameSize samples at the given
// sample rate can be classified: the WebRTC VAD accepts 10, 20 or 30 ms
// frames at 8, 16, 32 or 48 kHz. It is always false if the detector
// is not Available.
func Supported(sampleRate audio.SampleRate, frameSize int) bool {
	return Available && frameSupported(sampleRate, frameSize)
}

func frameSupported(sampleRate audio.SampleRate, frameSize int) bool {
	rateOK := false
	for _, r := range supportedSampleRates {
		if r == sampleRate {
			rateOK = true
			break
		}
	}
	if !rateOK {
		return false
	}
	for _, d := range []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond} {
		if int(uint64(d)*uint64(sampleRate)/uint64(time.Second)) == frameSize {
			return true
		}
	}
	return false
}

func toInt16(v float32) int16 {
	s := math.Round(float64(v) * math.MaxInt16)
	switch {
	case s > math.MaxInt16:
		return math.MaxInt16
	case s < math.MinInt16:
		return math.MinInt16
	}
	return int16(s)
}
