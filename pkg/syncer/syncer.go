// Package syncer measures time shifts between signals.
package syncer

import (
	"context"

	"github.com/xaionaro-go/dfenhance/pkg/audio"
)

type ShiftResult struct {
	Shift      float64 // Delay in samples relative to the reference (positive means comparison is ahead)
	Confidence float64 // Confidence score (0..1)
}

type Syncer interface {
	audio.AbstractAnalyzer

	// CalculateShiftBetween returns the amount of samples each
	// comparison signal needs to be shifted by to get it synced
	// with the reference signal. All the signals must have the
	// sample rate of the Syncer.
	CalculateShiftBetween(
		ctx context.Context,
		reference *audio.Buffer,
		comparisons ...*audio.Buffer,
	) ([]ShiftResult, error)
}
