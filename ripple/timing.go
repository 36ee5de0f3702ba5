package ripple

import (
	"errors"
	"fmt"
	"time"
)

// Timing holds the animation constants of a ripple. Every cell runs the same
// two phases; only the delay before the first phase differs per cell.
type Timing struct {
	// RiseDuration is how long a cell takes to move from its current value to PeakValue.
	RiseDuration time.Duration
	// FallDuration is how long a cell takes to move from PeakValue back to RestingValue.
	FallDuration time.Duration
	// DelayPerUnitDistance is multiplied by a cell's index-space distance to the origin.
	DelayPerUnitDistance time.Duration
	RestingValue         float64
	PeakValue            float64
	// FrameInterval is the tick at which a running phase writes its value.
	FrameInterval time.Duration
	Easing        Easing
}

// DefaultTiming is the stock ripple: 200ms down to 0.8, 200ms back up, 40ms per cell of distance.
var DefaultTiming = Timing{
	RiseDuration:         200 * time.Millisecond,
	FallDuration:         200 * time.Millisecond,
	DelayPerUnitDistance: 40 * time.Millisecond,
	RestingValue:         1.0,
	PeakValue:            0.8,
	FrameInterval:        16 * time.Millisecond,
	Easing:               EaseInOut,
}

// ErrInvalidTiming is returned for negative durations, a non-positive frame interval
// or an unknown easing.
var ErrInvalidTiming = errors.New("invalid ripple timing")

func (t Timing) Validate() error {
	switch {
	case t.RiseDuration < 0 || t.FallDuration < 0 || t.DelayPerUnitDistance < 0:
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidTiming)
	case t.FrameInterval <= 0:
		return fmt.Errorf("%w: frame interval %v", ErrInvalidTiming, t.FrameInterval)
	}
	if _, err := ParseEasing(string(t.Easing)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTiming, err)
	}
	return nil
}

// Total returns how long a cell at distance d takes from trigger to rest.
func (t Timing) Total(d float64) time.Duration {
	return delayFor(d, t.DelayPerUnitDistance) + t.RiseDuration + t.FallDuration
}

func delayFor(distance float64, perUnit time.Duration) time.Duration {
	return time.Duration(distance * float64(perUnit))
}
