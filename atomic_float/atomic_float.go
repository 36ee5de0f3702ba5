package atomic_float

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 encapsulates a float64 for non-locking atomic operations.
// Each ripple cell owns one: a single animation timeline writes it while any
// number of views read it, so the bits are stored in an atomic.Uint64 and
// converted on the way in and out.
type AtomicFloat64 struct {
	bits atomic.Uint64
}

// NewAtomicFloat64 encapsulates a float64 for atomic operations.
func NewAtomicFloat64(val float64) *AtomicFloat64 {
	af := &AtomicFloat64{}
	af.bits.Store(math.Float64bits(val))
	return af
}

// Atomically read the float64.
// Readers never see a torn or stale local copy of the value.
func (af *AtomicFloat64) AtomicRead() (value float64) {
	return math.Float64frombits(af.bits.Load())
}

// AtomicSet unconditionally stores the float64.
// Animation frames overwrite the previous frame, so there is nothing to compare against.
func (af *AtomicFloat64) AtomicSet(newVal float64) {
	af.bits.Store(math.Float64bits(newVal))
}

