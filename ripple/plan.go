package ripple

import (
	"time"

	"honeycomb/honeycomb"
)

// Step is one cell's share of a ripple: its distance to the origin and the delay
// before its first phase begins.
type Step struct {
	honeycomb.Address
	Distance float64
	Delay    time.Duration
}

// Plan computes the step of every cell of shape for a ripple starting at origin,
// origin included (distance and delay zero). Steps come back in address order.
func Plan(
	shape honeycomb.Shape,
	origin honeycomb.Address,
	delayPerUnit time.Duration,
) (steps []Step, err error) {
	if err = shape.Validate(); err != nil {
		return
	}
	if err = shape.Check(origin); err != nil {
		return
	}

	steps = make([]Step, 0, shape.Size())
	shape.Visit(func(addr honeycomb.Address) {
		d := honeycomb.Distance(addr, origin)
		steps = append(steps, Step{
			Address:  addr,
			Distance: d,
			Delay:    delayFor(d, delayPerUnit),
		})
	})
	return
}
