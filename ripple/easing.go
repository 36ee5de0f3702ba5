package ripple

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

// Easing selects how a phase moves between its endpoints.
type Easing string

const (
	Linear    Easing = "linear"
	EaseInOut Easing = "ease"
	// Spring follows a damped harmonica spring toward the phase target and snaps
	// onto it when the phase's time is up. It never leaves the phase's range.
	Spring Easing = "spring"
)

// Spring parameters: a slightly under-damped spring settles within a 200ms phase.
const (
	springFrequency = 30.0
	springDamping   = 0.6
)

// ParseEasing accepts the config spelling of an easing. An empty string is the default.
func ParseEasing(s string) (Easing, error) {
	switch Easing(s) {
	case "":
		return EaseInOut, nil
	case Linear, EaseInOut, Spring:
		return Easing(s), nil
	}
	return "", fmt.Errorf("unknown easing %q", s)
}

// curve yields the value of a phase for each frame. Next is called once per frame
// with the phase progress in [0, 1).
type curve interface {
	Next(progress float64) float64
}

func (e Easing) curve(from, to float64, frame time.Duration) curve {
	switch e {
	case Linear:
		return &tween{from: from, to: to, ease: func(p float64) float64 { return p }}
	case Spring:
		fps := int(time.Second / frame)
		if fps < 1 {
			fps = 1
		}
		return &spring{
			spring: harmonica.NewSpring(harmonica.FPS(fps), springFrequency, springDamping),
			pos:    from,
			from:   from,
			target: to,
		}
	default:
		return &tween{from: from, to: to, ease: easeInOut}
	}
}

type tween struct {
	from, to float64
	ease     func(float64) float64
}

func (tw *tween) Next(progress float64) float64 {
	return tw.from + (tw.to-tw.from)*tw.ease(progress)
}

// easeInOut is the cubic ease-in-out curve.
func easeInOut(p float64) float64 {
	if p < 0.5 {
		return 4 * p * p * p
	}
	return 1 - math.Pow(-2*p+2, 3)/2
}

type spring struct {
	spring       harmonica.Spring
	pos, vel     float64
	from, target float64
}

// Next clamps the spring to the span between its start and target. The overshoot
// is cut off so a cell never leaves [peak, resting].
func (s *spring) Next(_ float64) float64 {
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, s.target)
	return math.Max(math.Min(s.from, s.target), math.Min(math.Max(s.from, s.target), s.pos))
}
