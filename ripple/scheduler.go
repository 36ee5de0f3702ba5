// ripple animates a wave of scale pulses across a honeycomb. Every cell owns a
// scalar resting at Timing.RestingValue; Trigger starts, for every cell at once,
// a delayed dip to Timing.PeakValue and back, the delay growing with the cell's
// index-space distance from the tapped cell.
package ripple

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"honeycomb/atomic_float"
	"honeycomb/honeycomb"

	channerics "github.com/niceyeti/channerics/channels"
)

// ErrClosed is returned by Trigger once the scheduler has been torn down.
var ErrClosed = errors.New("ripple scheduler closed")

// CellValue is a reading of one cell's scalar.
type CellValue struct {
	honeycomb.Address
	Value float64 `json:"value"`
}

// cell is the per-address slot: the scalar plus the handle of the timeline currently
// allowed to write it. Superseding a timeline means cancelling it and waiting on its
// done chan before writing, so a cell never has two writers.
type cell struct {
	value *atomic_float.AtomicFloat64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   <-chan struct{}
}

// Scheduler owns the ripple state of one grid. The cell map is built once in
// NewScheduler and only read afterwards, so lookups need no lock.
type Scheduler struct {
	shape  honeycomb.Shape
	cells  map[honeycomb.Address]*cell
	timing atomic.Pointer[Timing]

	rootCtx context.Context
	stop    context.CancelFunc
	// mu guards closed against timelines being added while Close waits.
	mu      sync.RWMutex
	closed  bool
	running sync.WaitGroup

	onSettle func(honeycomb.Address)
	logger   *log.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSettleHook registers fn to be called whenever a cell's timeline finishes its
// second phase. fn runs on the timeline's goroutine and should return quickly.
func WithSettleHook(fn func(honeycomb.Address)) Option {
	return func(s *Scheduler) { s.onSettle = fn }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// NewScheduler creates the resting scalar of every cell of shape.
func NewScheduler(
	shape honeycomb.Shape,
	timing Timing,
	opts ...Option,
) (*Scheduler, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if err := timing.Validate(); err != nil {
		return nil, err
	}

	ctx, stop := context.WithCancel(context.Background())
	s := &Scheduler{
		shape:   shape.Clone(),
		cells:   make(map[honeycomb.Address]*cell, shape.Size()),
		rootCtx: ctx,
		stop:    stop,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.timing.Store(&timing)
	shape.Visit(func(addr honeycomb.Address) {
		s.cells[addr] = &cell{value: atomic_float.NewAtomicFloat64(timing.RestingValue)}
	})
	return s, nil
}

// Shape returns the shape the scheduler was built for.
func (s *Scheduler) Shape() honeycomb.Shape {
	return s.shape.Clone()
}

// Timing returns the timing subsequent triggers will use.
func (s *Scheduler) Timing() Timing {
	return *s.timing.Load()
}

// SetTiming replaces the timing for subsequent triggers; running timelines keep theirs.
func (s *Scheduler) SetTiming(timing Timing) error {
	if err := timing.Validate(); err != nil {
		return err
	}
	s.timing.Store(&timing)
	return nil
}

// ValueOf returns the current scalar of addr.
func (s *Scheduler) ValueOf(addr honeycomb.Address) (float64, error) {
	c, ok := s.cells[addr]
	if !ok {
		return 0, &honeycomb.InvalidAddressError{Address: addr, Shape: s.shape}
	}
	return c.value.AtomicRead(), nil
}

// Values returns a snapshot of every scalar in address order.
func (s *Scheduler) Values() []CellValue {
	values := make([]CellValue, 0, len(s.cells))
	s.shape.Visit(func(addr honeycomb.Address) {
		values = append(values, CellValue{
			Address: addr,
			Value:   s.cells[addr].value.AtomicRead(),
		})
	})
	return values
}

// Trigger starts a ripple at origin and returns immediately. Every cell's new
// timeline supersedes whatever that cell was doing; there is no queue of waves.
// An origin outside the shape returns an InvalidAddressError and changes nothing.
func (s *Scheduler) Trigger(origin honeycomb.Address) error {
	timing := s.Timing()
	steps, err := Plan(s.shape, origin, timing.DelayPerUnitDistance)
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	for _, step := range steps {
		s.start(step, timing)
	}
	return nil
}

// start replaces the timeline of step's cell. The new goroutine only writes once
// the one it replaced has returned.
func (s *Scheduler) start(step Step, timing Timing) {
	c := s.cells[step.Address]
	ctx, cancel := context.WithCancel(s.rootCtx)
	done := make(chan struct{})

	c.mu.Lock()
	prevCancel, prevDone := c.cancel, c.done
	c.cancel, c.done = cancel, done
	c.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
	}

	s.running.Add(1)
	go func() {
		defer s.running.Done()
		defer close(done)
		defer cancel()

		if prevDone != nil {
			<-prevDone
		}
		if s.animate(ctx, step, c.value, timing) && s.onSettle != nil {
			s.onSettle(step.Address)
		}
	}()
}

// animate runs idle -> delay -> rising -> falling -> idle. It returns true only when
// both phases ran to completion; a cancelled timeline leaves the value where it was.
func (s *Scheduler) animate(
	ctx context.Context,
	step Step,
	value *atomic_float.AtomicFloat64,
	timing Timing,
) bool {
	if !sleep(ctx, step.Delay) {
		return false
	}
	if !phase(ctx, value, value.AtomicRead(), timing.PeakValue, timing.RiseDuration, timing) {
		return false
	}
	return phase(ctx, value, timing.PeakValue, timing.RestingValue, timing.FallDuration, timing)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// phase moves value from -> to over d, writing once per frame, and always ends by
// writing exactly `to` unless cancelled first.
func phase(
	ctx context.Context,
	value *atomic_float.AtomicFloat64,
	from, to float64,
	d time.Duration,
	timing Timing,
) bool {
	if ctx.Err() != nil {
		return false
	}
	if d <= 0 {
		value.AtomicSet(to)
		return true
	}

	// The ticker must not outlive the phase.
	phaseCtx, stopTicker := context.WithCancel(ctx)
	defer stopTicker()

	curve := timing.Easing.curve(from, to, timing.FrameInterval)
	ticks := channerics.NewTicker(phaseCtx.Done(), timing.FrameInterval)
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-ticks:
			if !ok || ctx.Err() != nil {
				return false
			}
			progress := float64(time.Since(start)) / float64(d)
			if progress >= 1 {
				value.AtomicSet(to)
				return true
			}
			value.AtomicSet(curve.Next(progress))
		}
	}
}

// Close stops every running timeline and waits for them to exit. Scalars keep
// whatever value they had reached. Close is idempotent.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.stop()
	s.running.Wait()
	s.logger.Println("ripple: scheduler closed")
	return nil
}
