// hive ties one honeycomb together: its shape, layout, ripple scheduler, theme
// and the relay its taps travel over. Front ends publish taps through the hive
// and read frames from it; only the hive's run loop triggers ripples.
package hive

import (
	"context"
	"log"
	"sync/atomic"

	"honeycomb/honeycomb"
	"honeycomb/layout"
	"honeycomb/relay"
	"honeycomb/ripple"
)

// Frame is what a front end draws: every cell's current scale and the theme.
type Frame struct {
	Values []ripple.CellValue
	Dark   bool
}

// Hive is one live grid.
type Hive struct {
	shape     honeycomb.Shape
	layout    *layout.Layout
	scheduler *ripple.Scheduler
	relay     relay.Relay
	dark      atomic.Bool
	logger    *log.Logger
}

// New validates the shape, lays it out and starts a resting scheduler.
func New(
	shape honeycomb.Shape,
	fp layout.Footprint,
	timing ripple.Timing,
	events relay.Relay,
	logger *log.Logger,
) (*Hive, error) {
	if logger == nil {
		logger = log.Default()
	}
	l, err := layout.Compute(shape, fp)
	if err != nil {
		return nil, err
	}
	scheduler, err := ripple.NewScheduler(shape, timing, ripple.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &Hive{
		shape:     shape.Clone(),
		layout:    l,
		scheduler: scheduler,
		relay:     events,
		logger:    logger,
	}, nil
}

func (h *Hive) Shape() honeycomb.Shape       { return h.shape.Clone() }
func (h *Hive) Layout() *layout.Layout       { return h.layout }
func (h *Hive) Scheduler() *ripple.Scheduler { return h.scheduler }
func (h *Hive) Dark() bool                   { return h.dark.Load() }

// Tap publishes a tap on addr. The address is checked here so callers get an
// InvalidAddressError synchronously instead of a silently dropped relay event.
func (h *Hive) Tap(ctx context.Context, addr honeycomb.Address) error {
	if err := h.shape.Check(addr); err != nil {
		return err
	}
	return h.relay.Publish(ctx, relay.Tap(addr))
}

// ToggleTheme publishes a theme toggle.
func (h *Hive) ToggleTheme(ctx context.Context) error {
	return h.relay.Publish(ctx, relay.Theme())
}

// Frame snapshots the grid for drawing.
func (h *Hive) Frame() Frame {
	return Frame{
		Values: h.scheduler.Values(),
		Dark:   h.dark.Load(),
	}
}

// Run applies relay events until ctx is done or the relay closes its subscription.
func (h *Hive) Run(ctx context.Context) error {
	events, err := h.relay.Subscribe(ctx)
	if err != nil {
		return err
	}
	for e := range events {
		h.apply(e)
	}
	return ctx.Err()
}

func (h *Hive) apply(e relay.Event) {
	switch e.Kind {
	case relay.KindTap:
		// Events from other processes were checked against their shape, not ours.
		if err := h.scheduler.Trigger(e.Address()); err != nil {
			h.logger.Printf("hive: tap %v from %q: %v", e.Address(), e.Source, err)
		}
	case relay.KindTheme:
		// Run is the only writer.
		h.dark.Store(!h.dark.Load())
	}
}

// Close tears down the scheduler. The relay belongs to the caller.
func (h *Hive) Close() error {
	return h.scheduler.Close()
}
