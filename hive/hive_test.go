package hive

import (
	"context"
	"errors"
	"testing"
	"time"

	"honeycomb/honeycomb"
	"honeycomb/layout"
	"honeycomb/relay"
	"honeycomb/ripple"

	. "github.com/smartystreets/goconvey/convey"
)

var quickTiming = ripple.Timing{
	RiseDuration:         20 * time.Millisecond,
	FallDuration:         20 * time.Millisecond,
	DelayPerUnitDistance: 5 * time.Millisecond,
	RestingValue:         1.0,
	PeakValue:            0.8,
	FrameInterval:        2 * time.Millisecond,
	Easing:               ripple.Linear,
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return false
}

func TestHive(t *testing.T) {
	Convey("Given a running hive on a local relay", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		events := relay.NewLocal()
		h, err := New(honeycomb.Classic, layout.DefaultFootprint, quickTiming, events, nil)
		So(err, ShouldBeNil)

		ran := make(chan error, 1)
		go func() { ran <- h.Run(ctx) }()
		So(eventually(func() bool { return events.Subscribers() == 1 }), ShouldBeTrue)

		Reset(func() {
			cancel()
			<-ran
			_ = h.Close()
			_ = events.Close()
		})

		Convey("The layout covers the shape", func() {
			So(h.Layout().Len(), ShouldEqual, honeycomb.Classic.Size())
			So(h.Shape(), ShouldResemble, honeycomb.Classic)
		})

		Convey("A tap ripples every cell and settles back", func() {
			So(h.Tap(ctx, honeycomb.Address{Col: 2, Row: 2}), ShouldBeNil)

			dipped := eventually(func() bool {
				v, _ := h.Scheduler().ValueOf(honeycomb.Address{Col: 2, Row: 2})
				return v < 1.0
			})
			So(dipped, ShouldBeTrue)

			settled := eventually(func() bool {
				for _, cv := range h.Frame().Values {
					if cv.Value != 1.0 {
						return false
					}
				}
				return true
			})
			So(settled, ShouldBeTrue)
		})

		Convey("An invalid tap is rejected before it reaches the relay", func() {
			err := h.Tap(ctx, honeycomb.Address{Col: 0, Row: 3})
			var invalid *honeycomb.InvalidAddressError
			So(errors.As(err, &invalid), ShouldBeTrue)
			So(errors.Is(err, honeycomb.ErrInvalidAddress), ShouldBeTrue)
		})

		Convey("A foreign tap outside the shape is logged and ignored", func() {
			So(events.Publish(ctx, relay.Event{Kind: relay.KindTap, Col: 9, Row: 9}), ShouldBeNil)
			So(h.Tap(ctx, honeycomb.Address{Col: 0, Row: 0}), ShouldBeNil)
			So(eventually(func() bool {
				v, _ := h.Scheduler().ValueOf(honeycomb.Address{Col: 0, Row: 0})
				return v < 1.0
			}), ShouldBeTrue)
		})

		Convey("Theme toggles flip the frame", func() {
			So(h.Frame().Dark, ShouldBeFalse)
			So(h.ToggleTheme(ctx), ShouldBeNil)
			So(eventually(func() bool { return h.Frame().Dark }), ShouldBeTrue)
			So(h.ToggleTheme(ctx), ShouldBeNil)
			So(eventually(func() bool { return !h.Frame().Dark }), ShouldBeTrue)
		})

		Convey("Run returns once its context ends", func() {
			cancel()
			select {
			case err := <-ran:
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				ran <- err
			case <-time.After(time.Second):
				So("Run did not return", ShouldBeEmpty)
			}
		})
	})

	Convey("An invalid shape is refused", t, func() {
		_, err := New(honeycomb.Shape{}, layout.DefaultFootprint, quickTiming, relay.NewLocal(), nil)
		So(errors.Is(err, honeycomb.ErrInvalidShape), ShouldBeTrue)
	})
}
