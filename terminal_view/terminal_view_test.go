package terminal_view

import (
	"context"
	"testing"
	"time"

	"honeycomb/hive"
	"honeycomb/honeycomb"
	"honeycomb/layout"
	"honeycomb/relay"
	"honeycomb/ripple"

	"github.com/gdamore/tcell/v2"
	. "github.com/smartystreets/goconvey/convey"
)

var terminalFootprint = layout.Footprint{CellSize: 8, HorizontalPacking: 0.85, VerticalPacking: 0.5}

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

func background(screen tcell.Screen, x, y int) tcell.Color {
	_, _, style, _ := screen.GetContent(x, y)
	_, bg, _ := style.Decompose()
	return bg
}

func TestView(t *testing.T) {
	Convey("Given a terminal view of a running hive", t, func() {
		screen := tcell.NewSimulationScreen("UTF-8")
		So(screen.Init(), ShouldBeNil)
		screen.SetSize(80, 30)

		ctx, cancel := context.WithCancel(context.Background())
		events := relay.NewLocal()
		timing := ripple.DefaultTiming
		timing.DelayPerUnitDistance = 5 * time.Millisecond
		h, err := hive.New(honeycomb.Classic, layout.DefaultFootprint, timing, events, nil)
		So(err, ShouldBeNil)
		go func() { _ = h.Run(ctx) }()
		So(eventually(func() bool { return events.Subscribers() == 1 }), ShouldBeTrue)

		v, err := New(screen, h, terminalFootprint, 10*time.Millisecond, nil)
		So(err, ShouldBeNil)
		Reset(func() {
			cancel()
			_ = h.Close()
			_ = events.Close()
			screen.Fini()
		})

		// Cell (2,2) sits at layout (13.6, 8); the origin is (22, 3) on 80x30.
		So(v.originX, ShouldEqual, 22)
		So(v.originY, ShouldEqual, 3)
		centerX, centerY := 38, 12

		Convey("Resting cells are drawn full size in the light palette", func() {
			v.draw()
			So(background(screen, centerX, centerY), ShouldEqual, lightPalette.cell)
			So(background(screen, 0, 0), ShouldEqual, lightPalette.background)
		})

		Convey("Clicking a cell ripples the hive", func() {
			So(v.handleEvent(ctx, tcell.NewEventMouse(centerX, centerY, tcell.Button1, tcell.ModNone)), ShouldBeTrue)
			So(eventually(func() bool {
				value, _ := h.Scheduler().ValueOf(honeycomb.Address{Col: 2, Row: 2})
				return value < 0.95
			}), ShouldBeTrue)

			Convey("And a dipping cell is drawn tinted", func() {
				v.draw()
				So(background(screen, centerX, centerY), ShouldNotEqual, lightPalette.cell)
			})
		})

		Convey("Holding the button taps only once", func() {
			v.buttonDown = true
			v.handleEvent(ctx, tcell.NewEventMouse(centerX, centerY, tcell.Button1, tcell.ModNone))
			time.Sleep(20 * time.Millisecond)
			value, _ := h.Scheduler().ValueOf(honeycomb.Address{Col: 2, Row: 2})
			So(value, ShouldEqual, 1.0)
		})

		Convey("Clicks outside the grid are ignored", func() {
			v.handleEvent(ctx, tcell.NewEventMouse(0, 0, tcell.Button1, tcell.ModNone))
			time.Sleep(20 * time.Millisecond)
			for _, cv := range h.Frame().Values {
				So(cv.Value, ShouldEqual, 1.0)
			}
		})

		Convey("'t' toggles the theme and the palette follows", func() {
			So(v.handleEvent(ctx, tcell.NewEventKey(tcell.KeyRune, 't', tcell.ModNone)), ShouldBeTrue)
			So(eventually(h.Dark), ShouldBeTrue)
			v.draw()
			So(background(screen, 0, 0), ShouldEqual, darkPalette.background)
		})

		Convey("'q' and Escape quit", func() {
			So(v.handleEvent(ctx, tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)), ShouldBeFalse)
			So(v.handleEvent(ctx, tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)), ShouldBeFalse)
		})

		Convey("Run returns when the user quits", func() {
			done := make(chan error, 1)
			go func() { done <- v.Run(ctx) }()
			So(screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)), ShouldBeNil)
			select {
			case err := <-done:
				So(err, ShouldBeNil)
			case <-time.After(2 * time.Second):
				So("Run did not return", ShouldBeEmpty)
			}
		})
	})

	Convey("depth maps rest to 0 and peak to 1", t, func() {
		So(depth(1.0, 1.0, 0.8), ShouldEqual, 0)
		So(depth(0.8, 1.0, 0.8), ShouldAlmostEqual, 1, 1e-9)
		So(depth(0.9, 1.0, 0.8), ShouldAlmostEqual, 0.5, 1e-9)
		So(depth(1.2, 1.0, 0.8), ShouldEqual, 0)
		So(depth(0.5, 0.5, 0.5), ShouldEqual, 0)
	})
}
