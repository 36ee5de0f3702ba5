package relay

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"honeycomb/honeycomb"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

func receive(events <-chan Event) (Event, bool) {
	select {
	case e, ok := <-events:
		return e, ok
	case <-time.After(time.Second):
		return Event{}, false
	}
}

func TestCodec(t *testing.T) {
	Convey("Events survive the wire", t, func() {
		payload, err := Encode(Tap(honeycomb.Address{Col: 2, Row: 3}))
		So(err, ShouldBeNil)
		So(string(payload), ShouldEqual, `{"kind":"tap","col":2,"row":3}`)

		e, err := Decode(payload)
		So(err, ShouldBeNil)
		So(e.Address(), ShouldResemble, honeycomb.Address{Col: 2, Row: 3})

		Convey("Unknown kinds and garbage are rejected", func() {
			_, err := Decode([]byte(`{"kind":"pinch"}`))
			So(errors.Is(err, ErrUnknownKind), ShouldBeTrue)
			_, err = Decode([]byte(`not json`))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestLocal(t *testing.T) {
	Convey("Given a local relay with two subscribers", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		l := NewLocal()
		Reset(func() {
			cancel()
			_ = l.Close()
		})

		first, err := l.Subscribe(ctx)
		So(err, ShouldBeNil)
		second, err := l.Subscribe(ctx)
		So(err, ShouldBeNil)

		Convey("Both receive every event in order", func() {
			So(l.Publish(ctx, Tap(honeycomb.Address{Col: 1, Row: 1})), ShouldBeNil)
			So(l.Publish(ctx, Theme()), ShouldBeNil)

			for _, sub := range []<-chan Event{first, second} {
				e, ok := receive(sub)
				So(ok, ShouldBeTrue)
				So(e.Kind, ShouldEqual, KindTap)
				e, ok = receive(sub)
				So(ok, ShouldBeTrue)
				So(e.Kind, ShouldEqual, KindTheme)
			}
		})

		Convey("A cancelled subscription is closed and skipped", func() {
			subCtx, subCancel := context.WithCancel(ctx)
			third, err := l.Subscribe(subCtx)
			So(err, ShouldBeNil)
			subCancel()

			_, ok := receive(third)
			So(ok, ShouldBeFalse)
			So(l.Publish(ctx, Theme()), ShouldBeNil)
		})

		Convey("Close ends every subscription", func() {
			So(l.Close(), ShouldBeNil)
			_, ok := receive(first)
			So(ok, ShouldBeFalse)
			So(errors.Is(l.Publish(ctx, Theme()), ErrClosed), ShouldBeTrue)
			_, err := l.Subscribe(ctx)
			So(errors.Is(err, ErrClosed), ShouldBeTrue)
		})
	})
}

// TestRedis runs against a live server only when HONEYCOMB_TEST_REDIS_ADDR is set.
func TestRedis(t *testing.T) {
	addr := os.Getenv("HONEYCOMB_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("HONEYCOMB_TEST_REDIS_ADDR not set")
	}

	Convey("Given a redis relay", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		r, err := NewRedis(ctx, RedisOptions{
			Addr:    addr,
			Channel: ChannelName(uuid.NewString()),
			Source:  "test",
		}, nil)
		So(err, ShouldBeNil)
		Reset(func() {
			cancel()
			_ = r.Close()
		})

		events, err := r.Subscribe(ctx)
		So(err, ShouldBeNil)

		So(r.Publish(ctx, Tap(honeycomb.Address{Col: 0, Row: 2})), ShouldBeNil)
		e, ok := receive(events)
		So(ok, ShouldBeTrue)
		So(e.Kind, ShouldEqual, KindTap)
		So(e.Address(), ShouldResemble, honeycomb.Address{Col: 0, Row: 2})
		So(e.Source, ShouldEqual, "test")
	})
}
