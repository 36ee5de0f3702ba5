package atomic_float

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAtomicSet(t *testing.T) {
	Convey("Given an atomic float at rest", t, func() {
		af := NewAtomicFloat64(1.0)

		Convey("AtomicSet overwrites the value", func() {
			af.AtomicSet(0.8)
			So(af.AtomicRead(), ShouldEqual, 0.8)
		})

		Convey("Readers never observe a value that was not written", func() {
			done := make(chan struct{})
			go func() {
				defer close(done)
				for i := 0; i < 10000; i++ {
					if i%2 == 0 {
						af.AtomicSet(0.8)
					} else {
						af.AtomicSet(1.0)
					}
				}
			}()

			ok := true
			for i := 0; i < 10000; i++ {
				if v := af.AtomicRead(); v != 0.8 && v != 1.0 {
					ok = false
				}
			}
			<-done
			So(ok, ShouldBeTrue)
		})
	})
}
