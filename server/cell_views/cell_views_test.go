package cell_views

import (
	"bytes"
	"context"
	"html/template"
	"testing"

	"honeycomb/hive"
	"honeycomb/honeycomb"
	"honeycomb/layout"
	"honeycomb/ripple"

	. "github.com/smartystreets/goconvey/convey"
)

func classicLayout() *layout.Layout {
	l, err := layout.Compute(honeycomb.Classic, layout.Footprint{
		CellSize:          100,
		HorizontalPacking: 0.85,
		VerticalPacking:   0.75,
	})
	if err != nil {
		panic(err)
	}
	return l
}

func restingFrame(shape honeycomb.Shape) hive.Frame {
	var frame hive.Frame
	shape.Visit(func(addr honeycomb.Address) {
		frame.Values = append(frame.Values, ripple.CellValue{Address: addr, Value: 1})
	})
	return frame
}

func TestCellModel(t *testing.T) {
	Convey("Icons follow the column-count rule", t, func() {
		So(IconFor(honeycomb.Classic, honeycomb.Address{Col: 0, Row: 0}), ShouldEqual, Icons[0])
		// column 2 has 5 cells: 2*5+1
		So(IconFor(honeycomb.Classic, honeycomb.Address{Col: 2, Row: 1}), ShouldEqual, Icons[11])
		// column 4 has 3 cells: 4*3+2
		So(IconFor(honeycomb.Classic, honeycomb.Address{Col: 4, Row: 2}), ShouldEqual, Icons[14])
		So(IconFor(honeycomb.Shape{30}, honeycomb.Address{Col: 0, Row: 25}), ShouldEqual, Icons[5])
		So(IconFor(honeycomb.Classic, honeycomb.Address{Col: 9, Row: 0}), ShouldBeEmpty)
	})

	Convey("Given the converter of the classic layout", t, func() {
		convert := Converter(classicLayout())

		Convey("Cells are centered in their boxes and carry the frame's scales", func() {
			frame := restingFrame(honeycomb.Classic)
			frame.Values[0].Value = 0.85
			frame.Dark = true

			grid := convert(frame)
			So(len(grid.Cells), ShouldEqual, honeycomb.Classic.Size())
			So(grid.Dark, ShouldBeTrue)

			first := grid.Cells[0]
			So(first.Id, ShouldEqual, "0-0")
			So(first.Scale, ShouldEqual, 0.85)
			// column 0 holds 3 cells: offset (425-255)/2 = 85, center +50
			So(first.CX, ShouldAlmostEqual, 135, 1e-9)
			So(first.CY, ShouldAlmostEqual, 50, 1e-9)
			So(grid.Cells[1].Scale, ShouldEqual, 1)

			So(grid.Width, ShouldAlmostEqual, 440, 1e-9)
			So(grid.Height, ShouldAlmostEqual, 400, 1e-9)
		})

		Convey("Grids do not share cell storage", func() {
			frame := restingFrame(honeycomb.Classic)
			a := convert(frame)
			frame.Values[0].Value = 0.9
			b := convert(frame)
			So(a.Cells[0].Scale, ShouldEqual, 1)
			So(b.Cells[0].Scale, ShouldEqual, 0.9)
		})
	})
}

func TestHoneycombView(t *testing.T) {
	Convey("Given a honeycomb view", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		Reset(cancel)

		convert := Converter(classicLayout())
		grids := make(chan Grid)
		hv := NewHoneycombView(ctx.Done(), grids)
		frame := restingFrame(honeycomb.Classic)

		Convey("The first grid updates every cell", func() {
			grids <- convert(frame)
			updates := <-hv.Updates()
			So(len(updates), ShouldEqual, honeycomb.Classic.Size())
			So(updates[0].EleId, ShouldEqual, "0-0-cell")
			So(updates[0].Ops[0].Key, ShouldEqual, "transform")
			So(updates[0].Ops[0].Value, ShouldEqual, "scale(1.000)")

			Convey("Later grids update only the cells that moved", func() {
				frame.Values[3].Value = 0.8
				grids <- convert(frame)
				updates := <-hv.Updates()
				So(len(updates), ShouldEqual, 1)
				So(updates[0].EleId, ShouldEqual, "1-0-cell")
				So(updates[0].Ops[0].Value, ShouldEqual, "scale(0.800)")

				grids <- convert(frame)
				So(<-hv.Updates(), ShouldBeEmpty)
			})
		})

		Convey("The template renders one scaled group per cell", func() {
			t := template.New("test")
			name, err := hv.Parse(t)
			So(err, ShouldBeNil)

			var out bytes.Buffer
			So(t.ExecuteTemplate(&out, name, convert(frame)), ShouldBeNil)
			html := out.String()
			So(html, ShouldContainSubstring, `id="0-0-cell"`)
			So(html, ShouldContainSubstring, `id="4-2-hex"`)
			So(html, ShouldContainSubstring, `data-col="2" data-row="4"`)
			So(html, ShouldContainSubstring, `transform="scale(1.000)"`)
			So(html, ShouldContainSubstring, LightTheme.CellFill)
		})
	})
}

func TestThemeView(t *testing.T) {
	Convey("Given a theme view", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		Reset(cancel)

		convert := Converter(classicLayout())
		grids := make(chan Grid)
		tv := NewThemeView(ctx.Done(), grids)
		frame := restingFrame(honeycomb.Classic)

		grids <- convert(frame)
		first := <-tv.Updates()
		So(first[0].EleId, ShouldEqual, "page")
		So(first[0].Ops[0].Value, ShouldContainSubstring, LightTheme.Background)
		So(first[1].Ops[0].Value, ShouldEqual, LightTheme.Toggle)
		So(len(first), ShouldEqual, 2+honeycomb.Classic.Size())

		Convey("Nothing is sent until the theme flips", func() {
			grids <- convert(frame)
			So(<-tv.Updates(), ShouldBeEmpty)

			frame.Dark = true
			grids <- convert(frame)
			flipped := <-tv.Updates()
			So(flipped[0].Ops[0].Value, ShouldContainSubstring, DarkTheme.Background)
			So(flipped[2].EleId, ShouldEqual, "0-0-hex")
			So(flipped[2].Ops[0].Value, ShouldEqual, DarkTheme.CellFill)
		})

		Convey("The toggle renders with the current theme", func() {
			t := template.New("test")
			name, err := tv.Parse(t)
			So(err, ShouldBeNil)

			var out bytes.Buffer
			So(t.ExecuteTemplate(&out, name, Grid{Dark: true}), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, `id="theme-toggle"`)
			So(out.String(), ShouldContainSubstring, DarkTheme.Toggle)
		})
	})
}
