// cell_views contains the honeycomb's web views and their Grid view-model.
package cell_views

import (
	"fmt"
	"math"
	"strings"

	"honeycomb/hive"
	"honeycomb/honeycomb"
	"honeycomb/layout"
)

// Cell is one hexagon, in page pixels. Fields are used directly as template parameters.
type Cell struct {
	Id       string
	Col, Row int
	// CX and CY are the center of the cell's box.
	CX, CY float64
	Size   float64
	Scale  float64
	Icon   string
}

// Grid is the view-model every honeycomb view is built from.
type Grid struct {
	Cells []Cell
	// Canvas size: the layout's bounding box plus the overhang of the last row and column.
	Width, Height float64
	Dark          bool
}

// Icons are assigned to cells by position.
var Icons = []string{
	"⌨️", "💻", "🖥️", "📱", "🚀", "⚙️", "💡", "🤖", "👾", "🔥",
	"💾", "🔌", "🌐", "📊", "🔍", "🎮", "🔒", "📡", "💫", "⚡️",
}

// IconFor picks the icon of addr: its column index times the column's cell count, plus
// its row, wrapped to the table.
func IconFor(shape honeycomb.Shape, addr honeycomb.Address) string {
	if !shape.Contains(addr) {
		return ""
	}
	return Icons[(addr.Col*shape[addr.Col]+addr.Row)%len(Icons)]
}

type Theme struct {
	Background string
	CellFill   string
	CellStroke string
	Toggle     string
}

var (
	LightTheme = Theme{
		Background: "#f0f0f0",
		CellFill:   "rgba(255, 255, 255, 0.9)",
		CellStroke: "rgba(0, 0, 0, 0.2)",
		Toggle:     "☀️",
	}
	DarkTheme = Theme{
		Background: "#1a1a1a",
		CellFill:   "rgba(40, 40, 40, 0.9)",
		CellStroke: "rgba(255, 255, 255, 0.1)",
		Toggle:     "🌙",
	}
)

func ThemeFor(dark bool) Theme {
	if dark {
		return DarkTheme
	}
	return LightTheme
}

// Converter returns the hive.Frame -> Grid conversion for l. Positions are fixed per
// layout, so only scales and theme vary between grids.
func Converter(l *layout.Layout) func(hive.Frame) Grid {
	fp := l.Footprint
	width := l.Width + fp.CellSize*(1-fp.HorizontalPacking)
	height := l.Height + fp.CellSize*(1-fp.VerticalPacking)

	base := make([]Cell, 0, l.Len())
	for _, cl := range l.Cells() {
		base = append(base, Cell{
			Id:    cellId(cl.Address),
			Col:   cl.Col,
			Row:   cl.Row,
			CX:    cl.X + cl.Size/2,
			CY:    cl.Y + cl.Size/2,
			Size:  cl.Size,
			Scale: 1,
			Icon:  IconFor(l.Shape, cl.Address),
		})
	}
	index := make(map[honeycomb.Address]int, len(base))
	for i, c := range base {
		index[honeycomb.Address{Col: c.Col, Row: c.Row}] = i
	}

	return func(frame hive.Frame) Grid {
		cells := make([]Cell, len(base))
		copy(cells, base)
		for _, cv := range frame.Values {
			if i, ok := index[cv.Address]; ok {
				cells[i].Scale = cv.Value
			}
		}
		return Grid{
			Cells:  cells,
			Width:  width,
			Height: height,
			Dark:   frame.Dark,
		}
	}
}

// cellId is the element-id prefix of a cell. Hyphenated ids are fine as element ids;
// only template names must avoid them.
func cellId(addr honeycomb.Address) string {
	return addr.String()
}

// hexPoints returns svg polygon points of a pointy-top hexagon centered on the origin
// whose height is size.
func hexPoints(size float64) string {
	r := size / 2 * 0.96
	points := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		angle := math.Pi/180*60*float64(i) - math.Pi/2
		points = append(points, fmt.Sprintf("%.1f,%.1f", r*math.Cos(angle), r*math.Sin(angle)))
	}
	return strings.Join(points, " ")
}

func scaleTransform(scale float64) string {
	return fmt.Sprintf("scale(%.3f)", scale)
}
