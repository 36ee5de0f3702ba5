// layout places the cells of a honeycomb shape in a shared coordinate space.
// Columns are stacked vertically, each column's cells run left to right, and
// shorter columns are centered against the widest one, which yields the
// staggered honeycomb silhouette.
package layout

import (
	"errors"
	"fmt"

	"honeycomb/honeycomb"
)

// Footprint is the per-cell footprint: a cell is CellSize wide and tall, and
// neighbours are packed at CellSize*HorizontalPacking horizontally and
// CellSize*VerticalPacking vertically. Packing ratios below 1 overlap cells.
type Footprint struct {
	CellSize          float64 `json:"cellSize"`
	HorizontalPacking float64 `json:"horizontalPacking"`
	VerticalPacking   float64 `json:"verticalPacking"`
}

// DefaultFootprint matches phone screen proportions: a 7th of a
// 390pt wide window, packed at 0.85 / 0.75.
var DefaultFootprint = Footprint{
	CellSize:          390.0 / 7,
	HorizontalPacking: 0.85,
	VerticalPacking:   0.75,
}

// ErrInvalidFootprint is returned for non-positive sizes or packing ratios.
var ErrInvalidFootprint = errors.New("invalid cell footprint")

func (fp Footprint) Validate() error {
	if fp.CellSize <= 0 || fp.HorizontalPacking <= 0 || fp.VerticalPacking <= 0 {
		return fmt.Errorf("%w: size %v, packing %v x %v",
			ErrInvalidFootprint, fp.CellSize, fp.HorizontalPacking, fp.VerticalPacking)
	}
	return nil
}

func (fp Footprint) stepX() float64 { return fp.CellSize * fp.HorizontalPacking }
func (fp Footprint) stepY() float64 { return fp.CellSize * fp.VerticalPacking }

// CellLayout is the placement of a single cell. X and Y are the top-left corner.
type CellLayout struct {
	honeycomb.Address
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// Layout is the read-only placement of every cell of a shape. A Layout is never
// mutated; a different shape or footprint means computing a new one.
type Layout struct {
	Shape     honeycomb.Shape `json:"shape"`
	Footprint Footprint       `json:"footprint"`
	// Width and Height are the bounding box of the whole grid.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	cells map[honeycomb.Address]CellLayout
}

// Compute returns the placement of every cell of shape. A malformed shape fails
// with an InvalidShapeError before anything is computed.
func Compute(shape honeycomb.Shape, fp Footprint) (*Layout, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if err := fp.Validate(); err != nil {
		return nil, err
	}

	occupied := func(col int) float64 {
		return float64(shape[col]) * fp.stepX()
	}

	maxWidth := 0.0
	for col := range shape {
		if w := occupied(col); w > maxWidth {
			maxWidth = w
		}
	}

	cells := make(map[honeycomb.Address]CellLayout, shape.Size())
	shape.Visit(func(addr honeycomb.Address) {
		offsetX := (maxWidth - occupied(addr.Col)) / 2
		cells[addr] = CellLayout{
			Address: addr,
			X:       float64(addr.Row)*fp.stepX() + offsetX,
			Y:       float64(addr.Col) * fp.stepY(),
			Size:    fp.CellSize,
		}
	})

	return &Layout{
		Shape:     shape.Clone(),
		Footprint: fp,
		Width:     maxWidth,
		Height:    float64(len(shape)) * fp.stepY(),
		cells:     cells,
	}, nil
}

// Cell returns the placement of addr.
func (l *Layout) Cell(addr honeycomb.Address) (CellLayout, bool) {
	cl, ok := l.cells[addr]
	return cl, ok
}

// Cells returns every placement in the shape's address order.
func (l *Layout) Cells() []CellLayout {
	out := make([]CellLayout, 0, len(l.cells))
	l.Shape.Visit(func(addr honeycomb.Address) {
		out = append(out, l.cells[addr])
	})
	return out
}

// Len is the number of placed cells.
func (l *Layout) Len() int {
	return len(l.cells)
}

// Hit returns the cell whose packed box contains the point (x, y). Boxes are
// CellSize*HorizontalPacking wide and CellSize*VerticalPacking tall, so adjacent
// cells tile the plane without overlapping hit areas.
func (l *Layout) Hit(x, y float64) (honeycomb.Address, bool) {
	if y < 0 || x < 0 {
		return honeycomb.Address{}, false
	}
	col := int(y / l.Footprint.stepY())
	if col >= len(l.Shape) {
		return honeycomb.Address{}, false
	}
	first := l.cells[honeycomb.Address{Col: col}]
	if x < first.X {
		return honeycomb.Address{}, false
	}
	addr := honeycomb.Address{Col: col, Row: int((x - first.X) / l.Footprint.stepX())}
	if !l.Shape.Contains(addr) {
		return honeycomb.Address{}, false
	}
	return addr, true
}
