// honeycomb describes the index space of a honeycomb grid: the column lengths
// that make up its silhouette and the (col, row) addresses of its cells.
package honeycomb

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Shape is an ordered list of column lengths, one per column. [3,4,5,4,3] is the
// classic hexagonal silhouette: widening then narrowing columns.
// A Shape is a structural constant of a grid; nothing in this repo mutates one
// after it has been validated.
type Shape []int

// Classic is the silhouette the grid starts with when nothing else is configured.
var Classic = Shape{3, 4, 5, 4, 3}

// Address identifies one cell. It is a value type so it can key maps directly.
type Address struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

func (a Address) String() string {
	return fmt.Sprintf("%d-%d", a.Col, a.Row)
}

// ParseShape parses a comma separated list of column lengths, e.g. "3,4,5,4,3".
// The result is validated.
func ParseShape(s string) (Shape, error) {
	parts := strings.Split(s, ",")
	shape := make(Shape, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, &InvalidShapeError{Reason: fmt.Sprintf("column %q is not an integer", p)}
		}
		shape = append(shape, n)
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return shape, nil
}

// Validate checks the shape invariants: at least one column, every column at least one cell.
func (s Shape) Validate() error {
	if len(s) == 0 {
		return &InvalidShapeError{Shape: s, Reason: "no columns"}
	}
	for col, n := range s {
		if n < 1 {
			return &InvalidShapeError{
				Shape:  s,
				Reason: fmt.Sprintf("column %d has %d cells", col, n),
			}
		}
	}
	return nil
}

// Size returns the total number of cells.
func (s Shape) Size() (n int) {
	for _, count := range s {
		n += count
	}
	return
}

// Widest returns the largest column length.
func (s Shape) Widest() (widest int) {
	for _, count := range s {
		if count > widest {
			widest = count
		}
	}
	return
}

// Contains reports whether addr lies inside the shape.
func (s Shape) Contains(addr Address) bool {
	return addr.Col >= 0 && addr.Col < len(s) &&
		addr.Row >= 0 && addr.Row < s[addr.Col]
}

// Check returns an InvalidAddressError when addr is not a cell of the shape.
func (s Shape) Check(addr Address) error {
	if !s.Contains(addr) {
		return &InvalidAddressError{Address: addr, Shape: s}
	}
	return nil
}

// Addresses returns every address of the shape, column by column, rows ascending.
func (s Shape) Addresses() []Address {
	addrs := make([]Address, 0, s.Size())
	s.Visit(func(addr Address) {
		addrs = append(addrs, addr)
	})
	return addrs
}

// Visit calls fn for every address of the shape in column-major order.
func (s Shape) Visit(fn func(Address)) {
	for col, count := range s {
		for row := 0; row < count; row++ {
			fn(Address{Col: col, Row: row})
		}
	}
}

// Clone returns a copy that does not share the backing array.
func (s Shape) Clone() Shape {
	return append(Shape(nil), s...)
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, n := range s {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// Distance is the Euclidean distance between two addresses in column/row index space.
// Screen coordinates are deliberately not involved: the wave spreads through the index
// lattice at the same speed regardless of how wide a column is drawn.
func Distance(a, b Address) float64 {
	return math.Hypot(float64(a.Col-b.Col), float64(a.Row-b.Row))
}
