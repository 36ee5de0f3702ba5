package honeycomb

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidShape matches every *InvalidShapeError via errors.Is.
	ErrInvalidShape = errors.New("invalid honeycomb shape")
	// ErrInvalidAddress matches every *InvalidAddressError via errors.Is.
	ErrInvalidAddress = errors.New("invalid cell address")
)

// InvalidShapeError reports a malformed Shape: empty, or with a non-positive column.
// It is fatal wherever a grid is being built.
type InvalidShapeError struct {
	Shape  Shape
	Reason string
}

func (e *InvalidShapeError) Error() string {
	return fmt.Sprintf("%v [%v]: %s", ErrInvalidShape, e.Shape, e.Reason)
}

func (e *InvalidShapeError) Is(target error) bool {
	return target == ErrInvalidShape
}

// InvalidAddressError reports an address outside its shape.
// It is recoverable: the operation that returned it did nothing.
type InvalidAddressError struct {
	Address Address
	Shape   Shape
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("%v: (%d,%d) is outside shape [%v]",
		ErrInvalidAddress, e.Address.Col, e.Address.Row, e.Shape)
}

func (e *InvalidAddressError) Is(target error) bool {
	return target == ErrInvalidAddress
}
