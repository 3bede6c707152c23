// Package cube maps an edge×edge×edge LED cube onto the linear bit buffer of
// a shift register chain and animates it.
//
// The cube is wired as a snake: every horizontal plane shares its cathodes and
// its LEDs follow an S-shaped path, while the anodes of each column are tied
// together vertically. The first edge² bits of the chain drive the columns
// (the main grid) and the following edge bits select the planes (the marker
// span).
//
//	cathode ---<|---<|---<|---<|---<|
//	                                -
//	           <|---<|---<|---<|---<|
//	            -
//	           <|---<|---<|---<|---<|
package cube

import (
	"errors"
	"fmt"
	"time"
)

// ErrGeometry is returned when a cube does not fit the buffer it is used with.
var ErrGeometry = errors.New("cube does not fit the register chain")

// Buffer is the addressable output sink an effect mutates.
type Buffer interface {
	Set(index int, bit bool) error
	Update() error
	Len() int
}

// Delay blocks for a number of milliseconds.
type Delay interface {
	DelayMs(ms uint32)
}

// Sleeper is a Delay backed by time.Sleep.
type Sleeper struct{}

// DelayMs implements Delay.
func (Sleeper) DelayMs(ms uint32) { time.Sleep(time.Duration(ms) * time.Millisecond) }

// Cube describes the geometry and frame period. TickMS may be changed between
// effects to vary the speed.
type Cube struct {
	EdgeLength int
	TickMS     uint32
}

// GridSize is the number of column bits (edge²).
func (c Cube) GridSize() int { return c.EdgeLength * c.EdgeLength }

// MarkerBase is the first address of the plane marker span.
func (c Cube) MarkerBase() int { return c.GridSize() }

// Span is the number of addresses the effects touch: grid plus marker span.
func (c Cube) Span() int { return c.GridSize() + c.EdgeLength }

// Validate checks that every address the effects compute fits in b.
func (c Cube) Validate(b Buffer) error {
	if c.EdgeLength < 2 {
		return fmt.Errorf("%w: edge length %d", ErrGeometry, c.EdgeLength)
	}
	if c.Span() > b.Len() {
		return fmt.Errorf("%w: needs %d bits, chain has %d", ErrGeometry, c.Span(), b.Len())
	}
	return nil
}

// Column returns the grid address of the column at (x, y) in a plane. Odd rows
// run backwards along the snake.
func (c Cube) Column(x, y int) int {
	if y%2 == 1 {
		x = c.EdgeLength - 1 - x
	}
	return y*c.EdgeLength + x
}

// Plane returns the marker address selecting plane z.
func (c Cube) Plane(z int) int { return c.MarkerBase() + z }

// Voxel reports whether the LED at (x, y, z) is lit for the given frame,
// i.e. both its column and its plane bit are set. Coordinates outside the
// cube are never lit.
func (c Cube) Voxel(frame []bool, x, y, z int) bool {
	if !c.contains(x) || !c.contains(y) || !c.contains(z) {
		return false
	}
	col, pl := c.Column(x, y), c.Plane(z)
	if col >= len(frame) || pl >= len(frame) {
		return false
	}
	return frame[col] && frame[pl]
}

func (c Cube) contains(v int) bool { return v >= 0 && v < c.EdgeLength }
