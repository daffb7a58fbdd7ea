// Package grid provides the fixed-size coordinate space that programs are
// evaluated over: points, bounded point arithmetic, and dense grids indexed
// by point.
package grid

import "fmt"

// Extent is the number of cells along each axis.
const Extent = 30

// Cells is the total number of cells in a grid.
const Cells = Extent * Extent * Extent

// Point is a coordinate triple. Points used as grid indices always have each
// component in [0, Extent); the result of Add may fall outside that range.
type Point struct {
	X, Y, Z int
}

// Pt is shorthand for Point{x, y, z}.
func Pt(x, y, z int) Point {
	return Point{X: x, Y: y, Z: z}
}

// Cardinals are the six face-adjacent unit offsets.
var Cardinals = [6]Point{
	{X: 1}, {X: -1},
	{Y: 1}, {Y: -1},
	{Z: 1}, {Z: -1},
}

// Add returns the componentwise sum without a bounds check.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

// InBounds reports whether every component lies in [0, Extent).
func (p Point) InBounds() bool {
	return inRange(p.X) && inRange(p.Y) && inRange(p.Z)
}

// Combine adds a and b. The second result is false when the sum leaves the
// coordinate space; the returned Point is then the zero value.
func Combine(a, b Point) (Point, bool) {
	sum := a.Add(b)
	if !sum.InBounds() {
		return Point{}, false
	}
	return sum, true
}

// Index returns the position of p in x-major order. p must be in bounds.
func (p Point) Index() int {
	return (p.X*Extent+p.Y)*Extent + p.Z
}

// FromIndex is the inverse of Point.Index.
func FromIndex(i int) Point {
	return Point{
		X: i / (Extent * Extent),
		Y: (i / Extent) % Extent,
		Z: i % Extent,
	}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

func inRange(v int) bool {
	return v >= 0 && v < Extent
}
