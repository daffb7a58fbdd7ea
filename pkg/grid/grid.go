package grid

import "iter"

// Grid is a dense Extent³ array of T indexed by Point.
type Grid[T any] struct {
	cells [Cells]T
}

// New allocates a grid with every cell set to the zero value of T.
func New[T any]() *Grid[T] {
	return &Grid[T]{}
}

// At returns the value stored at p. Panics if p is out of bounds.
func (g *Grid[T]) At(p Point) T {
	return g.cells[p.Index()]
}

// Set stores v at p. Panics if p is out of bounds.
func (g *Grid[T]) Set(p Point, v T) {
	g.cells[p.Index()] = v
}

// Count returns the number of cells for which keep returns true.
func (g *Grid[T]) Count(keep func(T) bool) int {
	n := 0
	for i := range g.cells {
		if keep(g.cells[i]) {
			n++
		}
	}
	return n
}

// Points yields every coordinate of the space exactly once, in x-major
// order: z varies fastest.
func Points() iter.Seq[Point] {
	return Slab(0, Extent)
}

// Slab yields every coordinate whose X lies in [x0, x1), in x-major order.
// Disjoint slabs partition the space.
func Slab(x0, x1 int) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for x := max(x0, 0); x < min(x1, Extent); x++ {
			for y := 0; y < Extent; y++ {
				for z := 0; z < Extent; z++ {
					if !yield(Point{X: x, Y: y, Z: z}) {
						return
					}
				}
			}
		}
	}
}
