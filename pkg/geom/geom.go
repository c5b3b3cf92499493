// Package geom holds the planar primitives shared by the graph store, the grid
// adapter and the search engine.
package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// MaxCoordinate bounds |x| and |y|. Within it every distance, and any sum
// of distances a search can accumulate, stays finite.
const MaxCoordinate = 1e150

// Point is a position on the plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Orb converts the point to an orb.Point.
func (p Point) Orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(other Point) float64 {
	return planar.Distance(p.Orb(), other.Orb())
}

// Finite reports whether both coordinates are real numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Valid reports whether the point is finite and within MaxCoordinate.
func (p Point) Valid() bool {
	return p.Finite() && math.Abs(p.X) <= MaxCoordinate && math.Abs(p.Y) <= MaxCoordinate
}

// Pair returns the coordinates as an [x, y] pair, the wire shape used by clients.
func (p Point) Pair() [2]float64 {
	return [2]float64{p.X, p.Y}
}

// Neighbor is an adjacent node together with the cost of the edge leading to it.
type Neighbor struct {
	ID     string
	Weight float64
}
