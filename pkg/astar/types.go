package astar

import (
	"errors"

	"github.com/dd0wney/cluso-pathfinder/pkg/geom"
)

// Sentinel errors returned by FindPath.
var (
	// ErrUnknownNode indicates the start or goal is not part of the space.
	ErrUnknownNode = errors.New("astar: unknown node")
	// ErrNilSpace indicates a nil Space was passed.
	ErrNilSpace = errors.New("astar: space is nil")
	// ErrNegativeWeight indicates an edge with a negative or NaN weight.
	ErrNegativeWeight = errors.New("astar: negative edge weight encountered")
	// ErrSearchLimit indicates the expansion budget ran out before the goal
	// was reached.
	ErrSearchLimit = errors.New("astar: expansion limit reached")
)

// Space is anything A* can search: a set of nodes with planar coordinates
// and weighted adjacency.
type Space interface {
	Neighbors(id string) ([]geom.Neighbor, error)
	Coordinates(id string) (geom.Point, error)
}

// Heuristic estimates the remaining cost from a point to the goal. It must
// never overestimate for the returned path to be optimal.
type Heuristic func(from, goal geom.Point) float64

// Euclidean is the straight-line distance heuristic. It is admissible
// whenever edge weights are at least the Euclidean length of the edge.
func Euclidean(from, goal geom.Point) float64 {
	return from.Distance(goal)
}

// Zero turns A* into Dijkstra's algorithm.
func Zero(geom.Point, geom.Point) float64 {
	return 0
}

// Step is one node of a returned path with its cost breakdown.
type Step struct {
	ID    string
	Point geom.Point
	G     float64 // accumulated cost from start
	H     float64 // heuristic estimate to goal
}

// Result is the outcome of a search.
type Result struct {
	Path     []string
	Steps    []Step
	Found    bool
	Cost     float64
	Expanded int // number of frontier pops
}

// Options for FindPath.
type Options struct {
	Heuristic     Heuristic
	MaxExpansions int // zero means unlimited
}

// Option mutates Options.
type Option func(*Options)

// WithHeuristic replaces the default Euclidean heuristic.
func WithHeuristic(h Heuristic) Option {
	return func(o *Options) {
		if h != nil {
			o.Heuristic = h
		}
	}
}

// WithMaxExpansions bounds the number of frontier pops.
func WithMaxExpansions(n int) Option {
	return func(o *Options) { o.MaxExpansions = n }
}

// DefaultOptions returns Euclidean heuristic, unlimited expansions.
func DefaultOptions() Options {
	return Options{Heuristic: Euclidean}
}
