package spatial

import (
	"github.com/dd0wney/cluso-pathfinder/pkg/geom"
)

// Snapshot is a read-only copy of the graph taken at a single version.
// It satisfies astar.Space.
type Snapshot struct {
	version uint64
	nodes   map[string]geom.Point
	adj     map[string][]geom.Neighbor
	edges   int
}

// Neighbors returns the adjacency of id ordered by neighbour id. The
// returned slice is shared and must not be modified.
func (s *Snapshot) Neighbors(id string) ([]geom.Neighbor, error) {
	adj, ok := s.adj[id]
	if !ok {
		return nil, nodeError("Neighbors", id, ErrUnknownNode)
	}
	return adj, nil
}

// Coordinates returns the position of id.
func (s *Snapshot) Coordinates(id string) (geom.Point, error) {
	p, ok := s.nodes[id]
	if !ok {
		return geom.Point{}, nodeError("Coordinates", id, ErrUnknownNode)
	}
	return p, nil
}

// Has reports whether id is part of the snapshot.
func (s *Snapshot) Has(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (s *Snapshot) Len() int {
	return len(s.nodes)
}

// EdgeCount returns the number of undirected edges.
func (s *Snapshot) EdgeCount() int {
	return s.edges
}

// Version identifies the store state the snapshot was taken from.
func (s *Snapshot) Version() uint64 {
	return s.version
}
