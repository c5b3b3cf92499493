// Package spatial implements the in-memory graph store: named nodes on the
// plane joined by undirected edges weighted by Euclidean distance.
//
// The store is safe for concurrent use. Registrations take the write lock;
// searches work on an immutable Snapshot taken under the read lock, so a
// search never observes a half-applied mutation.
package spatial

import (
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/dd0wney/cluso-pathfinder/pkg/geom"
)

// MaxIDLength bounds node identifiers, counted in runes.
const MaxIDLength = 128

// Node is a registered graph vertex.
type Node struct {
	ID    string     `json:"id"`
	Point geom.Point `json:"coordinates"`
}

// Edge is an undirected connection between two nodes. From is always the
// lexicographically smaller id.
type Edge struct {
	From   string  `json:"node1"`
	To     string  `json:"node2"`
	Weight float64 `json:"weight"`
}

// Stats summarises the store contents.
type Stats struct {
	NodeCount   int     `json:"node_count"`
	EdgeCount   int     `json:"edge_count"`
	TotalWeight float64 `json:"total_weight"`
}

// Store is the shared, mutable graph.
type Store struct {
	mu          sync.RWMutex
	nodes       map[string]geom.Point
	adj         map[string]map[string]float64
	edgeCount   int
	totalWeight float64
	index       *pointIndex

	version uint64
	snap    atomic.Pointer[Snapshot]
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]geom.Point),
		adj:   make(map[string]map[string]float64),
		index: newPointIndex(),
	}
}

// AddNode registers a node. Ids are unique; re-adding an existing id fails
// with ErrDuplicateNode and leaves the original untouched.
func (s *Store) AddNode(id string, x, y float64) error {
	if err := validateID(id); err != nil {
		return nodeError("AddNode", id, err)
	}
	p := geom.Point{X: x, Y: y}
	if !p.Valid() {
		return nodeError("AddNode", id, ErrInvalidCoordinates)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[id]; exists {
		return nodeError("AddNode", id, ErrDuplicateNode)
	}
	s.nodes[id] = p
	s.adj[id] = make(map[string]float64)
	s.index.insert(id, p)
	s.invalidate()
	return nil
}

// AddEdge connects two existing nodes. The edge is stored in both directions.
// Adding an edge that already exists is a no-op and reports created=false.
func (s *Store) AddEdge(id1, id2 string) (created bool, err error) {
	if id1 == id2 {
		return false, edgeError("AddEdge", id1, id2, ErrSelfLoop)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p1, ok := s.nodes[id1]
	if !ok {
		return false, nodeError("AddEdge", id1, ErrUnknownNode)
	}
	p2, ok := s.nodes[id2]
	if !ok {
		return false, nodeError("AddEdge", id2, ErrUnknownNode)
	}
	if _, exists := s.adj[id1][id2]; exists {
		return false, nil
	}

	w := p1.Distance(p2)
	if math.IsNaN(w) || math.IsInf(w, 0) || math.IsInf(s.totalWeight+w, 0) {
		return false, edgeError("AddEdge", id1, id2, ErrInvalidCoordinates)
	}
	s.adj[id1][id2] = w
	s.adj[id2][id1] = w
	s.edgeCount++
	s.totalWeight += w
	s.invalidate()
	return true, nil
}

// Neighbors returns the nodes adjacent to id, ordered by id.
func (s *Store) Neighbors(id string) ([]geom.Neighbor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	adj, ok := s.adj[id]
	if !ok {
		return nil, nodeError("Neighbors", id, ErrUnknownNode)
	}
	return sortedNeighbors(adj), nil
}

// Coordinates returns the position of a node.
func (s *Store) Coordinates(id string) (geom.Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.nodes[id]
	if !ok {
		return geom.Point{}, nodeError("Coordinates", id, ErrUnknownNode)
	}
	return p, nil
}

// Node returns a registered node.
func (s *Store) Node(id string) (Node, error) {
	p, err := s.Coordinates(id)
	if err != nil {
		return Node{}, err
	}
	return Node{ID: id, Point: p}, nil
}

// Nodes returns every node ordered by id.
func (s *Store) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]Node, 0, len(s.nodes))
	for id, p := range s.nodes {
		nodes = append(nodes, Node{ID: id, Point: p})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// Edges returns every edge once, ordered by (From, To).
func (s *Store) Edges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := make([]Edge, 0, s.edgeCount)
	for from, adj := range s.adj {
		for to, w := range adj {
			if from < to {
				edges = append(edges, Edge{From: from, To: to, Weight: w})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// Stats returns node and edge counts.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		NodeCount:   len(s.nodes),
		EdgeCount:   s.edgeCount,
		TotalWeight: s.totalWeight,
	}
}

// Reset removes every node and edge.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]geom.Point)
	s.adj = make(map[string]map[string]float64)
	s.edgeCount = 0
	s.totalWeight = 0
	s.index = newPointIndex()
	s.invalidate()
}

// Snapshot returns an immutable view of the current graph. Snapshots are
// cached until the next mutation, so repeated searches on an unchanged graph
// share one copy.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if snap := s.snap.Load(); snap != nil && snap.version == s.version {
		return snap
	}

	snap := &Snapshot{
		version: s.version,
		nodes:   make(map[string]geom.Point, len(s.nodes)),
		adj:     make(map[string][]geom.Neighbor, len(s.adj)),
		edges:   s.edgeCount,
	}
	for id, p := range s.nodes {
		snap.nodes[id] = p
	}
	for id, adj := range s.adj {
		snap.adj[id] = sortedNeighbors(adj)
	}
	// Mutations need the write lock, so nothing can bump the version while
	// the read lock is held.
	s.snap.Store(snap)
	return snap
}

// invalidate must be called with the write lock held.
func (s *Store) invalidate() {
	s.version++
	s.snap.Store(nil)
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" || utf8.RuneCountInString(id) > MaxIDLength {
		return ErrInvalidID
	}
	return nil
}

func sortedNeighbors(adj map[string]float64) []geom.Neighbor {
	out := make([]geom.Neighbor, 0, len(adj))
	for id, w := range adj {
		out = append(out, geom.Neighbor{ID: id, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
