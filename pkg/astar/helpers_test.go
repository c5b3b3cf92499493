package astar

import (
	"fmt"

	"github.com/dd0wney/cluso-pathfinder/pkg/geom"
)

// mapSpace is a minimal Space used by the engine tests.
type mapSpace struct {
	pts map[string]geom.Point
	adj map[string][]geom.Neighbor
}

func newMapSpace() *mapSpace {
	return &mapSpace{
		pts: make(map[string]geom.Point),
		adj: make(map[string][]geom.Neighbor),
	}
}

func (m *mapSpace) node(id string, x, y float64) *mapSpace {
	m.pts[id] = geom.Point{X: x, Y: y}
	if _, ok := m.adj[id]; !ok {
		m.adj[id] = nil
	}
	return m
}

func (m *mapSpace) edge(a, b string) *mapSpace {
	return m.weighted(a, b, m.pts[a].Distance(m.pts[b]))
}

func (m *mapSpace) weighted(a, b string, w float64) *mapSpace {
	m.adj[a] = append(m.adj[a], geom.Neighbor{ID: b, Weight: w})
	m.adj[b] = append(m.adj[b], geom.Neighbor{ID: a, Weight: w})
	return m
}

func (m *mapSpace) Neighbors(id string) ([]geom.Neighbor, error) {
	adj, ok := m.adj[id]
	if !ok {
		return nil, fmt.Errorf("no node %q", id)
	}
	return adj, nil
}

func (m *mapSpace) Coordinates(id string) (geom.Point, error) {
	p, ok := m.pts[id]
	if !ok {
		return geom.Point{}, fmt.Errorf("no node %q", id)
	}
	return p, nil
}

func (m *mapSpace) weight(a, b string) (float64, bool) {
	for _, nb := range m.adj[a] {
		if nb.ID == b {
			return nb.Weight, true
		}
	}
	return 0, false
}

// bruteForce returns the cheapest simple-path cost from start to goal by
// exhaustive enumeration, and false if the goal is unreachable.
func (m *mapSpace) bruteForce(start, goal string) (float64, bool) {
	best, found := 0.0, false
	visited := map[string]bool{start: true}
	var walk func(id string, cost float64)
	walk = func(id string, cost float64) {
		if id == goal {
			if !found || cost < best {
				best, found = cost, true
			}
			return
		}
		for _, nb := range m.adj[id] {
			if visited[nb.ID] {
				continue
			}
			visited[nb.ID] = true
			walk(nb.ID, cost+nb.Weight)
			visited[nb.ID] = false
		}
	}
	walk(start, 0)
	return best, found
}
