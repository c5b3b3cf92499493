package spatial

import (
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/dd0wney/cluso-pathfinder/pkg/geom"
)

// pointTolerance is the half-size of the box each node occupies in the tree.
const pointTolerance = 1e-9

// indexEntry wraps a node for R-tree storage
type indexEntry struct {
	id    string
	point geom.Point
	bbox  rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *indexEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// pointIndex answers nearest-node queries. It is guarded by the store lock.
type pointIndex struct {
	tree *rtreego.Rtree
	size int
}

func newPointIndex() *pointIndex {
	return &pointIndex{tree: rtreego.NewTree(2, 25, 50)}
}

func (pi *pointIndex) insert(id string, p geom.Point) {
	pi.tree.Insert(&indexEntry{
		id:    id,
		point: p,
		bbox:  rtreego.Point{p.X, p.Y}.ToRect(pointTolerance),
	})
	pi.size++
}

// NearestNode is a node returned by a proximity query.
type NearestNode struct {
	Node
	Distance float64 `json:"distance"`
}

func (pi *pointIndex) nearest(target geom.Point, k int) []NearestNode {
	if k <= 0 || pi.size == 0 {
		return []NearestNode{}
	}
	if k > pi.size {
		k = pi.size
	}
	// Over-fetch so equidistant candidates at the cut-off are ranked by id
	// rather than by tree layout.
	fetch := 2 * k
	if fetch > pi.size {
		fetch = pi.size
	}

	found := pi.tree.NearestNeighbors(fetch, rtreego.Point{target.X, target.Y})
	out := make([]NearestNode, 0, len(found))
	for _, item := range found {
		entry, ok := item.(*indexEntry)
		if !ok || entry == nil {
			continue
		}
		out = append(out, NearestNode{
			Node:     Node{ID: entry.id, Point: entry.point},
			Distance: entry.point.Distance(target),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// Nearest returns up to k registered nodes closest to (x, y), nearest first.
func (s *Store) Nearest(x, y float64, k int) ([]NearestNode, error) {
	target := geom.Point{X: x, Y: y}
	if !target.Valid() {
		return nil, &StoreError{Op: "Nearest", Cause: ErrInvalidCoordinates}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.nearest(target, k), nil
}
