package spatial

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/dd0wney/cluso-pathfinder/pkg/geom"
)

func newTriangle(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	for _, n := range []struct {
		id   string
		x, y float64
	}{{"A", 0, 0}, {"B", 3, 0}, {"C", 3, 4}} {
		if err := s.AddNode(n.id, n.x, n.y); err != nil {
			t.Fatalf("AddNode(%s) failed: %v", n.id, err)
		}
	}
	return s
}

func TestAddNode(t *testing.T) {
	s := NewStore()

	tests := []struct {
		name    string
		id      string
		x, y    float64
		wantErr error
	}{
		{"valid node", "A", 1, 2, nil},
		{"second node", "B", -1, 0.5, nil},
		{"duplicate id", "A", 5, 5, ErrDuplicateNode},
		{"empty id", "", 0, 0, ErrInvalidID},
		{"blank id", "   ", 0, 0, ErrInvalidID},
		{"NaN coordinate", "C", math.NaN(), 0, ErrInvalidCoordinates},
		{"infinite coordinate", "D", 0, math.Inf(-1), ErrInvalidCoordinates},
		{"coordinate out of range", "E", 1e308, 0, ErrInvalidCoordinates},
		{"coordinate at bound", "F", -geom.MaxCoordinate, geom.MaxCoordinate, nil},
		{"id too long", strings.Repeat("a", MaxIDLength+1), 0, 0, ErrInvalidID},
		{"multibyte id at limit", strings.Repeat("é", MaxIDLength), 0, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.AddNode(tt.id, tt.x, tt.y)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("AddNode() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddNode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Duplicate registration must not overwrite the original coordinates
	p, err := s.Coordinates("A")
	if err != nil {
		t.Fatalf("Coordinates(A) failed: %v", err)
	}
	if p.X != 1 || p.Y != 2 {
		t.Errorf("Coordinates(A) = %+v, want (1,2)", p)
	}
}

func TestAddEdge(t *testing.T) {
	s := newTriangle(t)

	created, err := s.AddEdge("A", "B")
	if err != nil || !created {
		t.Fatalf("AddEdge(A,B) = %v, %v; want true, nil", created, err)
	}

	if _, err := s.AddEdge("A", "Z"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("AddEdge to unknown node error = %v, want ErrUnknownNode", err)
	}
	if _, err := s.AddEdge("Z", "A"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("AddEdge from unknown node error = %v, want ErrUnknownNode", err)
	}
	if _, err := s.AddEdge("A", "A"); !errors.Is(err, ErrSelfLoop) {
		t.Errorf("AddEdge self loop error = %v, want ErrSelfLoop", err)
	}

	var storeErr *StoreError
	_, err = s.AddEdge("C", "C")
	if !errors.As(err, &storeErr) || storeErr.Op != "AddEdge" {
		t.Errorf("expected *StoreError with Op AddEdge, got %v", err)
	}
}

func TestAddEdgeIdempotent(t *testing.T) {
	s := newTriangle(t)

	if _, err := s.AddEdge("A", "B"); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}
	before := s.Stats()

	for _, pair := range [][2]string{{"A", "B"}, {"B", "A"}} {
		created, err := s.AddEdge(pair[0], pair[1])
		if err != nil {
			t.Fatalf("repeat AddEdge(%s,%s) failed: %v", pair[0], pair[1], err)
		}
		if created {
			t.Errorf("repeat AddEdge(%s,%s) reported created", pair[0], pair[1])
		}
	}

	after := s.Stats()
	if after != before {
		t.Errorf("Stats changed after duplicate edges: before %+v, after %+v", before, after)
	}

	nbrs, _ := s.Neighbors("A")
	if len(nbrs) != 1 {
		t.Errorf("Neighbors(A) has %d entries, want 1", len(nbrs))
	}
}

func TestNeighborsSymmetricAndWeighted(t *testing.T) {
	s := newTriangle(t)
	s.AddEdge("A", "C")
	s.AddEdge("B", "C")

	nbrs, err := s.Neighbors("C")
	if err != nil {
		t.Fatalf("Neighbors(C) failed: %v", err)
	}
	if len(nbrs) != 2 || nbrs[0].ID != "A" || nbrs[1].ID != "B" {
		t.Fatalf("Neighbors(C) = %+v, want [A B] in order", nbrs)
	}
	if nbrs[0].Weight != 5 {
		t.Errorf("weight C-A = %v, want 5", nbrs[0].Weight)
	}
	if nbrs[1].Weight != 4 {
		t.Errorf("weight C-B = %v, want 4", nbrs[1].Weight)
	}

	back, _ := s.Neighbors("A")
	if len(back) != 1 || back[0].ID != "C" || back[0].Weight != 5 {
		t.Errorf("Neighbors(A) = %+v, want symmetric edge to C", back)
	}

	if _, err := s.Neighbors("missing"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Neighbors(missing) error = %v, want ErrUnknownNode", err)
	}
}

func TestNodesAndEdgesOrdered(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"d", "b", "a", "c"} {
		s.AddNode(id, 0, float64(len(id)))
	}
	s.AddEdge("d", "a")
	s.AddEdge("c", "b")

	nodes := s.Nodes()
	for i, want := range []string{"a", "b", "c", "d"} {
		if nodes[i].ID != want {
			t.Errorf("Nodes()[%d] = %s, want %s", i, nodes[i].ID, want)
		}
	}

	edges := s.Edges()
	if len(edges) != 2 {
		t.Fatalf("Edges() returned %d edges, want 2", len(edges))
	}
	if edges[0].From != "a" || edges[0].To != "d" || edges[1].From != "b" || edges[1].To != "c" {
		t.Errorf("Edges() = %+v, want [a-d b-c]", edges)
	}
}

func TestAddEdgeFiniteWeights(t *testing.T) {
	s := NewStore()
	far := geom.MaxCoordinate
	for _, n := range []struct {
		id   string
		x, y float64
	}{{"west", -far, -far}, {"east", far, far}} {
		if err := s.AddNode(n.id, n.x, n.y); err != nil {
			t.Fatalf("AddNode(%s) failed: %v", n.id, err)
		}
	}
	if _, err := s.AddEdge("west", "east"); err != nil {
		t.Fatalf("AddEdge() between extreme nodes failed: %v", err)
	}
	st := s.Stats()
	if math.IsInf(st.TotalWeight, 0) || math.IsNaN(st.TotalWeight) {
		t.Errorf("TotalWeight = %v, want finite", st.TotalWeight)
	}

	// Nodes placed directly bypass AddNode's bound.
	s.mu.Lock()
	s.nodes["huge1"] = geom.Point{X: 1e308}
	s.nodes["huge2"] = geom.Point{X: -1e308}
	s.adj["huge1"] = make(map[string]float64)
	s.adj["huge2"] = make(map[string]float64)
	s.mu.Unlock()

	before := s.Stats()
	created, err := s.AddEdge("huge1", "huge2")
	if !errors.Is(err, ErrInvalidCoordinates) {
		t.Fatalf("AddEdge() error = %v, want ErrInvalidCoordinates", err)
	}
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Errorf("AddEdge() error %T is not a *StoreError", err)
	}
	if created {
		t.Error("rejected edge reported created")
	}
	if after := s.Stats(); after != before {
		t.Errorf("Stats() changed after rejected edge: %+v -> %+v", before, after)
	}
	if nbrs, _ := s.Neighbors("huge1"); len(nbrs) != 0 {
		t.Errorf("Neighbors(huge1) = %+v, want none", nbrs)
	}
}

func TestSnapshotEdgeCount(t *testing.T) {
	s := newTriangle(t)
	s.AddEdge("A", "B")
	s.AddEdge("B", "C")

	snap := s.Snapshot()
	if snap.Len() != 3 || snap.EdgeCount() != 2 {
		t.Errorf("snapshot len=%d edges=%d, want 3 and 2", snap.Len(), snap.EdgeCount())
	}
	s.AddEdge("A", "C")
	if snap.EdgeCount() != 2 {
		t.Error("old snapshot edge count changed after mutation")
	}
	if got := s.Snapshot().EdgeCount(); got != 3 {
		t.Errorf("fresh snapshot edges = %d, want 3", got)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := newTriangle(t)
	s.AddEdge("A", "B")

	snap := s.Snapshot()
	if snap != s.Snapshot() {
		t.Error("Snapshot() should be cached while the store is unchanged")
	}

	s.AddEdge("B", "C")
	s.AddNode("D", 9, 9)

	if snap.Has("D") {
		t.Error("old snapshot observed a node added later")
	}
	nbrs, _ := snap.Neighbors("B")
	if len(nbrs) != 1 {
		t.Errorf("old snapshot Neighbors(B) = %+v, want only A", nbrs)
	}

	fresh := s.Snapshot()
	if fresh == snap {
		t.Error("Snapshot() returned a stale cached copy after mutation")
	}
	if fresh.Version() <= snap.Version() {
		t.Errorf("fresh version %d should exceed %d", fresh.Version(), snap.Version())
	}
	if !fresh.Has("D") || fresh.Len() != 4 {
		t.Errorf("fresh snapshot missing new node, len=%d", fresh.Len())
	}
}

func TestReset(t *testing.T) {
	s := newTriangle(t)
	s.AddEdge("A", "B")
	s.Reset()

	if st := s.Stats(); st.NodeCount != 0 || st.EdgeCount != 0 || st.TotalWeight != 0 {
		t.Errorf("Stats after Reset = %+v, want zero", st)
	}
	if err := s.AddNode("A", 0, 0); err != nil {
		t.Errorf("AddNode after Reset failed: %v", err)
	}
	if got, _ := s.Nearest(0, 0, 5); len(got) != 1 {
		t.Errorf("Nearest after Reset returned %d nodes, want 1", len(got))
	}
}

func TestConcurrentRegistrationAndSnapshots(t *testing.T) {
	s := NewStore()
	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			prev := ""
			for i := 0; i < perWorker; i++ {
				id := fmt.Sprintf("n%d-%d", w, i)
				if err := s.AddNode(id, float64(w), float64(i)); err != nil {
					t.Errorf("AddNode(%s) failed: %v", id, err)
					return
				}
				if prev != "" {
					if _, err := s.AddEdge(prev, id); err != nil {
						t.Errorf("AddEdge(%s,%s) failed: %v", prev, id, err)
						return
					}
				}
				prev = id
				snap := s.Snapshot()
				// Every edge visible in a snapshot must point at a node in it.
				for _, n := range []string{id} {
					nbrs, err := snap.Neighbors(n)
					if err != nil {
						t.Errorf("snapshot lost node %s: %v", n, err)
						return
					}
					for _, nb := range nbrs {
						if !snap.Has(nb.ID) {
							t.Errorf("snapshot edge %s-%s dangles", n, nb.ID)
						}
					}
				}
			}
		}(w)
	}
	wg.Wait()

	st := s.Stats()
	if st.NodeCount != workers*perWorker {
		t.Errorf("NodeCount = %d, want %d", st.NodeCount, workers*perWorker)
	}
	if st.EdgeCount != workers*(perWorker-1) {
		t.Errorf("EdgeCount = %d, want %d", st.EdgeCount, workers*(perWorker-1))
	}
}
