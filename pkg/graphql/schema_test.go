package graphql

import (
	"context"
	"math"
	"testing"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-pathfinder/pkg/pathfinder"
)

func newTestSchema(t *testing.T) (graphql.Schema, *pathfinder.Service) {
	t.Helper()
	svc := pathfinder.New()
	schema, err := NewSchema(svc)
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}
	return schema, svc
}

func mustExec(t *testing.T, schema graphql.Schema, query string) map[string]any {
	t.Helper()
	result := ExecuteQuery(context.Background(), schema, query)
	if result.HasErrors() {
		t.Fatalf("query %s failed: %v", query, result.Errors)
	}
	data, ok := result.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data type %T", result.Data)
	}
	return data
}

func TestMutationsAndPath(t *testing.T) {
	schema, _ := newTestSchema(t)

	mustExec(t, schema, `mutation {
		a: addNode(id: "A", x: 0, y: 0) { id }
		b: addNode(id: "B", x: 3, y: 0) { id }
		c: addNode(id: "C", x: 3, y: 4) { id }
	}`)
	data := mustExec(t, schema, `mutation {
		ab: addEdge(node1: "A", node2: "B") { created }
		bc: addEdge(node1: "B", node2: "C") { created }
		again: addEdge(node1: "C", node2: "B") { created }
	}`)
	if data["ab"].(map[string]any)["created"] != true {
		t.Error("expected A-B to be created")
	}
	if data["again"].(map[string]any)["created"] != false {
		t.Error("expected re-added edge to report created=false")
	}

	data = mustExec(t, schema, `{ path(start: "A", goal: "C") { path found totalCost costs { node x y gCost hCost } } }`)
	path := data["path"].(map[string]any)
	if path["found"] != true {
		t.Fatal("expected a path")
	}
	ids := path["path"].([]any)
	if len(ids) != 3 || ids[0] != "A" || ids[1] != "B" || ids[2] != "C" {
		t.Errorf("path = %v, want [A B C]", ids)
	}
	if cost := path["totalCost"].(float64); math.Abs(cost-7) > 1e-9 {
		t.Errorf("totalCost = %v, want 7", cost)
	}
	costs := path["costs"].([]any)
	first := costs[0].(map[string]any)
	if first["hCost"].(float64) != 5 {
		t.Errorf("h(A) = %v, want 5", first["hCost"])
	}

	data = mustExec(t, schema, `{ stats { nodeCount edgeCount totalWeight } nodes { id } edges { node1 node2 weight } }`)
	stats := data["stats"].(map[string]any)
	if stats["nodeCount"] != 3 || stats["edgeCount"] != 2 {
		t.Errorf("stats = %v", stats)
	}
	if len(data["nodes"].([]any)) != 3 || len(data["edges"].([]any)) != 2 {
		t.Errorf("listing sizes wrong: %v", data)
	}
}

func TestPathErrorsCarryKind(t *testing.T) {
	schema, svc := newTestSchema(t)
	if err := svc.AddNode(context.Background(), "A", 0, 0); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		query string
		kind  pathfinder.Kind
	}{
		{"unknown goal", `{ path(start: "A", goal: "Z") { found } }`, pathfinder.KindUnknownNode},
		{"duplicate", `mutation { addNode(id: "A", x: 1, y: 1) { id } }`, pathfinder.KindDuplicateNode},
		{"self loop", `mutation { addEdge(node1: "A", node2: "A") { created } }`, pathfinder.KindSelfLoop},
		{"bad grid", `{ gridPath(island: [["S", "1"]]) { found } }`, pathfinder.KindInvalidGrid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExecuteQuery(context.Background(), schema, tt.query)
			if !result.HasErrors() {
				t.Fatal("expected an error")
			}
			if got := result.Errors[0].Extensions["kind"]; got != string(tt.kind) {
				t.Errorf("kind = %v, want %s", got, tt.kind)
			}
		})
	}
}

func TestGridPath(t *testing.T) {
	schema, _ := newTestSchema(t)

	data := mustExec(t, schema, `{
		four: gridPath(island: [["S","1","1"],["1","1","1"],["1","1","X"]]) { length found }
		eight: gridPath(island: [["S","1","1"],["1","1","1"],["1","1","X"]], diagonal: true) { path length }
	}`)
	if got := data["four"].(map[string]any)["length"]; got != 5 {
		t.Errorf("4-connected length = %v, want 5", got)
	}
	eight := data["eight"].(map[string]any)
	if got := eight["length"]; got != 3 {
		t.Errorf("8-connected length = %v, want 3", got)
	}
	last := eight["path"].([]any)[2].([]any)
	if last[0] != 2 || last[1] != 2 {
		t.Errorf("last cell = %v, want [2 2]", last)
	}
}

func TestNearest(t *testing.T) {
	schema, svc := newTestSchema(t)
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c"} {
		if err := svc.AddNode(ctx, id, float64(i*10), 0); err != nil {
			t.Fatal(err)
		}
	}

	data := mustExec(t, schema, `{ nearest(x: 19, y: 0, k: 2) { id distance } }`)
	got := data["nearest"].([]any)
	if len(got) != 2 {
		t.Fatalf("nearest returned %d nodes, want 2", len(got))
	}
	if got[0].(map[string]any)["id"] != "c" || got[1].(map[string]any)["id"] != "b" {
		t.Errorf("nearest order = %v, want c then b", got)
	}
}
