package main

import (
	"context"

	"github.com/dd0wney/cluso-pathfinder/pkg/pathfinder"
	"github.com/dd0wney/cluso-pathfinder/pkg/spatial"
	"github.com/dd0wney/cluso-pathfinder/pkg/transport"
)

// backend is what the TUI drives: an in-process service or a remote
// server over NNG.
type backend interface {
	AddNode(ctx context.Context, id string, x, y float64) error
	AddEdge(ctx context.Context, id1, id2 string) (bool, error)
	FindPath(ctx context.Context, start, goal string) (*pathfinder.PathResponse, error)
	FindGridPath(ctx context.Context, island [][]any, opts pathfinder.GridOptions) (*pathfinder.GridPathResponse, error)
	Stats(ctx context.Context) (spatial.Stats, error)
}

type localBackend struct {
	*pathfinder.Service
}

func (b localBackend) Stats(context.Context) (spatial.Stats, error) {
	return b.Service.Stats(), nil
}

var (
	_ backend = localBackend{}
	_ backend = (*transport.Client)(nil)
)

// seedDemo loads a small graph with a detour so the path view has
// something to show.
func seedDemo(ctx context.Context, b backend) error {
	nodes := []struct {
		id   string
		x, y float64
	}{
		{"A", 0, 0},
		{"B", 2, 0},
		{"C", 1, 1},
		{"D", 1, 3},
		{"E", 3, 4},
	}
	for _, n := range nodes {
		if err := b.AddNode(ctx, n.id, n.x, n.y); err != nil && pathfinder.KindOf(err) != pathfinder.KindDuplicateNode {
			return err
		}
	}
	for _, e := range [][2]string{{"A", "B"}, {"A", "C"}, {"B", "D"}, {"C", "D"}, {"D", "E"}} {
		if _, err := b.AddEdge(ctx, e[0], e[1]); err != nil {
			return err
		}
	}
	return nil
}
