package graphql

import (
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-pathfinder/pkg/pathfinder"
)

type resolver struct {
	svc Service
}

// kindError carries the service error kind into the response extensions.
type kindError struct {
	kind pathfinder.Kind
	msg  string
}

func (e *kindError) Error() string { return e.msg }

// Extensions implements gqlerrors.ExtendedError.
func (e *kindError) Extensions() map[string]any {
	return map[string]any{"kind": string(e.kind)}
}

// resolverError hides internal failures and tags domain errors with their
// kind.
func resolverError(err error) error {
	kind := pathfinder.KindOf(err)
	if kind == pathfinder.KindInternal {
		return &kindError{kind: kind, msg: "internal error"}
	}
	return &kindError{kind: kind, msg: err.Error()}
}

var errBadArgument = errors.New("bad argument")

func stringArg(p graphql.ResolveParams, name string) (string, error) {
	v, ok := p.Args[name].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", errBadArgument, name)
	}
	return v, nil
}

func floatArg(p graphql.ResolveParams, name string) (float64, error) {
	switch v := p.Args[name].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}
	return 0, fmt.Errorf("%w: %s must be a number", errBadArgument, name)
}

func (r *resolver) nodes(p graphql.ResolveParams) (any, error) {
	nodes := r.svc.Nodes()
	out := make([]map[string]any, len(nodes))
	for i, n := range nodes {
		out[i] = map[string]any{"id": n.ID, "x": n.Point.X, "y": n.Point.Y}
	}
	return out, nil
}

func (r *resolver) edges(p graphql.ResolveParams) (any, error) {
	edges := r.svc.Edges()
	out := make([]map[string]any, len(edges))
	for i, e := range edges {
		out[i] = map[string]any{"node1": e.From, "node2": e.To, "weight": e.Weight}
	}
	return out, nil
}

func (r *resolver) stats(p graphql.ResolveParams) (any, error) {
	st := r.svc.Stats()
	return map[string]any{
		"nodeCount":   st.NodeCount,
		"edgeCount":   st.EdgeCount,
		"totalWeight": st.TotalWeight,
	}, nil
}

func (r *resolver) path(p graphql.ResolveParams) (any, error) {
	start, err := stringArg(p, "start")
	if err != nil {
		return nil, err
	}
	goal, err := stringArg(p, "goal")
	if err != nil {
		return nil, err
	}

	res, err := r.svc.FindPath(p.Context, start, goal)
	if err != nil {
		return nil, resolverError(err)
	}

	costs := make([]map[string]any, len(res.Costs))
	for i, c := range res.Costs {
		costs[i] = map[string]any{
			"node":  c.Node,
			"x":     c.Coordinates[0],
			"y":     c.Coordinates[1],
			"gCost": c.GCost,
			"hCost": c.HCost,
		}
	}
	return map[string]any{
		"path":      res.Path,
		"costs":     costs,
		"found":     res.Found,
		"totalCost": res.TotalCost,
		"expanded":  res.Expanded,
	}, nil
}

func (r *resolver) gridPath(p graphql.ResolveParams) (any, error) {
	rows, ok := p.Args["island"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: island must be a list of rows", errBadArgument)
	}
	island := make([][]any, len(rows))
	for i, row := range rows {
		cells, ok := row.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: island row %d must be a list", errBadArgument, i)
		}
		island[i] = cells
	}

	var opts pathfinder.GridOptions
	if d, ok := p.Args["diagonal"].(bool); ok {
		opts.Diagonal = &d
	}

	res, err := r.svc.FindGridPath(p.Context, island, opts)
	if err != nil {
		return nil, resolverError(err)
	}

	path := make([][]int, len(res.Path))
	for i, rc := range res.Path {
		path[i] = []int{rc[0], rc[1]}
	}
	return map[string]any{
		"path":      path,
		"found":     res.Found,
		"length":    res.Length,
		"totalCost": res.TotalCost,
		"expanded":  res.Expanded,
	}, nil
}

func (r *resolver) nearest(p graphql.ResolveParams) (any, error) {
	x, err := floatArg(p, "x")
	if err != nil {
		return nil, err
	}
	y, err := floatArg(p, "y")
	if err != nil {
		return nil, err
	}
	k, _ := p.Args["k"].(int)

	found, err := r.svc.Nearest(p.Context, x, y, k)
	if err != nil {
		return nil, resolverError(err)
	}
	out := make([]map[string]any, len(found))
	for i, n := range found {
		out[i] = map[string]any{
			"id":       n.ID,
			"x":        n.Point.X,
			"y":        n.Point.Y,
			"distance": n.Distance,
		}
	}
	return out, nil
}

func (r *resolver) addNode(p graphql.ResolveParams) (any, error) {
	id, err := stringArg(p, "id")
	if err != nil {
		return nil, err
	}
	x, err := floatArg(p, "x")
	if err != nil {
		return nil, err
	}
	y, err := floatArg(p, "y")
	if err != nil {
		return nil, err
	}

	if err := r.svc.AddNode(p.Context, id, x, y); err != nil {
		return nil, resolverError(err)
	}
	return map[string]any{"id": id, "x": x, "y": y}, nil
}

func (r *resolver) addEdge(p graphql.ResolveParams) (any, error) {
	id1, err := stringArg(p, "node1")
	if err != nil {
		return nil, err
	}
	id2, err := stringArg(p, "node2")
	if err != nil {
		return nil, err
	}

	created, err := r.svc.AddEdge(p.Context, id1, id2)
	if err != nil {
		return nil, resolverError(err)
	}
	return map[string]any{"node1": id1, "node2": id2, "created": created}, nil
}
