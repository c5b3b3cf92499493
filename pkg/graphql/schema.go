// Package graphql exposes the path service as a GraphQL schema.
package graphql

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-pathfinder/pkg/pathfinder"
	"github.com/dd0wney/cluso-pathfinder/pkg/spatial"
)

// Service is the subset of *pathfinder.Service the schema resolves against.
type Service interface {
	AddNode(ctx context.Context, id string, x, y float64) error
	AddEdge(ctx context.Context, id1, id2 string) (bool, error)
	FindPath(ctx context.Context, start, goal string) (*pathfinder.PathResponse, error)
	FindGridPath(ctx context.Context, island [][]any, opts pathfinder.GridOptions) (*pathfinder.GridPathResponse, error)
	Nearest(ctx context.Context, x, y float64, k int) ([]spatial.NearestNode, error)
	Nodes() []spatial.Node
	Edges() []spatial.Edge
	Stats() spatial.Stats
}

var nodeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Node",
	Fields: graphql.Fields{
		"id": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"x":  &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"y":  &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
	},
})

var edgeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Edge",
	Fields: graphql.Fields{
		"node1":  &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"node2":  &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"weight": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
	},
})

var edgeResultType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "EdgeResult",
	Description: "created is false when the edge already existed.",
	Fields: graphql.Fields{
		"node1":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"node2":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"created": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
	},
})

var statsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Stats",
	Fields: graphql.Fields{
		"nodeCount":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"edgeCount":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"totalWeight": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
	},
})

var costEntryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CostEntry",
	Fields: graphql.Fields{
		"node":  &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"x":     &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"y":     &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"gCost": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"hCost": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
	},
})

var pathType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Path",
	Fields: graphql.Fields{
		"path":      &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
		"costs":     &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(costEntryType)))},
		"found":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"totalCost": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"expanded":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var gridPathType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "GridPath",
	Description: "path holds [row, col] pairs from start to goal.",
	Fields: graphql.Fields{
		"path":      &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.Int)))))},
		"found":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"length":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"totalCost": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"expanded":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var nearestType = graphql.NewObject(graphql.ObjectConfig{
	Name: "NearestNode",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"x":        &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"y":        &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"distance": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
	},
})

// NewSchema builds the query and mutation types over svc.
func NewSchema(svc Service) (graphql.Schema, error) {
	r := &resolver{svc: svc}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"nodes": &graphql.Field{
				Type:    graphql.NewList(nodeType),
				Resolve: r.nodes,
			},
			"edges": &graphql.Field{
				Type:    graphql.NewList(edgeType),
				Resolve: r.edges,
			},
			"stats": &graphql.Field{
				Type:    statsType,
				Resolve: r.stats,
			},
			"path": &graphql.Field{
				Type: pathType,
				Args: graphql.FieldConfigArgument{
					"start": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"goal":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.path,
			},
			"gridPath": &graphql.Field{
				Type:        gridPathType,
				Description: `island rows use the markers "S", "X", "0" (water) and "1" (land).`,
				Args: graphql.FieldConfigArgument{
					"island": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String))))),
					},
					"diagonal": &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: r.gridPath,
			},
			"nearest": &graphql.Field{
				Type: graphql.NewList(nearestType),
				Args: graphql.FieldConfigArgument{
					"x": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"y": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"k": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: r.nearest,
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addNode": &graphql.Field{
				Type: nodeType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"x":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"y":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: r.addNode,
			},
			"addEdge": &graphql.Field{
				Type: edgeResultType,
				Args: graphql.FieldConfigArgument{
					"node1": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"node2": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.addEdge,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}
