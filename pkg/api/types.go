package api

import (
	"github.com/dd0wney/cluso-pathfinder/pkg/pathfinder"
	"github.com/dd0wney/cluso-pathfinder/pkg/spatial"
)

// ErrorResponse is the envelope of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
}

// StatusResponse acknowledges a mutation.
type StatusResponse struct {
	Status string `json:"status"`
}

// CoordinatesRequest is the body of POST /nodes/. NodeID is accepted as a
// fallback when the node_id query parameter is absent.
type CoordinatesRequest struct {
	NodeID string   `json:"node_id,omitempty"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
}

// EdgeRequest is the body of POST /edges/.
type EdgeRequest struct {
	Node1 string `json:"node1"`
	Node2 string `json:"node2"`
}

// EdgeResponse acknowledges an edge registration. Created is false when
// the edge already existed.
type EdgeResponse struct {
	Status  string `json:"status"`
	Created bool   `json:"created"`
}

// GridPathRequest is the body of POST /find-path.
type GridPathRequest struct {
	Island   [][]any `json:"island"`
	Diagonal *bool   `json:"diagonal,omitempty"`
}

// PathResult is a graph search response. Error is set when no path exists.
type PathResult struct {
	*pathfinder.PathResponse
	Error string `json:"error,omitempty"`
}

// GraphResponse lists the whole graph.
type GraphResponse struct {
	Nodes []spatial.Node `json:"nodes"`
	Edges []spatial.Edge `json:"edges"`
	Stats spatial.Stats  `json:"stats"`
}

// NearestResponse lists the nodes closest to a point.
type NearestResponse struct {
	X     float64               `json:"x"`
	Y     float64               `json:"y"`
	Nodes []spatial.NearestNode `json:"nodes"`
}

// IndexResponse describes the service at GET /.
type IndexResponse struct {
	Service string   `json:"service"`
	Version string   `json:"version"`
	Uptime  string   `json:"uptime"`
	Routes  []string `json:"routes"`
}
