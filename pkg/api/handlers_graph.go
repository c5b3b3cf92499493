package api

import (
	"net/http"
)

func (s *Server) createNode(w http.ResponseWriter, r *http.Request) {
	var req CoordinatesRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	id := r.URL.Query().Get("node_id")
	if id == "" {
		id = req.NodeID
	}
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "node_id is required")
		return
	}
	if req.X == nil || req.Y == nil {
		s.respondError(w, http.StatusBadRequest, "x and y are required")
		return
	}

	if err := s.svc.AddNode(r.Context(), id, *req.X, *req.Y); err != nil {
		s.respondServiceError(w, r, err, "add node")
		return
	}
	s.respondJSON(w, http.StatusCreated, StatusResponse{Status: "Node ID added"})
}

func (s *Server) listNodes(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.svc.Nodes())
}

func (s *Server) createEdge(w http.ResponseWriter, r *http.Request) {
	var req EdgeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	created, err := s.svc.AddEdge(r.Context(), req.Node1, req.Node2)
	if err != nil {
		s.respondServiceError(w, r, err, "add edge")
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	s.respondJSON(w, status, EdgeResponse{Status: "Edge added", Created: created})
}

func (s *Server) listEdges(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.svc.Edges())
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, GraphResponse{
		Nodes: s.svc.Nodes(),
		Edges: s.svc.Edges(),
		Stats: s.svc.Stats(),
	})
}

func (s *Server) resetGraph(w http.ResponseWriter, r *http.Request) {
	s.svc.Reset(r.Context())
	s.respondJSON(w, http.StatusOK, StatusResponse{Status: "Graph reset"})
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.svc.Stats())
}
