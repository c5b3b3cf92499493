package api

import (
	"net/http"
	"strconv"

	"github.com/dd0wney/cluso-pathfinder/pkg/pathfinder"
)

// noPathMessage accompanies an empty graph path.
const noPathMessage = "No path found"

func (s *Server) findPath(w http.ResponseWriter, r *http.Request) {
	start, goal := r.PathValue("start"), r.PathValue("goal")

	res, err := s.svc.FindPath(r.Context(), start, goal)
	if err != nil {
		s.respondServiceError(w, r, err, "find path")
		return
	}

	out := PathResult{PathResponse: res}
	if !res.Found {
		out.Error = noPathMessage
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) findGridPath(w http.ResponseWriter, r *http.Request) {
	var req GridPathRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	res, err := s.svc.FindGridPath(r.Context(), req.Island, pathfinder.GridOptions{Diagonal: req.Diagonal})
	if err != nil {
		s.respondServiceError(w, r, err, "find grid path")
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) nearest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	x, err := strconv.ParseFloat(q.Get("x"), 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "x must be a number")
		return
	}
	y, err := strconv.ParseFloat(q.Get("y"), 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "y must be a number")
		return
	}
	k := 0
	if raw := q.Get("k"); raw != "" {
		if k, err = strconv.Atoi(raw); err != nil {
			s.respondError(w, http.StatusBadRequest, "k must be an integer")
			return
		}
	}

	nodes, err := s.svc.Nearest(r.Context(), x, y, k)
	if err != nil {
		s.respondServiceError(w, r, err, "nearest")
		return
	}
	s.respondJSON(w, http.StatusOK, NearestResponse{X: x, Y: y, Nodes: nodes})
}
