package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dd0wney/cluso-pathfinder/pkg/logging"
	"github.com/dd0wney/cluso-pathfinder/pkg/pathfinder"
)

// errBadBody marks a request body that could not be decoded.
var errBadBody = errors.New("invalid request body")

// respondJSON encodes data before writing the header so an unencodable
// value becomes a 500 instead of a 200 with an empty body.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		s.logger.Error("Error encoding JSON response", logging.Error(err))
		buf.Reset()
		status = http.StatusInternalServerError
		// ErrorResponse always encodes.
		_ = json.NewEncoder(&buf).Encode(ErrorResponse{
			Error:   http.StatusText(status),
			Message: "failed to encode response",
			Code:    status,
			Kind:    string(pathfinder.KindInternal),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn("Error writing JSON response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// statusForKind maps a service error kind to its HTTP status.
func statusForKind(kind pathfinder.Kind) int {
	switch kind {
	case pathfinder.KindDuplicateNode:
		return http.StatusConflict
	case pathfinder.KindUnknownNode:
		return http.StatusNotFound
	case pathfinder.KindSelfLoop, pathfinder.KindInvalidGrid, pathfinder.KindInvalidRequest:
		return http.StatusBadRequest
	case pathfinder.KindSearchLimit:
		return http.StatusUnprocessableEntity
	case pathfinder.KindTimeout:
		return http.StatusServiceUnavailable
	case pathfinder.KindCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err in the error envelope. Internal errors are
// logged and replaced by a generic message.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	kind := pathfinder.KindOf(err)
	status := statusForKind(kind)

	message := err.Error()
	if kind == pathfinder.KindInternal {
		message = sanitizeError(logging.FromContext(r.Context(), s.logger), err, operation)
	}
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
		Kind:    string(kind),
	})
}

// sanitizeError logs err and returns a message safe for clients.
func sanitizeError(logger logging.Logger, err error, operation string) string {
	logger.Error("Request failed", logging.Operation(operation), logging.Error(err))
	return fmt.Sprintf("%s failed", operation)
}

// decodeJSON decodes the request body into v. An oversized body reports
// 413, anything else 400.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		s.respondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("%v: empty body", errBadBody))
	default:
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("%v: %v", errBadBody, err))
	}
	return false
}
