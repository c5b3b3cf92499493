package middleware

import (
	"net/http"
)

// BodySizeLimit rejects request bodies larger than maxBytes. A declared
// Content-Length over the limit is refused up front; otherwise the body is
// wrapped in http.MaxBytesReader so chunked uploads fail on read.
func BodySizeLimit(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
