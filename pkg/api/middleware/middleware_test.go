package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dd0wney/cluso-pathfinder/pkg/logging"
)

// --- BodySizeLimit Tests ---

func TestBodySizeLimit_AllowsSmallRequest(t *testing.T) {
	handler := BodySizeLimit(1024)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	}))

	req := httptest.NewRequest("POST", "/", strings.NewReader("small body"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != "small body" {
		t.Errorf("Expected echoed body, got %q", rr.Body.String())
	}
}

func TestBodySizeLimit_RejectsLargeContentLength(t *testing.T) {
	handler := BodySizeLimit(100)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called for oversized request")
	}))

	req := httptest.NewRequest("POST", "/", strings.NewReader(""))
	req.ContentLength = 1000

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status %d, got %d", http.StatusRequestEntityTooLarge, rr.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected JSON error envelope: %v", err)
	}
	if body.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected code 413 in envelope, got %d", body.Code)
	}
}

func TestBodySizeLimit_LimitsActualBody(t *testing.T) {
	handler := BodySizeLimit(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat("x", 100)))
	req.ContentLength = -1

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status %d, got %d", http.StatusRequestEntityTooLarge, rr.Code)
	}
}

// --- PanicRecovery Tests ---

func TestPanicRecovery_HandlesNormalRequest(t *testing.T) {
	handler := PanicRecovery(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusOK || rr.Body.String() != "OK" {
		t.Errorf("Expected 200 OK, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestPanicRecovery_RecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.DebugLevel)
	handler := PanicRecovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/nodes", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if strings.Contains(rr.Body.String(), "test panic") {
		t.Error("Response should not contain panic message")
	}
	if !strings.Contains(buf.String(), "test panic") {
		t.Errorf("Expected panic to be logged, got %q", buf.String())
	}
}

// --- RequestID Tests ---

func TestRequestID_GeneratesUUID(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if len(seen) != 36 {
		t.Errorf("Expected a UUID request id, got %q", seen)
	}
	if rr.Header().Get(RequestIDHeader) != seen {
		t.Errorf("Response header %q does not match context id %q", rr.Header().Get(RequestIDHeader), seen)
	}
}

func TestRequestID_SanitizesClientID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abc-123_x.y", "abc-123_x.y"},
		{"evil\nheader", "evilheader"},
		{strings.Repeat("a", 100), strings.Repeat("a", 64)},
	}
	for _, tt := range tests {
		var seen string
		handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r)
		}))
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(RequestIDHeader, tt.in)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if seen != tt.want {
			t.Errorf("RequestID(%q) = %q, want %q", tt.in, seen, tt.want)
		}
	}
}

// --- Logging Tests ---

func TestLogging_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.InfoLevel)

	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("missing"))
	}), RequestID(), Logging(logger))

	req := httptest.NewRequest("GET", "/path/A/B", nil)
	req.Header.Set(RequestIDHeader, "trace-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry logging.LogEntry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("Expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if entry.Level != "WARN" {
		t.Errorf("Expected WARN for 404, got %s", entry.Level)
	}
	if entry.Fields["request_id"] != "trace-1" {
		t.Errorf("Expected request_id trace-1, got %v", entry.Fields["request_id"])
	}
	if entry.Fields["status"] != float64(404) {
		t.Errorf("Expected status 404, got %v", entry.Fields["status"])
	}
	if entry.Fields["bytes"] != float64(7) {
		t.Errorf("Expected 7 bytes, got %v", entry.Fields["bytes"])
	}
}

// --- Metrics Tests ---

type fakeRecorder struct {
	mu       sync.Mutex
	requests []string
	sizes    []int
	inFlight int
	peak     int
}

func (f *fakeRecorder) RecordHTTPRequest(method, path, status string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, method+" "+path+" "+status)
}

func (f *fakeRecorder) RecordHTTPResponseSize(_, _ string, size int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sizes = append(f.sizes, size)
}

func (f *fakeRecorder) IncInFlight() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight++
	f.peak = max(f.peak, f.inFlight)
}

func (f *fakeRecorder) DecInFlight() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
}

func TestMetrics_RecordsRouteAndStatus(t *testing.T) {
	rec := &fakeRecorder{}
	handler := Metrics(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status":"ok"}`))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/path/A/B", nil))

	if len(rec.requests) != 1 || rec.requests[0] != "GET /path 201" {
		t.Errorf("Unexpected recorded requests: %v", rec.requests)
	}
	if len(rec.sizes) != 1 || rec.sizes[0] != len(`{"status":"ok"}`) {
		t.Errorf("Unexpected recorded sizes: %v", rec.sizes)
	}
	if rec.inFlight != 0 || rec.peak != 1 {
		t.Errorf("In-flight gauge not balanced: now=%d peak=%d", rec.inFlight, rec.peak)
	}
}

func TestRouteLabel(t *testing.T) {
	tests := map[string]string{
		"/":             "/",
		"/nodes/":       "/nodes",
		"/nodes":        "/nodes",
		"/path/A/B":     "/path",
		"/find-path":    "/find-path",
		"/health/ready": "/health",
		"/wp-admin.php": "other",
		"/graphql":      "/graphql",
	}
	for in, want := range tests {
		if got := RouteLabel(in); got != want {
			t.Errorf("RouteLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

// --- CORS Tests ---

func TestCORS_AllowedOrigin(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.AllowCredentials = true

	called := false
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("GET", "/nodes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !called {
		t.Error("Expected handler to be called")
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Expected allowed origin header, got %q", got)
	}
	if rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("Expected credentials header")
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	handler := CORS(DefaultCORSConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/nodes", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("Expected no CORS headers for disallowed origin")
	}
}

func TestCORS_Preflight(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"*"}
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Preflight should not reach the handler")
	}))

	req := httptest.NewRequest("OPTIONS", "/find-path", nil)
	req.Header.Set("Origin", "http://any.example")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "http://any.example" {
		t.Error("Wildcard config should echo the request origin")
	}

	req = httptest.NewRequest("OPTIONS", "/find-path", nil)
	req.Header.Set("Origin", "http://any.example")
	rr = httptest.NewRecorder()
	CORS(DefaultCORSConfig())(http.NotFoundHandler()).ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for disallowed preflight, got %d", rr.Code)
	}
}

// --- SecurityHeaders Tests ---

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy", "Referrer-Policy"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("Expected %s header", h)
		}
	}
}

// --- Chain Tests ---

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mark("a"), mark("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if strings.Join(order, ",") != "a,b,handler" {
		t.Errorf("Unexpected order %v", order)
	}
}
