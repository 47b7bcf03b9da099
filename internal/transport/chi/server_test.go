package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	logpkg "github.com/fullscreen-triangle/hugure/internal/logger"
	"github.com/fullscreen-triangle/hugure/internal/repository/insightcache"
	searchuc "github.com/fullscreen-triangle/hugure/internal/usecase/search"
)

func newTestServer(t *testing.T, pinger Pinger) (*Server, *chirouter.Mux) {
	t.Helper()

	cache, err := insightcache.New(128)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	svc := searchuc.New(cache, zap.NewNop(), searchuc.Config{BatchSize: 32})

	s := NewServer(svc, cache, pinger, zap.NewNop())
	r := chirouter.NewRouter()
	s.Routes(r)
	return s, r
}

func TestRunSearch_Success(t *testing.T) {
	_, r := newTestServer(t, nil)

	body := `{
		"domain": "test",
		"dimensions": 2,
		"target": [0, 0],
		"origin": [3, 4],
		"radius": 5,
		"seed": 42,
		"budget": {"max_iterations": 300, "epsilon": 0.05}
	}`
	req := httptest.NewRequest("POST", "/v1/searches", strings.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RunID == "" {
		t.Error("expected non-empty run_id")
	}
	if resp.Iterations <= 0 {
		t.Errorf("expected positive iterations, got %d", resp.Iterations)
	}
	if resp.Reason == "" {
		t.Error("expected termination reason")
	}
	if len(resp.BestFeatures) != 2 {
		t.Errorf("expected 2 best features, got %d", len(resp.BestFeatures))
	}
}

func TestRunSearch_InvalidBody(t *testing.T) {
	_, r := newTestServer(t, nil)

	req := httptest.NewRequest("POST", "/v1/searches", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != codeBadRequest {
		t.Errorf("error code: got %s, want %s", errResp.Code, codeBadRequest)
	}
}

func TestRunSearch_MissingDomain(t *testing.T) {
	_, r := newTestServer(t, nil)

	body := `{"dimensions": 2, "target": [0,0], "origin": [1,1], "radius": 1,
		"budget": {"max_iterations": 10, "epsilon": 0.01}}`
	req := httptest.NewRequest("POST", "/v1/searches", strings.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestRunSearch_DimensionMismatch(t *testing.T) {
	_, r := newTestServer(t, nil)

	body := `{
		"domain": "test",
		"dimensions": 3,
		"target": [0, 0],
		"origin": [1, 1, 1],
		"radius": 1,
		"budget": {"max_iterations": 10, "epsilon": 0.01}
	}`
	req := httptest.NewRequest("POST", "/v1/searches", strings.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d, body %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != codeValidationFailed {
		t.Errorf("error code: got %s, want %s", errResp.Code, codeValidationFailed)
	}
}

func TestGetCacheStats(t *testing.T) {
	_, r := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/v1/cache/stats", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp CacheStatsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Entries != 0 {
		t.Errorf("expected empty cache, got %d entries", resp.Entries)
	}
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestGetHealth_NoDependency(t *testing.T) {
	_, r := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestGetHealth_DependencyDown(t *testing.T) {
	_, r := newTestServer(t, stubPinger{err: errors.New("connection refused")})

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func TestHandleDomainError_LogsThroughRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	_, r := newTestServer(t, nil)

	// The wide-event middleware places a per-request logger in context;
	// domain errors must be reported through it.
	wrapped := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := logpkg.ContextWithLogger(req.Context(), zap.New(core))
		r.ServeHTTP(w, req.WithContext(ctx))
	})

	body := `{
		"domain": "test",
		"dimensions": 3,
		"target": [0, 0],
		"origin": [1, 1, 1],
		"radius": 1,
		"budget": {"max_iterations": 10, "epsilon": 0.01}
	}`
	req := httptest.NewRequest("POST", "/v1/searches", strings.NewReader(body))
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if logs.FilterMessage("domain error").Len() != 1 {
		t.Errorf("expected one domain error log entry, got %d", logs.Len())
	}
}
