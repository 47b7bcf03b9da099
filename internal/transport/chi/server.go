// Package chi exposes the search engine over HTTP. Handlers are hand-written
// against chi; request and response shapes live in this package.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fullscreen-triangle/hugure/internal/domain"
	"github.com/fullscreen-triangle/hugure/internal/domain/problem"
	logpkg "github.com/fullscreen-triangle/hugure/internal/logger"
	"github.com/fullscreen-triangle/hugure/internal/repository/insightcache"
	searchuc "github.com/fullscreen-triangle/hugure/internal/usecase/search"
)

// Error response codes.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeDimensionMismatch = "dimension_mismatch"
	codeDegenerateWindow  = "degenerate_window"
	codeCacheContention   = "cache_contention"
	codeInternalError     = "internal_error"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchRequest is the body of POST /v1/searches.
type SearchRequest struct {
	Domain     string    `json:"domain"`
	Dimensions int       `json:"dimensions"`
	Target     []float64 `json:"target"`
	Origin     []float64 `json:"origin"`
	Radius     float64   `json:"radius"`
	Seed       uint64    `json:"seed,omitempty"`
	Budget     BudgetDTO `json:"budget"`
}

// BudgetDTO bounds one run.
type BudgetDTO struct {
	MaxIterations  int     `json:"max_iterations"`
	MaxWallClockMS int64   `json:"max_wall_clock_ms,omitempty"`
	Epsilon        float64 `json:"epsilon"`
}

// SearchResponse is the outcome of one run.
type SearchResponse struct {
	RunID        string      `json:"run_id"`
	Reason       string      `json:"reason"`
	Iterations   int         `json:"iterations"`
	BestFeatures []float64   `json:"best_features,omitempty"`
	Distance     DistanceDTO `json:"distance"`
	ElapsedMS    int64       `json:"elapsed_ms"`
}

// DistanceDTO reports the three distance axes and their total.
type DistanceDTO struct {
	Knowledge float64 `json:"knowledge"`
	Time      float64 `json:"time"`
	Entropy   float64 `json:"entropy"`
	Total     float64 `json:"total"`
}

// CacheStatsResponse is the body of GET /v1/cache/stats.
type CacheStatsResponse struct {
	Entries                int     `json:"entries"`
	MeanTransferEfficiency float64 `json:"mean_transfer_efficiency"`
	Evictions              uint64  `json:"evictions"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server handles the HTTP API.
type Server struct {
	search        *searchuc.Service
	cache         *insightcache.Cache
	pinger        Pinger
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// Pinger checks a dependency's health. Optional; nil means no dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, cache *insightcache.Cache, pinger Pinger, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		cache:  cache,
		pinger: pinger,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidConfig, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusBadRequest, codeDimensionMismatch),
		sentinelHandler(domain.ErrDegenerateWindow, http.StatusUnprocessableEntity, codeDegenerateWindow),
		sentinelHandler(domain.ErrCacheContention, http.StatusServiceUnavailable, codeCacheContention),
	}
	return s
}

// Routes registers the API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/searches", s.RunSearch)
	r.Get("/v1/cache/stats", s.GetCacheStats)
	r.Get("/health", s.GetHealth)
	r.Handle("/metrics", promhttp.Handler())
}

// RunSearch handles POST /v1/searches.
func (s *Server) RunSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Domain == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "domain is required")
		return
	}
	if req.Budget.MaxIterations <= 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "budget.max_iterations must be positive")
		return
	}

	desc := problem.Descriptor{
		Domain:     req.Domain,
		Dimensions: req.Dimensions,
		Target:     domain.Vector(req.Target),
		Origin:     domain.Vector(req.Origin),
		Radius:     req.Radius,
		Seed:       req.Seed,
	}
	budget := problem.Budget{
		MaxIterations: req.Budget.MaxIterations,
		MaxWallClock:  time.Duration(req.Budget.MaxWallClockMS) * time.Millisecond,
		Epsilon:       req.Budget.Epsilon,
	}

	start := time.Now()
	res, err := s.search.Run(r.Context(), desc, budget)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		RunID:        res.RunID.String(),
		Reason:       string(res.Reason),
		Iterations:   res.Iterations,
		BestFeatures: []float64(res.BestFeatures),
		Distance: DistanceDTO{
			Knowledge: res.Distance.Knowledge(),
			Time:      res.Distance.Time(),
			Entropy:   res.Distance.Entropy(),
			Total:     res.Distance.Total(),
		},
		ElapsedMS: time.Since(start).Milliseconds(),
	})
}

// GetCacheStats handles GET /v1/cache/stats.
func (s *Server) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	stats := s.cache.Stats()
	writeJSON(w, http.StatusOK, CacheStatsResponse{
		Entries:                stats.EntryCount,
		MeanTransferEfficiency: stats.MeanTransferEfficiency,
		Evictions:              stats.Evictions,
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK

	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			logpkg.FromContext(r.Context()).Warn("health check failed", zap.Error(err))
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, httpStatus, map[string]string{"status": status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidConfig,
		domain.ErrDimensionMismatch,
		domain.ErrDegenerateWindow,
		domain.ErrCacheContention,
		domain.ErrBatchDisposed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// handleDomainError writes the mapped error response, logging through the
// request-scoped logger placed in context by the wide-event middleware.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logpkg.FromContext(r.Context()).Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
