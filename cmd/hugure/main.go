package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/fullscreen-triangle/hugure/internal/config"
	"github.com/fullscreen-triangle/hugure/internal/db"
	dbRedis "github.com/fullscreen-triangle/hugure/internal/db/redis"
	logpkg "github.com/fullscreen-triangle/hugure/internal/logger"
	"github.com/fullscreen-triangle/hugure/internal/metrics"
	"github.com/fullscreen-triangle/hugure/internal/repository/insightcache"
	"github.com/fullscreen-triangle/hugure/internal/repository/snapshot"
	chiTransport "github.com/fullscreen-triangle/hugure/internal/transport/chi"
	searchuc "github.com/fullscreen-triangle/hugure/internal/usecase/search"
	windowuc "github.com/fullscreen-triangle/hugure/internal/usecase/window"
	"github.com/fullscreen-triangle/hugure/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting hugure API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx := context.Background()

	// Database is optional: without it the insight cache starts cold and is
	// lost on shutdown.
	var store db.Store
	var snapStore *snapshot.Store
	if len(cfg.Database.Addrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database")

		snapStore = snapshot.New(store, cfg.Storage.KeyPrefix,
			time.Duration(cfg.Storage.SnapshotTTLHrs)*time.Hour)
	}

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	cache, err := insightcache.New(cfg.Engine.CacheCapacity)
	if err != nil {
		logger.Fatal("Failed to create insight cache", zap.Error(err))
	}

	// Warm-load the last cache snapshot
	if snapStore != nil {
		records, err := snapStore.Load(ctx)
		if err != nil {
			logger.Warn("Failed to load cache snapshot", zap.Error(err))
		} else if len(records) > 0 {
			if err := cache.Restore(records); err != nil {
				logger.Warn("Failed to restore cache snapshot", zap.Error(err))
			} else {
				logger.Info("Restored cache snapshot", zap.Int("records", len(records)))
			}
		}
	}

	searchSvc := searchuc.New(cache, logger, searchuc.Config{
		BatchSize:  cfg.Engine.BatchSize,
		Workers:    cfg.Engine.Workers,
		BiasFactor: biasFactor(cfg.Engine.Bias),
		Selector:   windowuc.Config{StagnationLimit: cfg.Engine.StagnationLimit},
	})

	var pinger chiTransport.Pinger
	if store != nil {
		pinger = store
	}
	server := chiTransport.NewServer(searchSvc, cache, pinger, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	// Persist the cache so the next process starts warm
	if snapStore != nil {
		records := cache.Snapshot()
		if err := snapStore.Save(shutdownCtx, records); err != nil {
			logger.Error("Failed to save cache snapshot", zap.Error(err))
		} else {
			logger.Info("Saved cache snapshot", zap.Int("records", len(records)))
		}
	}

	logger.Info("Server stopped gracefully")
}

// biasFactor maps a config bias name to a generation bias factor.
// Validation already rejected unknown names.
func biasFactor(name string) float64 {
	switch name {
	case "uniform":
		return searchuc.BiasUniform
	case "mild":
		return searchuc.BiasMild
	case "high":
		return searchuc.BiasHigh
	case "extreme":
		return searchuc.BiasExtreme
	default:
		return searchuc.BiasStandard
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
