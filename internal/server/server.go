// Package server exposes the stress-bulb engine as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alexiusacademia/gobulb/internal/bulb"
	"github.com/alexiusacademia/gobulb/internal/config"
	"github.com/alexiusacademia/gobulb/internal/stress"
	"github.com/alexiusacademia/gobulb/internal/version"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// shutdownTimeout bounds how long Run waits for in-flight requests.
const shutdownTimeout = 5 * time.Second

// Options configure a Server.
type Options struct {
	Config config.ServerConfig
	// DefaultMethod is used when a request does not name one.
	DefaultMethod stress.Method
	Logger        *slog.Logger
}

// Server serves the HTTP API.
type Server struct {
	engine   *bulb.Engine
	cfg      config.ServerConfig
	method   stress.Method
	logger   *slog.Logger
	validate *validator.Validate
	limiter  *IPRateLimiter
}

// New creates a server backed by engine.
func New(engine *bulb.Engine, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	method := opts.DefaultMethod
	if method == "" {
		method = stress.Newmark
	}
	limit := rate.Limit(opts.Config.RateLimit)
	if opts.Config.RateLimit <= 0 {
		limit = rate.Inf
	}
	return &Server{
		engine:   engine,
		cfg:      opts.Config,
		method:   method,
		logger:   logger.With(slog.String("component", "server")),
		validate: newValidator(),
		limiter:  NewIPRateLimiter(limit, opts.Config.Burst),
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.observe, s.limiter.LimitMiddleware, s.deadline)
	api.HandleFunc("/stress", s.stressAt).Methods(http.MethodPost)
	api.HandleFunc("/point-load", s.pointLoad).Methods(http.MethodPost)
	api.HandleFunc("/influence-depth", s.influenceDepth).Methods(http.MethodPost)
	api.HandleFunc("/bulb", s.bulb).Methods(http.MethodPost)
	api.HandleFunc("/report", s.report).Methods(http.MethodPost)
	return r
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.limiter.sweepEvery(sweepCtx, limiterSweepInterval)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: version.Current(),
		Cache:   s.engine.CacheStats(),
	})
}

// deadline bounds each API request by the configured timeout.
func (s *Server) deadline(next http.Handler) http.Handler {
	if s.cfg.RequestTimeout <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// observe logs every API request and records its metrics.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		elapsed := time.Since(start)
		httpRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "request",
			slog.String("method", r.Method),
			slog.String("route", route),
			slog.Int("status", rec.status),
			slog.Duration("duration", elapsed),
			slog.String("remote", clientIP(r)))
	})
}
