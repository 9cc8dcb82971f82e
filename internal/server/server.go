// Package server exposes the render pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz               liveness probe
//	GET  /version               build information
//	POST /v1/render             JSON request, JSON response with base64 artifacts
//	GET  /v1/render.{format}    raw artifact for ?expr=...
//	GET  /v1/fixtures           named example terms
//	GET  /metrics               Prometheus metrics
//
// Errors are JSON objects {"code": ..., "message": ...} with the status
// given by errors.HTTPStatus.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/tromp/pkg/pipeline"
)

// Default server limits.
const (
	DefaultRenderTimeout = 30 * time.Second
	maxRequestBytes      = 1 << 20
)

// Options configures a Server.
type Options struct {
	// Runner executes the pipeline. Required.
	Runner *pipeline.Runner

	// Defaults supplies render options a request leaves empty.
	Defaults pipeline.Options

	// RenderTimeout bounds a single pipeline run. Default: DefaultRenderTimeout
	RenderTimeout time.Duration

	// Metrics, when set, is installed as the global hooks and served at /metrics.
	Metrics *Metrics

	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	runner        *pipeline.Runner
	defaults      pipeline.Options
	renderTimeout time.Duration
	metrics       *Metrics
	logger        *log.Logger
	router        chi.Router
}

// New builds the router.
func New(opts Options) *Server {
	s := &Server{
		runner:        opts.Runner,
		defaults:      opts.Defaults,
		renderTimeout: opts.RenderTimeout,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
	}
	if s.renderTimeout <= 0 {
		s.renderTimeout = DefaultRenderTimeout
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.metrics != nil {
		s.metrics.Install()
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Get("/render.{format}", s.handleRenderGet)
		r.Get("/fixtures", s.handleFixtures)
	})

	r.NotFound(s.handleNotFound)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
