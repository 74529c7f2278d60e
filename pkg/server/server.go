// Package server exposes rulesets, their analyses and classification sweeps
// over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /version                             build information
//	GET  /rulesets/{states}/{rule}            JSON document
//	GET  /rulesets/{states}/{rule}/report     plain-text report
//	GET  /rulesets/{states}/{rule}/analysis   Markov analysis
//	GET  /rulesets/{states}/{rule}/dot        Graphviz DOT
//	GET  /rulesets/{states}/{rule}/svg        rendered SVG
//	POST /sweeps                              run and store a sweep
//	GET  /sweeps                              list stored sweeps
//	GET  /sweeps/{id}                         fetch one sweep
//	GET  /metrics                             Prometheus metrics
//
// Errors are returned as JSON with the error code and the request ID.
// Invalid input maps to 400, missing sweeps to 404 and everything else to 500.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/rulegraph/pkg/observability"
	"github.com/matzehuels/rulegraph/pkg/pipeline"
	"github.com/matzehuels/rulegraph/pkg/store"
)

const (
	// maxBodyBytes bounds request bodies.
	maxBodyBytes = 1 << 20

	// DefaultMaxSweepRules bounds POST /sweeps when Options leaves it unset.
	// At six states a rule takes a few milliseconds to classify.
	DefaultMaxSweepRules = 1024

	shutdownTimeout = 10 * time.Second
)

// Server serves the HTTP API. Create it with [New].
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	opts     pipeline.Options
	logger   *log.Logger
	gatherer prometheus.Gatherer
	router   chi.Router

	maxSweepRules int
}

// Options configures a Server.
type Options struct {
	// Pipeline holds the defaults applied to every request (state limit,
	// steps, cycle limit, sweep concurrency).
	Pipeline pipeline.Options

	// Gatherer backs /metrics. Nil uses prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// MaxSweepRules bounds the rule range of POST /sweeps. Zero uses
	// DefaultMaxSweepRules. Larger sweeps belong on the CLI.
	MaxSweepRules int

	Logger *log.Logger
}

// New creates a server using runner for computation and st for sweeps.
func New(runner *pipeline.Runner, st store.Store, opts Options) *Server {
	opts.Pipeline.SetDefaults()
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Logger == nil {
		opts.Logger = opts.Pipeline.Logger
	}
	if opts.MaxSweepRules <= 0 {
		opts.MaxSweepRules = DefaultMaxSweepRules
	}
	s := &Server{
		runner:   runner,
		store:    st,
		opts:     opts.Pipeline,
		logger:   opts.Logger,
		gatherer: opts.Gatherer,

		maxSweepRules: opts.MaxSweepRules,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Route("/rulesets/{states}/{rule}", func(r chi.Router) {
		r.Get("/", s.handleDocument)
		r.Get("/report", s.handleReport)
		r.Get("/analysis", s.handleAnalysis)
		r.Get("/dot", s.handleArtifact(pipeline.FormatDOT, "text/vnd.graphviz; charset=utf-8"))
		r.Get("/svg", s.handleArtifact(pipeline.FormatSVG, "image/svg+xml"))
	})
	r.Route("/sweeps", func(r chi.Router) {
		r.Post("/", s.handleCreateSweep)
		r.Get("/", s.handleListSweeps)
		r.Get("/{id}", s.handleGetSweep)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// instrument reports every request to the HTTP hooks and logs it at debug level.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", elapsed)
	})
}
