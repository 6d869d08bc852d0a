// Package server exposes the solver over HTTP.
//
// Routes:
//
//	POST /solve         {"expression": "x + 5 = 10"}
//	POST /solve_system  {"equations": ["x + y = 5", "x - y = 1"]}
//	POST /tool          agent tool call, see ToolRequest
//	GET  /schema        tool schema for agent registration
//	GET  /health        liveness check
//	GET  /metrics       Prometheus exposition
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/gosolve/internal/config"
	"github.com/njchilds90/gosolve/internal/metrics"
	"github.com/njchilds90/gosolve/notation"
	"github.com/njchilds90/gosolve/solver"
)

const (
	shutdownTimeout = 10 * time.Second
	cleanupInterval = time.Minute
	limiterIdleTTL  = 10 * time.Minute
)

// Solver is the part of *solver.Orchestrator the server needs.
type Solver interface {
	Solve(ctx context.Context, input string) (*solver.Result, error)
	SolveSystem(ctx context.Context, inputs []string) (*solver.Result, error)
}

// Server holds the router and its dependencies.
type Server struct {
	cfg        *config.Config
	solver     Solver
	normalizer *notation.Normalizer
	metrics    *metrics.Metrics
	log        logrus.FieldLogger
	cors       *CORSMiddleware
	limiter    *RateLimiter
	router     *mux.Router
	now        func() time.Time
}

// New wires the routes and middleware.
func New(cfg *config.Config, s Solver, n *notation.Normalizer, m *metrics.Metrics, log logrus.FieldLogger) *Server {
	srv := &Server{
		cfg:        cfg,
		solver:     s,
		normalizer: n,
		metrics:    m,
		log:        log,
		cors:       NewCORSMiddleware(cfg.CORSAllowedOrigins),
		limiter:    NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log),
		now:        time.Now,
	}
	srv.router = srv.routes()
	return srv
}

func (s *Server) routes() *mux.Router {
	chain := []mux.MiddlewareFunc{
		s.recoverMiddleware,
		s.loggingMiddleware,
		s.metricsMiddleware,
		s.cors.Handler,
		s.limiter.Handler,
	}

	r := mux.NewRouter()
	r.Use(chain...)
	// mux only runs r.Use middleware on matched routes.
	r.NotFoundHandler = wrap(http.HandlerFunc(s.handleNotFound), chain)
	r.MethodNotAllowedHandler = wrap(http.HandlerFunc(s.handleMethodNotAllowed), chain)

	r.HandleFunc("/solve", s.handleSolve).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/solve_system", s.handleSolveSystem).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/tool", s.handleTool).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/schema", s.handleSchema).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet, http.MethodOptions)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet, http.MethodOptions)
	return r
}

// wrap applies chain to h, first middleware outermost.
func wrap(h http.Handler, chain []mux.MiddlewareFunc) http.Handler {
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// HTTPServer returns an *http.Server configured from the config.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadTimeout:       s.cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: s.cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      s.cfg.HTTP.WriteTimeout,
		IdleTimeout:       s.cfg.HTTP.IdleTimeout,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := s.HTTPServer()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.WithField("addr", ln.Addr().String()).Info("gosolve listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		s.limiter.CleanupLoop(ctx, cleanupInterval, limiterIdleTTL)
		return nil
	})
	return g.Wait()
}
