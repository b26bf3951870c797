// Package server exposes the timeline engine over HTTP.
//
// Routes:
//
//	GET    /healthz
//	GET    /api/v1/snapshot   ?x&k | ?start&end, width, height, format=json|svg, theme
//	GET    /api/v1/zoom       ?start&end&width
//	GET    /api/v1/context    ?x&k&width
//	GET    /api/v1/tree       ?format=dot|svg, focus
//	GET    /api/v1/views
//	POST   /api/v1/views
//	GET    /api/v1/views/{id}
//	PUT    /api/v1/views/{id}
//	DELETE /api/v1/views/{id}
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/deeptime/pkg/config"
	"github.com/matzehuels/deeptime/pkg/pipeline"
	"github.com/matzehuels/deeptime/pkg/session"
)

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	store  session.Store
	cfg    config.Config
	logger *log.Logger
	router chi.Router
}

// New wires the routes. A nil logger logs through log.Default().
func New(runner *pipeline.Runner, store session.Store, cfg config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, store: store, cfg: cfg, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/zoom", s.handleZoom)
		r.Get("/context", s.handleContext)
		r.Get("/tree", s.handleTree)
		r.Route("/views", func(r chi.Router) {
			r.Get("/", s.handleListViews)
			r.Post("/", s.handleCreateView)
			r.Get("/{id}", s.handleGetView)
			r.Put("/{id}", s.handleUpdateView)
			r.Delete("/{id}", s.handleDeleteView)
		})
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
