// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"routing-engine/internal/common/config"
	stderrors "routing-engine/internal/common/errors"
	"routing-engine/internal/common/logger"
	"routing-engine/internal/dispatch"
	"routing-engine/internal/routing/costmodel"
	"routing-engine/internal/routing/engine"
	"routing-engine/internal/sinks"
)

// Server is the HTTP face of the routing engine. All decision logic lives in
// the engine; handlers only translate between HTTP and the domain types.
type Server struct {
	httpServer *http.Server
	log        logger.Logger
}

func New(
	cfg config.ServerConfig,
	eng *engine.Engine,
	stats *sinks.StatsSink,
	costModel *costmodel.Model,
	counters costmodel.Counters,
	registry *dispatch.Registry,
	log logger.Logger,
) *Server {
	h := &handlers{
		engine:    eng,
		stats:     stats,
		costModel: costModel,
		counters:  counters,
		registry:  registry,
		errors:    stderrors.NewErrorHandler(log),
		log:       log.WithFields(map[string]interface{}{"component": "server"}),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/route", h.handleRoute)
		r.Get("/stats", h.handleStats)
		r.Get("/costs", h.handleCosts)
	})
	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Address,
			Handler:      r,
			ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
			WriteTimeout: config.GetDuration(cfg.WriteTimeout),
			IdleTimeout:  60 * time.Second,
		},
		log: log,
	}
}

// Start blocks serving requests until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.log.Info("http server listening", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
