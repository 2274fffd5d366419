package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/stakequorum/consensus-oracle/internal/config"
	"github.com/stakequorum/consensus-oracle/internal/observability/tracing"
	"github.com/stakequorum/consensus-oracle/internal/services"
)

// Server exposes the validation gate and consensus snapshots over HTTP. The
// consensus pipeline itself runs on the queue; this surface only reads
// snapshots, gates dependent actions and accepts governance writes.
type Server struct {
	httpServer *http.Server
	service    *services.Service
}

func New(cfg *config.ApiConfig, service *services.Service) *Server {
	server := &Server{service: service}

	router := chi.NewRouter()
	router.Use(traceMiddleware)
	server.setupRoutes(router)

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		Handler:      router,
	}

	return server
}

func (s *Server) setupRoutes(router chi.Router) {
	router.Get("/healthcheck", s.handleHealthCheck)

	router.Route("/v1", func(router chi.Router) {
		router.Post("/pools/{poolID}/validate", s.handleValidatePrice)
		router.Get("/pools/{poolID}/consensus", s.handleGetConsensus)

		router.Put("/admin/pools/{poolID}/config", s.handleUpsertPoolConfig)
		router.Put("/admin/operators/{operatorID}/state", s.handleUpdateOperatorState)
	})
}

func (s *Server) Start() error {
	log.Info().Str("address", s.httpServer.Addr).Msg("Starting api server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// traceMiddleware scopes a fresh trace id to every request so handler and
// service logs for one call share a correlator.
func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tracing.InjectTraceID(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
