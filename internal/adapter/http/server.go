package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/hazard-engine/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ModelCatalog lists the configured hazards and the scoring mode each one
// runs in. hazard.Registry implements it.
type ModelCatalog interface {
	Hazards() []domain.HazardType
	Status() map[domain.HazardType]domain.ModelStatus
}

// ModelInfo is one entry of the /models response.
type ModelInfo struct {
	Hazard      domain.HazardType  `json:"hazard_type"`
	ModelStatus domain.ModelStatus `json:"model_status"`
}

// Server exposes the operational HTTP endpoints.
type Server struct {
	httpServer *http.Server
	ready      sharedobs.ReadinessChecker
	models     ModelCatalog
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// /models routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, models ModelCatalog, logger *slog.Logger) *Server {
	s := &Server{
		ready:  ready,
		models: models,
		logger: logger,
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(s.ready))
	mux.HandleFunc("GET /models", s.handleModels)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	status := s.models.Status()
	hazards := s.models.Hazards()

	out := make([]ModelInfo, 0, len(hazards))
	for _, h := range hazards {
		out = append(out, ModelInfo{Hazard: h, ModelStatus: status[h]})
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"models": out})
}
