// Package httpserver provides the HTTP REST API server for the apartment listing service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/helixir/apartment-listing-service/internal/database"
	"github.com/helixir/apartment-listing-service/internal/domain"
	"github.com/helixir/apartment-listing-service/internal/observability"
	"github.com/helixir/apartment-listing-service/internal/service"
)

// ApartmentService is the use-case surface the handlers depend on.
// *service.ApartmentService implements it.
type ApartmentService interface {
	ListApartments(ctx context.Context, q service.ListQuery) (*domain.ApartmentList, error)
	GetApartmentByID(ctx context.Context, id int64) (*domain.Apartment, error)
	CreateApartment(ctx context.Context, input domain.CreateApartmentInput) (*domain.Apartment, error)
}

// HealthChecker reports store health for the probe endpoints. *database.DB implements it.
type HealthChecker interface {
	Health(ctx context.Context) database.HealthStatus
}

// Server is the HTTP REST API server.
type Server struct {
	router         chi.Router
	httpServer     *http.Server
	apartments     ApartmentService
	health         HealthChecker
	metrics        *observability.Metrics
	limiter        *RateLimiter
	allowedOrigins []string
	logger         zerolog.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// AllowedOrigins lists CORS origins. A "*" entry allows any origin.
	AllowedOrigins []string
}

// Option customises a Server.
type Option func(*Server)

// WithMetrics instruments every request.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithRateLimiter rejects requests beyond the limiter's budget with 429.
func WithRateLimiter(l *RateLimiter) Option {
	return func(s *Server) { s.limiter = l }
}

// NewServer creates a new HTTP server with all dependencies.
func NewServer(
	cfg Config,
	apartments ApartmentService,
	health HealthChecker,
	logger zerolog.Logger,
	opts ...Option,
) *Server {
	s := &Server{
		apartments:     apartments,
		health:         health,
		allowedOrigins: cfg.AllowedOrigins,
		logger:         logger.With().Str("component", "http-server").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(correlationIDMiddleware)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLoggerMiddleware(s.logger))
	if s.metrics != nil {
		r.Use(metricsMiddleware(s.metrics))
	}
	r.Use(corsMiddleware(s.allowedOrigins))
	if s.limiter != nil {
		r.Use(rateLimitMiddleware(s.limiter, s.metrics))
	}
	r.Use(jsonContentTypeMiddleware)

	r.Get("/health", s.statusHandler)
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/apartments", func(r chi.Router) {
		r.Get("/", s.listApartments)
		r.Post("/", s.createApartment)
		r.Get("/{id}", s.getApartment)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// statusHandler answers the plain liveness probe used by the web client.
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, statusResponse{Status: "ok", Message: "Server is running"})
}

// healthHandler returns liveness including database connectivity.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := s.checkHealth(r.Context())
	if health.Healthy() {
		writeJSON(w, r, http.StatusOK, map[string]interface{}{"status": "ok", "database": health})
		return
	}
	writeJSON(w, r, http.StatusServiceUnavailable, map[string]interface{}{
		"status":   "unhealthy",
		"database": health,
	})
}

// readinessHandler returns readiness status.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	health := s.checkHealth(r.Context())
	if !health.Healthy() {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": database.StatusHealthy,
	})
}

func (s *Server) checkHealth(ctx context.Context) database.HealthStatus {
	if s.health == nil {
		return database.HealthStatus{Status: database.StatusUnhealthy, Error: "no health checker configured"}
	}
	return s.health.Health(ctx)
}

// writeJSON writes a JSON response with the given status code. Encode
// failures go to the request logger, since the status line is already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", statusCode).Msg("failed to encode response")
	}
}
