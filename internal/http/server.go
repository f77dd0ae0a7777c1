// Package http provides the operational HTTP surface: health and readiness
// probes, the Prometheus metrics server, and a request logging middleware that
// redacts PII before anything reaches the log stream.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/copp1723/seorylie-sub000/internal/metrics"
)

// ServerConfig carries the router options of the operational server.
type ServerConfig struct {
	Host             string
	Port             int
	CORSEnabled      bool
	CORSAllowOrigins string
	ExcludedPaths    []string
	MetricsProvider  *metrics.Provider
	MetricsNamespace string
}

// Server is the operational HTTP server. It exposes no domain routes; PII
// operations go through the CLI and scheduled commands only.
type Server struct {
	server   *http.Server
	router   *gin.Engine
	db       *sql.DB
	logger   *slog.Logger
	redactor Redactor
	cfg      ServerConfig
}

// NewServer creates a new operational HTTP server.
func NewServer(db *sql.DB, redactor Redactor, logger *slog.Logger, cfg ServerConfig) *Server {
	return &Server{
		db:       db,
		redactor: redactor,
		logger:   logger,
		cfg:      cfg,
	}
}

// SetupRouter builds the gin router with recovery, request IDs, redacted
// logging, optional CORS, and optional metrics instrumentation.
func (s *Server) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(RedactingLoggerMiddleware(s.logger, s.redactor, s.cfg.ExcludedPaths))

	if corsMiddleware := createCORSMiddleware(s.cfg.CORSEnabled, s.cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if s.cfg.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(s.cfg.MetricsProvider.MeterProvider(), s.cfg.MetricsNamespace))
	}

	router.GET("/healthz", s.healthHandler)
	router.GET("/readyz", s.readinessHandler)

	return router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can reach its dependencies.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}

	if s.db == nil {
		components["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		components["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		s.router = s.SetupRouter()
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
