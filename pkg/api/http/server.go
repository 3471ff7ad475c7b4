package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HealthChecker reports upstream Face API reachability
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// ConnectionCounter reports the number of open WebSocket connections
type ConnectionCounter interface {
	ConnectionCount() int
}

// Server represents the relay HTTP server
type Server struct {
	router      *gin.Engine
	server      *http.Server
	upstream    HealthChecker
	connections ConnectionCounter
	logger      *zap.Logger
}

// Config holds HTTP server configuration
type Config struct {
	Port        int
	Upstream    HealthChecker
	Connections ConnectionCounter
	Logger      *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	// Set Gin mode based on logger
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(cfg.Logger))
	router.Use(corsMiddleware())

	s := &Server{
		router:      router,
		upstream:    cfg.Upstream,
		connections: cfg.Connections,
		logger:      cfg.Logger,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	return s
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleRoot)
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// SetupWebSocket registers the WebSocket endpoint
func (s *Server) SetupWebSocket(handler interface {
	HandleConnection(*gin.Context)
}) {
	s.router.GET("/ws", handler.HandleConnection)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}

// requestLogger is a middleware for request logging
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		duration := time.Since(start)

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration),
			zap.String("client_ip", c.ClientIP()))
	}
}
