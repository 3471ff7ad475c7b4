package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/facebridge/facebridge/internal/config"
	"github.com/facebridge/facebridge/pkg/adapters/metrics/prometheus"
	"github.com/facebridge/facebridge/pkg/adapters/upstream"
	"github.com/facebridge/facebridge/pkg/api/http"
	"github.com/facebridge/facebridge/pkg/api/websocket"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting Face Recognition Relay",
		zap.String("version", Version),
		zap.String("build_time", BuildTime))

	// Initialize adapters
	metricsCollector := prometheus.NewCollector()

	faceAPI := upstream.NewClient(&upstream.Config{
		BaseURL: cfg.UpstreamBaseURL(),
		Timeout: cfg.Upstream.Timeout,
		Logger:  logger,
	})

	// Initialize the WebSocket layer
	manager := websocket.NewManager(logger)

	wsHandler := websocket.NewHandler(faceAPI, manager, metricsCollector, logger, websocket.Options{
		ReadLimit:      cfg.WebSocket.ReadLimit,
		SendBufferSize: cfg.WebSocket.SendBufferSize,
		PongWait:       cfg.WebSocket.PongWait,
		AllowedOrigins: cfg.WebSocket.AllowedOrigins,
	})

	// Initialize the HTTP server
	httpServer := http.NewServer(&http.Config{
		Port:        cfg.HTTPPort,
		Upstream:    faceAPI,
		Connections: manager,
		Logger:      logger,
	})
	httpServer.SetupWebSocket(wsHandler)

	// Start server
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	logger.Info("Face Recognition Relay started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.String("upstream", cfg.UpstreamBaseURL()))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	manager.Close()

	logger.Info("Face Recognition Relay shut down complete")
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
