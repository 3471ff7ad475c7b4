package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// handleRoot handles the root endpoint
func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Face Recognition Relay is running",
	})
}

// handleHealth handles health check requests. The relay itself is healthy as
// long as it can answer; the upstream check is informational and never turns
// the status unhealthy.
func (s *Server) handleHealth(c *gin.Context) {
	upstreamStatus := "unreachable"
	if s.upstream != nil && s.upstream.Healthy(c.Request.Context()) {
		upstreamStatus = "ok"
	}

	connections := 0
	if s.connections != nil {
		connections = s.connections.ConnectionCount()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": gin.H{
			"upstream":    upstreamStatus,
			"connections": connections,
		},
	})
}
