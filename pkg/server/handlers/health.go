package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docsonar/docsonar"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests
type HealthHandler struct {
	engine docsonar.Engine
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(engine docsonar.Engine) *HealthHandler {
	return &HealthHandler{
		engine: engine,
	}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "docsonar",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// ReadinessCheck handles GET /ready. The service is ready once the engine
// is wired; a degraded graph still serves adapter-backed search, so it
// reports ready with a warning flag rather than failing the probe.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	response := gin.H{
		"status":    "ready",
		"service":   "docsonar",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    gin.H{},
	}
	checks := response["checks"].(gin.H)

	if h.engine == nil {
		checks["engine"] = gin.H{"status": "unhealthy", "error": "engine not initialized"}
		response["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	stats := h.engine.GraphStats()
	graphCheck := gin.H{
		"status": "healthy",
		"nodes":  stats.TotalNodes,
		"edges":  stats.TotalEdges,
	}
	if stats.Degraded {
		graphCheck["status"] = "degraded"
		graphCheck["note"] = "graph snapshot unavailable, serving adapter sources only"
	}
	checks["graph"] = graphCheck

	c.JSON(http.StatusOK, response)
}

// LivenessCheck handles GET /live - Kubernetes liveness probe endpoint
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   "docsonar",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
