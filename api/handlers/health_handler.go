package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ytgrab-go/internal/domain"
)

// Version is reported by the health endpoint
var Version = "dev"

// EngineChecker reports extraction engine availability
type EngineChecker interface {
	Name() string
	Check() error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	engine EngineChecker
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(engine EngineChecker) *HealthHandler {
	return &HealthHandler{
		engine: engine,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Engine  struct {
		Backend string `json:"backend"`
	} `json:"engine"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: Version,
	}
	response.Engine.Backend = h.engine.Name()

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.engine.Check(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": domain.UserMessage(domain.KindOf(err)),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
