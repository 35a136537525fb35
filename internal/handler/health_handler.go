package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by the database and cache clients checked for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	deps map[string]Pinger
}

// NewHealthHandler creates a new HealthHandler that checks each named dependency.
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// Liveness handles GET /healthz
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string "Service is alive"
// @Router /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
// @Summary Readiness check
// @Description Ping every backing dependency
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string "Service is ready"
// @Failure 503 {object} map[string]string "A dependency is not reachable"
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	for name, dep := range h.deps {
		if err := dep.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": name + " not reachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
