package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Check is a named readiness probe, e.g. the snapshot store or Redis.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	storage string
	checks  []Check
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(storage string, checks ...Check) *HealthHandler {
	return &HealthHandler{storage: storage, checks: checks}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles readiness probe (can dependencies be reached?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		if err := check.Ping(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			results[check.Name] = "unhealthy: " + err.Error()
			continue
		}
		results[check.Name] = "healthy"
	}

	label := "ok"
	if status != http.StatusOK {
		label = "error"
	}
	c.JSON(status, gin.H{
		"status":  label,
		"storage": h.storage,
		"checks":  results,
	})
}
