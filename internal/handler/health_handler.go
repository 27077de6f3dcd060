package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cardenrich/internal/domain"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	provider string
	fields   domain.FieldSet
}

// NewHealthHandler creates a new HealthHandler reporting the active provider and field set.
func NewHealthHandler(provider string, fields domain.FieldSet) *HealthHandler {
	return &HealthHandler{provider: provider, fields: fields}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.provider == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "no vision provider configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "provider": h.provider, "fields": string(h.fields)})
}
