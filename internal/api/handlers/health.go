package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	generationEndpoint string
}

func NewHealthHandler(generationEndpoint string) *HealthHandler {
	return &HealthHandler{generationEndpoint: generationEndpoint}
}

// HealthCheck returns the health status of the composer.
// The generation service is not probed; its configured endpoint is reported.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"generation_service": gin.H{
			"endpoint": h.generationEndpoint,
		},
	})
}
