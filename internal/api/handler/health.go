package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health GET /health, /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "OK",
		"uptime":      time.Since(h.started).Round(time.Second).String(),
		"connections": h.Gateway.Registry.Count(),
	})
}

// NotFound is the JSON fallback for unknown routes.
func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
}
