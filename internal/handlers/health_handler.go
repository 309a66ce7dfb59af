package handlers

import (
	"net/http"

	"adaptive-service/internal/db"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	Provisioned bool
}

func NewHealthHandler(provisioned bool) *HealthHandler {
	return &HealthHandler{Provisioned: provisioned}
}

// Health is the liveness endpoint registered with the consul check.
func (h *HealthHandler) Health(c *gin.Context) {
	if err := db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"provisioned": h.Provisioned,
	})
}
