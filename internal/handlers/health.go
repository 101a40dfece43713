package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/magnate-systems/picking-api/internal/database"
)

type HealthHandler struct {
	startedAt time.Time
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now()}
}

// Health is the liveness probe
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HealthDetailed reports database reachability and degraded mode
func (h *HealthHandler) HealthDetailed(c *gin.Context) {
	dbStatus := "ok"
	status := http.StatusOK

	sqlDB, err := database.GetDB().DB()
	if err != nil || sqlDB.Ping() != nil {
		dbStatus = "unreachable"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":         dbStatus,
		"degraded":       database.Degraded(),
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	})
}
