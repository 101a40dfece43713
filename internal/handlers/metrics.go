package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/magnate-systems/picking-api/internal/errors"
	"github.com/magnate-systems/picking-api/internal/services"
)

type MetricsHandler struct {
	metricsService *services.MetricsService
}

func NewMetricsHandler(metricsService *services.MetricsService) *MetricsHandler {
	return &MetricsHandler{metricsService: metricsService}
}

// Dashboard returns the operational metrics payload
func (h *MetricsHandler) Dashboard(c *gin.Context) {
	metrics, err := h.metricsService.Dashboard()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, metrics)
}
