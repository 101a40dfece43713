package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/magnate-systems/picking-api/internal/dto"
	apierrors "github.com/magnate-systems/picking-api/internal/errors"
	"github.com/magnate-systems/picking-api/internal/services"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List returns the open upstream orders with local picking status
func (h *OrderHandler) List(c *gin.Context) {
	summaries, err := h.orderService.List()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	orders := make([]dto.OrderDTO, 0, len(summaries))
	for _, summary := range summaries {
		orders = append(orders, dto.ToOrderSummaryDTO(summary))
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Get returns one order with product details
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	detail, err := h.orderService.Get(orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			apierrors.NotFound(c, "Order not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderDetailDTO(*detail))
}

// Label returns the QR label payload for an order
func (h *OrderHandler) Label(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	label, err := h.orderService.Label(orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			apierrors.NotFound(c, "Order not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.ToQRLabelDTO(*label))
}

func parseOrderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		apierrors.BadRequest(c, "Invalid order ID")
		return 0, false
	}
	return id, true
}
