package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/magnate-systems/picking-api/internal/dto"
	apierrors "github.com/magnate-systems/picking-api/internal/errors"
	"github.com/magnate-systems/picking-api/internal/services"
)

type WarehouseHandler struct {
	warehouseService *services.WarehouseService
}

func NewWarehouseHandler(warehouseService *services.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{warehouseService: warehouseService}
}

// List returns every warehouse
func (h *WarehouseHandler) List(c *gin.Context) {
	warehouses, err := h.warehouseService.List()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	result := make([]dto.WarehouseDTO, 0, len(warehouses))
	for _, warehouse := range warehouses {
		result = append(result, dto.ToWarehouseDTO(warehouse))
	}
	c.JSON(http.StatusOK, gin.H{"warehouses": result})
}

// Create registers a new warehouse
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req dto.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	warehouse, err := h.warehouseService.Create(req.Code, req.Name, req.Address)
	if err != nil {
		if errors.Is(err, services.ErrWarehouseCodeExists) {
			apierrors.Conflict(c, "Warehouse code already exists")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, dto.ToWarehouseDTO(*warehouse))
}

// AssignUser moves a user into the warehouse
func (h *WarehouseHandler) AssignUser(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid warehouse ID")
		return
	}

	var req dto.AssignUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	user, err := h.warehouseService.AssignUser(warehouseID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWarehouseNotFound):
			apierrors.NotFound(c, "Warehouse not found")
		case errors.Is(err, services.ErrUserNotFound):
			apierrors.NotFound(c, "User not found")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}
