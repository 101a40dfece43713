package dto

import (
	"github.com/google/uuid"
	"github.com/magnate-systems/picking-api/internal/models"
)

// WarehouseDTO represents a warehouse in API responses
type WarehouseDTO struct {
	ID      uuid.UUID `json:"id"`
	Code    string    `json:"code"`
	Name    string    `json:"name"`
	Address string    `json:"address,omitempty"`
}

// CreateWarehouseRequest is the payload for registering a warehouse
type CreateWarehouseRequest struct {
	Code    string `json:"code" binding:"required,max=50"`
	Name    string `json:"name" binding:"required,max=255"`
	Address string `json:"address"`
}

// AssignUserRequest moves a user into a warehouse
type AssignUserRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// ToWarehouseDTO converts a warehouse to DTO
func ToWarehouseDTO(warehouse models.Warehouse) WarehouseDTO {
	return WarehouseDTO{
		ID:      warehouse.ID,
		Code:    warehouse.Code,
		Name:    warehouse.Name,
		Address: warehouse.Address,
	}
}
