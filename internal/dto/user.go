package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/magnate-systems/picking-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uuid.UUID     `json:"id"`
	Username    string        `json:"username"`
	Role        models.Role   `json:"role"`
	WarehouseID *uuid.UUID    `json:"warehouse_id"`
	Warehouse   *WarehouseDTO `json:"warehouse,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// LoginRequest is the credential payload for /auth/login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token and the account it belongs to
type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// RegisterRequest is the payload for creating an account
type RegisterRequest struct {
	Username    string      `json:"username" binding:"required,min=3,max=255"`
	Password    string      `json:"password" binding:"required,min=8"`
	Role        models.Role `json:"role" binding:"required"`
	WarehouseID *uuid.UUID  `json:"warehouse_id"`
}

// UpdateUserRequest carries optional admin edits; absent fields are left
// unchanged. Decoded with unknown-field rejection in the handler.
type UpdateUserRequest struct {
	Password    *string      `json:"password"`
	Role        *models.Role `json:"role"`
	WarehouseID *uuid.UUID   `json:"warehouse_id"`
	// ClearWarehouse unassigns the user when true; it exists because a
	// null warehouse_id is indistinguishable from an absent one.
	ClearWarehouse bool `json:"clear_warehouse"`
}

// ToUserDTO converts a user to DTO
func ToUserDTO(user models.User) UserDTO {
	dto := UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		Role:        user.Role,
		WarehouseID: user.WarehouseID,
		CreatedAt:   user.CreatedAt,
	}
	if user.Warehouse != nil {
		w := ToWarehouseDTO(*user.Warehouse)
		dto.Warehouse = &w
	}
	return dto
}
