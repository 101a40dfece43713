package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/magnate-systems/picking-api/internal/models"
	"github.com/magnate-systems/picking-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrWarehouseNotFound   = errors.New("warehouse not found")
	ErrWarehouseCodeExists = errors.New("warehouse code already exists")
)

// WarehouseService manages warehouses and their user assignments.
type WarehouseService struct {
	warehouseRepo repository.WarehouseRepository
	userRepo      repository.UserRepository
}

// NewWarehouseService creates a new WarehouseService
func NewWarehouseService(warehouseRepo repository.WarehouseRepository, userRepo repository.UserRepository) *WarehouseService {
	return &WarehouseService{warehouseRepo: warehouseRepo, userRepo: userRepo}
}

// List returns every warehouse.
func (s *WarehouseService) List() ([]models.Warehouse, error) {
	return s.warehouseRepo.List()
}

// Create registers a warehouse with a unique code.
func (s *WarehouseService) Create(code, name, address string) (*models.Warehouse, error) {
	if _, err := s.warehouseRepo.FindByCode(code); err == nil {
		return nil, ErrWarehouseCodeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check warehouse code: %w", err)
	}

	warehouse := &models.Warehouse{
		Code:    code,
		Name:    name,
		Address: address,
	}
	if err := s.warehouseRepo.Create(warehouse); err != nil {
		return nil, fmt.Errorf("failed to create warehouse: %w", err)
	}
	return warehouse, nil
}

// AssignUser moves a user into a warehouse.
func (s *WarehouseService) AssignUser(warehouseID, userID uuid.UUID) (*models.User, error) {
	if _, err := s.warehouseRepo.FindByID(warehouseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWarehouseNotFound
		}
		return nil, fmt.Errorf("failed to find warehouse: %w", err)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user.WarehouseID = &warehouseID
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to assign user: %w", err)
	}
	return user, nil
}
