package repository

import (
	"github.com/google/uuid"
	"github.com/magnate-systems/picking-api/internal/models"
	"gorm.io/gorm"
)

// GormWarehouseRepository is a GORM implementation of WarehouseRepository
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewWarehouseRepository creates a new WarehouseRepository
func NewWarehouseRepository(db *gorm.DB) WarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// Create creates a new warehouse
func (r *GormWarehouseRepository) Create(warehouse *models.Warehouse) error {
	return r.db.Create(warehouse).Error
}

// FindByID finds a warehouse by ID
func (r *GormWarehouseRepository) FindByID(id uuid.UUID) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	if err := r.db.First(&warehouse, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &warehouse, nil
}

// FindByCode finds a warehouse by its unique code
func (r *GormWarehouseRepository) FindByCode(code string) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	if err := r.db.Where("code = ?", code).First(&warehouse).Error; err != nil {
		return nil, err
	}
	return &warehouse, nil
}

// List returns all warehouses
func (r *GormWarehouseRepository) List() ([]models.Warehouse, error) {
	var warehouses []models.Warehouse
	if err := r.db.Order("name ASC").Find(&warehouses).Error; err != nil {
		return nil, err
	}
	return warehouses, nil
}
