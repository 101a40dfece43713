package repository

import (
	"github.com/magnate-systems/picking-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormConfigRepository is a GORM implementation of ConfigRepository
type GormConfigRepository struct {
	db *gorm.DB
}

// NewConfigRepository creates a new ConfigRepository
func NewConfigRepository(db *gorm.DB) ConfigRepository {
	return &GormConfigRepository{db: db}
}

// GetAll returns every configuration row
func (r *GormConfigRepository) GetAll() ([]models.SystemConfig, error) {
	var entries []models.SystemConfig
	if err := r.db.Order("key ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Set upserts a configuration value
func (r *GormConfigRepository) Set(key string, value []byte) error {
	entry := models.SystemConfig{
		Key:   key,
		Value: datatypes.JSON(value),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}
