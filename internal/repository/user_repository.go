package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/magnate-systems/picking-api/internal/models"
	"gorm.io/gorm"
)

// ErrUserReferenced is returned when deleting a user that sessions, events
// or exceptions still reference.
var ErrUserReferenced = errors.New("user repository: user is referenced by historical records")

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users
func (r *GormUserRepository) List() ([]models.User, error) {
	var users []models.User
	if err := r.db.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update updates a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete removes a user unless historical records still reference them.
// Sessions, events and exceptions are the audit substrate; they are never
// cascaded.
func (r *GormUserRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		referencing := []struct {
			model  interface{}
			clause string
		}{
			{&models.Session{}, "user_id = ?"},
			{&models.Event{}, "user_id = ?"},
			{&models.Exception{}, "picker_id = ? OR supervisor_id = ?"},
		}

		for _, ref := range referencing {
			var count int64
			query := tx.Model(ref.model)
			if ref.clause == "picker_id = ? OR supervisor_id = ?" {
				query = query.Where(ref.clause, id, id)
			} else {
				query = query.Where(ref.clause, id)
			}
			if err := query.Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check references: %w", err)
			}
			if count > 0 {
				return ErrUserReferenced
			}
		}

		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
}
