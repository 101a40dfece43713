package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/magnate-systems/picking-api/internal/models"
	"github.com/magnate-systems/picking-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserReferenced = errors.New("user is referenced by sessions or exceptions")
	ErrSelfDeletion   = errors.New("cannot delete your own account")
)

// UserUpdate carries the admin-editable fields; nil means unchanged.
type UserUpdate struct {
	Password    *string
	Role        *models.Role
	WarehouseID *uuid.UUID
	// ClearWarehouse removes the warehouse assignment when true.
	ClearWarehouse bool
}

// UserService exposes the admin user management operations.
type UserService struct {
	userRepo      repository.UserRepository
	warehouseRepo repository.WarehouseRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, warehouseRepo repository.WarehouseRepository) *UserService {
	return &UserService{userRepo: userRepo, warehouseRepo: warehouseRepo}
}

// List returns every user account.
func (s *UserService) List() ([]models.User, error) {
	return s.userRepo.List()
}

// Get loads one user.
func (s *UserService) Get(id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// Update applies the non-nil fields of the update to the user.
func (s *UserService) Update(id uuid.UUID, update UserUpdate) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if update.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if update.Role != nil {
		if !models.ValidRole(*update.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = *update.Role
	}
	if update.ClearWarehouse {
		user.WarehouseID = nil
	} else if update.WarehouseID != nil {
		if _, err := s.warehouseRepo.FindByID(*update.WarehouseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrWarehouseNotFound
			}
			return nil, fmt.Errorf("failed to find warehouse: %w", err)
		}
		user.WarehouseID = update.WarehouseID
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes a user. Accounts referenced by picking history cannot be
// deleted; neither can the caller's own account.
func (s *UserService) Delete(id uuid.UUID, actor *models.User) error {
	if id == actor.ID {
		return ErrSelfDeletion
	}

	if err := s.userRepo.Delete(id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrUserNotFound
		case errors.Is(err, repository.ErrUserReferenced):
			return ErrUserReferenced
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
