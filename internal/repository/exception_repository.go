package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/magnate-systems/picking-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrPendingExceptionExists is returned when a session already has an unresolved exception.
	ErrPendingExceptionExists = errors.New("exception repository: session already has a pending exception")
	// ErrAlreadyResolved is returned when resolving an exception that is not pending.
	ErrAlreadyResolved = errors.New("exception repository: exception already resolved")
)

// GormExceptionRepository is a GORM implementation of ExceptionRepository
type GormExceptionRepository struct {
	db *gorm.DB
}

// NewExceptionRepository creates a new ExceptionRepository
func NewExceptionRepository(db *gorm.DB) ExceptionRepository {
	return &GormExceptionRepository{db: db}
}

// Create records a pending exception and its event atomically. The partial
// unique index on exceptions(session_id) WHERE status = 'pending' enforces
// the one-pending-exception-per-session invariant; concurrent escalations
// for the same session lose on the insert itself.
func (r *GormExceptionRepository) Create(exception *models.Exception, event *models.Event) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(exception).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPendingExceptionExists
			}
			return fmt.Errorf("failed to create exception: %w", err)
		}
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to append exception event: %w", err)
		}
		return nil
	})
}

// FindByID finds an exception by ID
func (r *GormExceptionRepository) FindByID(id uuid.UUID) (*models.Exception, error) {
	var exception models.Exception
	if err := r.db.First(&exception, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &exception, nil
}

// ListPending returns the unresolved exceptions, oldest first
func (r *GormExceptionRepository) ListPending() ([]models.Exception, error) {
	var exceptions []models.Exception
	err := r.db.Where("status = ?", models.ExceptionPending).
		Order("created_at ASC").
		Find(&exceptions).Error
	if err != nil {
		return nil, err
	}
	return exceptions, nil
}

// Resolve marks a pending exception approved or rejected under a row lock.
// Approval forces the session to finished in the same transaction, skipping
// the normal finish gates; line state is left untouched.
func (r *GormExceptionRepository) Resolve(id uuid.UUID, approved bool, supervisorID uuid.UUID, at time.Time) (*models.Exception, *models.Session, error) {
	var exception models.Exception
	var session models.Session

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&exception, "id = ?", id).Error
		if err != nil {
			return err
		}

		if exception.Status != models.ExceptionPending {
			return ErrAlreadyResolved
		}

		if approved {
			exception.Status = models.ExceptionApproved
		} else {
			exception.Status = models.ExceptionRejected
		}
		exception.SupervisorID = &supervisorID
		exception.ResolvedAt = &at

		if err := tx.Save(&exception).Error; err != nil {
			return fmt.Errorf("failed to resolve exception: %w", err)
		}

		if err := tx.First(&session, "id = ?", exception.SessionID).Error; err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}

		if approved && session.Status == models.SessionInProgress {
			session.Status = models.SessionFinished
			finishedAt := at
			session.FinishedAt = &finishedAt
			if err := tx.Save(&session).Error; err != nil {
				return fmt.Errorf("failed to force-finish session: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &exception, &session, nil
}
