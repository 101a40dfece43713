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
	// ErrActiveSessionExists is returned when an order already has an in_progress session.
	ErrActiveSessionExists = errors.New("session repository: order already has an active session")
	// ErrLineNotFound is returned when a scan code matches no line of the session.
	ErrLineNotFound = errors.New("session repository: line not found for scan code")
	// ErrSessionNotActive is returned when finishing a session that is not in_progress.
	ErrSessionNotActive = errors.New("session repository: session is not in progress")
	// ErrNoPhotos is returned when finishing a session without any proof photo.
	ErrNoPhotos = errors.New("session repository: session has no photos")
	// ErrLinesIncomplete is returned when finishing a session with under-picked lines.
	ErrLinesIncomplete = errors.New("session repository: not all lines are fully picked")
)

// GormSessionRepository is a GORM implementation of SessionRepository
type GormSessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &GormSessionRepository{db: db}
}

// CreateWithLines creates a session and its lines atomically. The partial
// unique index on sessions(order_id) WHERE status = 'in_progress' enforces
// the one-active-session-per-order invariant; concurrent starts for the
// same order lose on the insert itself.
func (r *GormSessionRepository) CreateWithLines(session *models.Session, lines []models.Line) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrActiveSessionExists
			}
			return fmt.Errorf("failed to create session: %w", err)
		}

		for i := range lines {
			lines[i].SessionID = session.ID
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return fmt.Errorf("failed to seed session lines: %w", err)
			}
		}
		session.Lines = lines

		return nil
	})
}

// FindByID finds a session by ID with optional preloading
func (r *GormSessionRepository) FindByID(id uuid.UUID, preload ...string) (*models.Session, error) {
	var session models.Session
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}

	return &session, nil
}

// ListAll returns every session, newest first
func (r *GormSessionRepository) ListAll() ([]models.Session, error) {
	var sessions []models.Session
	if err := r.db.Order("started_at DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListByOrderID returns the sessions recorded for an order
func (r *GormSessionRepository) ListByOrderID(orderID int64) ([]models.Session, error) {
	var sessions []models.Session
	if err := r.db.Where("order_id = ?", orderID).Order("started_at ASC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListLines returns the lines of a session
func (r *GormSessionRepository) ListLines(sessionID uuid.UUID) ([]models.Line, error) {
	var lines []models.Line
	if err := r.db.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// RegisterScan locks the line row, increments picked_qty by one unless the
// line is already saturated, derives the line status, and appends the scan
// event in the same transaction.
func (r *GormSessionRepository) RegisterScan(sessionID uuid.UUID, scanCode string, actorID uuid.UUID) (*models.Line, bool, error) {
	var line models.Line
	changed := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_id = ? AND scan_code = ?", sessionID, scanCode).
			First(&line).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLineNotFound
			}
			return fmt.Errorf("failed to find line: %w", err)
		}

		if line.PickedQty >= line.ExpectedQty {
			// Saturated: no mutation, no event.
			return nil
		}

		line.PickedQty++
		if line.PickedQty == line.ExpectedQty {
			line.Status = models.LineCompleted
		} else {
			line.Status = models.LineInProgress
		}

		if err := tx.Save(&line).Error; err != nil {
			return fmt.Errorf("failed to update line: %w", err)
		}

		event, err := models.NewEvent(sessionID, actorID, models.EventScan, map[string]any{
			"scan_code":  scanCode,
			"picked_qty": line.PickedQty,
		})
		if err != nil {
			return err
		}
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to append scan event: %w", err)
		}

		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return &line, changed, nil
}

// CreatePhoto persists a photo row and its event atomically
func (r *GormSessionRepository) CreatePhoto(photo *models.Photo, event *models.Event) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(photo).Error; err != nil {
			return fmt.Errorf("failed to create photo: %w", err)
		}
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to append photo event: %w", err)
		}
		return nil
	})
}

// Finish re-checks the completion gates under a session row lock and marks
// the session finished. The gates run inside the transaction so a concurrent
// scan cannot slip between check and commit.
func (r *GormSessionRepository) Finish(sessionID uuid.UUID, at time.Time) (*models.Session, error) {
	var session models.Session

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&session, "id = ?", sessionID).Error
		if err != nil {
			return err
		}

		if session.Status != models.SessionInProgress {
			return ErrSessionNotActive
		}

		var photoCount int64
		if err := tx.Model(&models.Photo{}).Where("session_id = ?", sessionID).Count(&photoCount).Error; err != nil {
			return fmt.Errorf("failed to count photos: %w", err)
		}
		if photoCount == 0 {
			return ErrNoPhotos
		}

		var incomplete int64
		err = tx.Model(&models.Line{}).
			Where("session_id = ? AND picked_qty <> expected_qty", sessionID).
			Count(&incomplete).Error
		if err != nil {
			return fmt.Errorf("failed to check lines: %w", err)
		}
		if incomplete > 0 {
			return ErrLinesIncomplete
		}

		session.Status = models.SessionFinished
		session.FinishedAt = &at
		return tx.Save(&session).Error
	})
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// AppendEvent writes a single audit event
func (r *GormSessionRepository) AppendEvent(event *models.Event) error {
	return r.db.Create(event).Error
}
