package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/magnate-systems/picking-api/internal/logging"
	"github.com/magnate-systems/picking-api/internal/models"
	"github.com/magnate-systems/picking-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrExceptionNotFound      = errors.New("exception not found")
	ErrExceptionExists        = errors.New("session already has a pending exception")
	ErrExceptionResolved      = errors.New("exception has already been resolved")
	ErrNotSessionAssignee     = errors.New("only the session assignee may raise an exception")
	ErrExceptionSessionClosed = errors.New("session is not in progress")
)

// ExceptionService owns the escalation workflow: a picker raises an
// exception on their own active session, a supervisor approves or rejects
// it. Approval force-finishes the session regardless of the normal
// completion gates.
type ExceptionService struct {
	exceptionRepo repository.ExceptionRepository
	sessionRepo   repository.SessionRepository
	orderSource   OrderSource
}

// NewExceptionService creates a new ExceptionService
func NewExceptionService(exceptionRepo repository.ExceptionRepository, sessionRepo repository.SessionRepository, orderSource OrderSource) *ExceptionService {
	return &ExceptionService{
		exceptionRepo: exceptionRepo,
		sessionRepo:   sessionRepo,
		orderSource:   orderSource,
	}
}

// Create raises a pending exception on the session for the calling picker.
func (s *ExceptionService) Create(sessionID uuid.UUID, reason string, actor *models.User) (*models.Exception, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	if session.UserID != actor.ID {
		return nil, ErrNotSessionAssignee
	}
	if session.Status != models.SessionInProgress {
		return nil, ErrExceptionSessionClosed
	}

	exception := &models.Exception{
		SessionID: sessionID,
		PickerID:  actor.ID,
		Reason:    reason,
		Status:    models.ExceptionPending,
	}
	event, err := models.NewEvent(sessionID, actor.ID, models.EventExceptionCreated, map[string]any{
		"reason": reason,
	})
	if err != nil {
		return nil, err
	}

	if err := s.exceptionRepo.Create(exception, event); err != nil {
		if errors.Is(err, repository.ErrPendingExceptionExists) {
			return nil, ErrExceptionExists
		}
		return nil, fmt.Errorf("failed to create exception: %w", err)
	}

	return exception, nil
}

// ListPending returns the unresolved exceptions for the supervisor queue.
func (s *ExceptionService) ListPending() ([]models.Exception, error) {
	return s.exceptionRepo.ListPending()
}

// Resolve approves or rejects a pending exception. An approval closes the
// session with whatever shortfall it carries and pushes the same completion
// status upstream as a normal finish; the local resolution stands even when
// the push fails.
func (s *ExceptionService) Resolve(id uuid.UUID, approved bool, notes string, actor *models.User) (*models.Exception, error) {
	exception, session, err := s.exceptionRepo.Resolve(id, approved, actor.ID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrExceptionNotFound
		case errors.Is(err, repository.ErrAlreadyResolved):
			return nil, ErrExceptionResolved
		}
		return nil, fmt.Errorf("failed to resolve exception: %w", err)
	}

	eventType := models.EventExceptionRejected
	payload := map[string]any{
		"notes":        notes,
		"order_synced": false,
	}
	if approved {
		eventType = models.EventExceptionApproved
		synced := s.orderSource.PushOrderStatus(session.OrderID, "completed")
		payload["order_synced"] = synced
		if !synced {
			logging.GetLogger().WithFields(map[string]interface{}{
				"exception_id": id.String(),
				"order_id":     session.OrderID,
			}).Warn("Exception approved locally but upstream status push failed")
		}
	}

	event, err := models.NewEvent(exception.SessionID, actor.ID, eventType, payload)
	if err != nil {
		logging.LogError(logging.GetLogger(), "services", "Resolve", id.String(), err)
		return exception, nil
	}
	if err := s.sessionRepo.AppendEvent(event); err != nil {
		logging.LogError(logging.GetLogger(), "services", "Resolve", id.String(), err)
	}

	return exception, nil
}
