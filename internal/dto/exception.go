package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/magnate-systems/picking-api/internal/models"
)

// ExceptionDTO represents an exception in API responses
type ExceptionDTO struct {
	ID           uuid.UUID              `json:"id"`
	SessionID    uuid.UUID              `json:"session_id"`
	PickerID     uuid.UUID              `json:"picker_id"`
	SupervisorID *uuid.UUID             `json:"supervisor_id"`
	Reason       string                 `json:"reason"`
	Status       models.ExceptionStatus `json:"status"`
	CreatedAt    time.Time              `json:"created_at"`
	ResolvedAt   *time.Time             `json:"resolved_at"`
}

// CreateExceptionRequest is the payload for raising an exception
type CreateExceptionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ResolveExceptionRequest is the optional payload for adjudicating an exception
type ResolveExceptionRequest struct {
	Notes string `json:"notes"`
}

// ToExceptionDTO converts an exception to DTO
func ToExceptionDTO(exception models.Exception) ExceptionDTO {
	return ExceptionDTO{
		ID:           exception.ID,
		SessionID:    exception.SessionID,
		PickerID:     exception.PickerID,
		SupervisorID: exception.SupervisorID,
		Reason:       exception.Reason,
		Status:       exception.Status,
		CreatedAt:    exception.CreatedAt,
		ResolvedAt:   exception.ResolvedAt,
	}
}
