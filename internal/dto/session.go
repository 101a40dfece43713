package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/magnate-systems/picking-api/internal/models"
	"github.com/magnate-systems/picking-api/internal/services"
)

// SessionDTO represents a picking session in API responses
type SessionDTO struct {
	ID          uuid.UUID            `json:"id"`
	OrderID     int64                `json:"order_id"`
	UserID      uuid.UUID            `json:"user_id"`
	Username    string               `json:"username,omitempty"`
	WarehouseID *uuid.UUID           `json:"warehouse_id"`
	Status      models.SessionStatus `json:"status"`
	StartedAt   time.Time            `json:"started_at"`
	FinishedAt  *time.Time           `json:"finished_at"`
}

// LineDTO represents a session line in API responses
type LineDTO struct {
	ID          uuid.UUID         `json:"id"`
	ProductID   int64             `json:"product_id"`
	ScanCode    string            `json:"scan_code"`
	ExpectedQty int               `json:"expected_qty"`
	PickedQty   int               `json:"picked_qty"`
	Status      models.LineStatus `json:"status"`
	ProductName string            `json:"product_name,omitempty"`
	ImageURL    string            `json:"image_url,omitempty"`
}

// ScanRequest is the payload for registering a scan
type ScanRequest struct {
	ScanCode string `json:"scan_code" binding:"required"`
}

// ScanResponse reports the line counts after a scan
type ScanResponse struct {
	ScanCode    string            `json:"scan_code"`
	PickedQty   int               `json:"picked_qty"`
	ExpectedQty int               `json:"expected_qty"`
	LineStatus  models.LineStatus `json:"line_status"`
	Changed     bool              `json:"changed"`
}

// PhotoDTO represents an uploaded photo in API responses
type PhotoDTO struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// EventDTO represents one audit log entry
type EventDTO struct {
	ID        uuid.UUID        `json:"id"`
	SessionID uuid.UUID        `json:"session_id"`
	UserID    uuid.UUID        `json:"user_id"`
	Type      models.EventType `json:"type"`
	Payload   any              `json:"payload"`
	CreatedAt time.Time        `json:"created_at"`
}

// ToSessionDTO converts a session to DTO
func ToSessionDTO(session models.Session) SessionDTO {
	return SessionDTO{
		ID:          session.ID,
		OrderID:     session.OrderID,
		UserID:      session.UserID,
		Username:    session.User.Username,
		WarehouseID: session.WarehouseID,
		Status:      session.Status,
		StartedAt:   session.StartedAt,
		FinishedAt:  session.FinishedAt,
	}
}

// ToLineDTO converts an enriched line to DTO
func ToLineDTO(detail services.LineDetail) LineDTO {
	return LineDTO{
		ID:          detail.Line.ID,
		ProductID:   detail.Line.ProductID,
		ScanCode:    detail.Line.ScanCode,
		ExpectedQty: detail.Line.ExpectedQty,
		PickedQty:   detail.Line.PickedQty,
		Status:      detail.Line.Status,
		ProductName: detail.ProductName,
		ImageURL:    detail.ImageURL,
	}
}

// ToPhotoDTO converts a photo to DTO
func ToPhotoDTO(photo models.Photo) PhotoDTO {
	return PhotoDTO{
		ID:        photo.ID,
		SessionID: photo.SessionID,
		URL:       photo.URL,
		CreatedAt: photo.CreatedAt,
	}
}

// ToEventDTO converts an event to DTO, decoding the payload for the client
func ToEventDTO(event models.Event) EventDTO {
	var payload any
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			payload = string(event.Payload)
		}
	}
	return EventDTO{
		ID:        event.ID,
		SessionID: event.SessionID,
		UserID:    event.UserID,
		Type:      event.Type,
		Payload:   payload,
		CreatedAt: event.CreatedAt,
	}
}
