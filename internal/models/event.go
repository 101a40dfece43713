package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventType string

const (
	EventScan              EventType = "scan"
	EventPhoto             EventType = "photo"
	EventFinish            EventType = "finish"
	EventExceptionCreated  EventType = "exception_created"
	EventExceptionApproved EventType = "exception_approved"
	EventExceptionRejected EventType = "exception_rejected"
)

// Event is an append-only audit record. Rows are written in the same
// transaction as the mutation they describe and are never updated.
type Event struct {
	ID        uuid.UUID      `gorm:"type:uuid;primarykey" json:"id"`
	SessionID uuid.UUID      `gorm:"type:uuid;not null;index" json:"session_id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null" json:"user_id"`
	Type      EventType      `gorm:"type:varchar(50);not null" json:"type"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// NewEvent builds an event with a JSON-encoded payload.
func NewEvent(sessionID, userID uuid.UUID, eventType EventType, payload map[string]any) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event payload: %w", err)
	}
	return &Event{
		SessionID: sessionID,
		UserID:    userID,
		Type:      eventType,
		Payload:   datatypes.JSON(raw),
	}, nil
}
