package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExceptionStatus string

const (
	ExceptionPending  ExceptionStatus = "pending"
	ExceptionApproved ExceptionStatus = "approved"
	ExceptionRejected ExceptionStatus = "rejected"
)

// Exception is a picker-raised escalation for a session. At most one pending
// exception may exist per session; once resolved it is immutable.
type Exception struct {
	ID           uuid.UUID       `gorm:"type:uuid;primarykey" json:"id"`
	SessionID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"session_id"`
	PickerID     uuid.UUID       `gorm:"type:uuid;not null" json:"picker_id"`
	SupervisorID *uuid.UUID      `gorm:"type:uuid" json:"supervisor_id"`
	Reason       string          `gorm:"type:text;not null" json:"reason"`
	Status       ExceptionStatus `gorm:"type:varchar(50);not null;default:'pending'" json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	ResolvedAt   *time.Time      `json:"resolved_at"`

	// Relations
	Session Session `gorm:"foreignKey:SessionID" json:"-"`
	Picker  User    `gorm:"foreignKey:PickerID" json:"-"`
}

func (e *Exception) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
