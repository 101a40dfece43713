package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionFinished   SessionStatus = "finished"
)

// Session is one picking attempt against one upstream order. At most one
// session per order may be in_progress at a time; history is append-only.
type Session struct {
	ID          uuid.UUID     `gorm:"type:uuid;primarykey" json:"id"`
	OrderID     int64         `gorm:"not null;index" json:"order_id"`
	UserID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	WarehouseID *uuid.UUID    `gorm:"type:uuid" json:"warehouse_id"`
	Status      SessionStatus `gorm:"type:varchar(50);not null" json:"status"`
	StartedAt   time.Time     `gorm:"not null" json:"started_at"`
	FinishedAt  *time.Time    `json:"finished_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Relations
	User   User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Lines  []Line  `gorm:"foreignKey:SessionID" json:"lines,omitempty"`
	Photos []Photo `gorm:"foreignKey:SessionID" json:"photos,omitempty"`
	Events []Event `gorm:"foreignKey:SessionID" json:"-"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	return nil
}
