package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LineStatus string

const (
	LinePending    LineStatus = "pending"
	LineInProgress LineStatus = "in_progress"
	LineCompleted  LineStatus = "completed"
)

// Line is one expected product within a session. PickedQty only ever grows,
// one scan at a time, and never past ExpectedQty.
type Line struct {
	ID          uuid.UUID  `gorm:"type:uuid;primarykey" json:"id"`
	SessionID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"session_id"`
	ProductID   int64      `gorm:"not null" json:"product_id"`
	ScanCode    string     `gorm:"type:varchar(255);not null;index" json:"scan_code"`
	ExpectedQty int        `gorm:"not null" json:"expected_qty"`
	PickedQty   int        `gorm:"not null;default:0" json:"picked_qty"`
	Status      LineStatus `gorm:"type:varchar(50);not null;default:'pending'" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (l *Line) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Complete reports whether the line has been fully picked.
func (l *Line) Complete() bool {
	return l.PickedQty == l.ExpectedQty
}
