package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Photo is a proof-of-pick artifact. Immutable once created; at least one
// must exist before a session can finish normally.
type Photo struct {
	ID        uuid.UUID  `gorm:"type:uuid;primarykey" json:"id"`
	SessionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"session_id"`
	LineID    *uuid.UUID `gorm:"type:uuid" json:"line_id"`
	URL       string     `gorm:"type:varchar(500);not null" json:"url"`
	CreatedAt time.Time  `json:"created_at"`
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
