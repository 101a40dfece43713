package models

import (
	"time"

	"gorm.io/datatypes"
)

// SystemConfig is an admin-managed key/value row; values are JSON documents.
type SystemConfig struct {
	Key       string         `gorm:"type:varchar(255);primarykey" json:"key"`
	Value     datatypes.JSON `json:"value"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (SystemConfig) TableName() string {
	return "system_config"
}
