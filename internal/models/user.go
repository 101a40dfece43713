package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RolePicker     Role = "picker"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RolePicker:
		return true
	}
	return false
}

// CanSupervise reports whether the role may adjudicate exceptions and read
// operational metrics.
func (r Role) CanSupervise() bool {
	return r == RoleAdmin || r == RoleSupervisor
}

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primarykey" json:"id"`
	Username     string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role       `gorm:"type:varchar(50);not null" json:"role"`
	WarehouseID  *uuid.UUID `gorm:"type:uuid" json:"warehouse_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relations
	Warehouse *Warehouse `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"`
	Sessions  []Session  `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
