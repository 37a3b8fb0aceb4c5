package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role claim values, in ascending privilege order.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// User mirrors a verified identity plus the role/marketplace claims
// assigned on first login. Rows are never deleted by marketplace
// teardown; only the claims are cleared.
type User struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Name          string         `gorm:"size:255" json:"name"`
	Password      string         `gorm:"not null" json:"-"`
	Role          string         `gorm:"size:20;index" json:"role,omitempty"`
	MarketplaceID *uuid.UUID     `gorm:"type:uuid;index" json:"marketplace_id,omitempty"`
	Blocked       bool           `gorm:"not null;default:false" json:"blocked"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
