package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Device is a registered push token for one of a user's devices.
type Device struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Token     string    `gorm:"not null;size:512;uniqueIndex" json:"token"`
	Platform  string    `gorm:"size:20;not null" json:"platform"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Device) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
