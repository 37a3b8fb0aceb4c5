package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MarketplaceActive   = "active"
	MarketplaceInactive = "inactive"
)

// Marketplace is an isolated tenant scoped to one institutional email
// domain. The domain is unique among active marketplaces; uniqueness is
// enforced at create time rather than by a partial index, so a clash in
// the data is treated as an integrity warning, not a hard failure.
type Marketplace struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"not null;size:255" json:"name"`
	Domain     string    `gorm:"not null;size:255;index" json:"domain"`
	AdminEmail string    `gorm:"not null;size:255;index" json:"admin_email"`
	Status     string    `gorm:"size:20;not null;default:'active'" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (m *Marketplace) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
