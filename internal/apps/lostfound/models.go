package lostfound

import (
	"time"

	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LostItem is a lost-and-found notice. Approved notices carry an
// expiry; past it they read as orphaned.
type LostItem struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	MarketplaceID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"marketplace_id"`
	OwnerID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	OwnerEmail     string     `gorm:"size:255" json:"owner_email"`
	ItemName       string     `gorm:"size:200;not null" json:"item_name"`
	Description    string     `gorm:"type:text" json:"description"`
	ContactDetails string     `gorm:"size:500" json:"contact_details"`
	ExpiresAt      *time.Time `gorm:"index" json:"expires_at,omitempty"`
	models.ModeratedFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *LostItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
