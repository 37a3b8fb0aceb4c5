package requests

import (
	"time"

	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRequest is a wanted-item post. Like lost items, approved
// requests carry an expiry and read as orphaned once it passes.
type ProductRequest struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	MarketplaceID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"marketplace_id"`
	OwnerID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	OwnerEmail     string     `gorm:"size:255" json:"owner_email"`
	ProductName    string     `gorm:"size:200;not null" json:"product_name"`
	Description    string     `gorm:"type:text" json:"description"`
	ContactDetails string     `gorm:"size:500" json:"contact_details"`
	ExpiresAt      *time.Time `gorm:"index" json:"expires_at,omitempty"`
	models.ModeratedFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *ProductRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
