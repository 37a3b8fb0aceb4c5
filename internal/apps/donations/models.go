package donations

import (
	"time"

	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Donation is a give-away listing. Donations never expire; they stay
// visible until claimed or removed by cascade.
type Donation struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MarketplaceID  uuid.UUID `gorm:"type:uuid;not null;index" json:"marketplace_id"`
	OwnerID        uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	OwnerEmail     string    `gorm:"size:255" json:"owner_email"`
	ItemName       string    `gorm:"size:200;not null" json:"item_name"`
	Description    string    `gorm:"type:text" json:"description"`
	ContactDetails string    `gorm:"size:500" json:"contact_details"`
	models.ModeratedFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
