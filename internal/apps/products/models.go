package products

import (
	"time"

	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product is a marketplace sale listing. Listings start out pending
// and only become visible to buyers once an admin approves them.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	MarketplaceID uuid.UUID       `gorm:"type:uuid;not null;index" json:"marketplace_id"`
	OwnerID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"owner_id"`
	OwnerEmail    string          `gorm:"size:255" json:"owner_email"`
	Name          string          `gorm:"size:200;not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         decimal.Decimal `gorm:"type:numeric(10,2)" json:"price"`
	Category      string          `gorm:"size:50;index" json:"category"`
	Images        datatypes.JSON  `json:"images,omitempty"`
	models.ModeratedFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
