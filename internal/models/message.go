package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is a chat message between two users of the same marketplace,
// optionally tied to a product listing. Only the read flag is ever
// mutated after creation.
type Message struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	MarketplaceID uuid.UUID  `gorm:"type:uuid;not null;index" json:"marketplace_id"`
	SenderID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"sender_id"`
	ReceiverID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"receiver_id"`
	ProductID     *uuid.UUID `gorm:"type:uuid" json:"product_id,omitempty"`
	Body          string     `gorm:"type:text;not null" json:"message"`
	IsRead        bool       `gorm:"not null;default:false" json:"read"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
