package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ModerationLog is an audit row appended for every moderation status
// change, in the same transaction as the change itself.
type ModerationLog struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	MarketplaceID uuid.UUID  `gorm:"type:uuid;not null;index" json:"marketplace_id"`
	EntityKind    string     `gorm:"size:50;not null;index" json:"entity_kind"`
	EntityID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"entity_id"`
	FromStatus    string     `gorm:"size:20;not null" json:"from"`
	ToStatus      string     `gorm:"size:20;not null" json:"to"`
	ActorID       *uuid.UUID `gorm:"type:uuid" json:"by,omitempty"`
	Reason        *string    `gorm:"size:500" json:"reason,omitempty"`
	CreatedAt     time.Time  `json:"at"`
}

func (l *ModerationLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
