package tenant

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForMarketplace returns a GORM scope that filters by marketplace_id.
func ForMarketplace(id uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("marketplace_id = ?", id)
	}
}
