package services

import (
	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/circlebuy/circlebuy-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService covers the admin user-management panel: listing a
// marketplace's members and blocking them.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ListForMarketplace returns the members of the actor's marketplace.
// The super admin may pass an explicit marketplace id instead.
func (s *UserService) ListForMarketplace(actor tenant.Actor, marketplaceID *uuid.UUID) ([]models.User, error) {
	target := marketplaceID
	if actor.Role != models.RoleSuperAdmin {
		target = actor.MarketplaceID
	}
	if target == nil {
		return nil, ErrForbidden
	}

	var users []models.User
	err := s.db.Scopes(tenant.ForMarketplace(*target)).
		Order("created_at DESC").
		Find(&users).Error
	return users, err
}

// SetBlocked toggles a member's blocked flag. Admins may only touch
// members of their own marketplace; nobody blocks themselves.
func (s *UserService) SetBlocked(actor tenant.Actor, userID uuid.UUID, blocked bool) error {
	if actor.ID == userID {
		return ErrForbidden
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return ErrNotFound
	}

	if actor.Role != models.RoleSuperAdmin {
		if actor.MarketplaceID == nil || user.MarketplaceID == nil || *actor.MarketplaceID != *user.MarketplaceID {
			return ErrForbidden
		}
	}

	return s.db.Model(&user).Update("blocked", blocked).Error
}
