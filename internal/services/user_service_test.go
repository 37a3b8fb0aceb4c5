package services

import (
	"testing"

	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/circlebuy/circlebuy-backend/internal/tenant"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestUserService(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	svc := NewUserService(db)

	mpID := uuid.New()
	otherID := uuid.New()

	admin := models.User{Email: "dean@mit.edu", Password: "x", Role: models.RoleAdmin, MarketplaceID: &mpID}
	member := models.User{Email: "student@mit.edu", Password: "x", Role: models.RoleUser, MarketplaceID: &mpID}
	outsider := models.User{Email: "student@cmu.edu", Password: "x", Role: models.RoleUser, MarketplaceID: &otherID}
	require.NoError(t, db.Create(&admin).Error)
	require.NoError(t, db.Create(&member).Error)
	require.NoError(t, db.Create(&outsider).Error)

	adminActor := tenant.Actor{ID: admin.ID, Role: models.RoleAdmin, MarketplaceID: &mpID}
	superActor := tenant.Actor{ID: uuid.New(), Role: models.RoleSuperAdmin}

	t.Run("admins list their own marketplace", func(t *testing.T) {
		users, err := svc.ListForMarketplace(adminActor, nil)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("admins cannot pick another marketplace", func(t *testing.T) {
		users, err := svc.ListForMarketplace(adminActor, &otherID)
		require.NoError(t, err)
		assert.Len(t, users, 2) // explicit id ignored for admins
	})

	t.Run("super admin picks any marketplace", func(t *testing.T) {
		users, err := svc.ListForMarketplace(superActor, &otherID)
		require.NoError(t, err)
		assert.Len(t, users, 1)

		_, err = svc.ListForMarketplace(superActor, nil)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin blocks a member", func(t *testing.T) {
		require.NoError(t, svc.SetBlocked(adminActor, member.ID, true))

		var stored models.User
		require.NoError(t, db.First(&stored, "id = ?", member.ID).Error)
		assert.True(t, stored.Blocked)

		require.NoError(t, svc.SetBlocked(adminActor, member.ID, false))
	})

	t.Run("admin cannot touch another marketplace", func(t *testing.T) {
		assert.ErrorIs(t, svc.SetBlocked(adminActor, outsider.ID, true), ErrForbidden)
	})

	t.Run("nobody blocks themselves", func(t *testing.T) {
		assert.ErrorIs(t, svc.SetBlocked(adminActor, admin.ID, true), ErrForbidden)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		assert.ErrorIs(t, svc.SetBlocked(adminActor, uuid.New(), true), ErrNotFound)
	})
}
