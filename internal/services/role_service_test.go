package services

import (
	"testing"

	"github.com/circlebuy/circlebuy-backend/internal/config"
	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRoleTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Marketplace{}))
	return db
}

func roleTestConfig() *config.Config {
	return &config.Config{
		SuperAdminEmail: "root@circlebuy.app",
		BlockedDomains:  "gmail.com,yahoo.com",
	}
}

func createMarketplace(t *testing.T, db *gorm.DB, domain, adminEmail, status string) models.Marketplace {
	mp := models.Marketplace{
		Name:       domain,
		Domain:     domain,
		AdminEmail: adminEmail,
		Status:     status,
	}
	require.NoError(t, db.Create(&mp).Error)
	return mp
}

func TestRoleService_Resolve(t *testing.T) {
	db := setupRoleTestDB(t)
	svc := NewRoleService(db, roleTestConfig())

	mit := createMarketplace(t, db, "mit.edu", "dean@mit.edu", models.MarketplaceActive)
	createMarketplace(t, db, "old.edu", "dean@old.edu", models.MarketplaceInactive)

	t.Run("super admin email wins", func(t *testing.T) {
		res, err := svc.Resolve("Root@Circlebuy.app")
		require.NoError(t, err)
		assert.Equal(t, models.RoleSuperAdmin, res.Role)
		assert.Nil(t, res.MarketplaceID)
	})

	t.Run("admin email routes to admin role", func(t *testing.T) {
		res, err := svc.Resolve("dean@mit.edu")
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, res.Role)
		require.NotNil(t, res.MarketplaceID)
		assert.Equal(t, mit.ID, *res.MarketplaceID)
	})

	t.Run("admin email beats blocked domain", func(t *testing.T) {
		gmailAdmin := createMarketplace(t, db, "cmu.edu", "provost@gmail.com", models.MarketplaceActive)

		res, err := svc.Resolve("provost@gmail.com")
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, res.Role)
		require.NotNil(t, res.MarketplaceID)
		assert.Equal(t, gmailAdmin.ID, *res.MarketplaceID)
	})

	t.Run("matching domain routes to user role", func(t *testing.T) {
		res, err := svc.Resolve("student@mit.edu")
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, res.Role)
		require.NotNil(t, res.MarketplaceID)
		assert.Equal(t, mit.ID, *res.MarketplaceID)
	})

	t.Run("blocked public domain is refused", func(t *testing.T) {
		_, err := svc.Resolve("somebody@gmail.com")
		assert.ErrorIs(t, err, ErrUnauthorizedDomain)
	})

	t.Run("unknown domain is refused", func(t *testing.T) {
		_, err := svc.Resolve("student@nowhere.edu")
		assert.ErrorIs(t, err, ErrUnauthorizedDomain)
	})

	t.Run("inactive marketplace does not resolve", func(t *testing.T) {
		_, err := svc.Resolve("student@old.edu")
		assert.ErrorIs(t, err, ErrUnauthorizedDomain)

		_, err = svc.Resolve("dean@old.edu")
		assert.ErrorIs(t, err, ErrUnauthorizedDomain)
	})

	t.Run("malformed email is refused", func(t *testing.T) {
		_, err := svc.Resolve("not-an-email")
		assert.ErrorIs(t, err, ErrUnauthorizedDomain)

		_, err = svc.Resolve("")
		assert.ErrorIs(t, err, ErrUnauthorizedDomain)
	})
}

func TestRoleService_Assign(t *testing.T) {
	db := setupRoleTestDB(t)
	svc := NewRoleService(db, roleTestConfig())

	mit := createMarketplace(t, db, "mit.edu", "dean@mit.edu", models.MarketplaceActive)

	t.Run("persists resolved claims on the user row", func(t *testing.T) {
		user := models.User{Email: "student@mit.edu", Password: "x"}
		require.NoError(t, db.Create(&user).Error)

		res, err := svc.Assign(user.ID, user.Email)
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, res.Role)

		var stored models.User
		require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
		assert.Equal(t, models.RoleUser, stored.Role)
		require.NotNil(t, stored.MarketplaceID)
		assert.Equal(t, mit.ID, *stored.MarketplaceID)
	})

	t.Run("re-assignment is a no-op change", func(t *testing.T) {
		user := models.User{Email: "again@mit.edu", Password: "x"}
		require.NoError(t, db.Create(&user).Error)

		_, err := svc.Assign(user.ID, user.Email)
		require.NoError(t, err)
		res, err := svc.Assign(user.ID, user.Email)
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, res.Role)
	})

	t.Run("blocked user is refused", func(t *testing.T) {
		user := models.User{Email: "banned@mit.edu", Password: "x", Blocked: true}
		require.NoError(t, db.Create(&user).Error)

		_, err := svc.Assign(user.ID, user.Email)
		assert.ErrorIs(t, err, ErrUserBlocked)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		_, err := svc.Assign(uuid.New(), "student@mit.edu")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unauthorized domain does not touch the row", func(t *testing.T) {
		user := models.User{Email: "lost@nowhere.edu", Password: "x"}
		require.NoError(t, db.Create(&user).Error)

		_, err := svc.Assign(user.ID, user.Email)
		assert.ErrorIs(t, err, ErrUnauthorizedDomain)

		var stored models.User
		require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
		assert.Empty(t, stored.Role)
		assert.Nil(t, stored.MarketplaceID)
	})
}

func TestRoleService_MigrateUsers(t *testing.T) {
	db := setupRoleTestDB(t)
	svc := NewRoleService(db, roleTestConfig())

	createMarketplace(t, db, "mit.edu", "dean@mit.edu", models.MarketplaceActive)

	resolvable := models.User{Email: "a@mit.edu", Password: "x"}
	stranded := models.User{Email: "b@nowhere.edu", Password: "x"}
	require.NoError(t, db.Create(&resolvable).Error)
	require.NoError(t, db.Create(&stranded).Error)

	migrated, skipped, err := svc.MigrateUsers()
	require.NoError(t, err)
	assert.Equal(t, int64(1), migrated)
	assert.Equal(t, int64(1), skipped)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", resolvable.ID).Error)
	assert.Equal(t, models.RoleUser, stored.Role)
}
