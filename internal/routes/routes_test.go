package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/circlebuy/circlebuy-backend/internal/apps"
	"github.com/circlebuy/circlebuy-backend/internal/apps/donations"
	"github.com/circlebuy/circlebuy-backend/internal/apps/lostfound"
	"github.com/circlebuy/circlebuy-backend/internal/apps/products"
	"github.com/circlebuy/circlebuy-backend/internal/apps/requests"
	"github.com/circlebuy/circlebuy-backend/internal/config"
	"github.com/circlebuy/circlebuy-backend/internal/database"
	"github.com/circlebuy/circlebuy-backend/internal/handlers"
	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/circlebuy/circlebuy-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRouteTest(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.RefreshToken{}, &models.Marketplace{},
		&models.Message{}, &models.ModerationLog{}, &models.Device{},
	))
	database.DB = db

	cfg := &config.Config{
		JWTSecret:       "route-test-secret",
		JWTAccessExpiry: 15 * time.Minute,
		ListingExpiry:   168 * time.Hour,
	}

	notificationService := services.NewNotificationService(db, cfg)
	authService := services.NewAuthService(db, cfg)
	roleService := services.NewRoleService(db, cfg)
	moderationService := services.NewModerationService(db, cfg, nil)
	marketplaceService := services.NewMarketplaceService(db)
	messageService := services.NewMessageService(db, nil)
	userService := services.NewUserService(db)

	plugins := []apps.Plugin{
		products.New(moderationService),
		lostfound.New(moderationService),
		donations.New(moderationService),
		requests.New(moderationService),
	}
	for _, p := range plugins {
		require.NoError(t, db.AutoMigrate(p.Models()...))
	}

	app := fiber.New()
	Setup(app, cfg, db,
		handlers.NewAuthHandler(authService, roleService),
		handlers.NewHealthHandler(),
		handlers.NewMarketplaceHandler(marketplaceService, roleService),
		handlers.NewMessageHandler(messageService),
		handlers.NewUserHandler(userService),
		handlers.NewDeviceHandler(notificationService),
		plugins,
	)
	return app, db, cfg
}

func seedRouteUser(t *testing.T, db *gorm.DB, role string, marketplaceID *uuid.UUID) models.User {
	user := models.User{
		Email:         uuid.NewString() + "@mit.edu",
		Password:      "x",
		Role:          role,
		MarketplaceID: marketplaceID,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func signedToken(t *testing.T, cfg *config.Config, user models.User) string {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(cfg.JWTAccessExpiry).Unix(),
	}
	if user.MarketplaceID != nil {
		claims["marketplace_id"] = user.MarketplaceID.String()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string) *http.Response {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRoutes_RoleGating(t *testing.T) {
	app, db, cfg := setupRouteTest(t)

	mpID := uuid.New()
	member := seedRouteUser(t, db, models.RoleUser, &mpID)
	admin := seedRouteUser(t, db, models.RoleAdmin, &mpID)
	root := seedRouteUser(t, db, models.RoleSuperAdmin, nil)

	memberToken := signedToken(t, cfg, member)
	adminToken := signedToken(t, cfg, admin)
	rootToken := signedToken(t, cfg, root)

	t.Run("health is public", func(t *testing.T) {
		resp := doRequest(t, app, "GET", "/health", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("listings require a token", func(t *testing.T) {
		resp := doRequest(t, app, "GET", "/products", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("members browse every vertical", func(t *testing.T) {
		for _, path := range []string{"/products", "/lost-items", "/donations", "/product-requests"} {
			resp := doRequest(t, app, "GET", path, memberToken)
			assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		}
	})

	t.Run("marketplace panel is super admin only", func(t *testing.T) {
		resp := doRequest(t, app, "GET", "/marketplaces", memberToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = doRequest(t, app, "GET", "/marketplaces", adminToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = doRequest(t, app, "GET", "/marketplaces", rootToken)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("user management is admin only", func(t *testing.T) {
		resp := doRequest(t, app, "GET", "/users", memberToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = doRequest(t, app, "GET", "/users", adminToken)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("review endpoints are admin only", func(t *testing.T) {
		item := products.Product{
			MarketplaceID:   mpID,
			OwnerID:         member.ID,
			OwnerEmail:      member.Email,
			Name:            "Desk lamp",
			ModeratedFields: models.ModeratedFields{Status: models.StatusPending},
		}
		require.NoError(t, db.Create(&item).Error)

		resp := doRequest(t, app, "PUT", "/products/"+item.ID.String()+"/approve", memberToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		var stored products.Product
		require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
		assert.Equal(t, models.StatusPending, stored.Status)

		resp = doRequest(t, app, "PUT", "/products/"+item.ID.String()+"/approve", adminToken)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
		assert.Equal(t, models.StatusApproved, stored.Status)
	})
}
