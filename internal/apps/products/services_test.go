package products

import (
	"testing"
	"time"

	"github.com/circlebuy/circlebuy-backend/internal/config"
	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/circlebuy/circlebuy-backend/internal/services"
	"github.com/circlebuy/circlebuy-backend/internal/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProductTest(t *testing.T) (*gorm.DB, *ProductService, *services.ModerationService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Product{}, &models.ModerationLog{}))

	cfg := &config.Config{ListingExpiry: 7 * 24 * time.Hour}
	moderation := services.NewModerationService(db, cfg, nil)
	return db, NewProductService(db, moderation), moderation
}

func memberActor(marketplaceID uuid.UUID) tenant.Actor {
	return tenant.Actor{
		ID:            uuid.New(),
		Email:         "student@mit.edu",
		Role:          models.RoleUser,
		MarketplaceID: &marketplaceID,
	}
}

func TestProductService_Create(t *testing.T) {
	db, svc, _ := setupProductTest(t)
	mpID := uuid.New()
	actor := memberActor(mpID)

	t.Run("new products start pending", func(t *testing.T) {
		product, err := svc.Create(actor, CreateProductInput{
			Name:        "  Mountain Bike  ",
			Description: "barely used",
			Price:       decimal.NewFromFloat(120.50),
			Category:    "sports",
		})
		require.NoError(t, err)
		assert.Equal(t, "Mountain Bike", product.Name)
		assert.Equal(t, models.StatusPending, product.Status)
		assert.Equal(t, mpID, product.MarketplaceID)
		assert.Equal(t, actor.ID, product.OwnerID)

		var stored Product
		require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
		assert.True(t, stored.Price.Equal(decimal.NewFromFloat(120.50)))
	})

	t.Run("name is required", func(t *testing.T) {
		_, err := svc.Create(actor, CreateProductInput{Price: decimal.NewFromInt(5)})
		assert.Error(t, err)
	})

	t.Run("negative price is refused", func(t *testing.T) {
		_, err := svc.Create(actor, CreateProductInput{
			Name: "Weird", Price: decimal.NewFromInt(-1),
		})
		assert.Error(t, err)
	})

	t.Run("unassigned users cannot post", func(t *testing.T) {
		stranger := tenant.Actor{ID: uuid.New()}
		_, err := svc.Create(stranger, CreateProductInput{Name: "Bike"})
		assert.ErrorIs(t, err, services.ErrForbidden)
	})
}

func TestProductService_Visibility(t *testing.T) {
	_, svc, moderation := setupProductTest(t)
	mpID := uuid.New()
	seller := memberActor(mpID)
	buyer := memberActor(mpID)
	admin := tenant.Actor{ID: uuid.New(), Role: models.RoleAdmin, MarketplaceID: &mpID}

	pending, err := svc.Create(seller, CreateProductInput{Name: "Lamp", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)
	live, err := svc.Create(seller, CreateProductInput{Name: "Desk", Price: decimal.NewFromInt(40)})
	require.NoError(t, err)
	require.NoError(t, moderation.Approve(Resource(), admin, live.ID))

	t.Run("buyers see approved listings only", func(t *testing.T) {
		items, err := svc.List(buyer, "", "", 50, 0)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, live.ID, items[0].ID)
	})

	t.Run("sellers see their own pending listings", func(t *testing.T) {
		items, err := svc.List(seller, "", "", 50, 0)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("admins can filter by status", func(t *testing.T) {
		items, err := svc.List(admin, models.StatusPending, "", 50, 0)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, pending.ID, items[0].ID)
	})

	t.Run("pending detail hidden from other buyers", func(t *testing.T) {
		_, err := svc.GetByID(buyer, pending.ID)
		assert.ErrorIs(t, err, services.ErrNotFound)

		got, err := svc.GetByID(seller, pending.ID)
		require.NoError(t, err)
		assert.Equal(t, pending.ID, got.ID)
	})

	t.Run("other marketplaces see nothing", func(t *testing.T) {
		elsewhere := memberActor(uuid.New())
		items, err := svc.List(elsewhere, "", "", 50, 0)
		require.NoError(t, err)
		assert.Empty(t, items)

		_, err = svc.GetByID(elsewhere, live.ID)
		assert.ErrorIs(t, err, services.ErrNotFound)
	})
}

func TestProductService_Lifecycle(t *testing.T) {
	db, svc, moderation := setupProductTest(t)
	mpID := uuid.New()
	seller := memberActor(mpID)
	admin := tenant.Actor{ID: uuid.New(), Role: models.RoleAdmin, MarketplaceID: &mpID}

	product, err := svc.Create(seller, CreateProductInput{Name: "Bike", Price: decimal.NewFromInt(90)})
	require.NoError(t, err)

	require.NoError(t, moderation.RequestChanges(Resource(), admin, product.ID, "add photos"))

	require.NoError(t, svc.Resubmit(seller.ID, product.ID, CreateProductInput{
		Description: "now with photos",
	}))

	var stored Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Equal(t, "now with photos", stored.Description)

	require.NoError(t, moderation.Approve(Resource(), admin, product.ID))
	require.NoError(t, moderation.MarkSold(Resource(), seller.ID, product.ID))

	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, models.StatusSold, stored.Status)

	var logs int64
	db.Model(&models.ModerationLog{}).Where("entity_id = ? AND entity_kind = ?", product.ID, "product").Count(&logs)
	assert.Equal(t, int64(4), logs)
}
