package services

import (
	"testing"
	"time"

	"github.com/circlebuy/circlebuy-backend/internal/config"
	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/circlebuy/circlebuy-backend/internal/tenant"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// saleListing is a minimal moderatable table for exercising the state
// machine without pulling in a real vertical.
type saleListing struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	MarketplaceID uuid.UUID `gorm:"type:uuid;index"`
	OwnerID       uuid.UUID `gorm:"type:uuid;index"`
	Name          string
	ExpiresAt     *time.Time
	models.ModeratedFields
	CreatedAt time.Time
	UpdatedAt time.Time
}

var saleResource = Resource{
	Kind:        "sale",
	Model:       &saleListing{},
	TitleColumn: "name",
	Expires:     false,
}

var expiringResource = Resource{
	Kind:        "sale",
	Model:       &saleListing{},
	TitleColumn: "name",
	Expires:     true,
}

type recordedPush struct {
	userID uuid.UUID
	title  string
	body   string
}

type fakeNotifier struct {
	pushes []recordedPush
	admins []uuid.UUID
}

func (f *fakeNotifier) NotifyUser(userID uuid.UUID, title, body string, data map[string]string) {
	f.pushes = append(f.pushes, recordedPush{userID: userID, title: title, body: body})
}

func (f *fakeNotifier) NotifyMarketplaceAdmins(marketplaceID uuid.UUID, title, body string, data map[string]string) {
	f.admins = append(f.admins, marketplaceID)
}

func setupModerationTest(t *testing.T) (*gorm.DB, *ModerationService, *fakeNotifier) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&saleListing{}, &models.ModerationLog{}))

	notifier := &fakeNotifier{}
	cfg := &config.Config{ListingExpiry: 7 * 24 * time.Hour}
	return db, NewModerationService(db, cfg, notifier), notifier
}

func seedListing(t *testing.T, db *gorm.DB, marketplaceID, ownerID uuid.UUID, status string) saleListing {
	item := saleListing{
		ID:            uuid.New(),
		MarketplaceID: marketplaceID,
		OwnerID:       ownerID,
		Name:          "Calculus Textbook",
	}
	item.Status = status
	require.NoError(t, db.Create(&item).Error)
	return item
}

func adminOf(marketplaceID uuid.UUID) tenant.Actor {
	return tenant.Actor{ID: uuid.New(), Role: models.RoleAdmin, MarketplaceID: &marketplaceID}
}

func TestModerationService_Approve(t *testing.T) {
	db, svc, notifier := setupModerationTest(t)
	mpID := uuid.New()
	admin := adminOf(mpID)

	t.Run("pending becomes approved with reviewer stamp and audit row", func(t *testing.T) {
		item := seedListing(t, db, mpID, uuid.New(), models.StatusPending)

		require.NoError(t, svc.Approve(saleResource, admin, item.ID))

		var stored saleListing
		require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
		assert.Equal(t, models.StatusApproved, stored.Status)
		require.NotNil(t, stored.ReviewedBy)
		assert.Equal(t, admin.ID, *stored.ReviewedBy)
		assert.NotNil(t, stored.ReviewedAt)

		var log models.ModerationLog
		require.NoError(t, db.First(&log, "entity_id = ?", item.ID).Error)
		assert.Equal(t, models.StatusPending, log.FromStatus)
		assert.Equal(t, models.StatusApproved, log.ToStatus)

		require.NotEmpty(t, notifier.pushes)
		last := notifier.pushes[len(notifier.pushes)-1]
		assert.Equal(t, item.OwnerID, last.userID)
		assert.Equal(t, "Item approved", last.title)
		assert.Equal(t, "Calculus Textbook is now live", last.body)
	})

	t.Run("approving an approved listing is a no-op", func(t *testing.T) {
		item := seedListing(t, db, mpID, uuid.New(), models.StatusApproved)

		require.NoError(t, svc.Approve(saleResource, admin, item.ID))

		var logs int64
		db.Model(&models.ModerationLog{}).Where("entity_id = ?", item.ID).Count(&logs)
		assert.Zero(t, logs)
	})

	t.Run("rejected can be approved and loses its reason", func(t *testing.T) {
		item := seedListing(t, db, mpID, uuid.New(), models.StatusPending)
		require.NoError(t, svc.Reject(saleResource, admin, item.ID, "blurry photos"))

		require.NoError(t, svc.Approve(saleResource, admin, item.ID))

		var stored saleListing
		require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
		assert.Equal(t, models.StatusApproved, stored.Status)
		assert.Nil(t, stored.RejectionReason)
	})

	t.Run("sold cannot be approved", func(t *testing.T) {
		item := seedListing(t, db, mpID, uuid.New(), models.StatusSold)
		assert.ErrorIs(t, svc.Approve(saleResource, admin, item.ID), ErrInvalidTransition)
	})

	t.Run("expiring kinds get an expiry stamped", func(t *testing.T) {
		item := seedListing(t, db, mpID, uuid.New(), models.StatusPending)

		require.NoError(t, svc.Approve(expiringResource, admin, item.ID))

		var stored saleListing
		require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
		require.NotNil(t, stored.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *stored.ExpiresAt, time.Minute)
	})

	t.Run("admin of another marketplace is forbidden", func(t *testing.T) {
		item := seedListing(t, db, mpID, uuid.New(), models.StatusPending)
		outsider := adminOf(uuid.New())
		assert.ErrorIs(t, svc.Approve(saleResource, outsider, item.ID), ErrForbidden)
	})

	t.Run("super admin may act anywhere", func(t *testing.T) {
		item := seedListing(t, db, mpID, uuid.New(), models.StatusPending)
		super := tenant.Actor{ID: uuid.New(), Role: models.RoleSuperAdmin}
		require.NoError(t, svc.Approve(saleResource, super, item.ID))
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		assert.ErrorIs(t, svc.Approve(saleResource, admin, uuid.New()), ErrNotFound)
	})
}

func TestModerationService_Reject(t *testing.T) {
	db, svc, _ := setupModerationTest(t)
	mpID := uuid.New()
	admin := adminOf(mpID)

	t.Run("pending becomes rejected with the reason stored", func(t *testing.T) {
		item := seedListing(t, db, mpID, uuid.New(), models.StatusPending)

		require.NoError(t, svc.Reject(saleResource, admin, item.ID, "prohibited item"))

		var stored saleListing
		require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
		assert.Equal(t, models.StatusRejected, stored.Status)
		require.NotNil(t, stored.RejectionReason)
		assert.Equal(t, "prohibited item", *stored.RejectionReason)
	})

	t.Run("reason is mandatory", func(t *testing.T) {
		item := seedListing(t, db, mpID, uuid.New(), models.StatusPending)
		assert.Error(t, svc.Reject(saleResource, admin, item.ID, "   "))
	})

	t.Run("sold stays sold", func(t *testing.T) {
		item := seedListing(t, db, mpID, uuid.New(), models.StatusSold)

		assert.ErrorIs(t, svc.Reject(saleResource, admin, item.ID, "too late"), ErrInvalidTransition)

		var stored saleListing
		require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
		assert.Equal(t, models.StatusSold, stored.Status)
	})

	t.Run("re-rejecting is a no-op", func(t *testing.T) {
		item := seedListing(t, db, mpID, uuid.New(), models.StatusRejected)
		require.NoError(t, svc.Reject(saleResource, admin, item.ID, "again"))
	})
}

func TestModerationService_RequestChangesAndResubmit(t *testing.T) {
	db, svc, notifier := setupModerationTest(t)
	mpID := uuid.New()
	admin := adminOf(mpID)
	ownerID := uuid.New()

	item := seedListing(t, db, mpID, ownerID, models.StatusPending)

	require.NoError(t, svc.RequestChanges(saleResource, admin, item.ID, "add a price"))

	var stored saleListing
	require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, models.StatusNeedsChanges, stored.Status)
	require.NotNil(t, stored.RejectionReason)
	assert.Equal(t, "add a price", *stored.RejectionReason)

	t.Run("only the owner may resubmit", func(t *testing.T) {
		err := svc.Resubmit(saleResource, uuid.New(), item.ID, nil)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("resubmit returns to pending and clears review fields", func(t *testing.T) {
		adminsBefore := len(notifier.admins)

		require.NoError(t, svc.Resubmit(saleResource, ownerID, item.ID, map[string]interface{}{
			"name": "Calculus Textbook 2nd ed",
		}))

		var updated saleListing
		require.NoError(t, db.First(&updated, "id = ?", item.ID).Error)
		assert.Equal(t, models.StatusPending, updated.Status)
		assert.Nil(t, updated.RejectionReason)
		assert.Nil(t, updated.ReviewedBy)
		assert.Nil(t, updated.ReviewedAt)
		assert.Equal(t, "Calculus Textbook 2nd ed", updated.Name)

		assert.Len(t, notifier.admins, adminsBefore+1)
	})

	t.Run("approved listings cannot be resubmitted", func(t *testing.T) {
		approved := seedListing(t, db, mpID, ownerID, models.StatusApproved)
		err := svc.Resubmit(saleResource, ownerID, approved.ID, nil)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestModerationService_MarkSold(t *testing.T) {
	db, svc, _ := setupModerationTest(t)
	mpID := uuid.New()
	ownerID := uuid.New()

	t.Run("owner marks an approved listing sold", func(t *testing.T) {
		item := seedListing(t, db, mpID, ownerID, models.StatusApproved)

		require.NoError(t, svc.MarkSold(saleResource, ownerID, item.ID))

		var stored saleListing
		require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
		assert.Equal(t, models.StatusSold, stored.Status)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		item := seedListing(t, db, mpID, ownerID, models.StatusApproved)
		assert.ErrorIs(t, svc.MarkSold(saleResource, uuid.New(), item.ID), ErrForbidden)
	})

	t.Run("pending listings cannot be sold", func(t *testing.T) {
		item := seedListing(t, db, mpID, ownerID, models.StatusPending)
		assert.ErrorIs(t, svc.MarkSold(saleResource, ownerID, item.ID), ErrInvalidTransition)
	})

	t.Run("marking sold twice is a no-op", func(t *testing.T) {
		item := seedListing(t, db, mpID, ownerID, models.StatusApproved)
		require.NoError(t, svc.MarkSold(saleResource, ownerID, item.ID))
		require.NoError(t, svc.MarkSold(saleResource, ownerID, item.ID))
	})
}

func TestModerationService_Bulk(t *testing.T) {
	db, svc, _ := setupModerationTest(t)
	mpID := uuid.New()
	admin := adminOf(mpID)

	t.Run("bulk approve applies to every id", func(t *testing.T) {
		a := seedListing(t, db, mpID, uuid.New(), models.StatusPending)
		b := seedListing(t, db, mpID, uuid.New(), models.StatusPending)

		require.NoError(t, svc.BulkApprove(saleResource, admin, []uuid.UUID{a.ID, b.ID}))

		var approved int64
		db.Model(&saleListing{}).
			Where("id IN ? AND status = ?", []uuid.UUID{a.ID, b.ID}, models.StatusApproved).
			Count(&approved)
		assert.Equal(t, int64(2), approved)
	})

	t.Run("one bad id rolls the whole batch back", func(t *testing.T) {
		good := seedListing(t, db, mpID, uuid.New(), models.StatusPending)
		sold := seedListing(t, db, mpID, uuid.New(), models.StatusSold)

		err := svc.BulkApprove(saleResource, admin, []uuid.UUID{good.ID, sold.ID})
		assert.ErrorIs(t, err, ErrInvalidTransition)

		var stored saleListing
		require.NoError(t, db.First(&stored, "id = ?", good.ID).Error)
		assert.Equal(t, models.StatusPending, stored.Status)
	})

	t.Run("missing ids fail the batch", func(t *testing.T) {
		good := seedListing(t, db, mpID, uuid.New(), models.StatusPending)

		err := svc.BulkApprove(saleResource, admin, []uuid.UUID{good.ID, uuid.New()})
		assert.ErrorIs(t, err, ErrNotFound)

		var stored saleListing
		require.NoError(t, db.First(&stored, "id = ?", good.ID).Error)
		assert.Equal(t, models.StatusPending, stored.Status)
	})

	t.Run("bulk reject stores the shared reason", func(t *testing.T) {
		a := seedListing(t, db, mpID, uuid.New(), models.StatusPending)
		b := seedListing(t, db, mpID, uuid.New(), models.StatusPending)

		require.NoError(t, svc.BulkReject(saleResource, admin, []uuid.UUID{a.ID, b.ID}, "spam"))

		var stored saleListing
		require.NoError(t, db.First(&stored, "id = ?", b.ID).Error)
		assert.Equal(t, models.StatusRejected, stored.Status)
		require.NotNil(t, stored.RejectionReason)
		assert.Equal(t, "spam", *stored.RejectionReason)
	})

	t.Run("already-approved ids are skipped, not failed", func(t *testing.T) {
		done := seedListing(t, db, mpID, uuid.New(), models.StatusApproved)
		fresh := seedListing(t, db, mpID, uuid.New(), models.StatusPending)

		require.NoError(t, svc.BulkApprove(saleResource, admin, []uuid.UUID{done.ID, fresh.ID}))

		var stored saleListing
		require.NoError(t, db.First(&stored, "id = ?", fresh.ID).Error)
		assert.Equal(t, models.StatusApproved, stored.Status)
	})

	t.Run("duplicate ids are collapsed, not treated as missing", func(t *testing.T) {
		fresh := seedListing(t, db, mpID, uuid.New(), models.StatusPending)

		require.NoError(t, svc.BulkApprove(saleResource, admin, []uuid.UUID{fresh.ID, fresh.ID, fresh.ID}))

		var stored saleListing
		require.NoError(t, db.First(&stored, "id = ?", fresh.ID).Error)
		assert.Equal(t, models.StatusApproved, stored.Status)

		var logs int64
		db.Model(&models.ModerationLog{}).Where("entity_id = ?", fresh.ID).Count(&logs)
		assert.Equal(t, int64(1), logs)
	})

	t.Run("empty id set is rejected", func(t *testing.T) {
		assert.Error(t, svc.BulkApprove(saleResource, admin, nil))
	})
}
