package services

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/circlebuy/circlebuy-backend/internal/dto"
	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cascade deletes run in bounded batches so a large marketplace cannot
// pin one statement; the loop continues until the table drains.
const cascadeBatchSize = 500

var (
	domainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9.-]*[a-zA-Z0-9]\.[a-zA-Z]{2,}$`)
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// MarketplaceService owns tenant lifecycle: creation, status toggling,
// cascading deletion and the orphan sweep. The set of marketplace-
// scoped tables is registered at boot by the listing plugins.
type MarketplaceService struct {
	db       *gorm.DB
	scoped   []interface{}
	listings []interface{}
}

func NewMarketplaceService(db *gorm.DB) *MarketplaceService {
	return &MarketplaceService{db: db}
}

// RegisterScoped adds a marketplace-scoped model to the cascade and
// sweep set; listing models are additionally included in stats.
func (s *MarketplaceService) RegisterScoped(model interface{}, listing bool) {
	s.scoped = append(s.scoped, model)
	if listing {
		s.listings = append(s.listings, model)
	}
}

// Create registers a new marketplace. The domain must not be in use by
// an active marketplace; comparison is lowercased exact-string.
func (s *MarketplaceService) Create(req *dto.CreateMarketplaceRequest) (*models.Marketplace, error) {
	name := strings.TrimSpace(req.Name)
	domain := strings.ToLower(strings.TrimSpace(req.Domain))
	adminEmail := strings.ToLower(strings.TrimSpace(req.AdminEmail))

	if name == "" || domain == "" || adminEmail == "" {
		return nil, errors.New("name, domain and adminEmail are required")
	}
	if !emailPattern.MatchString(adminEmail) {
		return nil, errors.New("adminEmail is not a valid email address")
	}
	if len(domain) < 4 || !domainPattern.MatchString(domain) {
		return nil, errors.New("domain is not a valid institutional domain")
	}

	var existing models.Marketplace
	err := s.db.Where("domain = ? AND status = ?", domain, models.MarketplaceActive).First(&existing).Error
	if err == nil {
		return nil, errors.New("domain is already in use by an active marketplace")
	}

	mp := models.Marketplace{
		ID:         uuid.New(),
		Name:       name,
		Domain:     domain,
		AdminEmail: adminEmail,
		Status:     models.MarketplaceActive,
	}
	if err := s.db.Create(&mp).Error; err != nil {
		return nil, fmt.Errorf("failed to create marketplace: %w", err)
	}
	return &mp, nil
}

func (s *MarketplaceService) List() ([]models.Marketplace, error) {
	var marketplaces []models.Marketplace
	err := s.db.Order("created_at DESC").Find(&marketplaces).Error
	return marketplaces, err
}

// SetStatus toggles a marketplace between active and inactive. An
// inactive marketplace stops resolving logins but keeps its data.
func (s *MarketplaceService) SetStatus(id uuid.UUID, status string) error {
	if status != models.MarketplaceActive && status != models.MarketplaceInactive {
		return errors.New("status must be active or inactive")
	}
	result := s.db.Model(&models.Marketplace{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete cascades across every scoped table in batches, clears the
// role claims of the marketplace's users, then removes the marketplace
// row. The cascade is not transactional across tables; a crash leaves
// orphans that the sweep picks up, and re-invoking Delete is safe.
func (s *MarketplaceService) Delete(id uuid.UUID) (int64, error) {
	var mp models.Marketplace
	if err := s.db.First(&mp, "id = ?", id).Error; err != nil {
		return 0, ErrNotFound
	}

	var total int64
	for _, model := range s.scoped {
		n, err := s.deleteBatched(model, "marketplace_id = ?", id)
		total += n
		if err != nil {
			return total, fmt.Errorf("cascade delete failed: %w", err)
		}
	}

	// Identities stay; only their claims are cleared.
	if err := s.db.Model(&models.User{}).
		Where("marketplace_id = ?", id).
		Updates(map[string]interface{}{"role": "", "marketplace_id": nil}).Error; err != nil {
		return total, fmt.Errorf("failed to clear user claims: %w", err)
	}

	if err := s.db.Delete(&mp).Error; err != nil {
		return total, fmt.Errorf("failed to delete marketplace: %w", err)
	}

	slog.Info("marketplace deleted", "marketplace_id", id.String(), "cascaded", total)
	return total, nil
}

// CleanupOrphans deletes every scoped row whose marketplace is not
// currently active. Running it twice in a row with no intervening
// writes reports zero on the second pass.
func (s *MarketplaceService) CleanupOrphans() (int64, error) {
	var activeIDs []uuid.UUID
	if err := s.db.Model(&models.Marketplace{}).
		Where("status = ?", models.MarketplaceActive).
		Pluck("id", &activeIDs).Error; err != nil {
		return 0, err
	}

	var total int64
	for _, model := range s.scoped {
		var (
			n   int64
			err error
		)
		if len(activeIDs) == 0 {
			n, err = s.deleteBatched(model, "1 = 1")
		} else {
			n, err = s.deleteBatched(model, "marketplace_id NOT IN ?", activeIDs)
		}
		total += n
		if err != nil {
			return total, fmt.Errorf("orphan sweep failed: %w", err)
		}
	}

	slog.Info("orphan sweep completed", "deleted", total)
	return total, nil
}

// Stats computes advisory per-marketplace counts live.
func (s *MarketplaceService) Stats() ([]dto.MarketplaceStats, error) {
	marketplaces, err := s.List()
	if err != nil {
		return nil, err
	}

	stats := make([]dto.MarketplaceStats, 0, len(marketplaces))
	for _, mp := range marketplaces {
		entry := dto.MarketplaceStats{
			MarketplaceID: mp.ID,
			Name:          mp.Name,
			Domain:        mp.Domain,
			Status:        mp.Status,
		}
		s.db.Model(&models.User{}).Where("marketplace_id = ?", mp.ID).Count(&entry.Users)
		for _, model := range s.listings {
			var n int64
			s.db.Model(model).Where("marketplace_id = ?", mp.ID).Count(&n)
			entry.Listings += n
			s.db.Model(model).Where("marketplace_id = ? AND status = ?", mp.ID, models.StatusPending).Count(&n)
			entry.Pending += n
		}
		stats = append(stats, entry)
	}
	return stats, nil
}

func (s *MarketplaceService) deleteBatched(model interface{}, cond string, args ...interface{}) (int64, error) {
	var total int64
	for {
		var ids []uuid.UUID
		if err := s.db.Model(model).Where(cond, args...).Limit(cascadeBatchSize).Pluck("id", &ids).Error; err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}
		result := s.db.Where("id IN ?", ids).Delete(model)
		if result.Error != nil {
			return total, result.Error
		}
		total += result.RowsAffected
		if len(ids) < cascadeBatchSize {
			return total, nil
		}
	}
}
