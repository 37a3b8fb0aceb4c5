package services

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/circlebuy/circlebuy-backend/internal/config"
	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resolution is the outcome of routing an email to a role and
// marketplace. MarketplaceID is nil for the super admin.
type Resolution struct {
	Role          string
	MarketplaceID *uuid.UUID
}

// RoleService routes verified identities to roles and persists the
// resulting claims. Resolution runs once per login flow; afterwards the
// claims baked into the access token are trusted.
type RoleService struct {
	db              *gorm.DB
	superAdminEmail string
	blockedDomains  map[string]bool
}

func NewRoleService(db *gorm.DB, cfg *config.Config) *RoleService {
	blocked := make(map[string]bool)
	for _, d := range cfg.BlockedDomainList() {
		blocked[d] = true
	}
	return &RoleService{
		db:              db,
		superAdminEmail: strings.ToLower(strings.TrimSpace(cfg.SuperAdminEmail)),
		blockedDomains:  blocked,
	}
}

// Resolve maps an email to a role assignment without mutating anything.
// Precedence: super admin match, marketplace admin match, blocked
// public domain, marketplace domain match.
func (s *RoleService) Resolve(email string) (Resolution, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Resolution{}, ErrUnauthorizedDomain
	}

	if email == s.superAdminEmail {
		return Resolution{Role: models.RoleSuperAdmin}, nil
	}

	if mp, ok := s.findActive("admin_email = ?", email); ok {
		return Resolution{Role: models.RoleAdmin, MarketplaceID: &mp.ID}, nil
	}

	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return Resolution{}, ErrUnauthorizedDomain
	}
	domain := email[at+1:]

	if s.blockedDomains[domain] {
		return Resolution{}, ErrUnauthorizedDomain
	}

	if mp, ok := s.findActive("domain = ?", domain); ok {
		return Resolution{Role: models.RoleUser, MarketplaceID: &mp.ID}, nil
	}

	return Resolution{}, ErrUnauthorizedDomain
}

// findActive returns the first active marketplace matching the query,
// ordered by creation time. More than one match violates the domain
// uniqueness invariant and is logged, not failed.
func (s *RoleService) findActive(query string, arg string) (*models.Marketplace, bool) {
	var matches []models.Marketplace
	err := s.db.Where(query, arg).
		Where("status = ?", models.MarketplaceActive).
		Order("created_at ASC").
		Limit(2).
		Find(&matches).Error
	if err != nil || len(matches) == 0 {
		return nil, false
	}
	if len(matches) > 1 {
		slog.Warn("multiple active marketplaces match", "query", query, "value", arg)
	}
	return &matches[0], true
}

// Assign resolves the user's email and persists {role, marketplace_id}
// onto the user row in a single update. Re-running with an unchanged
// resolution is a no-op change. Blocked users are refused.
func (s *RoleService) Assign(userID uuid.UUID, email string) (Resolution, error) {
	res, err := s.Resolve(email)
	if err != nil {
		return Resolution{}, err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return Resolution{}, ErrNotFound
	}
	if user.Blocked {
		return Resolution{}, ErrUserBlocked
	}

	updates := map[string]interface{}{
		"role":           res.Role,
		"marketplace_id": res.MarketplaceID,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return Resolution{}, fmt.Errorf("%w: %v", ErrAssignmentFailed, err)
	}

	return res, nil
}

// MigrateUsers re-runs resolution for every user without a role claim
// and persists the result. Users whose email no longer routes anywhere
// are skipped, not failed.
func (s *RoleService) MigrateUsers() (migrated, skipped int64, err error) {
	var users []models.User
	if err := s.db.Where("role = '' OR role IS NULL").Find(&users).Error; err != nil {
		return 0, 0, err
	}

	for i := range users {
		res, rerr := s.Resolve(users[i].Email)
		if rerr != nil {
			skipped++
			continue
		}
		updates := map[string]interface{}{
			"role":           res.Role,
			"marketplace_id": res.MarketplaceID,
		}
		if uerr := s.db.Model(&users[i]).Updates(updates).Error; uerr != nil {
			slog.Error("user migration failed", "user_id", users[i].ID.String(), "error", uerr)
			skipped++
			continue
		}
		migrated++
	}
	return migrated, skipped, nil
}
