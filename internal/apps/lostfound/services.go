package lostfound

import (
	"errors"
	"strings"
	"time"

	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/circlebuy/circlebuy-backend/internal/services"
	"github.com/circlebuy/circlebuy-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LostItemService struct {
	db         *gorm.DB
	moderation *services.ModerationService
}

func NewLostItemService(db *gorm.DB, moderation *services.ModerationService) *LostItemService {
	return &LostItemService{db: db, moderation: moderation}
}

type CreateLostItemInput struct {
	ItemName       string `json:"itemName"`
	Description    string `json:"description"`
	ContactDetails string `json:"contactDetails"`
}

func (s *LostItemService) Create(actor tenant.Actor, in CreateLostItemInput) (*LostItem, error) {
	if actor.MarketplaceID == nil {
		return nil, services.ErrForbidden
	}

	in.ItemName = strings.TrimSpace(in.ItemName)
	if in.ItemName == "" {
		return nil, errors.New("itemName is required")
	}
	if strings.TrimSpace(in.ContactDetails) == "" {
		return nil, errors.New("contactDetails is required")
	}

	item := &LostItem{
		MarketplaceID:  *actor.MarketplaceID,
		OwnerID:        actor.ID,
		OwnerEmail:     actor.Email,
		ItemName:       in.ItemName,
		Description:    strings.TrimSpace(in.Description),
		ContactDetails: strings.TrimSpace(in.ContactDetails),
	}
	item.Status = models.StatusPending

	if err := s.db.Create(item).Error; err != nil {
		return nil, err
	}

	s.moderation.NotifySubmitted(Resource(), item.MarketplaceID, item.ID, item.ItemName)
	return item, nil
}

// List mirrors the products listing rules. Expired approved notices
// are reported as orphaned without being rewritten.
func (s *LostItemService) List(actor tenant.Actor, status string, limit, offset int) ([]LostItem, error) {
	if actor.MarketplaceID == nil {
		return nil, services.ErrForbidden
	}

	query := s.db.Scopes(tenant.ForMarketplace(*actor.MarketplaceID))
	admin := actor.Role == models.RoleAdmin || actor.Role == models.RoleSuperAdmin

	switch {
	case admin && status != "":
		query = query.Where("status = ?", status)
	case admin:
	case status == "mine":
		query = query.Where("owner_id = ?", actor.ID)
	default:
		query = query.Where("status = ? OR owner_id = ?", models.StatusApproved, actor.ID)
	}

	var items []LostItem
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range items {
		items[i].Status = models.EffectiveStatus(items[i].Status, items[i].ExpiresAt, now)
	}
	return items, nil
}

func (s *LostItemService) GetByID(actor tenant.Actor, id uuid.UUID) (*LostItem, error) {
	var item LostItem
	if err := s.db.First(&item, "id = ?", id).Error; err != nil {
		return nil, services.ErrNotFound
	}

	if actor.MarketplaceID == nil || *actor.MarketplaceID != item.MarketplaceID {
		if actor.Role != models.RoleSuperAdmin {
			return nil, services.ErrNotFound
		}
	}

	admin := actor.Role == models.RoleAdmin || actor.Role == models.RoleSuperAdmin
	if !admin && item.OwnerID != actor.ID && item.Status != models.StatusApproved {
		return nil, services.ErrNotFound
	}

	item.Status = models.EffectiveStatus(item.Status, item.ExpiresAt, time.Now())
	return &item, nil
}

func (s *LostItemService) Resubmit(callerID uuid.UUID, id uuid.UUID, in CreateLostItemInput) error {
	updates := map[string]interface{}{}
	if name := strings.TrimSpace(in.ItemName); name != "" {
		updates["item_name"] = name
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		updates["description"] = desc
	}
	if contact := strings.TrimSpace(in.ContactDetails); contact != "" {
		updates["contact_details"] = contact
	}
	return s.moderation.Resubmit(Resource(), callerID, id, updates)
}

func Resource() services.Resource {
	return services.Resource{
		Kind:        "lost_item",
		Model:       &LostItem{},
		TitleColumn: "item_name",
		Expires:     true,
	}
}
