package donations

import (
	"errors"
	"strings"

	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/circlebuy/circlebuy-backend/internal/services"
	"github.com/circlebuy/circlebuy-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DonationService struct {
	db         *gorm.DB
	moderation *services.ModerationService
}

func NewDonationService(db *gorm.DB, moderation *services.ModerationService) *DonationService {
	return &DonationService{db: db, moderation: moderation}
}

type CreateDonationInput struct {
	ItemName       string `json:"itemName"`
	Description    string `json:"description"`
	ContactDetails string `json:"contactDetails"`
}

func (s *DonationService) Create(actor tenant.Actor, in CreateDonationInput) (*Donation, error) {
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

	donation := &Donation{
		MarketplaceID:  *actor.MarketplaceID,
		OwnerID:        actor.ID,
		OwnerEmail:     actor.Email,
		ItemName:       in.ItemName,
		Description:    strings.TrimSpace(in.Description),
		ContactDetails: strings.TrimSpace(in.ContactDetails),
	}
	donation.Status = models.StatusPending

	if err := s.db.Create(donation).Error; err != nil {
		return nil, err
	}

	s.moderation.NotifySubmitted(Resource(), donation.MarketplaceID, donation.ID, donation.ItemName)
	return donation, nil
}

func (s *DonationService) List(actor tenant.Actor, status string, limit, offset int) ([]Donation, error) {
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

	var items []Donation
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error
	return items, err
}

func (s *DonationService) GetByID(actor tenant.Actor, id uuid.UUID) (*Donation, error) {
	var donation Donation
	if err := s.db.First(&donation, "id = ?", id).Error; err != nil {
		return nil, services.ErrNotFound
	}

	if actor.MarketplaceID == nil || *actor.MarketplaceID != donation.MarketplaceID {
		if actor.Role != models.RoleSuperAdmin {
			return nil, services.ErrNotFound
		}
	}

	admin := actor.Role == models.RoleAdmin || actor.Role == models.RoleSuperAdmin
	if !admin && donation.OwnerID != actor.ID && donation.Status != models.StatusApproved {
		return nil, services.ErrNotFound
	}
	return &donation, nil
}

func (s *DonationService) Resubmit(callerID uuid.UUID, id uuid.UUID, in CreateDonationInput) error {
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
		Kind:        "donation",
		Model:       &Donation{},
		TitleColumn: "item_name",
		Expires:     false,
	}
}
