package requests

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

type RequestService struct {
	db         *gorm.DB
	moderation *services.ModerationService
}

func NewRequestService(db *gorm.DB, moderation *services.ModerationService) *RequestService {
	return &RequestService{db: db, moderation: moderation}
}

type CreateRequestInput struct {
	ProductName    string `json:"productName"`
	Description    string `json:"description"`
	ContactDetails string `json:"contactDetails"`
}

func (s *RequestService) Create(actor tenant.Actor, in CreateRequestInput) (*ProductRequest, error) {
	if actor.MarketplaceID == nil {
		return nil, services.ErrForbidden
	}

	in.ProductName = strings.TrimSpace(in.ProductName)
	if in.ProductName == "" {
		return nil, errors.New("productName is required")
	}
	if strings.TrimSpace(in.ContactDetails) == "" {
		return nil, errors.New("contactDetails is required")
	}

	request := &ProductRequest{
		MarketplaceID:  *actor.MarketplaceID,
		OwnerID:        actor.ID,
		OwnerEmail:     actor.Email,
		ProductName:    in.ProductName,
		Description:    strings.TrimSpace(in.Description),
		ContactDetails: strings.TrimSpace(in.ContactDetails),
	}
	request.Status = models.StatusPending

	if err := s.db.Create(request).Error; err != nil {
		return nil, err
	}

	s.moderation.NotifySubmitted(Resource(), request.MarketplaceID, request.ID, request.ProductName)
	return request, nil
}

func (s *RequestService) List(actor tenant.Actor, status string, limit, offset int) ([]ProductRequest, error) {
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

	var items []ProductRequest
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range items {
		items[i].Status = models.EffectiveStatus(items[i].Status, items[i].ExpiresAt, now)
	}
	return items, nil
}

func (s *RequestService) GetByID(actor tenant.Actor, id uuid.UUID) (*ProductRequest, error) {
	var request ProductRequest
	if err := s.db.First(&request, "id = ?", id).Error; err != nil {
		return nil, services.ErrNotFound
	}

	if actor.MarketplaceID == nil || *actor.MarketplaceID != request.MarketplaceID {
		if actor.Role != models.RoleSuperAdmin {
			return nil, services.ErrNotFound
		}
	}

	admin := actor.Role == models.RoleAdmin || actor.Role == models.RoleSuperAdmin
	if !admin && request.OwnerID != actor.ID && request.Status != models.StatusApproved {
		return nil, services.ErrNotFound
	}

	request.Status = models.EffectiveStatus(request.Status, request.ExpiresAt, time.Now())
	return &request, nil
}

func (s *RequestService) Resubmit(callerID uuid.UUID, id uuid.UUID, in CreateRequestInput) error {
	updates := map[string]interface{}{}
	if name := strings.TrimSpace(in.ProductName); name != "" {
		updates["product_name"] = name
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
		Kind:        "product_request",
		Model:       &ProductRequest{},
		TitleColumn: "product_name",
		Expires:     true,
	}
}
