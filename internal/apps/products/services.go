package products

import (
	"errors"
	"strings"

	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/circlebuy/circlebuy-backend/internal/services"
	"github.com/circlebuy/circlebuy-backend/internal/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProductService handles sale listings. Status transitions go through
// the shared moderation service; this service owns creation and reads.
type ProductService struct {
	db         *gorm.DB
	moderation *services.ModerationService
}

func NewProductService(db *gorm.DB, moderation *services.ModerationService) *ProductService {
	return &ProductService{db: db, moderation: moderation}
}

type CreateProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Images      datatypes.JSON  `json:"images"`
}

func (s *ProductService) Create(actor tenant.Actor, in CreateProductInput) (*Product, error) {
	if actor.MarketplaceID == nil {
		return nil, services.ErrForbidden
	}

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, errors.New("name is required")
	}
	if in.Price.IsNegative() {
		return nil, errors.New("price cannot be negative")
	}

	product := &Product{
		MarketplaceID: *actor.MarketplaceID,
		OwnerID:       actor.ID,
		OwnerEmail:    actor.Email,
		Name:          in.Name,
		Description:   strings.TrimSpace(in.Description),
		Price:         in.Price,
		Category:      strings.TrimSpace(in.Category),
		Images:        in.Images,
	}
	product.Status = models.StatusPending

	if err := s.db.Create(product).Error; err != nil {
		return nil, err
	}

	s.moderation.NotifySubmitted(Resource(), product.MarketplaceID, product.ID, product.Name)
	return product, nil
}

// List returns listings in the actor's marketplace. Regular users see
// approved listings plus their own submissions; admins may filter by
// any status.
func (s *ProductService) List(actor tenant.Actor, status, category string, limit, offset int) ([]Product, error) {
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

	if category != "" {
		query = query.Where("category = ?", category)
	}

	var items []Product
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error
	return items, err
}

func (s *ProductService) GetByID(actor tenant.Actor, id uuid.UUID) (*Product, error) {
	var product Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, services.ErrNotFound
	}

	if actor.MarketplaceID == nil || *actor.MarketplaceID != product.MarketplaceID {
		if actor.Role != models.RoleSuperAdmin {
			return nil, services.ErrNotFound
		}
	}

	admin := actor.Role == models.RoleAdmin || actor.Role == models.RoleSuperAdmin
	if !admin && product.OwnerID != actor.ID && product.Status != models.StatusApproved &&
		product.Status != models.StatusSold {
		return nil, services.ErrNotFound
	}
	return &product, nil
}

// Resubmit sends a needs_changes listing back to review, applying any
// edited fields in the same write.
func (s *ProductService) Resubmit(callerID uuid.UUID, id uuid.UUID, in CreateProductInput) error {
	updates := map[string]interface{}{}
	if name := strings.TrimSpace(in.Name); name != "" {
		updates["name"] = name
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		updates["description"] = desc
	}
	if !in.Price.IsZero() {
		if in.Price.IsNegative() {
			return errors.New("price cannot be negative")
		}
		updates["price"] = in.Price
	}
	if cat := strings.TrimSpace(in.Category); cat != "" {
		updates["category"] = cat
	}
	if len(in.Images) > 0 {
		updates["images"] = in.Images
	}
	return s.moderation.Resubmit(Resource(), callerID, id, updates)
}

// Resource describes the products table to the moderation service.
func Resource() services.Resource {
	return services.Resource{
		Kind:        "product",
		Model:       &Product{},
		TitleColumn: "name",
		Expires:     false,
	}
}
