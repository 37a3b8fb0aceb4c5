package products

import (
	"github.com/circlebuy/circlebuy-backend/internal/config"
	"github.com/circlebuy/circlebuy-backend/internal/handlers"
	"github.com/circlebuy/circlebuy-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProductsPlugin struct {
	moderation *services.ModerationService
}

func New(moderation *services.ModerationService) *ProductsPlugin {
	return &ProductsPlugin{moderation: moderation}
}

func (p *ProductsPlugin) Kind() string { return "product" }

func (p *ProductsPlugin) Models() []interface{} {
	return []interface{}{&Product{}}
}

func (p *ProductsPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, _ *config.Config) {
	svc := NewProductService(db, p.moderation)
	h := NewProductHandler(svc)
	mh := handlers.NewModerationHandler(Resource(), p.moderation)

	router.Post("/products", h.Create)
	router.Get("/products", h.List)
	router.Get("/products/:id", h.GetByID)
	router.Put("/products/:id/mark-sold", mh.MarkSold)
	router.Put("/products/:id/resubmit", h.Resubmit)
}

func (p *ProductsPlugin) RegisterAdminRoutes(router fiber.Router, _ *gorm.DB, _ *config.Config) {
	mh := handlers.NewModerationHandler(Resource(), p.moderation)
	mh.RegisterAdminRoutes(router, "products")
}
