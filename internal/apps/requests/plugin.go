package requests

import (
	"github.com/circlebuy/circlebuy-backend/internal/config"
	"github.com/circlebuy/circlebuy-backend/internal/handlers"
	"github.com/circlebuy/circlebuy-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RequestsPlugin struct {
	moderation *services.ModerationService
}

func New(moderation *services.ModerationService) *RequestsPlugin {
	return &RequestsPlugin{moderation: moderation}
}

func (p *RequestsPlugin) Kind() string { return "product_request" }

func (p *RequestsPlugin) Models() []interface{} {
	return []interface{}{&ProductRequest{}}
}

func (p *RequestsPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, _ *config.Config) {
	svc := NewRequestService(db, p.moderation)
	h := NewRequestHandler(svc)

	router.Post("/product-requests", h.Create)
	router.Get("/product-requests", h.List)
	router.Get("/product-requests/:id", h.GetByID)
	router.Put("/product-requests/:id/resubmit", h.Resubmit)
}

func (p *RequestsPlugin) RegisterAdminRoutes(router fiber.Router, _ *gorm.DB, _ *config.Config) {
	mh := handlers.NewModerationHandler(Resource(), p.moderation)
	mh.RegisterAdminRoutes(router, "product-requests")
}
