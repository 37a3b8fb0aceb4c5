package lostfound

import (
	"github.com/circlebuy/circlebuy-backend/internal/config"
	"github.com/circlebuy/circlebuy-backend/internal/handlers"
	"github.com/circlebuy/circlebuy-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LostFoundPlugin struct {
	moderation *services.ModerationService
}

func New(moderation *services.ModerationService) *LostFoundPlugin {
	return &LostFoundPlugin{moderation: moderation}
}

func (p *LostFoundPlugin) Kind() string { return "lost_item" }

func (p *LostFoundPlugin) Models() []interface{} {
	return []interface{}{&LostItem{}}
}

func (p *LostFoundPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, _ *config.Config) {
	svc := NewLostItemService(db, p.moderation)
	h := NewLostItemHandler(svc)

	router.Post("/lost-items", h.Create)
	router.Get("/lost-items", h.List)
	router.Get("/lost-items/:id", h.GetByID)
	router.Put("/lost-items/:id/resubmit", h.Resubmit)
}

func (p *LostFoundPlugin) RegisterAdminRoutes(router fiber.Router, _ *gorm.DB, _ *config.Config) {
	mh := handlers.NewModerationHandler(Resource(), p.moderation)
	mh.RegisterAdminRoutes(router, "lost-items")
}
