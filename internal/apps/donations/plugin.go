package donations

import (
	"github.com/circlebuy/circlebuy-backend/internal/config"
	"github.com/circlebuy/circlebuy-backend/internal/handlers"
	"github.com/circlebuy/circlebuy-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DonationsPlugin struct {
	moderation *services.ModerationService
}

func New(moderation *services.ModerationService) *DonationsPlugin {
	return &DonationsPlugin{moderation: moderation}
}

func (p *DonationsPlugin) Kind() string { return "donation" }

func (p *DonationsPlugin) Models() []interface{} {
	return []interface{}{&Donation{}}
}

func (p *DonationsPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, _ *config.Config) {
	svc := NewDonationService(db, p.moderation)
	h := NewDonationHandler(svc)

	router.Post("/donations", h.Create)
	router.Get("/donations", h.List)
	router.Get("/donations/:id", h.GetByID)
	router.Put("/donations/:id/resubmit", h.Resubmit)
}

func (p *DonationsPlugin) RegisterAdminRoutes(router fiber.Router, _ *gorm.DB, _ *config.Config) {
	mh := handlers.NewModerationHandler(Resource(), p.moderation)
	mh.RegisterAdminRoutes(router, "donations")
}
