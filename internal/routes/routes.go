package routes

import (
	"time"

	"github.com/circlebuy/circlebuy-backend/internal/apps"
	"github.com/circlebuy/circlebuy-backend/internal/config"
	"github.com/circlebuy/circlebuy-backend/internal/handlers"
	"github.com/circlebuy/circlebuy-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	marketplaceHandler *handlers.MarketplaceHandler,
	messageHandler *handlers.MessageHandler,
	userHandler *handlers.UserHandler,
	deviceHandler *handlers.DeviceHandler,
	plugins []apps.Plugin,
) {
	// General rate limiter: 60 req/min per IP
	app.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (public)
	app.Get("/health", healthHandler.Check)

	// Auth is public but rate limited harder: 10 req/min per IP
	auth := app.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// All routes share the root prefix, and group middleware registers
	// as Use on the prefix, gating every route added after the group.
	// Token and role checks therefore attach per route.
	jwt := middleware.JWTProtected(cfg)
	superAdmin := middleware.SuperAdminRequired()
	adminOnly := middleware.AdminRequired()

	app.Post("/auth/logout", jwt, authHandler.Logout)
	app.Post("/auth/assign-role", jwt, authHandler.AssignRole)

	// Devices
	app.Post("/devices", jwt, deviceHandler.Register)
	app.Delete("/devices/:token", jwt, deviceHandler.Remove)

	// Messages
	app.Post("/messages", jwt, messageHandler.Send)
	app.Get("/messages", jwt, messageHandler.List)
	app.Put("/messages/:id/read", jwt, messageHandler.MarkRead)

	// Super admin panel: marketplace lifecycle and cross-tenant ops
	app.Post("/marketplaces/create", jwt, superAdmin, marketplaceHandler.Create)
	app.Get("/marketplaces", jwt, superAdmin, marketplaceHandler.List)
	app.Put("/marketplaces/:id/status", jwt, superAdmin, marketplaceHandler.SetStatus)
	app.Delete("/marketplaces/:id", jwt, superAdmin, marketplaceHandler.Delete)
	app.Post("/cleanup-orphaned-data", jwt, superAdmin, marketplaceHandler.CleanupOrphans)
	app.Get("/super-admin/stats", jwt, superAdmin, marketplaceHandler.Stats)
	app.Post("/migrate-users", jwt, superAdmin, marketplaceHandler.MigrateUsers)

	// Marketplace admin panel
	app.Get("/users", jwt, adminOnly, userHandler.List)
	app.Put("/users/:id/block", jwt, adminOnly, userHandler.SetBlocked)

	// Listing verticals register last, on a group whose token check
	// covers only the routes mounted through it. The admin review
	// routes carry their role check themselves.
	protected := app.Group("", jwt)
	for _, p := range plugins {
		p.RegisterRoutes(protected, db, cfg)
		if ap, ok := p.(apps.AdminPlugin); ok {
			ap.RegisterAdminRoutes(protected, db, cfg)
		}
	}
}
