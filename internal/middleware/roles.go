package middleware

import (
	"github.com/circlebuy/circlebuy-backend/internal/dto"
	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/circlebuy/circlebuy-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired gates a route to admin and super_admin role claims.
// Marketplace scoping is enforced by the services; the claim is trusted
// here because role assignment re-issues the token on change.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := tenant.GetRole(c)
		if role == models.RoleAdmin || role == models.RoleSuperAdmin {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

// SuperAdminRequired gates a route to the super_admin role claim.
func SuperAdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tenant.GetRole(c) == models.RoleSuperAdmin {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Super admin access required",
		})
	}
}
