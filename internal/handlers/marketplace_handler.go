package handlers

import (
	"errors"

	"github.com/circlebuy/circlebuy-backend/internal/dto"
	"github.com/circlebuy/circlebuy-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MarketplaceHandler struct {
	marketplaceService *services.MarketplaceService
	roleService        *services.RoleService
}

func NewMarketplaceHandler(marketplaceService *services.MarketplaceService, roleService *services.RoleService) *MarketplaceHandler {
	return &MarketplaceHandler{marketplaceService: marketplaceService, roleService: roleService}
}

func (h *MarketplaceHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateMarketplaceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	mp, err := h.marketplaceService.Create(&req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.CreateMarketplaceResponse{MarketplaceID: mp.ID})
}

func (h *MarketplaceHandler) List(c *fiber.Ctx) error {
	marketplaces, err := h.marketplaceService.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch marketplaces",
		})
	}
	return c.JSON(fiber.Map{"marketplaces": marketplaces})
}

func (h *MarketplaceHandler) SetStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid marketplace ID",
		})
	}

	var req dto.SetMarketplaceStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.marketplaceService.SetStatus(id, req.Status); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Marketplace not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(dto.MessageResponse{Message: "Marketplace status updated"})
}

func (h *MarketplaceHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid marketplace ID",
		})
	}

	if _, err := h.marketplaceService.Delete(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Marketplace not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete marketplace",
		})
	}

	return c.JSON(dto.DeleteMarketplaceResponse{
		Success: true,
		Message: "Marketplace and all associated data deleted",
	})
}

func (h *MarketplaceHandler) CleanupOrphans(c *fiber.Ctx) error {
	deleted, err := h.marketplaceService.CleanupOrphans()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Cleanup failed: " + err.Error(),
		})
	}

	return c.JSON(dto.CleanupResponse{
		Success:      true,
		DeletedCount: deleted,
		Message:      "Orphaned data cleanup completed",
	})
}

func (h *MarketplaceHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.marketplaceService.Stats()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to compute stats",
		})
	}
	return c.JSON(fiber.Map{"marketplaces": stats})
}

func (h *MarketplaceHandler) MigrateUsers(c *fiber.Ctx) error {
	migrated, skipped, err := h.roleService.MigrateUsers()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Migration failed",
		})
	}

	return c.JSON(dto.MigrateUsersResponse{
		Success:  true,
		Migrated: migrated,
		Skipped:  skipped,
	})
}
