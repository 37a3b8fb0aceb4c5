package handlers

import (
	"errors"

	"github.com/circlebuy/circlebuy-backend/internal/dto"
	"github.com/circlebuy/circlebuy-backend/internal/middleware"
	"github.com/circlebuy/circlebuy-backend/internal/services"
	"github.com/circlebuy/circlebuy-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ModerationHandler serves the admin review endpoints for one listing
// kind. Each plugin mounts its own instance with its Resource.
type ModerationHandler struct {
	res               services.Resource
	moderationService *services.ModerationService
}

func NewModerationHandler(res services.Resource, moderationService *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{res: res, moderationService: moderationService}
}

func (h *ModerationHandler) Approve(c *fiber.Ctx) error {
	actor, err := tenant.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid id",
		})
	}

	if err := h.moderationService.Approve(h.res, actor, id); err != nil {
		return moderationError(c, err, "Failed to approve")
	}
	return c.JSON(dto.MessageResponse{Message: "Approved"})
}

func (h *ModerationHandler) Reject(c *fiber.Ctx) error {
	actor, err := tenant.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid id",
		})
	}

	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "reason is required",
		})
	}

	if err := h.moderationService.Reject(h.res, actor, id, req.Reason); err != nil {
		return moderationError(c, err, "Failed to reject")
	}
	return c.JSON(dto.MessageResponse{Message: "Rejected"})
}

func (h *ModerationHandler) RequestChanges(c *fiber.Ctx) error {
	actor, err := tenant.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid id",
		})
	}

	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "reason is required",
		})
	}

	if err := h.moderationService.RequestChanges(h.res, actor, id, req.Reason); err != nil {
		return moderationError(c, err, "Failed to request changes")
	}
	return c.JSON(dto.MessageResponse{Message: "Changes requested"})
}

func (h *ModerationHandler) BulkApprove(c *fiber.Ctx) error {
	actor, err := tenant.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.BulkApproveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if len(req.IDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "ids are required",
		})
	}

	if err := h.moderationService.BulkApprove(h.res, actor, req.IDs); err != nil {
		return moderationError(c, err, "Failed to approve items")
	}
	return c.JSON(dto.MessageResponse{Message: "Approved"})
}

func (h *ModerationHandler) BulkReject(c *fiber.Ctx) error {
	actor, err := tenant.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.BulkRejectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if len(req.IDs) == 0 || req.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "ids and reason are required",
		})
	}

	if err := h.moderationService.BulkReject(h.res, actor, req.IDs, req.Reason); err != nil {
		return moderationError(c, err, "Failed to reject items")
	}
	return c.JSON(dto.MessageResponse{Message: "Rejected"})
}

func (h *ModerationHandler) MarkSold(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid id",
		})
	}

	if err := h.moderationService.MarkSold(h.res, userID, id); err != nil {
		return moderationError(c, err, "Failed to mark sold")
	}
	return c.JSON(dto.MessageResponse{Message: "Marked as sold"})
}

// RegisterAdminRoutes mounts the review endpoints for the handler's
// kind under the given plural path segment, e.g. "products". The admin
// role check is attached here, not on the router, so it never touches
// the member-facing routes sharing the root prefix.
func (h *ModerationHandler) RegisterAdminRoutes(router fiber.Router, plural string) {
	adminOnly := middleware.AdminRequired()
	router.Put("/"+plural+"/:id/approve", adminOnly, h.Approve)
	router.Put("/"+plural+"/:id/reject", adminOnly, h.Reject)
	router.Put("/"+plural+"/:id/request-changes", adminOnly, h.RequestChanges)
	router.Post("/"+plural+"/bulk-approve", adminOnly, h.BulkApprove)
	router.Post("/"+plural+"/bulk-reject", adminOnly, h.BulkReject)
}

func moderationError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Item not found",
		})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Forbidden",
		})
	case errors.Is(err, services.ErrInvalidTransition):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: fallback,
		})
	}
}
