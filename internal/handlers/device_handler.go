package handlers

import (
	"strings"

	"github.com/circlebuy/circlebuy-backend/internal/dto"
	"github.com/circlebuy/circlebuy-backend/internal/services"
	"github.com/circlebuy/circlebuy-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type DeviceHandler struct {
	notificationService *services.NotificationService
}

func NewDeviceHandler(notificationService *services.NotificationService) *DeviceHandler {
	return &DeviceHandler{notificationService: notificationService}
}

func (h *DeviceHandler) Register(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.RegisterDeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" || (req.Platform != "android" && req.Platform != "ios") {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "token and platform (android|ios) are required",
		})
	}

	if err := h.notificationService.RegisterDevice(userID, req.Token, req.Platform); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to register device",
		})
	}

	return c.JSON(dto.MessageResponse{Message: "Device registered"})
}

func (h *DeviceHandler) Remove(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	token := strings.TrimSpace(c.Params("token"))
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "token is required",
		})
	}

	if err := h.notificationService.RemoveDevice(userID, token); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to remove device",
		})
	}

	return c.JSON(dto.MessageResponse{Message: "Device removed"})
}
