package services

import (
	"log/slog"

	"github.com/circlebuy/circlebuy-backend/internal/config"
	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// pushPayload is the body posted to the push gateway.
type pushPayload struct {
	Tokens   []string          `json:"tokens"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Priority string            `json:"priority"`
}

// NotificationService resolves device tokens and posts to the push
// gateway. Sends run in their own goroutine; failures are logged and
// never surfaced to the request path. With no gateway configured the
// service is a silent no-op, which keeps local development quiet.
type NotificationService struct {
	db     *gorm.DB
	client *resty.Client
}

func NewNotificationService(db *gorm.DB, cfg *config.Config) *NotificationService {
	var client *resty.Client
	if cfg.PushGatewayURL != "" {
		client = resty.New().
			SetBaseURL(cfg.PushGatewayURL).
			SetTimeout(cfg.PushTimeout).
			SetHeader("Authorization", "Bearer "+cfg.PushAPIKey).
			SetRetryCount(2)
	}
	return &NotificationService{db: db, client: client}
}

// RegisterDevice upserts a push token for the user. Tokens are unique;
// re-registering moves the token to the new user.
func (s *NotificationService) RegisterDevice(userID uuid.UUID, token, platform string) error {
	var device models.Device
	err := s.db.Where("token = ?", token).First(&device).Error
	if err == nil {
		return s.db.Model(&device).Updates(map[string]interface{}{
			"user_id":  userID,
			"platform": platform,
		}).Error
	}
	device = models.Device{
		ID:       uuid.New(),
		UserID:   userID,
		Token:    token,
		Platform: platform,
	}
	return s.db.Create(&device).Error
}

func (s *NotificationService) RemoveDevice(userID uuid.UUID, token string) error {
	return s.db.Where("user_id = ? AND token = ?", userID, token).Delete(&models.Device{}).Error
}

// NotifyUser sends to every device registered by the user.
func (s *NotificationService) NotifyUser(userID uuid.UUID, title, body string, data map[string]string) {
	if s.client == nil {
		return
	}
	go func() {
		var tokens []string
		if err := s.db.Model(&models.Device{}).Where("user_id = ?", userID).Pluck("token", &tokens).Error; err != nil {
			slog.Error("failed to load device tokens", "user_id", userID.String(), "error", err)
			return
		}
		s.send(tokens, title, body, data)
	}()
}

// NotifyMarketplaceAdmins fans out to every admin of the marketplace.
func (s *NotificationService) NotifyMarketplaceAdmins(marketplaceID uuid.UUID, title, body string, data map[string]string) {
	if s.client == nil {
		return
	}
	go func() {
		var adminIDs []uuid.UUID
		if err := s.db.Model(&models.User{}).
			Where("role = ? AND marketplace_id = ?", models.RoleAdmin, marketplaceID).
			Pluck("id", &adminIDs).Error; err != nil {
			slog.Error("failed to load marketplace admins", "marketplace_id", marketplaceID.String(), "error", err)
			return
		}
		if len(adminIDs) == 0 {
			return
		}
		var tokens []string
		if err := s.db.Model(&models.Device{}).Where("user_id IN ?", adminIDs).Pluck("token", &tokens).Error; err != nil {
			slog.Error("failed to load admin device tokens", "marketplace_id", marketplaceID.String(), "error", err)
			return
		}
		s.send(tokens, title, body, data)
	}()
}

func (s *NotificationService) send(tokens []string, title, body string, data map[string]string) {
	if len(tokens) == 0 {
		return
	}
	payload := pushPayload{
		Tokens:   tokens,
		Title:    title,
		Body:     body,
		Data:     data,
		Priority: "high",
	}
	resp, err := s.client.R().SetBody(payload).Post("/send")
	if err != nil {
		slog.Error("push send failed", "error", err, "tokens", len(tokens))
		return
	}
	if resp.IsError() {
		slog.Error("push gateway rejected send", "status", resp.StatusCode(), "tokens", len(tokens))
	}
}
