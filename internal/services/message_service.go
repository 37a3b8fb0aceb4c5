package services

import (
	"errors"
	"strings"

	"github.com/circlebuy/circlebuy-backend/internal/dto"
	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/circlebuy/circlebuy-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageService handles buyer/seller chat. Messages are immutable
// apart from the read flag.
type MessageService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewMessageService(db *gorm.DB, notifier Notifier) *MessageService {
	return &MessageService{db: db, notifier: notifier}
}

func (s *MessageService) Send(actor tenant.Actor, req *dto.SendMessageRequest) (*models.Message, error) {
	body := strings.TrimSpace(req.Message)
	if body == "" {
		return nil, errors.New("message body is required")
	}
	if req.ReceiverID == uuid.Nil {
		return nil, errors.New("receiverId is required")
	}
	if actor.MarketplaceID == nil {
		return nil, errors.New("sender is not assigned to a marketplace")
	}

	var receiver models.User
	if err := s.db.First(&receiver, "id = ?", req.ReceiverID).Error; err != nil {
		return nil, ErrNotFound
	}
	// Chat stays inside one marketplace.
	if receiver.MarketplaceID == nil || *receiver.MarketplaceID != *actor.MarketplaceID {
		return nil, ErrForbidden
	}

	msg := models.Message{
		ID:            uuid.New(),
		MarketplaceID: *actor.MarketplaceID,
		SenderID:      actor.ID,
		ReceiverID:    req.ReceiverID,
		ProductID:     req.ProductID,
		Body:          body,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyUser(req.ReceiverID, "New message", body, map[string]string{
			"type": "message",
			"id":   msg.ID.String(),
		})
	}
	return &msg, nil
}

// List returns the caller's messages, newest first. With chatWith set
// it narrows to the conversation between the two users, both
// directions.
func (s *MessageService) List(callerID uuid.UUID, chatWith *uuid.UUID, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	query := s.db.Model(&models.Message{})
	if chatWith != nil {
		query = query.Where(
			"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			callerID, *chatWith, *chatWith, callerID,
		)
	} else {
		query = query.Where("sender_id = ? OR receiver_id = ?", callerID, callerID)
	}
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&messages).Error
	return messages, err
}

// MarkRead flips the read flag; only the receiver may do so.
func (s *MessageService) MarkRead(callerID uuid.UUID, id uuid.UUID) error {
	var msg models.Message
	if err := s.db.First(&msg, "id = ?", id).Error; err != nil {
		return ErrNotFound
	}
	if msg.ReceiverID != callerID {
		return ErrForbidden
	}
	if msg.IsRead {
		return nil
	}
	return s.db.Model(&msg).Update("is_read", true).Error
}
