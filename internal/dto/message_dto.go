package dto

import "github.com/google/uuid"

type SendMessageRequest struct {
	ReceiverID uuid.UUID  `json:"receiverId"`
	ProductID  *uuid.UUID `json:"productId,omitempty"`
	Message    string     `json:"message"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}
