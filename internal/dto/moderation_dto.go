package dto

import "github.com/google/uuid"

// ReasonRequest is the body of reject / request-changes calls.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

type BulkApproveRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type BulkRejectRequest struct {
	IDs    []uuid.UUID `json:"ids"`
	Reason string      `json:"reason"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreatedResponse struct {
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
}
