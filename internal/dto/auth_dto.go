package dto

import "github.com/google/uuid"

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name,omitempty"`
	Role          string     `json:"role,omitempty"`
	MarketplaceID *uuid.UUID `json:"marketplaceId,omitempty"`
}

// AssignRoleResponse carries the resolved claims plus a fresh token
// pair so the client does not have to wait for claim propagation.
type AssignRoleResponse struct {
	Role          string     `json:"role"`
	MarketplaceID *uuid.UUID `json:"marketplaceId,omitempty"`
	AccessToken   string     `json:"access_token"`
	RefreshToken  string     `json:"refresh_token"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	OK        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
