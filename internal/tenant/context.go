package tenant

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Actor is the verified caller, as carried by JWT claims. MarketplaceID
// is nil for the super admin and for identities that have not been
// assigned a role yet.
type Actor struct {
	ID            uuid.UUID
	Email         string
	Role          string
	MarketplaceID *uuid.UUID
}

var errInvalidToken = errors.New("invalid token in context")

// FromCtx extracts the verified caller from JWT claims in the Fiber
// context. It fails only when the JWT middleware did not run or the
// token is malformed.
func FromCtx(c *fiber.Ctx) (Actor, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return Actor{}, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, errInvalidToken
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return Actor{}, errInvalidToken
	}

	actor := Actor{ID: id}
	actor.Email, _ = claims["email"].(string)
	actor.Role, _ = claims["role"].(string)
	if raw, ok := claims["marketplace_id"].(string); ok && raw != "" {
		if mpID, err := uuid.Parse(raw); err == nil {
			actor.MarketplaceID = &mpID
		}
	}
	return actor, nil
}

// GetUserID extracts just the caller's UUID from JWT claims.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	actor, err := FromCtx(c)
	if err != nil {
		return uuid.Nil, err
	}
	return actor.ID, nil
}

// GetRole extracts the caller's role claim, or "" when unassigned.
func GetRole(c *fiber.Ctx) string {
	actor, err := FromCtx(c)
	if err != nil {
		return ""
	}
	return actor.Role
}
