package services

import "errors"

// Component-level failures, mapped to HTTP categories at the handlers.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("insufficient role for this operation")
	ErrUnauthorizedDomain = errors.New("email domain is not authorized for any marketplace")
	ErrAssignmentFailed   = errors.New("failed to persist role assignment")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrUserBlocked        = errors.New("account is blocked")
)
