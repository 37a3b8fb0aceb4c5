package models

import (
	"time"

	"github.com/google/uuid"
)

// Moderation statuses shared by all submitted listing kinds.
const (
	StatusPending      = "pending"
	StatusApproved     = "approved"
	StatusRejected     = "rejected"
	StatusNeedsChanges = "needs_changes"
	StatusSold         = "sold"
	StatusOrphaned     = "orphaned"
)

// ModeratedFields is embedded by every moderatable listing model.
// RejectionReason is a pointer so that re-approval clears the column to
// NULL instead of overwriting it with an empty string.
type ModeratedFields struct {
	Status          string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	RejectionReason *string    `gorm:"size:500" json:"rejection_reason,omitempty"`
	ReviewedBy      *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
}

// EffectiveStatus reports the status a reader should see: approved
// listings past their expiry are orphaned. The flip is computed at
// read time; nothing is persisted.
func EffectiveStatus(status string, expiresAt *time.Time, now time.Time) string {
	if status == StatusApproved && expiresAt != nil && !expiresAt.After(now) {
		return StatusOrphaned
	}
	return status
}
