package services

import (
	"errors"
	"strings"
	"time"

	"github.com/circlebuy/circlebuy-backend/internal/config"
	"github.com/circlebuy/circlebuy-backend/internal/models"
	"github.com/circlebuy/circlebuy-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resource describes one moderatable listing table to the shared state
// machine. Every such table carries id, owner_id, marketplace_id and
// the models.ModeratedFields columns.
type Resource struct {
	// Kind tags moderation log rows and notification payloads.
	Kind string
	// Model is a blank model pointer used to target the table.
	Model interface{}
	// TitleColumn is the content column used in notification bodies.
	TitleColumn string
	// Expires stamps expires_at on approval (lost items, requests).
	Expires bool
}

// Notifier fans out push notifications. Implementations must not
// block; delivery failures are logged, never surfaced.
type Notifier interface {
	NotifyUser(userID uuid.UUID, title, body string, data map[string]string)
	NotifyMarketplaceAdmins(marketplaceID uuid.UUID, title, body string, data map[string]string)
}

// Firestore capped write batches at 500; keeping the same chunk size
// bounds statement parameters on bulk operations.
const bulkChunkSize = 500

// ModerationService owns status transitions for all listing kinds.
// Authorization: admins operate only on their own marketplace, the
// super admin anywhere. All transitions are written together with a
// moderation log row; notifications go out after commit.
type ModerationService struct {
	db       *gorm.DB
	notifier Notifier
	expiry   time.Duration
}

func NewModerationService(db *gorm.DB, cfg *config.Config, notifier Notifier) *ModerationService {
	return &ModerationService{db: db, notifier: notifier, expiry: cfg.ListingExpiry}
}

// moderatedRow is the projection the state machine needs from any
// listing table.
type moderatedRow struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	MarketplaceID uuid.UUID
	Status        string
	Title         string
}

func (s *ModerationService) fetch(tx *gorm.DB, res Resource, id uuid.UUID) (moderatedRow, error) {
	var row moderatedRow
	err := tx.Model(res.Model).
		Select("id, owner_id, marketplace_id, status, " + res.TitleColumn + " AS title").
		Where("id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, ErrNotFound
	}
	return row, err
}

func (s *ModerationService) authorize(actor tenant.Actor, marketplaceID uuid.UUID) error {
	switch actor.Role {
	case models.RoleSuperAdmin:
		return nil
	case models.RoleAdmin:
		if actor.MarketplaceID != nil && *actor.MarketplaceID == marketplaceID {
			return nil
		}
	}
	return ErrForbidden
}

// Approve moves pending or rejected listings to approved, stamping the
// reviewer and clearing any prior rejection reason to NULL. Approving
// an approved listing is a no-op, not an error.
func (s *ModerationService) Approve(res Resource, actor tenant.Actor, id uuid.UUID) error {
	row, err := s.fetch(s.db, res, id)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, row.MarketplaceID); err != nil {
		return err
	}

	if row.Status == models.StatusApproved {
		return nil
	}
	if row.Status != models.StatusPending && row.Status != models.StatusRejected {
		return ErrInvalidTransition
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":           models.StatusApproved,
		"rejection_reason": nil,
		"reviewed_by":      actor.ID,
		"reviewed_at":      now,
	}
	if res.Expires {
		updates["expires_at"] = now.Add(s.expiry)
	}

	if err := s.transition(res, row, actor, updates, models.StatusApproved, nil); err != nil {
		return err
	}

	s.notifyOwner(res, row, models.StatusApproved, "")
	return nil
}

// Reject moves a pending listing to rejected with a mandatory reason.
// Rejecting a rejected listing is a no-op; sold and orphaned listings
// refuse the transition.
func (s *ModerationService) Reject(res Resource, actor tenant.Actor, id uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errors.New("rejection reason is required")
	}

	row, err := s.fetch(s.db, res, id)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, row.MarketplaceID); err != nil {
		return err
	}

	if row.Status == models.StatusRejected {
		return nil
	}
	if row.Status != models.StatusPending {
		return ErrInvalidTransition
	}

	updates := map[string]interface{}{
		"status":           models.StatusRejected,
		"rejection_reason": reason,
		"reviewed_by":      actor.ID,
		"reviewed_at":      time.Now(),
	}

	if err := s.transition(res, row, actor, updates, models.StatusRejected, &reason); err != nil {
		return err
	}

	s.notifyOwner(res, row, models.StatusRejected, reason)
	return nil
}

// RequestChanges works like Reject but parks the listing in
// needs_changes until the owner resubmits.
func (s *ModerationService) RequestChanges(res Resource, actor tenant.Actor, id uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errors.New("reason is required")
	}

	row, err := s.fetch(s.db, res, id)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, row.MarketplaceID); err != nil {
		return err
	}

	if row.Status == models.StatusNeedsChanges {
		return nil
	}
	if row.Status != models.StatusPending {
		return ErrInvalidTransition
	}

	updates := map[string]interface{}{
		"status":           models.StatusNeedsChanges,
		"rejection_reason": reason,
		"reviewed_by":      actor.ID,
		"reviewed_at":      time.Now(),
	}

	if err := s.transition(res, row, actor, updates, models.StatusNeedsChanges, &reason); err != nil {
		return err
	}

	s.notifyOwner(res, row, models.StatusNeedsChanges, reason)
	return nil
}

// MarkSold is the owner-triggered terminal transition for approved
// product listings.
func (s *ModerationService) MarkSold(res Resource, callerID uuid.UUID, id uuid.UUID) error {
	row, err := s.fetch(s.db, res, id)
	if err != nil {
		return err
	}
	if row.OwnerID != callerID {
		return ErrForbidden
	}

	if row.Status == models.StatusSold {
		return nil
	}
	if row.Status != models.StatusApproved {
		return ErrInvalidTransition
	}

	updates := map[string]interface{}{"status": models.StatusSold}
	actor := tenant.Actor{ID: callerID}
	return s.transition(res, row, actor, updates, models.StatusSold, nil)
}

// Resubmit moves an owner's needs_changes listing back to pending,
// optionally updating content fields in the same write.
func (s *ModerationService) Resubmit(res Resource, callerID uuid.UUID, id uuid.UUID, contentUpdates map[string]interface{}) error {
	row, err := s.fetch(s.db, res, id)
	if err != nil {
		return err
	}
	if row.OwnerID != callerID {
		return ErrForbidden
	}

	if row.Status == models.StatusPending && len(contentUpdates) == 0 {
		return nil
	}
	if row.Status != models.StatusNeedsChanges && row.Status != models.StatusPending {
		return ErrInvalidTransition
	}

	updates := map[string]interface{}{
		"status":           models.StatusPending,
		"rejection_reason": nil,
		"reviewed_by":      nil,
		"reviewed_at":      nil,
	}
	for k, v := range contentUpdates {
		updates[k] = v
	}

	if err := s.transition(res, row, tenant.Actor{ID: callerID}, updates, models.StatusPending, nil); err != nil {
		return err
	}

	s.notifyAdmins(res, row)
	return nil
}

// BulkApprove applies Approve to every id as one transaction: the set
// either fully applies or fully rolls back. Ids are chunked to bound
// statement size; a chunk failure aborts the whole batch.
func (s *ModerationService) BulkApprove(res Resource, actor tenant.Actor, ids []uuid.UUID) error {
	return s.bulk(res, actor, ids, true, "")
}

// BulkReject is the batch form of Reject; one reason covers the set.
func (s *ModerationService) BulkReject(res Resource, actor tenant.Actor, ids []uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errors.New("rejection reason is required")
	}
	return s.bulk(res, actor, ids, false, reason)
}

func (s *ModerationService) bulk(res Resource, actor tenant.Actor, ids []uuid.UUID, approve bool, reason string) error {
	if len(ids) == 0 {
		return errors.New("ids are required")
	}

	// Deduplicate so a repeated id is not mistaken for a missing row
	// when the chunk comes back shorter than requested.
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := ids[:0:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	ids = unique

	now := time.Now()
	var notify []moderatedRow

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for start := 0; start < len(ids); start += bulkChunkSize {
			end := start + bulkChunkSize
			if end > len(ids) {
				end = len(ids)
			}
			chunk := ids[start:end]

			var rows []moderatedRow
			if err := tx.Model(res.Model).
				Select("id, owner_id, marketplace_id, status, " + res.TitleColumn + " AS title").
				Where("id IN ?", chunk).
				Find(&rows).Error; err != nil {
				return err
			}
			if len(rows) != len(chunk) {
				return ErrNotFound
			}

			target := models.StatusApproved
			if !approve {
				target = models.StatusRejected
			}

			apply := make([]uuid.UUID, 0, len(rows))
			logs := make([]models.ModerationLog, 0, len(rows))
			for _, row := range rows {
				if err := s.authorize(actor, row.MarketplaceID); err != nil {
					return err
				}
				if row.Status == target {
					continue
				}
				if approve {
					if row.Status != models.StatusPending && row.Status != models.StatusRejected {
						return ErrInvalidTransition
					}
				} else if row.Status != models.StatusPending {
					return ErrInvalidTransition
				}
				apply = append(apply, row.ID)
				logs = append(logs, s.logRow(res, row, actor, target, reasonPtr(reason)))
				notify = append(notify, row)
			}
			if len(apply) == 0 {
				continue
			}

			updates := map[string]interface{}{
				"status":      target,
				"reviewed_by": actor.ID,
				"reviewed_at": now,
			}
			if approve {
				updates["rejection_reason"] = nil
				if res.Expires {
					updates["expires_at"] = now.Add(s.expiry)
				}
			} else {
				updates["rejection_reason"] = reason
			}

			if err := tx.Model(res.Model).Where("id IN ?", apply).Updates(updates).Error; err != nil {
				return err
			}
			if err := tx.Create(&logs).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	status := models.StatusApproved
	if !approve {
		status = models.StatusRejected
	}
	for _, row := range notify {
		s.notifyOwner(res, row, status, reason)
	}
	return nil
}

// NotifySubmitted fans out the new-submission notification to the
// marketplace's admins. Called by the plugins after creating a row.
func (s *ModerationService) NotifySubmitted(res Resource, marketplaceID uuid.UUID, id uuid.UUID, title string) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyMarketplaceAdmins(marketplaceID, "New submission", title+" is pending approval", map[string]string{
		"type": "submission",
		"kind": res.Kind,
		"id":   id.String(),
	})
}

// transition applies the update and its audit row atomically.
func (s *ModerationService) transition(res Resource, row moderatedRow, actor tenant.Actor, updates map[string]interface{}, toStatus string, reason *string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(res.Model).Where("id = ?", row.ID).Updates(updates).Error; err != nil {
			return err
		}
		entry := s.logRow(res, row, actor, toStatus, reason)
		return tx.Create(&entry).Error
	})
}

func (s *ModerationService) logRow(res Resource, row moderatedRow, actor tenant.Actor, toStatus string, reason *string) models.ModerationLog {
	actorID := actor.ID
	return models.ModerationLog{
		MarketplaceID: row.MarketplaceID,
		EntityKind:    res.Kind,
		EntityID:      row.ID,
		FromStatus:    row.Status,
		ToStatus:      toStatus,
		ActorID:       &actorID,
		Reason:        reason,
	}
}

func (s *ModerationService) notifyOwner(res Resource, row moderatedRow, status, reason string) {
	if s.notifier == nil {
		return
	}

	title := "Submission updated"
	body := "Your item " + row.Title + " status: " + status
	switch status {
	case models.StatusApproved:
		title = "Item approved"
		body = row.Title + " is now live"
	case models.StatusRejected:
		title = "Item rejected"
		if reason != "" {
			body = reason
		} else {
			body = row.Title + " was rejected"
		}
	case models.StatusNeedsChanges:
		title = "Changes requested"
		if reason != "" {
			body = reason
		} else {
			body = "Please update " + row.Title
		}
	}

	s.notifier.NotifyUser(row.OwnerID, title, body, map[string]string{
		"type":   "moderation",
		"kind":   res.Kind,
		"id":     row.ID.String(),
		"status": status,
	})
}

func (s *ModerationService) notifyAdmins(res Resource, row moderatedRow) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyMarketplaceAdmins(row.MarketplaceID, "Submission updated", row.Title+" was resubmitted", map[string]string{
		"type": "submission",
		"kind": res.Kind,
		"id":   row.ID.String(),
	})
}

func reasonPtr(reason string) *string {
	if reason == "" {
		return nil
	}
	return &reason
}
