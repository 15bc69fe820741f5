package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/admin-portal/backend/internal/auth"
	"github.com/admin-portal/backend/internal/events"
	"github.com/admin-portal/backend/internal/models"
	"go.uber.org/zap"
)

// ApprovalService is the checker side: it resolves pending change requests,
// materializing the encoded mutation on approve or releasing the lock on
// reject. Each resolution is one transaction; a failure anywhere in the
// branch leaves the request pending and the entity untouched.
type ApprovalService struct {
	users     UserStore
	roles     RoleStore
	perms     PermissionStore
	requests  ChangeRequestStore
	audit     AuditStore
	tx        TxRunner
	publisher events.Publisher
	log       *zap.Logger
}

func NewApprovalService(
	users UserStore,
	roles RoleStore,
	perms PermissionStore,
	requests ChangeRequestStore,
	audit AuditStore,
	tx TxRunner,
	publisher events.Publisher,
	log *zap.Logger,
) *ApprovalService {
	return &ApprovalService{
		users:     users,
		roles:     roles,
		perms:     perms,
		requests:  requests,
		audit:     audit,
		tx:        tx,
		publisher: publisher,
		log:       log,
	}
}

// Approve applies the request's encoded mutation and marks it approved.
func (s *ApprovalService) Approve(ctx context.Context, actorID, requestID int) (*models.ChangeRequest, error) {
	return s.resolve(ctx, actorID, requestID, models.StatusApproved)
}

// Reject releases the target's lock (when one is held) and marks the request
// rejected. Domain fields are never touched.
func (s *ApprovalService) Reject(ctx context.Context, actorID, requestID int) (*models.ChangeRequest, error) {
	return s.resolve(ctx, actorID, requestID, models.StatusRejected)
}

func (s *ApprovalService) resolve(ctx context.Context, actorID, requestID int, decision string) (*models.ChangeRequest, error) {
	if actorID <= 0 {
		return nil, models.ErrActorRequired
	}

	var resolved *models.ChangeRequest
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		cr, err := s.requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if !cr.Pending() {
			return models.ErrNotPending
		}
		if !models.IsValidTransition(cr.Status, decision) {
			return models.ErrNotPending
		}

		switch decision {
		case models.StatusApproved:
			if err := s.apply(ctx, cr); err != nil {
				return err
			}
		case models.StatusRejected:
			if err := s.release(ctx, cr); err != nil {
				return err
			}
		}

		now := time.Now()
		if err := s.requests.MarkResolved(ctx, cr.ID, decision, actorID, now); err != nil {
			return err
		}
		cr.Status = decision
		cr.ReviewedBy = &actorID
		cr.ReviewedAt = &now
		resolved = cr
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterResolve(ctx, resolved)
	return resolved, nil
}

// apply materializes an approved request into the entity store.
func (s *ApprovalService) apply(ctx context.Context, cr *models.ChangeRequest) error {
	switch cr.EntityKind {
	case models.KindUser:
		return s.applyUser(ctx, cr)
	case models.KindRole:
		return s.applyRole(ctx, cr)
	default:
		return fmt.Errorf("%w: unknown entity kind %q", models.ErrMalformedPayload, cr.EntityKind)
	}
}

func (s *ApprovalService) applyUser(ctx context.Context, cr *models.ChangeRequest) error {
	switch cr.Action {
	case models.ActionCreate:
		var p models.UserPayload
		if err := models.DecodeSnapshot(cr.NewData, &p); err != nil {
			return err
		}
		if _, err := s.roles.GetByID(ctx, p.RoleID); err != nil {
			if errors.Is(err, models.ErrEntityNotFound) {
				return fmt.Errorf("%w: role %d", models.ErrReferencedEntityNotFound, p.RoleID)
			}
			return err
		}
		hash, err := auth.HashPassword(p.Password)
		if err != nil {
			return err
		}
		user := &models.User{
			Username:     p.Username,
			FirstName:    p.FirstName,
			LastName:     p.LastName,
			PasswordHash: hash,
			RoleID:       p.RoleID,
		}
		return s.users.Create(ctx, user)

	case models.ActionUpdate:
		var p models.UserPayload
		if err := models.DecodeSnapshot(cr.NewData, &p); err != nil {
			return err
		}
		user, err := s.users.GetForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		if _, err := s.roles.GetByID(ctx, p.RoleID); err != nil {
			if errors.Is(err, models.ErrEntityNotFound) {
				return fmt.Errorf("%w: role %d", models.ErrReferencedEntityNotFound, p.RoleID)
			}
			return err
		}
		user.Username = p.Username
		user.FirstName = p.FirstName
		user.LastName = p.LastName
		user.RoleID = p.RoleID
		if p.Password != "" {
			hash, err := auth.HashPassword(p.Password)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
		}
		user.Locked = false
		return s.users.Update(ctx, user)

	case models.ActionDelete:
		id, err := snapshotTargetID(cr.NewData)
		if err != nil {
			return err
		}
		return s.users.Delete(ctx, id)

	case models.ActionActivate, models.ActionDeactivate:
		id, err := snapshotTargetID(cr.NewData)
		if err != nil {
			return err
		}
		status := models.ActiveStatusActive
		if cr.Action == models.ActionDeactivate {
			status = models.ActiveStatusInactive
		}
		if err := s.users.SetActiveStatus(ctx, id, status); err != nil {
			return err
		}
		return s.users.SetLocked(ctx, id, false)

	default:
		return fmt.Errorf("%w: unknown action %q", models.ErrMalformedPayload, cr.Action)
	}
}

func (s *ApprovalService) applyRole(ctx context.Context, cr *models.ChangeRequest) error {
	switch cr.Action {
	case models.ActionCreate:
		var p models.RolePayload
		if err := models.DecodeSnapshot(cr.NewData, &p); err != nil {
			return err
		}
		perms, err := s.perms.GetByIDs(ctx, p.PermissionIDs)
		if err != nil {
			return err
		}
		role := &models.Role{Name: p.Name, Permissions: perms}
		return s.roles.Create(ctx, role)

	case models.ActionUpdate:
		var p models.RolePayload
		if err := models.DecodeSnapshot(cr.NewData, &p); err != nil {
			return err
		}
		role, err := s.roles.GetForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		perms, err := s.perms.GetByIDs(ctx, p.PermissionIDs)
		if err != nil {
			return err
		}
		role.Name = p.Name
		role.Permissions = perms
		role.Locked = false
		return s.roles.Update(ctx, role)

	case models.ActionDelete:
		id, err := snapshotTargetID(cr.NewData)
		if err != nil {
			return err
		}
		return s.roles.Delete(ctx, id)

	case models.ActionActivate, models.ActionDeactivate:
		id, err := snapshotTargetID(cr.NewData)
		if err != nil {
			return err
		}
		status := models.ActiveStatusActive
		if cr.Action == models.ActionDeactivate {
			status = models.ActiveStatusInactive
		}
		if err := s.roles.SetActiveStatus(ctx, id, status); err != nil {
			return err
		}
		return s.roles.SetLocked(ctx, id, false)

	default:
		return fmt.Errorf("%w: unknown action %q", models.ErrMalformedPayload, cr.Action)
	}
}

// release clears the target's lock on rejection. Create requests never held a
// lock, and a target deleted out-of-band just means there is nothing left to
// unlock.
func (s *ApprovalService) release(ctx context.Context, cr *models.ChangeRequest) error {
	if !cr.LocksTarget() {
		return nil
	}
	id, err := snapshotTargetID(cr.NewData)
	if err != nil {
		return err
	}

	var unlockErr error
	switch cr.EntityKind {
	case models.KindUser:
		unlockErr = s.users.SetLocked(ctx, id, false)
	case models.KindRole:
		unlockErr = s.roles.SetLocked(ctx, id, false)
	default:
		return fmt.Errorf("%w: unknown entity kind %q", models.ErrMalformedPayload, cr.EntityKind)
	}
	if unlockErr != nil && !errors.Is(unlockErr, models.ErrEntityNotFound) {
		return unlockErr
	}
	return nil
}

// snapshotTargetID recovers the target entity id from a stored snapshot.
// Update payloads and full entity snapshots both carry it as "id".
func snapshotTargetID(raw []byte) (int, error) {
	var target struct {
		ID int `json:"id"`
	}
	if err := models.DecodeSnapshot(raw, &target); err != nil {
		return 0, err
	}
	if target.ID == 0 {
		return 0, fmt.Errorf("%w: snapshot has no target id", models.ErrMalformedPayload)
	}
	return target.ID, nil
}

func (s *ApprovalService) Get(ctx context.Context, id int) (*models.ChangeRequest, error) {
	return s.requests.GetByID(ctx, id)
}

func (s *ApprovalService) List(ctx context.Context, status string, limit, offset int) ([]models.ChangeRequest, error) {
	if status != "" && status != models.StatusPending && status != models.StatusApproved && status != models.StatusRejected {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	return s.requests.ListByStatus(ctx, status, limit, offset)
}

func (s *ApprovalService) afterResolve(ctx context.Context, cr *models.ChangeRequest) {
	_ = s.audit.Log(ctx, models.AuditLog{
		ActorID:    cr.ReviewedBy,
		Action:     fmt.Sprintf("change_request_%s", cr.Status),
		EntityType: "change_request",
		EntityID:   &cr.ID,
		Meta:       map[string]any{"entity_kind": cr.EntityKind, "action": cr.Action},
	})

	if err := s.publisher.Publish(ctx, events.StreamDualAuth, events.Event{
		Type: events.EventChangeRequestResolved,
		Payload: map[string]any{
			"change_request_id": cr.ID,
			"entity_kind":       cr.EntityKind,
			"action":            cr.Action,
			"status":            cr.Status,
		},
	}); err != nil {
		s.log.Warn("publish change request event", zap.Error(err))
	}
}
