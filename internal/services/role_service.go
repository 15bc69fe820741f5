package services

import (
	"context"
	"fmt"

	"github.com/admin-portal/backend/internal/events"
	"github.com/admin-portal/backend/internal/models"
	"go.uber.org/zap"
)

// RoleService is the maker side for role mutations, mirroring UserService.
type RoleService struct {
	roles     RoleStore
	users     UserStore
	requests  ChangeRequestStore
	audit     AuditStore
	guard     *Guard
	tx        TxRunner
	publisher events.Publisher
	log       *zap.Logger
}

func NewRoleService(
	roles RoleStore,
	users UserStore,
	requests ChangeRequestStore,
	audit AuditStore,
	tx TxRunner,
	publisher events.Publisher,
	log *zap.Logger,
) *RoleService {
	return &RoleService{
		roles:     roles,
		users:     users,
		requests:  requests,
		audit:     audit,
		guard:     NewGuard(users, roles),
		tx:        tx,
		publisher: publisher,
		log:       log,
	}
}

func (s *RoleService) Guard() *Guard {
	return s.guard
}

// RequestCreate proposes a new role. Permission ids are validated only on
// approval, against the store as it is then.
func (s *RoleService) RequestCreate(ctx context.Context, actorID int, p models.RolePayload) (*models.ChangeRequest, error) {
	if actorID <= 0 {
		return nil, models.ErrActorRequired
	}

	p.ID = 0
	newData, err := models.EncodeSnapshot(p)
	if err != nil {
		return nil, err
	}

	cr := &models.ChangeRequest{
		EntityKind: models.KindRole,
		Action:     models.ActionCreate,
		NewData:    newData,
		Status:     models.StatusPending,
		CreatedBy:  actorID,
	}
	if err := s.requests.Create(ctx, cr); err != nil {
		return nil, fmt.Errorf("create role request: %w", err)
	}

	s.afterSubmit(ctx, cr, nil)
	return cr, nil
}

func (s *RoleService) RequestUpdate(ctx context.Context, actorID, roleID int, p models.RolePayload) (*models.ChangeRequest, error) {
	if actorID <= 0 {
		return nil, models.ErrActorRequired
	}

	var cr *models.ChangeRequest
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		role, err := s.roles.GetForUpdate(ctx, roleID)
		if err != nil {
			return err
		}
		if err := lockPrecondition(role.Locked); err != nil {
			return err
		}
		if err := s.roles.SetLocked(ctx, roleID, true); err != nil {
			return err
		}

		oldData, err := models.EncodeSnapshot(role)
		if err != nil {
			return err
		}
		p.ID = roleID
		newData, err := models.EncodeSnapshot(p)
		if err != nil {
			return err
		}

		cr = &models.ChangeRequest{
			EntityKind: models.KindRole,
			Action:     models.ActionUpdate,
			OldData:    oldData,
			NewData:    newData,
			Status:     models.StatusPending,
			CreatedBy:  actorID,
		}
		return s.requests.Create(ctx, cr)
	})
	if err != nil {
		return nil, err
	}

	s.afterSubmit(ctx, cr, &roleID)
	return cr, nil
}

func (s *RoleService) RequestDelete(ctx context.Context, actorID, roleID int) (*models.ChangeRequest, error) {
	return s.requestSnapshotAction(ctx, actorID, roleID, models.ActionDelete)
}

func (s *RoleService) RequestActivate(ctx context.Context, actorID, roleID int) (*models.ChangeRequest, error) {
	return s.requestSnapshotAction(ctx, actorID, roleID, models.ActionActivate)
}

func (s *RoleService) RequestDeactivate(ctx context.Context, actorID, roleID int) (*models.ChangeRequest, error) {
	return s.requestSnapshotAction(ctx, actorID, roleID, models.ActionDeactivate)
}

func (s *RoleService) requestSnapshotAction(ctx context.Context, actorID, roleID int, action string) (*models.ChangeRequest, error) {
	if actorID <= 0 {
		return nil, models.ErrActorRequired
	}

	var cr *models.ChangeRequest
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		role, err := s.roles.GetForUpdate(ctx, roleID)
		if err != nil {
			return err
		}
		if err := lockPrecondition(role.Locked); err != nil {
			return err
		}
		if action == models.ActionActivate || action == models.ActionDeactivate {
			if err := statusPrecondition(role.ActiveStatus, action); err != nil {
				return err
			}
		}
		if err := s.roles.SetLocked(ctx, roleID, true); err != nil {
			return err
		}

		newData, err := models.EncodeSnapshot(role)
		if err != nil {
			return err
		}

		cr = &models.ChangeRequest{
			EntityKind: models.KindRole,
			Action:     action,
			NewData:    newData,
			Status:     models.StatusPending,
			CreatedBy:  actorID,
		}
		return s.requests.Create(ctx, cr)
	})
	if err != nil {
		return nil, err
	}

	s.afterSubmit(ctx, cr, &roleID)
	return cr, nil
}

func (s *RoleService) List(ctx context.Context, limit, offset int) ([]models.Role, error) {
	return s.roles.List(ctx, limit, offset)
}

func (s *RoleService) Get(ctx context.Context, id int) (*models.Role, error) {
	return s.roles.GetByID(ctx, id)
}

func (s *RoleService) afterSubmit(ctx context.Context, cr *models.ChangeRequest, targetID *int) {
	actor := cr.CreatedBy
	_ = s.audit.Log(ctx, models.AuditLog{
		ActorID:    &actor,
		Action:     fmt.Sprintf("role_%s_requested", cr.Action),
		EntityType: models.KindRole,
		EntityID:   targetID,
		Meta:       map[string]any{"change_request_id": cr.ID},
	})

	if err := s.publisher.Publish(ctx, events.StreamDualAuth, events.Event{
		Type: events.EventChangeRequestCreated,
		Payload: map[string]any{
			"change_request_id": cr.ID,
			"entity_kind":       cr.EntityKind,
			"action":            cr.Action,
		},
	}); err != nil {
		s.log.Warn("publish change request event", zap.Error(err))
	}
}
