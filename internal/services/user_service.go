package services

import (
	"context"
	"fmt"

	"github.com/admin-portal/backend/internal/events"
	"github.com/admin-portal/backend/internal/models"
	"go.uber.org/zap"
)

// UserService is the maker side for user mutations: every operation either
// creates a pending change request or fails a guard. Nothing here writes a
// user's domain fields; that happens only when a checker approves.
type UserService struct {
	users     UserStore
	roles     RoleStore
	requests  ChangeRequestStore
	audit     AuditStore
	guard     *Guard
	tx        TxRunner
	publisher events.Publisher
	log       *zap.Logger
}

func NewUserService(
	users UserStore,
	roles RoleStore,
	requests ChangeRequestStore,
	audit AuditStore,
	tx TxRunner,
	publisher events.Publisher,
	log *zap.Logger,
) *UserService {
	return &UserService{
		users:     users,
		roles:     roles,
		requests:  requests,
		audit:     audit,
		guard:     NewGuard(users, roles),
		tx:        tx,
		publisher: publisher,
		log:       log,
	}
}

// Guard exposes the precondition checks for callers that only want to probe
// (e.g. UIs greying out actions) without submitting anything.
func (s *UserService) Guard() *Guard {
	return s.guard
}

// RequestCreate proposes a new user. No lock is taken: there is no existing
// target to lock.
func (s *UserService) RequestCreate(ctx context.Context, actorID int, p models.UserPayload) (*models.ChangeRequest, error) {
	if actorID <= 0 {
		return nil, models.ErrActorRequired
	}

	p.ID = 0
	newData, err := models.EncodeSnapshot(p)
	if err != nil {
		return nil, err
	}

	cr := &models.ChangeRequest{
		EntityKind: models.KindUser,
		Action:     models.ActionCreate,
		NewData:    newData,
		Status:     models.StatusPending,
		CreatedBy:  actorID,
	}
	if err := s.requests.Create(ctx, cr); err != nil {
		return nil, fmt.Errorf("create user request: %w", err)
	}

	s.afterSubmit(ctx, cr, nil)
	return cr, nil
}

// RequestUpdate proposes changed fields for an existing user. The target is
// locked and the pending request recorded in one transaction, so either both
// happen or neither does.
func (s *UserService) RequestUpdate(ctx context.Context, actorID, userID int, p models.UserPayload) (*models.ChangeRequest, error) {
	if actorID <= 0 {
		return nil, models.ErrActorRequired
	}

	var cr *models.ChangeRequest
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		user, err := s.users.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if err := lockPrecondition(user.Locked); err != nil {
			return err
		}
		if err := s.users.SetLocked(ctx, userID, true); err != nil {
			return err
		}

		oldData, err := models.EncodeSnapshot(user)
		if err != nil {
			return err
		}
		p.ID = userID
		newData, err := models.EncodeSnapshot(p)
		if err != nil {
			return err
		}

		cr = &models.ChangeRequest{
			EntityKind: models.KindUser,
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

	s.afterSubmit(ctx, cr, &userID)
	return cr, nil
}

// RequestDelete proposes removal of a user.
func (s *UserService) RequestDelete(ctx context.Context, actorID, userID int) (*models.ChangeRequest, error) {
	return s.requestSnapshotAction(ctx, actorID, userID, models.ActionDelete)
}

// RequestActivate proposes flipping a user to active.
func (s *UserService) RequestActivate(ctx context.Context, actorID, userID int) (*models.ChangeRequest, error) {
	return s.requestSnapshotAction(ctx, actorID, userID, models.ActionActivate)
}

// RequestDeactivate proposes flipping a user to inactive.
func (s *UserService) RequestDeactivate(ctx context.Context, actorID, userID int) (*models.ChangeRequest, error) {
	return s.requestSnapshotAction(ctx, actorID, userID, models.ActionDeactivate)
}

// requestSnapshotAction covers delete/activate/deactivate: the pending
// request carries a snapshot of the current entity, from which the checker
// side recovers the target id.
func (s *UserService) requestSnapshotAction(ctx context.Context, actorID, userID int, action string) (*models.ChangeRequest, error) {
	if actorID <= 0 {
		return nil, models.ErrActorRequired
	}

	var cr *models.ChangeRequest
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		user, err := s.users.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if err := lockPrecondition(user.Locked); err != nil {
			return err
		}
		if action == models.ActionActivate || action == models.ActionDeactivate {
			if err := statusPrecondition(user.ActiveStatus, action); err != nil {
				return err
			}
		}
		if err := s.users.SetLocked(ctx, userID, true); err != nil {
			return err
		}

		newData, err := models.EncodeSnapshot(user)
		if err != nil {
			return err
		}

		cr = &models.ChangeRequest{
			EntityKind: models.KindUser,
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

	s.afterSubmit(ctx, cr, &userID)
	return cr, nil
}

// Search lists users whose username or role name matches the term.
func (s *UserService) Search(ctx context.Context, term string, limit, offset int) ([]models.UserWithRole, error) {
	return s.users.Search(ctx, term, limit, offset)
}

func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) afterSubmit(ctx context.Context, cr *models.ChangeRequest, targetID *int) {
	actor := cr.CreatedBy
	_ = s.audit.Log(ctx, models.AuditLog{
		ActorID:    &actor,
		Action:     fmt.Sprintf("user_%s_requested", cr.Action),
		EntityType: models.KindUser,
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
