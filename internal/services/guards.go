package services

import (
	"context"
	"fmt"

	"github.com/admin-portal/backend/internal/models"
)

// Guard holds the lock and status preconditions run before any governed
// mutation. There is exactly one implementation of each check, parameterized
// by the closed entity-kind set; the submission paths re-evaluate the same
// predicates on rows fetched FOR UPDATE so check and lock-set are atomic.
type Guard struct {
	users UserStore
	roles RoleStore
}

func NewGuard(users UserStore, roles RoleStore) *Guard {
	return &Guard{users: users, roles: roles}
}

// entityState is the slice of an entity the guards care about.
type entityState struct {
	locked       bool
	activeStatus string
}

func (g *Guard) fetch(ctx context.Context, kind string, id int) (entityState, error) {
	switch kind {
	case models.KindUser:
		u, err := g.users.GetByID(ctx, id)
		if err != nil {
			return entityState{}, err
		}
		return entityState{locked: u.Locked, activeStatus: u.ActiveStatus}, nil
	case models.KindRole:
		r, err := g.roles.GetByID(ctx, id)
		if err != nil {
			return entityState{}, err
		}
		return entityState{locked: r.Locked, activeStatus: r.ActiveStatus}, nil
	default:
		return entityState{}, fmt.Errorf("unsupported entity kind %q", kind)
	}
}

// CheckLock fails with ErrEntityNotFound when the id is unknown and
// ErrEntityLocked when a pending change request already owns the entity.
// Read-only: the lock itself is flipped by the submission transaction.
func (g *Guard) CheckLock(ctx context.Context, kind string, id int) error {
	state, err := g.fetch(ctx, kind, id)
	if err != nil {
		return err
	}
	return lockPrecondition(state.locked)
}

// CheckStatus fails with ErrAlreadyInStatus when the intended activate or
// deactivate would be a no-op. The intended action is an explicit parameter,
// never inferred from the call site.
func (g *Guard) CheckStatus(ctx context.Context, kind string, id int, intended string) error {
	state, err := g.fetch(ctx, kind, id)
	if err != nil {
		return err
	}
	return statusPrecondition(state.activeStatus, intended)
}

func lockPrecondition(locked bool) error {
	if locked {
		return models.ErrEntityLocked
	}
	return nil
}

func statusPrecondition(current, intended string) error {
	switch intended {
	case models.ActionActivate:
		if current == models.ActiveStatusActive {
			return models.ErrAlreadyInStatus
		}
	case models.ActionDeactivate:
		if current == models.ActiveStatusInactive {
			return models.ErrAlreadyInStatus
		}
	default:
		return fmt.Errorf("status guard: unsupported action %q", intended)
	}
	return nil
}
