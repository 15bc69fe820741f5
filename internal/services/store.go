package services

import (
	"context"
	"time"

	"github.com/admin-portal/backend/internal/models"
)

// Store interfaces consumed by the services. The pgx repositories satisfy
// them in production; tests use in-memory fakes with the same transactional
// contract (every error inside InTx rolls the unit of work back).

type UserStore interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetForUpdate(ctx context.Context, id int) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id int) error
	SetLocked(ctx context.Context, id int, locked bool) error
	SetActiveStatus(ctx context.Context, id int, status string) error
	Search(ctx context.Context, term string, limit, offset int) ([]models.UserWithRole, error)
}

type RoleStore interface {
	GetByID(ctx context.Context, id int) (*models.Role, error)
	GetForUpdate(ctx context.Context, id int) (*models.Role, error)
	Create(ctx context.Context, r *models.Role) error
	Update(ctx context.Context, r *models.Role) error
	Delete(ctx context.Context, id int) error
	SetLocked(ctx context.Context, id int, locked bool) error
	SetActiveStatus(ctx context.Context, id int, status string) error
	List(ctx context.Context, limit, offset int) ([]models.Role, error)
}

type PermissionStore interface {
	List(ctx context.Context) ([]models.Permission, error)
	GetByIDs(ctx context.Context, ids []int) ([]models.Permission, error)
}

type ChangeRequestStore interface {
	Create(ctx context.Context, cr *models.ChangeRequest) error
	GetByID(ctx context.Context, id int) (*models.ChangeRequest, error)
	GetForUpdate(ctx context.Context, id int) (*models.ChangeRequest, error)
	MarkResolved(ctx context.Context, id int, status string, reviewedBy int, reviewedAt time.Time) error
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.ChangeRequest, error)
}

type AuditStore interface {
	Log(ctx context.Context, entry models.AuditLog) error
}

// TxRunner runs a unit of work atomically: either every store call inside fn
// is persisted, or none is.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
