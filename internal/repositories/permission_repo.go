package repositories

import (
	"context"

	"github.com/admin-portal/backend/internal/db"
	"github.com/admin-portal/backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PermissionRepo struct {
	pool *pgxpool.Pool
}

func NewPermissionRepo(pool *pgxpool.Pool) *PermissionRepo {
	return &PermissionRepo{pool: pool}
}

func (r *PermissionRepo) List(ctx context.Context) ([]models.Permission, error) {
	q := db.QuerierOr(ctx, r.pool)
	rows, err := q.Query(ctx, `SELECT id, name FROM permissions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []models.Permission
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// GetByIDs resolves permission ids to records. A dangling id surfaces as
// ErrReferencedEntityNotFound so approval can abort without partial work.
func (r *PermissionRepo) GetByIDs(ctx context.Context, ids []int) ([]models.Permission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := db.QuerierOr(ctx, r.pool)
	rows, err := q.Query(ctx, `SELECT id, name FROM permissions WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[int]models.Permission, len(ids))
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		found[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	perms := make([]models.Permission, 0, len(ids))
	for _, id := range ids {
		p, ok := found[id]
		if !ok {
			return nil, models.ErrReferencedEntityNotFound
		}
		perms = append(perms, p)
	}
	return perms, nil
}
