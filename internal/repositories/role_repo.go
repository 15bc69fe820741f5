package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/admin-portal/backend/internal/db"
	"github.com/admin-portal/backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoleRepo struct {
	pool *pgxpool.Pool
}

func NewRoleRepo(pool *pgxpool.Pool) *RoleRepo {
	return &RoleRepo{pool: pool}
}

func scanRole(row pgx.Row) (*models.Role, error) {
	var r models.Role
	err := row.Scan(&r.ID, &r.Name, &r.ActiveStatus, &r.Locked, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrEntityNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (r *RoleRepo) GetByID(ctx context.Context, id int) (*models.Role, error) {
	q := db.QuerierOr(ctx, r.pool)
	role, err := scanRole(q.QueryRow(ctx, `
		SELECT id, name, active_status, locked, created_at, updated_at FROM roles WHERE id = $1
	`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadPermissions(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// GetForUpdate locks the role's row for the rest of the transaction.
func (r *RoleRepo) GetForUpdate(ctx context.Context, id int) (*models.Role, error) {
	q := db.QuerierOr(ctx, r.pool)
	role, err := scanRole(q.QueryRow(ctx, `
		SELECT id, name, active_status, locked, created_at, updated_at FROM roles WHERE id = $1 FOR UPDATE
	`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadPermissions(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (r *RoleRepo) loadPermissions(ctx context.Context, role *models.Role) error {
	q := db.QuerierOr(ctx, r.pool)
	rows, err := q.Query(ctx, `
		SELECT p.id, p.name
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.id
	`, role.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return err
		}
		role.Permissions = append(role.Permissions, p)
	}
	return rows.Err()
}

func (r *RoleRepo) Create(ctx context.Context, role *models.Role) error {
	q := db.QuerierOr(ctx, r.pool)
	err := q.QueryRow(ctx, `
		INSERT INTO roles (name, active_status, locked)
		VALUES ($1, $2, FALSE)
		RETURNING id, created_at
	`, role.Name, role.ActiveStatus).Scan(&role.ID, &role.CreatedAt)
	if err != nil {
		return err
	}
	return r.ReplacePermissions(ctx, role.ID, role.PermissionIDs())
}

func (r *RoleRepo) Update(ctx context.Context, role *models.Role) error {
	q := db.QuerierOr(ctx, r.pool)
	now := time.Now()
	tag, err := q.Exec(ctx, `
		UPDATE roles SET name = $1, active_status = $2, locked = $3, updated_at = $4 WHERE id = $5
	`, role.Name, role.ActiveStatus, role.Locked, now, role.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrEntityNotFound
	}
	role.UpdatedAt = &now
	return r.ReplacePermissions(ctx, role.ID, role.PermissionIDs())
}

func (r *RoleRepo) Delete(ctx context.Context, id int) error {
	q := db.QuerierOr(ctx, r.pool)
	if _, err := q.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
		return err
	}
	tag, err := q.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrEntityNotFound
	}
	return nil
}

func (r *RoleRepo) SetLocked(ctx context.Context, id int, locked bool) error {
	q := db.QuerierOr(ctx, r.pool)
	tag, err := q.Exec(ctx, `UPDATE roles SET locked = $1 WHERE id = $2`, locked, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrEntityNotFound
	}
	return nil
}

func (r *RoleRepo) SetActiveStatus(ctx context.Context, id int, status string) error {
	q := db.QuerierOr(ctx, r.pool)
	now := time.Now()
	tag, err := q.Exec(ctx, `UPDATE roles SET active_status = $1, updated_at = $2 WHERE id = $3`, status, now, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrEntityNotFound
	}
	return nil
}

// ReplacePermissions rewrites the role's permission set in place.
func (r *RoleRepo) ReplacePermissions(ctx context.Context, roleID int, permissionIDs []int) error {
	q := db.QuerierOr(ctx, r.pool)
	if _, err := q.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return err
	}
	for _, pid := range permissionIDs {
		if _, err := q.Exec(ctx, `
			INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)
		`, roleID, pid); err != nil {
			return err
		}
	}
	return nil
}

func (r *RoleRepo) List(ctx context.Context, limit, offset int) ([]models.Role, error) {
	if limit <= 0 {
		limit = 50
	}
	q := db.QuerierOr(ctx, r.pool)
	rows, err := q.Query(ctx, `
		SELECT id, name, active_status, locked, created_at, updated_at
		FROM roles ORDER BY id LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.ActiveStatus, &role.Locked, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range roles {
		if err := r.loadPermissions(ctx, &roles[i]); err != nil {
			return nil, err
		}
	}
	return roles, nil
}
