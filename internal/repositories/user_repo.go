package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/admin-portal/backend/internal/db"
	"github.com/admin-portal/backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, first_name, last_name, password_hash, role_id, active_status, locked, created_at, updated_at`

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.RoleID, &u.ActiveStatus, &u.Locked, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrEntityNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	q := db.QuerierOr(ctx, r.pool)
	return scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetForUpdate locks the user's row for the rest of the transaction, so a
// concurrent submission against the same user blocks until this one commits.
func (r *UserRepo) GetForUpdate(ctx context.Context, id int) (*models.User, error) {
	q := db.QuerierOr(ctx, r.pool)
	return scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	q := db.QuerierOr(ctx, r.pool)
	return q.QueryRow(ctx, `
		INSERT INTO users (username, first_name, last_name, password_hash, role_id, active_status, locked)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING id, created_at
	`, u.Username, u.FirstName, u.LastName, u.PasswordHash, u.RoleID, u.ActiveStatus).Scan(&u.ID, &u.CreatedAt)
}

func (r *UserRepo) Update(ctx context.Context, u *models.User) error {
	q := db.QuerierOr(ctx, r.pool)
	now := time.Now()
	tag, err := q.Exec(ctx, `
		UPDATE users
		SET username = $1, first_name = $2, last_name = $3, password_hash = $4,
		    role_id = $5, active_status = $6, locked = $7, updated_at = $8
		WHERE id = $9
	`, u.Username, u.FirstName, u.LastName, u.PasswordHash, u.RoleID, u.ActiveStatus, u.Locked, now, u.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrEntityNotFound
	}
	u.UpdatedAt = &now
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id int) error {
	q := db.QuerierOr(ctx, r.pool)
	tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrEntityNotFound
	}
	return nil
}

func (r *UserRepo) SetLocked(ctx context.Context, id int, locked bool) error {
	q := db.QuerierOr(ctx, r.pool)
	tag, err := q.Exec(ctx, `UPDATE users SET locked = $1 WHERE id = $2`, locked, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrEntityNotFound
	}
	return nil
}

func (r *UserRepo) SetActiveStatus(ctx context.Context, id int, status string) error {
	q := db.QuerierOr(ctx, r.pool)
	now := time.Now()
	tag, err := q.Exec(ctx, `UPDATE users SET active_status = $1, updated_at = $2 WHERE id = $3`, status, now, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrEntityNotFound
	}
	return nil
}

// Search matches the term against the username or the role name,
// case-insensitively, newest first.
func (r *UserRepo) Search(ctx context.Context, term string, limit, offset int) ([]models.UserWithRole, error) {
	if limit <= 0 {
		limit = 20
	}
	q := db.QuerierOr(ctx, r.pool)
	rows, err := q.Query(ctx, `
		SELECT u.id, u.username, u.first_name, u.last_name, u.password_hash,
		       u.role_id, u.active_status, u.locked, u.created_at, u.updated_at,
		       r.name
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE ($1 = '' OR u.username ILIKE '%' || $1 || '%' OR r.name ILIKE '%' || $1 || '%')
		ORDER BY u.created_at DESC
		LIMIT $2 OFFSET $3
	`, term, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	var users []models.UserWithRole
	for rows.Next() {
		var u models.UserWithRole
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.PasswordHash,
			&u.RoleID, &u.ActiveStatus, &u.Locked, &u.CreatedAt, &u.UpdatedAt, &u.RoleName); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
