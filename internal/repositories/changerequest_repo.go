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

const changeRequestColumns = `id, entity_kind, action, old_data, new_data, status, created_by, reviewed_by, created_at, reviewed_at`

// ChangeRequestRepo is the ledger of proposed mutations. Rows are only ever
// inserted as pending and flipped to a terminal status once; domain fields
// are immutable after insert.
type ChangeRequestRepo struct {
	pool *pgxpool.Pool
}

func NewChangeRequestRepo(pool *pgxpool.Pool) *ChangeRequestRepo {
	return &ChangeRequestRepo{pool: pool}
}

func scanChangeRequest(row pgx.Row) (*models.ChangeRequest, error) {
	var cr models.ChangeRequest
	err := row.Scan(&cr.ID, &cr.EntityKind, &cr.Action, &cr.OldData, &cr.NewData,
		&cr.Status, &cr.CreatedBy, &cr.ReviewedBy, &cr.CreatedAt, &cr.ReviewedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrRequestNotFound
		}
		return nil, err
	}
	return &cr, nil
}

func (r *ChangeRequestRepo) Create(ctx context.Context, cr *models.ChangeRequest) error {
	q := db.QuerierOr(ctx, r.pool)
	return q.QueryRow(ctx, `
		INSERT INTO change_requests (entity_kind, action, old_data, new_data, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, cr.EntityKind, cr.Action, cr.OldData, cr.NewData, cr.Status, cr.CreatedBy).Scan(&cr.ID, &cr.CreatedAt)
}

func (r *ChangeRequestRepo) GetByID(ctx context.Context, id int) (*models.ChangeRequest, error) {
	q := db.QuerierOr(ctx, r.pool)
	return scanChangeRequest(q.QueryRow(ctx, `SELECT `+changeRequestColumns+` FROM change_requests WHERE id = $1`, id))
}

// GetForUpdate locks the request row so two checkers cannot resolve the same
// request concurrently.
func (r *ChangeRequestRepo) GetForUpdate(ctx context.Context, id int) (*models.ChangeRequest, error) {
	q := db.QuerierOr(ctx, r.pool)
	return scanChangeRequest(q.QueryRow(ctx, `SELECT `+changeRequestColumns+` FROM change_requests WHERE id = $1 FOR UPDATE`, id))
}

// MarkResolved flips a pending request to a terminal status and stamps the
// reviewer. The WHERE clause enforces the pending precondition even if the
// caller raced.
func (r *ChangeRequestRepo) MarkResolved(ctx context.Context, id int, status string, reviewedBy int, reviewedAt time.Time) error {
	q := db.QuerierOr(ctx, r.pool)
	tag, err := q.Exec(ctx, `
		UPDATE change_requests
		SET status = $1, reviewed_by = $2, reviewed_at = $3
		WHERE id = $4 AND status = $5
	`, status, reviewedBy, reviewedAt, id, models.StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotPending
	}
	return nil
}

func (r *ChangeRequestRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.ChangeRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	q := db.QuerierOr(ctx, r.pool)
	rows, err := q.Query(ctx, `
		SELECT `+changeRequestColumns+`
		FROM change_requests
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.ChangeRequest
	for rows.Next() {
		var cr models.ChangeRequest
		if err := rows.Scan(&cr.ID, &cr.EntityKind, &cr.Action, &cr.OldData, &cr.NewData,
			&cr.Status, &cr.CreatedBy, &cr.ReviewedBy, &cr.CreatedAt, &cr.ReviewedAt); err != nil {
			return nil, err
		}
		requests = append(requests, cr)
	}
	return requests, rows.Err()
}
