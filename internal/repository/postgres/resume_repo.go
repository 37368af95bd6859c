package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/kamensky/folio/internal/errs"
	"github.com/kamensky/folio/internal/model"
	"github.com/kamensky/folio/internal/repository"
)

// ResumeRepo implements ResumeRepository using PostgreSQL. The store does
// not enforce the single-active invariant; that is the client's two-phase
// activation protocol.
type ResumeRepo struct{ db *DB }

// NewResumeRepo constructs a resume repository.
func NewResumeRepo(db *DB) *ResumeRepo { return &ResumeRepo{db: db} }

// List returns one page of resume references and the predicate-wide total.
func (r *ResumeRepo) List(ctx context.Context, q repository.ListQuery) ([]model.Resume, int, error) {
	const countQ = `
SELECT count(*) FROM resumes
WHERE ($1 = '' OR label ILIKE '%'||$1||'%')
  AND (NOT $2 OR is_active)`
	var total int
	if err := r.db.Pool.QueryRow(ctx, countQ, q.Search, q.ActiveOnly).Scan(&total); err != nil {
		return nil, 0, err
	}

	const pageQ = `
SELECT id, label, path, is_active, created_at, updated_at
FROM resumes
WHERE ($1 = '' OR label ILIKE '%'||$1||'%')
  AND (NOT $2 OR is_active)
ORDER BY created_at DESC, id
LIMIT $3 OFFSET $4`
	rows, err := r.db.Pool.Query(ctx, pageQ, q.Search, q.ActiveOnly, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Resume{}
	for rows.Next() {
		var res model.Resume
		if err = rows.Scan(&res.ID, &res.Label, &res.Path, &res.IsActive, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, res)
	}
	return out, total, rows.Err()
}

// Insert stores a new resume reference.
func (r *ResumeRepo) Insert(ctx context.Context, res *model.Resume) error {
	const q = `
INSERT INTO resumes (label, path, is_active)
VALUES ($1,$2,$3)
RETURNING id, created_at, updated_at`
	return r.db.Pool.QueryRow(ctx, q, res.Label, res.Path, res.IsActive).
		Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
}

// Update rewrites the full payload by id.
func (r *ResumeRepo) Update(ctx context.Context, res *model.Resume) error {
	const q = `
UPDATE resumes
SET label=$2, path=$3, is_active=$4, updated_at=now()
WHERE id=$1
RETURNING created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q, res.ID, res.Label, res.Path, res.IsActive).
		Scan(&res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	return err
}

// SetActive flips the visibility flag only.
func (r *ResumeRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Resume, error) {
	const q = `
UPDATE resumes SET is_active=$2, updated_at=now()
WHERE id=$1
RETURNING id, label, path, is_active, created_at, updated_at`
	var res model.Resume
	err := r.db.Pool.QueryRow(ctx, q, id, active).
		Scan(&res.ID, &res.Label, &res.Path, &res.IsActive, &res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Delete removes a resume reference by id.
func (r *ResumeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM resumes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
