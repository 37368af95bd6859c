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

// ProjectRepo implements ProjectRepository using PostgreSQL.
type ProjectRepo struct{ db *DB }

// NewProjectRepo constructs a project repository.
func NewProjectRepo(db *DB) *ProjectRepo { return &ProjectRepo{db: db} }

// List returns one page of projects and the total matching the same predicate.
// The count query shares the WHERE clause with the page query, so total is
// independent of limit/offset.
func (r *ProjectRepo) List(ctx context.Context, q repository.ListQuery) ([]model.Project, int, error) {
	const countQ = `
SELECT count(*) FROM projects
WHERE ($1 = '' OR name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%')
  AND (NOT $2 OR is_active)`
	var total int
	if err := r.db.Pool.QueryRow(ctx, countQ, q.Search, q.ActiveOnly).Scan(&total); err != nil {
		return nil, 0, err
	}

	const pageQ = `
SELECT id, name, description, tags, images, is_active, created_at, updated_at
FROM projects
WHERE ($1 = '' OR name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%')
  AND (NOT $2 OR is_active)
ORDER BY created_at DESC, id
LIMIT $3 OFFSET $4`
	rows, err := r.db.Pool.Query(ctx, pageQ, q.Search, q.ActiveOnly, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err = rows.Scan(&p.ID, &p.Name, &p.Description, &p.Tags, &p.Images, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// Insert stores a new project; id and timestamps come back from the database.
func (r *ProjectRepo) Insert(ctx context.Context, p *model.Project) error {
	const q = `
INSERT INTO projects (name, description, tags, images, is_active)
VALUES ($1,$2,$3,$4,$5)
RETURNING id, created_at, updated_at`
	return r.db.Pool.QueryRow(ctx, q, p.Name, p.Description, p.Tags, p.Images, p.IsActive).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Update rewrites the full payload by id.
func (r *ProjectRepo) Update(ctx context.Context, p *model.Project) error {
	const q = `
UPDATE projects
SET name=$2, description=$3, tags=$4, images=$5, is_active=$6, updated_at=now()
WHERE id=$1
RETURNING created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q, p.ID, p.Name, p.Description, p.Tags, p.Images, p.IsActive).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	return err
}

// SetActive flips the visibility flag only.
func (r *ProjectRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Project, error) {
	const q = `
UPDATE projects SET is_active=$2, updated_at=now()
WHERE id=$1
RETURNING id, name, description, tags, images, is_active, created_at, updated_at`
	var p model.Project
	err := r.db.Pool.QueryRow(ctx, q, id, active).
		Scan(&p.ID, &p.Name, &p.Description, &p.Tags, &p.Images, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a project by id.
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM projects WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
