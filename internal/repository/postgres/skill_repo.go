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

// SkillRepo implements SkillRepository using PostgreSQL.
type SkillRepo struct{ db *DB }

// NewSkillRepo constructs a skill repository.
func NewSkillRepo(db *DB) *SkillRepo { return &SkillRepo{db: db} }

// List returns one page of skills and the predicate-wide total.
func (r *SkillRepo) List(ctx context.Context, q repository.ListQuery) ([]model.Skill, int, error) {
	const countQ = `
SELECT count(*) FROM skills
WHERE ($1 = '' OR name ILIKE '%'||$1||'%')
  AND ($2 = '' OR category = $2)
  AND (NOT $3 OR is_active)`
	var total int
	if err := r.db.Pool.QueryRow(ctx, countQ, q.Search, q.Filter, q.ActiveOnly).Scan(&total); err != nil {
		return nil, 0, err
	}

	const pageQ = `
SELECT id, name, category, level, years, is_active, created_at, updated_at
FROM skills
WHERE ($1 = '' OR name ILIKE '%'||$1||'%')
  AND ($2 = '' OR category = $2)
  AND (NOT $3 OR is_active)
ORDER BY category, level DESC, name
LIMIT $4 OFFSET $5`
	rows, err := r.db.Pool.Query(ctx, pageQ, q.Search, q.Filter, q.ActiveOnly, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Skill{}
	for rows.Next() {
		var s model.Skill
		if err = rows.Scan(&s.ID, &s.Name, &s.Category, &s.Level, &s.Years, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// Insert stores a new skill.
func (r *SkillRepo) Insert(ctx context.Context, s *model.Skill) error {
	const q = `
INSERT INTO skills (name, category, level, years, is_active)
VALUES ($1,$2,$3,$4,$5)
RETURNING id, created_at, updated_at`
	return r.db.Pool.QueryRow(ctx, q, s.Name, s.Category, s.Level, s.Years, s.IsActive).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// Update rewrites the full payload by id.
func (r *SkillRepo) Update(ctx context.Context, s *model.Skill) error {
	const q = `
UPDATE skills
SET name=$2, category=$3, level=$4, years=$5, is_active=$6, updated_at=now()
WHERE id=$1
RETURNING created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q, s.ID, s.Name, s.Category, s.Level, s.Years, s.IsActive).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	return err
}

// SetActive flips the visibility flag only.
func (r *SkillRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Skill, error) {
	const q = `
UPDATE skills SET is_active=$2, updated_at=now()
WHERE id=$1
RETURNING id, name, category, level, years, is_active, created_at, updated_at`
	var s model.Skill
	err := r.db.Pool.QueryRow(ctx, q, id, active).
		Scan(&s.ID, &s.Name, &s.Category, &s.Level, &s.Years, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes a skill by id.
func (r *SkillRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM skills WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
