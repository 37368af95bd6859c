package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/kamensky/folio/internal/convert"
	"github.com/kamensky/folio/internal/errs"
	"github.com/kamensky/folio/internal/model"
	"github.com/kamensky/folio/internal/repository"
)

// ExperienceRepo implements ExperienceRepository using PostgreSQL. The
// employment period is persisted as the half-open "[start,end)" interval;
// rows are mapped to/from the display period on the way through.
type ExperienceRepo struct{ db *DB }

// NewExperienceRepo constructs an experience repository.
func NewExperienceRepo(db *DB) *ExperienceRepo { return &ExperienceRepo{db: db} }

// List returns one page of experiences and the predicate-wide total.
func (r *ExperienceRepo) List(ctx context.Context, q repository.ListQuery) ([]model.Experience, int, error) {
	const countQ = `
SELECT count(*) FROM experiences
WHERE ($1 = '' OR title ILIKE '%'||$1||'%' OR company ILIKE '%'||$1||'%')
  AND ($2 = '' OR emp_type = $2)
  AND (NOT $3 OR is_active)`
	var total int
	if err := r.db.Pool.QueryRow(ctx, countQ, q.Search, q.Filter, q.ActiveOnly).Scan(&total); err != nil {
		return nil, 0, err
	}

	const pageQ = `
SELECT id, title, company, period, description, emp_type, is_active, created_at, updated_at
FROM experiences
WHERE ($1 = '' OR title ILIKE '%'||$1||'%' OR company ILIKE '%'||$1||'%')
  AND ($2 = '' OR emp_type = $2)
  AND (NOT $3 OR is_active)
ORDER BY period DESC, id
LIMIT $4 OFFSET $5`
	rows, err := r.db.Pool.Query(ctx, pageQ, q.Search, q.Filter, q.ActiveOnly, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Experience{}
	for rows.Next() {
		var e model.Experience
		var period, empType string
		if err = rows.Scan(&e.ID, &e.Title, &e.Company, &period, &e.Description, &empType, &e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		e.Period = convert.RangeToPeriod(period)
		e.Type = model.ExperienceType(empType)
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// Insert stores a new experience.
func (r *ExperienceRepo) Insert(ctx context.Context, e *model.Experience) error {
	const q = `
INSERT INTO experiences (title, company, period, description, emp_type, is_active)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id, created_at, updated_at`
	return r.db.Pool.QueryRow(ctx, q,
		e.Title, e.Company, convert.PeriodToRange(e.Period), e.Description, string(e.Type), e.IsActive).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Update rewrites the full payload by id.
func (r *ExperienceRepo) Update(ctx context.Context, e *model.Experience) error {
	const q = `
UPDATE experiences
SET title=$2, company=$3, period=$4, description=$5, emp_type=$6, is_active=$7, updated_at=now()
WHERE id=$1
RETURNING created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q,
		e.ID, e.Title, e.Company, convert.PeriodToRange(e.Period), e.Description, string(e.Type), e.IsActive).
		Scan(&e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	return err
}

// SetActive flips the visibility flag only.
func (r *ExperienceRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Experience, error) {
	const q = `
UPDATE experiences SET is_active=$2, updated_at=now()
WHERE id=$1
RETURNING id, title, company, period, description, emp_type, is_active, created_at, updated_at`
	var e model.Experience
	var period, empType string
	err := r.db.Pool.QueryRow(ctx, q, id, active).
		Scan(&e.ID, &e.Title, &e.Company, &period, &e.Description, &empType, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Period = convert.RangeToPeriod(period)
	e.Type = model.ExperienceType(empType)
	return &e, nil
}

// Delete removes an experience by id.
func (r *ExperienceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM experiences WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
