package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/kamensky/folio/internal/errs"
	"github.com/kamensky/folio/internal/model"
)

// FileRepo implements FileRepository using PostgreSQL (content stored inline).
type FileRepo struct{ db *DB }

// NewFileRepo constructs a file repository.
func NewFileRepo(db *DB) *FileRepo { return &FileRepo{db: db} }

// List returns metadata of files under prefix plus the total count.
func (r *FileRepo) List(ctx context.Context, prefix string, offset, limit int) ([]model.StoredFile, int, error) {
	const countQ = `SELECT count(*) FROM files WHERE path LIKE $1 || '%'`
	var total int
	if err := r.db.Pool.QueryRow(ctx, countQ, prefix).Scan(&total); err != nil {
		return nil, 0, err
	}

	const pageQ = `
SELECT path, size, content_type, created_at
FROM files
WHERE path LIKE $1 || '%'
ORDER BY path
LIMIT $2 OFFSET $3`
	rows, err := r.db.Pool.Query(ctx, pageQ, prefix, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.StoredFile{}
	for rows.Next() {
		var f model.StoredFile
		if err = rows.Scan(&f.Path, &f.Size, &f.ContentType, &f.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, f)
	}
	return out, total, rows.Err()
}

// Put upserts file content and metadata by path.
func (r *FileRepo) Put(ctx context.Context, f *model.StoredFile, content []byte) error {
	const q = `
INSERT INTO files (path, size, content_type, content)
VALUES ($1,$2,$3,$4)
ON CONFLICT (path) DO UPDATE SET size=$2, content_type=$3, content=$4
RETURNING created_at`
	f.Size = int64(len(content))
	return r.db.Pool.QueryRow(ctx, q, f.Path, f.Size, f.ContentType, content).Scan(&f.CreatedAt)
}

// Content returns metadata and raw content by path.
func (r *FileRepo) Content(ctx context.Context, path string) (*model.StoredFile, []byte, error) {
	const q = `SELECT path, size, content_type, created_at, content FROM files WHERE path=$1`
	var f model.StoredFile
	var content []byte
	err := r.db.Pool.QueryRow(ctx, q, path).Scan(&f.Path, &f.Size, &f.ContentType, &f.CreatedAt, &content)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return &f, content, nil
}

// Delete removes the file by path.
func (r *FileRepo) Delete(ctx context.Context, path string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM files WHERE path=$1`, path)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
