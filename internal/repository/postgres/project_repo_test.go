package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/kamensky/folio/internal/errs"
	"github.com/kamensky/folio/internal/model"
	"github.com/kamensky/folio/internal/repository"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestProjectRepo_List_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)

	ctx := context.Background()
	ts := time.Now().UTC()
	id1 := uuid.Must(uuid.NewV4())
	id2 := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT count\(\*\) FROM projects`).
		WithArgs("go", false).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))
	rows := pgxmock.NewRows([]string{"id", "name", "description", "tags", "images", "is_active", "created_at", "updated_at"}).
		AddRow(id1, "folio", "portfolio", []string{"go"}, []string{}, true, ts, ts).
		AddRow(id2, "gopherd", "daemon", []string{"go", "crypto"}, []string{"a.png"}, false, ts, ts)
	mock.ExpectQuery(`SELECT id, name, description, tags, images, is_active, created_at, updated_at\s+FROM projects`).
		WithArgs("go", false, 2, 0).
		WillReturnRows(rows)

	out, total, err := r.List(ctx, repository.ListQuery{Search: "go", Limit: 2, Offset: 0})
	require.NoError(t, err)
	require.Equal(t, 7, total)
	require.Len(t, out, 2)
	require.Equal(t, "folio", out[0].Name)
	require.False(t, out[1].IsActive)
}

func TestProjectRepo_List_TotalIndependentOfPage(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT count\(\*\) FROM projects`).
		WithArgs("", true).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery(`FROM projects`).
		WithArgs("", true, 10, 40).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "tags", "images", "is_active", "created_at", "updated_at"}))

	out, total, err := r.List(ctx, repository.ListQuery{ActiveOnly: true, Limit: 10, Offset: 40})
	require.NoError(t, err)
	require.Equal(t, 42, total)
	require.Empty(t, out)
}

func TestProjectRepo_List_CountErr(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM projects`).
		WithArgs("", false).
		WillReturnError(errors.New("count-fail"))

	_, _, err := r.List(context.Background(), repository.ListQuery{Limit: 10})
	require.Error(t, err)
}

func TestProjectRepo_List_RowErr(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM projects`).
		WithArgs("", false).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	rows := pgxmock.NewRows([]string{"id", "name", "description", "tags", "images", "is_active", "created_at", "updated_at"}).
		RowError(0, errors.New("row0"))
	mock.ExpectQuery(`FROM projects`).
		WithArgs("", false, 10, 0).
		WillReturnRows(rows)

	_, _, err := r.List(context.Background(), repository.ListQuery{Limit: 10})
	require.Error(t, err)
}

func TestProjectRepo_Insert_FillsIDAndTimestamps(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)

	id := uuid.Must(uuid.NewV4())
	ts := time.Now().UTC()
	p := model.Project{Name: "folio", Description: "site", Tags: []string{"go"}, Images: []string{}, IsActive: true}

	mock.ExpectQuery(`INSERT INTO projects \(name, description, tags, images, is_active\)`).
		WithArgs(p.Name, p.Description, p.Tags, p.Images, p.IsActive).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id, ts, ts))

	require.NoError(t, r.Insert(context.Background(), &p))
	require.Equal(t, id, p.ID)
	require.Equal(t, ts, p.CreatedAt)
}

func TestProjectRepo_Update_OK_And_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)

	id := uuid.Must(uuid.NewV4())
	ts := time.Now().UTC()
	p := model.Project{ID: id, Name: "folio", Description: "site", Tags: []string{}, Images: []string{}, IsActive: true}

	mock.ExpectQuery(`UPDATE projects`).
		WithArgs(id, p.Name, p.Description, p.Tags, p.Images, p.IsActive).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(ts, ts))
	require.NoError(t, r.Update(context.Background(), &p))

	mock.ExpectQuery(`UPDATE projects`).
		WithArgs(id, p.Name, p.Description, p.Tags, p.Images, p.IsActive).
		WillReturnError(pgx.ErrNoRows)
	require.ErrorIs(t, r.Update(context.Background(), &p), errs.ErrNotFound)
}

func TestProjectRepo_SetActive_ReturnsRow(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)

	id := uuid.Must(uuid.NewV4())
	ts := time.Now().UTC()

	mock.ExpectQuery(`UPDATE projects SET is_active=\$2`).
		WithArgs(id, false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "tags", "images", "is_active", "created_at", "updated_at"}).
			AddRow(id, "folio", "site", []string{}, []string{}, false, ts, ts))

	p, err := r.SetActive(context.Background(), id, false)
	require.NoError(t, err)
	require.False(t, p.IsActive)
	require.Equal(t, id, p.ID)
}

func TestProjectRepo_SetActive_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)

	id := uuid.Must(uuid.NewV4())
	mock.ExpectQuery(`UPDATE projects SET is_active=\$2`).
		WithArgs(id, true).
		WillReturnError(pgx.ErrNoRows)

	_, err := r.SetActive(context.Background(), id, true)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestProjectRepo_Delete_OK_And_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProjectRepo(db)

	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`DELETE FROM projects WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Delete(context.Background(), id))

	mock.ExpectExec(`DELETE FROM projects WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, r.Delete(context.Background(), id), errs.ErrNotFound)
}
