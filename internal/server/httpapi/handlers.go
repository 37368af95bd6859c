package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/labstack/echo/v4"

	"github.com/kamensky/folio/internal/api"
	"github.com/kamensky/folio/internal/convert"
	"github.com/kamensky/folio/internal/errs"
	"github.com/kamensky/folio/internal/service"
)

// resourceService is the shape all collection services share.
type resourceService[M any] interface {
	List(ctx context.Context, p service.ListParams) ([]M, int, error)
	Create(ctx context.Context, m *M) error
	Update(ctx context.Context, m *M) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*M, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// collection binds one service to the wire row shape of its endpoint.
type collection[M any, R any] struct {
	svc         resourceService[M]
	fromRow     func(R) M
	toRow       func(M) R
	filterParam string
}

func (col collection[M, R]) list(activeOnly bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := service.ListParams{
			Page:       atoiDefault(c.QueryParam("page"), 1),
			Limit:      atoiDefault(c.QueryParam("limit"), 0),
			Search:     c.QueryParam("search"),
			ActiveOnly: activeOnly,
		}
		if col.filterParam != "" {
			params.Filter = c.QueryParam(col.filterParam)
		}

		items, total, err := col.svc.List(c.Request().Context(), params)
		if err != nil {
			return writeErr(c, err)
		}
		rows := make([]R, 0, len(items))
		for _, m := range items {
			rows = append(rows, col.toRow(m))
		}
		return c.JSON(http.StatusOK, api.ListResponse[R]{Items: rows, Total: total})
	}
}

func (col collection[M, R]) create(c echo.Context) error {
	var row R
	if err := c.Bind(&row); err != nil {
		return writeErr(c, errs.Validation("body", "malformed JSON"))
	}
	m := col.fromRow(row)
	if err := col.svc.Create(c.Request().Context(), &m); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, api.ItemResponse[R]{Item: col.toRow(m)})
}

// update rewrites the full payload. A body carrying only {id, is_active} is
// treated as a partial boolean patch and flips the flag without touching the
// rest of the row. An unknown id is a contract violation on the caller's side
// and surfaces as an internal error, not a 404.
func (col collection[M, R]) update(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return writeErr(c, err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		return writeErr(c, errs.Validation("body", "malformed JSON"))
	}

	ctx := c.Request().Context()

	if _, hasActive := keys["is_active"]; hasActive && len(keys) == 2 {
		if _, hasID := keys["id"]; hasID {
			var p struct {
				ID       string `json:"id"`
				IsActive bool   `json:"is_active"`
			}
			if err := json.Unmarshal(body, &p); err != nil {
				return writeErr(c, errs.Validation("body", "malformed JSON"))
			}
			id, err := uuid.FromString(p.ID)
			if err != nil {
				return writeErr(c, errs.Validation("id", "malformed"))
			}
			m, err := col.svc.SetActive(ctx, id, p.IsActive)
			if err != nil {
				if errors.Is(err, errs.ErrNotFound) {
					return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "not found"})
				}
				return writeErr(c, err)
			}
			return c.JSON(http.StatusOK, api.ItemResponse[R]{Item: col.toRow(*m)})
		}
	}

	var row R
	if err := json.Unmarshal(body, &row); err != nil {
		return writeErr(c, errs.Validation("body", "malformed JSON"))
	}
	m := col.fromRow(row)
	if err := col.svc.Update(ctx, &m); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "not found"})
		}
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, api.ItemResponse[R]{Item: col.toRow(m)})
}

// remove deletes by the id query parameter. Failures are reported as a 200
// with an error body so the caller can distinguish them from transport errors.
func (col collection[M, R]) remove(c echo.Context) error {
	id, err := uuid.FromString(c.QueryParam("id"))
	if err != nil {
		return c.JSON(http.StatusOK, api.ErrorResponse{Error: "bad id"})
	}
	if err := col.svc.Delete(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusOK, api.ErrorResponse{Error: err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// --- auth ---

func (s *Server) handleLogin(c echo.Context) error {
	var req api.LoginRequest
	if err := c.Bind(&req); err != nil {
		return writeErr(c, errs.Validation("body", "malformed JSON"))
	}
	tokens, user, err := s.auth.LoginWithIP(c.Request().Context(), req.Username, req.Password, c.RealIP())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, api.LoginResponse{
		AccessToken: tokens.AccessToken,
		ExpiresAt:   tokens.ExpiresAt.UTC().Format(time.RFC3339),
		UserID:      user.ID.String(),
	})
}

func (s *Server) handleRegister(c echo.Context) error {
	var req api.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return writeErr(c, errs.Validation("body", "malformed JSON"))
	}
	id, err := s.auth.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, api.RegisterResponse{UserID: id})
}

// --- files ---

func (s *Server) handleFileList(c echo.Context) error {
	params := service.ListParams{
		Page:  atoiDefault(c.QueryParam("page"), 1),
		Limit: atoiDefault(c.QueryParam("limit"), 0),
	}
	files, total, err := s.files.List(c.Request().Context(), c.QueryParam("prefix"), params)
	if err != nil {
		return writeErr(c, err)
	}
	rows := make([]api.FileRow, 0, len(files))
	for _, f := range files {
		rows = append(rows, convert.ToFileRow(f))
	}
	return c.JSON(http.StatusOK, api.ListResponse[api.FileRow]{Items: rows, Total: total})
}

func (s *Server) handleFileUpload(c echo.Context) error {
	path := c.FormValue("path")
	contentType := c.FormValue("content_type")

	fh, err := c.FormFile("file")
	if err != nil {
		return writeErr(c, errs.Validation("file", "required"))
	}
	src, err := fh.Open()
	if err != nil {
		return writeErr(c, err)
	}
	defer src.Close()
	content, err := io.ReadAll(io.LimitReader(src, service.MaxFileSize+1))
	if err != nil {
		return writeErr(c, err)
	}

	f, err := s.files.Upload(c.Request().Context(), path, contentType, content)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, api.ItemResponse[api.FileRow]{Item: convert.ToFileRow(*f)})
}

func (s *Server) handleFileContent(c echo.Context) error {
	f, content, err := s.files.Download(c.Request().Context(), c.QueryParam("path"))
	if err != nil {
		return writeErr(c, err)
	}
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return c.Blob(http.StatusOK, ct, content)
}

func (s *Server) handleFileDelete(c echo.Context) error {
	if err := s.files.Delete(c.Request().Context(), c.QueryParam("path")); err != nil {
		return c.JSON(http.StatusOK, api.ErrorResponse{Error: err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// --- helpers ---

// writeErr maps service errors to the wire contract.
func writeErr(c echo.Context, err error) error {
	var ve *errs.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "validation failed", Fields: ve.Fields})
	case errors.Is(err, errs.ErrNotFound):
		return c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "not found"})
	case errors.Is(err, errs.ErrAlreadyExists):
		return c.JSON(http.StatusConflict, api.ErrorResponse{Error: "already exists"})
	case errors.Is(err, errs.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid credentials"})
	case errors.Is(err, errs.ErrRateLimited):
		return c.JSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "too many attempts"})
	default:
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal"})
	}
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
