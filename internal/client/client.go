// Package client is the admin-side HTTP client of the collection store. It
// adapts the generic fetch layer into typed sync.Store implementations per
// resource, translating rows to models at the boundary.
package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/kamensky/folio/internal/api"
	"github.com/kamensky/folio/internal/convert"
	"github.com/kamensky/folio/internal/fetch"
	"github.com/kamensky/folio/internal/model"
	"github.com/kamensky/folio/internal/sync"
)

const apiPrefix = "/api/v1"

// Client groups the typed collection stores behind one fetch client.
type Client struct {
	f *fetch.Client
}

// New wraps a configured fetch client.
func New(f *fetch.Client) *Client { return &Client{f: f} }

// --- auth ---

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (model.Tokens, error) {
	var resp api.LoginResponse
	err := c.f.PostJSON(ctx, apiPrefix+"/login", api.LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return model.Tokens{}, err
	}
	exp, err := time.Parse(time.RFC3339, resp.ExpiresAt)
	if err != nil {
		return model.Tokens{}, fmt.Errorf("bad expires_at in login response: %w", err)
	}
	return model.Tokens{AccessToken: resp.AccessToken, ExpiresAt: exp}, nil
}

// Register creates an admin account and returns its id.
func (c *Client) Register(ctx context.Context, username, password string) (string, error) {
	var resp api.RegisterResponse
	err := c.f.PostJSON(ctx, apiPrefix+"/register", api.RegisterRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.UserID, nil
}

// --- collections ---

// Projects returns the project collection store.
func (c *Client) Projects() sync.Store[model.Project] {
	return collection[model.Project, api.ProjectRow]{
		f:       c.f,
		path:    apiPrefix + "/projects",
		fromRow: convert.FromProjectRow,
		toRow:   convert.ToProjectRow,
	}
}

// Experiences returns the experience collection store.
func (c *Client) Experiences() sync.Store[model.Experience] {
	return collection[model.Experience, api.ExperienceRow]{
		f:       c.f,
		path:    apiPrefix + "/experiences",
		fromRow: convert.FromExperienceRow,
		toRow:   convert.ToExperienceRow,
	}
}

// Skills returns the skill collection store.
func (c *Client) Skills() sync.Store[model.Skill] {
	return collection[model.Skill, api.SkillRow]{
		f:       c.f,
		path:    apiPrefix + "/skills",
		fromRow: convert.FromSkillRow,
		toRow:   convert.ToSkillRow,
	}
}

// Resumes returns the resume collection store.
func (c *Client) Resumes() sync.Store[model.Resume] {
	return collection[model.Resume, api.ResumeRow]{
		f:       c.f,
		path:    apiPrefix + "/resumes",
		fromRow: convert.FromResumeRow,
		toRow:   convert.ToResumeRow,
	}
}

// collection adapts one store collection endpoint to sync.Store.
type collection[M any, R any] struct {
	f       *fetch.Client
	path    string
	fromRow func(R) M
	toRow   func(M) R
}

func (col collection[M, R]) List(ctx context.Context, q sync.Query) (sync.Page[M], error) {
	vals := url.Values{}
	vals.Set("page", strconv.Itoa(q.Page))
	vals.Set("limit", strconv.Itoa(q.Limit))
	if q.Search != "" {
		vals.Set("search", q.Search)
	}
	for k, vs := range q.Filter {
		vals[k] = vs
	}

	var resp api.ListResponse[R]
	if err := col.f.GetJSON(ctx, col.path, vals, &resp); err != nil {
		return sync.Page[M]{}, err
	}
	items := make([]M, 0, len(resp.Items))
	for _, r := range resp.Items {
		items = append(items, col.fromRow(r))
	}
	return sync.Page[M]{Items: items, Total: resp.Total}, nil
}

func (col collection[M, R]) Create(ctx context.Context, draft M) (M, error) {
	var resp api.ItemResponse[R]
	if err := col.f.PostJSON(ctx, col.path, col.toRow(draft), &resp); err != nil {
		var zero M
		return zero, err
	}
	return col.fromRow(resp.Item), nil
}

func (col collection[M, R]) Update(ctx context.Context, m M) (M, error) {
	var resp api.ItemResponse[R]
	if err := col.f.PatchJSON(ctx, col.path, col.toRow(m), &resp); err != nil {
		var zero M
		return zero, err
	}
	return col.fromRow(resp.Item), nil
}

func (col collection[M, R]) Delete(ctx context.Context, id string) error {
	return col.f.Delete(ctx, col.path, url.Values{"id": {id}})
}

// --- files ---

// ListFiles returns stored-file metadata under a path prefix.
func (c *Client) ListFiles(ctx context.Context, prefix string) ([]model.StoredFile, int, error) {
	vals := url.Values{}
	if prefix != "" {
		vals.Set("prefix", prefix)
	}
	var resp api.ListResponse[api.FileRow]
	if err := c.f.GetJSON(ctx, apiPrefix+"/files", vals, &resp); err != nil {
		return nil, 0, err
	}
	files := make([]model.StoredFile, 0, len(resp.Items))
	for _, r := range resp.Items {
		files = append(files, convert.FromFileRow(r))
	}
	return files, resp.Total, nil
}

// UploadFile stores file content under path and returns its metadata.
func (c *Client) UploadFile(ctx context.Context, path, contentType string, content io.Reader) (model.StoredFile, error) {
	var resp api.ItemResponse[api.FileRow]
	if err := c.f.Upload(ctx, apiPrefix+"/files", path, contentType, content, &resp); err != nil {
		return model.StoredFile{}, err
	}
	return convert.FromFileRow(resp.Item), nil
}

// DownloadFile fetches raw file content by path.
func (c *Client) DownloadFile(ctx context.Context, path string) ([]byte, error) {
	return c.f.GetBytes(ctx, apiPrefix+"/files/content", url.Values{"path": {path}})
}

// DeleteFile removes a stored file by path.
func (c *Client) DeleteFile(ctx context.Context, path string) error {
	return c.f.Delete(ctx, apiPrefix+"/files", url.Values{"path": {path}})
}
