// Package fetch is the low-level HTTP client for the collection store:
// bearer-token auth, query serialization, bounded-backoff retry for GET,
// and an injected response cache invalidated by prefix on mutation.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kamensky/folio/internal/api"
)

// StatusError is a non-2xx store response, carrying the resource the
// request addressed and the HTTP status.
type StatusError struct {
	Resource string
	Status   int
	Message  string
	Fields   map[string]string // per-field validation messages, if any
}

// Error formats the resource, status and server message.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Resource, e.Status, e.Message)
}

// Client issues authenticated JSON requests against the store.
type Client struct {
	baseURL     string
	http        *http.Client
	token       func() (string, error)
	cache       *Cache
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer-token source consulted per request. A source
// returning an empty token sends the request unauthenticated.
func WithToken(src func() (string, error)) Option {
	return func(c *Client) { c.token = src }
}

// WithCache injects the GET response cache.
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRetry configures GET retry: attempt count, starting delay, delay cap.
func WithRetry(attempts int, base, cap time.Duration) Option {
	return func(c *Client) {
		c.maxAttempts = attempts
		c.baseDelay = base
		c.maxDelay = cap
	}
}

// New constructs a Client for the given store base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{Timeout: 30 * time.Second},
		maxAttempts: 3,
		baseDelay:   250 * time.Millisecond,
		maxDelay:    2 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// GetJSON issues a cached, retried GET and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	full := c.url(path, query)
	if c.cache != nil {
		if body, ok := c.cache.Get(full); ok {
			return json.Unmarshal(body, out)
		}
	}
	body, err := c.getWithRetry(ctx, full, resourceOf(path))
	if err != nil {
		return err
	}
	if c.cache != nil {
		c.cache.Set(full, body)
	}
	return json.Unmarshal(body, out)
}

// GetBytes issues a retried GET and returns the raw body (not cached;
// used for file downloads).
func (c *Client) GetBytes(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.getWithRetry(ctx, c.url(path, query), resourceOf(path))
}

// PostJSON issues a POST with a JSON body. Mutations are fired once (no
// retry, to avoid duplicate writes) and invalidate cached GETs under path.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	return c.mutateJSON(ctx, http.MethodPost, path, in, out)
}

// PatchJSON issues a PATCH with a JSON body; same fire-once semantics as PostJSON.
func (c *Client) PatchJSON(ctx context.Context, path string, in, out any) error {
	return c.mutateJSON(ctx, http.MethodPatch, path, in, out)
}

// Delete issues a DELETE. A 204 is success; the store may also answer a
// failed delete with 200 plus an error body, which is surfaced as a
// StatusError.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) error {
	req, err := c.newRequest(ctx, http.MethodDelete, c.url(path, query), nil, "")
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.invalidate(path)

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode == http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		if len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		var er api.ErrorResponse
		if err := json.Unmarshal(body, &er); err != nil || er.Error == "" {
			return nil
		}
		return &StatusError{Resource: resourceOf(path), Status: resp.StatusCode, Message: er.Error}
	default:
		return c.statusError(resp, resourceOf(path))
	}
}

// Upload sends file content as a multipart POST and decodes the response.
func (c *Client) Upload(ctx context.Context, path, filePath, contentType string, content io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("path", filePath); err != nil {
		return err
	}
	fw, err := mw.CreateFormFile("file", filePath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, content); err != nil {
		return err
	}
	if contentType != "" {
		if err := mw.WriteField("content_type", contentType); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.url(path, nil), &buf, mw.FormDataContentType())
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.invalidate(path)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp, resourceOf(path))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) mutateJSON(ctx context.Context, method, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, method, c.url(path, nil), bytes.NewReader(payload), "application/json")
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", strings.ToLower(method), path, err)
	}
	defer resp.Body.Close()

	c.invalidate(path)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp, resourceOf(path))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// getWithRetry retries transport errors and 5xx responses with doubling,
// capped delays. Only GET is retried; a bounded attempt count keeps the
// worst case short.
func (c *Client) getWithRetry(ctx context.Context, full, resource string) ([]byte, error) {
	var lastErr error
	delay := c.baseDelay
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := c.newRequest(ctx, http.MethodGet, full, nil, "")
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode <= 299:
			if readErr != nil {
				lastErr = readErr
				continue
			}
			return body, nil
		case resp.StatusCode >= 500:
			lastErr = statusErrFromBody(resp.StatusCode, body, resource)
			continue
		default:
			// 4xx is not transient
			return nil, statusErrFromBody(resp.StatusCode, body, resource)
		}
	}
	return nil, fmt.Errorf("get %s: %w", resource, lastErr)
}

func (c *Client) newRequest(ctx context.Context, method, full string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, full, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != nil {
		tok, err := c.token()
		if err != nil {
			return nil, err
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

func (c *Client) url(path string, query url.Values) string {
	full := c.baseURL + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full
}

// invalidate drops cached GETs for the mutated path (query variants included).
func (c *Client) invalidate(path string) {
	if c.cache != nil {
		c.cache.InvalidatePrefix(c.baseURL + path)
	}
}

func (c *Client) statusError(resp *http.Response, resource string) error {
	body, _ := io.ReadAll(resp.Body)
	return statusErrFromBody(resp.StatusCode, body, resource)
}

func statusErrFromBody(status int, body []byte, resource string) error {
	se := &StatusError{Resource: resource, Status: status, Message: http.StatusText(status)}
	var er api.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		se.Message = er.Error
		se.Fields = er.Fields
	}
	return se
}

// resourceOf extracts the collection name from a request path.
func resourceOf(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
