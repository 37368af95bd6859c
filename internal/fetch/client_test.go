package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithRetry(3, time.Millisecond, 4*time.Millisecond)}, opts...)
	return New(srv.URL, opts...)
}

func TestGetJSON_BearerAndDecode(t *testing.T) {
	t.Parallel()

	var gotAuth string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"items":[],"total":7}`))
	}), WithToken(func() (string, error) { return "tok-123", nil }))

	var out struct {
		Total int `json:"total"`
	}
	err := c.GetJSON(context.Background(), "/api/v1/projects", nil, &out)
	require.NoError(t, err)
	require.Equal(t, 7, out.Total)
	require.Equal(t, "Bearer tok-123", gotAuth)
}

func TestGetJSON_RetriesTransient(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))

	var out struct {
		OK bool `json:"ok"`
	}
	err := c.GetJSON(context.Background(), "/api/v1/skills", nil, &out)
	require.NoError(t, err)
	require.True(t, out.OK)
	require.Equal(t, int32(3), calls.Load())
}

func TestGetJSON_BoundedAttempts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	err := c.GetJSON(context.Background(), "/api/v1/skills", nil, &struct{}{})
	require.Error(t, err)
	require.Equal(t, int32(3), calls.Load())
}

func TestGetJSON_NoRetryOn4xx(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad payload","fields":{"name":"required"}}`))
	}))

	err := c.GetJSON(context.Background(), "/api/v1/projects", nil, &struct{}{})
	require.Equal(t, int32(1), calls.Load())

	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "projects", se.Resource)
	require.Equal(t, http.StatusBadRequest, se.Status)
	require.Equal(t, "bad payload", se.Message)
	require.Equal(t, "required", se.Fields["name"])
}

func TestPostJSON_FiredOnce(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	}))

	err := c.PostJSON(context.Background(), "/api/v1/projects", map[string]string{"name": "x"}, nil)
	require.Error(t, err)
	require.Equal(t, int32(1), calls.Load(), "non-GET must never retry")
}

func TestCache_HitAndPrefixInvalidation(t *testing.T) {
	t.Parallel()

	var gets atomic.Int32
	cache := NewCache()
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			gets.Add(1)
			w.Write([]byte(`{"items":[],"total":1}`))
		case http.MethodPatch:
			w.Write([]byte(`{"item":{}}`))
		}
	}), WithCache(cache))

	ctx := context.Background()
	q := url.Values{"page": {"1"}}
	var out struct{}

	require.NoError(t, c.GetJSON(ctx, "/api/v1/projects", q, &out))
	require.NoError(t, c.GetJSON(ctx, "/api/v1/projects", q, &out))
	require.Equal(t, int32(1), gets.Load(), "second read must come from cache")

	// a different query string is a different key
	require.NoError(t, c.GetJSON(ctx, "/api/v1/projects", url.Values{"page": {"2"}}, &out))
	require.Equal(t, int32(2), gets.Load())

	// mutation invalidates every cached query of the collection
	require.NoError(t, c.PatchJSON(ctx, "/api/v1/projects", map[string]string{"id": "x"}, nil))
	require.Equal(t, 0, cache.Len())

	require.NoError(t, c.GetJSON(ctx, "/api/v1/projects", q, &out))
	require.Equal(t, int32(3), gets.Load())
}

func TestDelete_Statuses(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("mode") {
		case "nocontent":
			w.WriteHeader(http.StatusNoContent)
		case "okerror":
			w.Write([]byte(`{"error":"row is referenced"}`))
		case "okempty":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"no token"}`))
		}
	}))

	ctx := context.Background()
	require.NoError(t, c.Delete(ctx, "/api/v1/resumes", url.Values{"mode": {"nocontent"}}))
	require.NoError(t, c.Delete(ctx, "/api/v1/resumes", url.Values{"mode": {"okempty"}}))

	err := c.Delete(ctx, "/api/v1/resumes", url.Values{"mode": {"okerror"}})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "row is referenced", se.Message)

	err = c.Delete(ctx, "/api/v1/resumes", url.Values{"mode": {"denied"}})
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusUnauthorized, se.Status)
}

func TestGet_ContextCancelled(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := c.GetJSON(ctx, "/api/v1/projects", nil, &struct{}{})
	require.ErrorIs(t, err, context.Canceled)
}
