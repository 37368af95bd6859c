package sync

import (
	"context"
	"errors"
	"reflect"
	stdsync "sync"
	"testing"
	"time"

	"github.com/kamensky/folio/internal/errs"
)

type item struct {
	ID     string
	Name   string
	Active bool
}

var itemOpts = Options[item]{
	ID:              func(i item) string { return i.ID },
	IsActive:        func(i item) bool { return i.Active },
	SetActive:       func(i *item, v bool) { i.Active = v },
	ExclusiveActive: true,
}

type fakeStore struct {
	mu          stdsync.Mutex
	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int
	updatedIn   []item

	listFn   func(ctx context.Context, q Query) (Page[item], error)
	createFn func(ctx context.Context, draft item) (item, error)
	updateFn func(ctx context.Context, m item) (item, error)
	deleteFn func(ctx context.Context, id string) error
}

var _ Store[item] = (*fakeStore)(nil)

func (f *fakeStore) List(ctx context.Context, q Query) (Page[item], error) {
	f.mu.Lock()
	f.listCalls++
	fn := f.listFn
	f.mu.Unlock()
	if fn == nil {
		return Page[item]{Items: []item{}}, nil
	}
	return fn(ctx, q)
}

func (f *fakeStore) Create(ctx context.Context, draft item) (item, error) {
	f.mu.Lock()
	f.createCalls++
	fn := f.createFn
	f.mu.Unlock()
	if fn == nil {
		return draft, nil
	}
	return fn(ctx, draft)
}

func (f *fakeStore) Update(ctx context.Context, m item) (item, error) {
	f.mu.Lock()
	f.updateCalls++
	f.updatedIn = append(f.updatedIn, m)
	fn := f.updateFn
	f.mu.Unlock()
	if fn == nil {
		return m, nil
	}
	return fn(ctx, m)
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	f.deleteCalls++
	fn := f.deleteFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, id)
}

// seed loads a page into the controller through a normal list cycle.
func seed(t *testing.T, c *Controller[item], items []item, total int) {
	t.Helper()
	fs := c.store.(*fakeStore)
	fs.mu.Lock()
	old := fs.listFn
	fs.listFn = func(context.Context, Query) (Page[item], error) {
		cp := append([]item(nil), items...)
		return Page[item]{Items: cp, Total: total}, nil
	}
	fs.mu.Unlock()
	<-c.Refresh(context.Background())
	fs.mu.Lock()
	fs.listFn = old
	fs.mu.Unlock()
	if got := len(c.Items()); got != len(items) {
		t.Fatalf("seed failed: %d items", got)
	}
}

func TestLastIntentWins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	releaseA := make(chan struct{})
	fs := &fakeStore{}
	fs.listFn = func(ctx context.Context, q Query) (Page[item], error) {
		switch q.Search {
		case "a":
			select {
			case <-releaseA:
			case <-ctx.Done():
				return Page[item]{}, ctx.Err()
			}
			return Page[item]{Items: []item{{ID: "A"}}, Total: 1}, nil
		case "b":
			return Page[item]{Items: []item{{ID: "B"}}, Total: 1}, nil
		}
		return Page[item]{}, nil
	}
	c := New[item](fs, itemOpts)

	doneA := c.SetSearch(ctx, "a")
	doneB := c.SetSearch(ctx, "b")
	<-doneB

	items := c.Items()
	if len(items) != 1 || items[0].ID != "B" {
		t.Fatalf("newest query must win, got %+v", items)
	}

	// let A settle (it was cancelled); its result must not overwrite B's,
	// and its cancellation must not surface as an error
	close(releaseA)
	<-doneA

	items = c.Items()
	if len(items) != 1 || items[0].ID != "B" {
		t.Fatalf("stale response overwrote state: %+v", items)
	}
	if err := c.Err(); err != nil {
		t.Fatalf("cancellation must not be an error, got %v", err)
	}
	if c.Fetching() {
		t.Fatalf("fetching must be cleared after the winning list")
	}
}

func TestListErrorCaptured(t *testing.T) {
	t.Parallel()
	fs := &fakeStore{}
	boom := errors.New("store down")
	fs.listFn = func(context.Context, Query) (Page[item], error) { return Page[item]{}, boom }
	c := New[item](fs, itemOpts)

	<-c.Refresh(context.Background())
	if !errors.Is(c.Err(), boom) {
		t.Fatalf("list failure must land in Err, got %v", c.Err())
	}

	// the controller stays usable: a later successful list clears the error
	fs.mu.Lock()
	fs.listFn = nil
	fs.mu.Unlock()
	<-c.Refresh(context.Background())
	if c.Err() != nil {
		t.Fatalf("error must clear on success, got %v", c.Err())
	}
}

func TestCreateReentrancyGuard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	fs := &fakeStore{}
	fs.createFn = func(_ context.Context, draft item) (item, error) {
		close(entered)
		<-release
		draft.ID = "srv-1"
		return draft, nil
	}
	c := New[item](fs, itemOpts)

	var wg stdsync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := c.Create(ctx, item{Name: "first"}); err != nil {
			t.Errorf("first create: %v", err)
		}
	}()

	<-entered
	if _, err := c.Create(ctx, item{Name: "second"}); !errors.Is(err, errs.ErrMutationInFlight) {
		t.Fatalf("second create must be rejected, got %v", err)
	}
	close(release)
	wg.Wait()

	if fs.createCalls != 1 {
		t.Fatalf("want exactly one network call, got %d", fs.createCalls)
	}
	items := c.Items()
	if len(items) != 1 || items[0].ID != "srv-1" {
		t.Fatalf("confirmed model must be appended, got %+v", items)
	}
}

func TestCreateLeavesTotalStale(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := &fakeStore{}
	c := New[item](fs, itemOpts)
	seed(t, c, []item{{ID: "a", Active: true}}, 1)

	fs.createFn = func(_ context.Context, d item) (item, error) {
		d.ID = "b"
		return d, nil
	}
	if _, err := c.Create(ctx, item{Name: "new"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Total() != 1 {
		t.Fatalf("total must stay as last listed (stale by one), got %d", c.Total())
	}
	if len(c.Items()) != 2 {
		t.Fatalf("items must include the created entry")
	}
}

func TestUpdateReplacesByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := &fakeStore{}
	c := New[item](fs, itemOpts)
	seed(t, c, []item{{ID: "a", Name: "old", Active: true}, {ID: "b", Name: "keep"}}, 2)

	if err := c.Update(ctx, item{ID: "a", Name: "new", Active: true}); err != nil {
		t.Fatalf("update: %v", err)
	}
	items := c.Items()
	if items[0].Name != "new" || items[1].Name != "keep" {
		t.Fatalf("update must replace only the matching entry: %+v", items)
	}
	if c.Total() != 2 {
		t.Fatalf("update cannot change cardinality")
	}
}

func TestUpdateErrorIsolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := &fakeStore{}
	c := New[item](fs, itemOpts)
	seed(t, c, []item{{ID: "a", Name: "old", Active: true}}, 1)

	before := c.Items()
	boom := errors.New("HTTP 500")
	fs.updateFn = func(context.Context, item) (item, error) { return item{}, boom }

	if err := c.Update(ctx, item{ID: "a", Name: "new"}); !errors.Is(err, boom) {
		t.Fatalf("want store error, got %v", err)
	}
	if !reflect.DeepEqual(before, c.Items()) {
		t.Fatalf("failed update must leave items untouched: %+v", c.Items())
	}
	if c.Err() == nil {
		t.Fatalf("failed update must set Err")
	}
}

func TestDeleteExclusivityPromotion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := &fakeStore{}
	c := New[item](fs, itemOpts)
	seed(t, c, []item{{ID: "a"}, {ID: "b", Active: true}, {ID: "c"}}, 3)

	if err := c.Delete(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	items := c.Items()
	if len(items) != 2 || items[0].ID != "a" || items[1].ID != "c" {
		t.Fatalf("deleted entry must be removed: %+v", items)
	}
	active := 0
	for _, it := range items {
		if it.Active {
			active++
		}
	}
	if active != 1 || !items[0].Active {
		t.Fatalf("first remaining item must be promoted to active: %+v", items)
	}
	if c.Total() != 2 {
		t.Fatalf("total must drop by one on delete, got %d", c.Total())
	}
}

func TestDeleteInactiveNoPromotion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := &fakeStore{}
	c := New[item](fs, itemOpts)
	seed(t, c, []item{{ID: "a", Active: true}, {ID: "b"}}, 2)

	if err := c.Delete(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	items := c.Items()
	if len(items) != 1 || !items[0].Active {
		t.Fatalf("deleting an inactive item must not shuffle active flags: %+v", items)
	}
}

func TestSetExclusiveActiveTwoPhase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := &fakeStore{}
	c := New[item](fs, itemOpts)
	seed(t, c, []item{{ID: "a", Active: true}, {ID: "b"}}, 2)

	if err := c.SetExclusiveActive(ctx, "b"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if fs.updateCalls != 2 {
		t.Fatalf("want clear-then-set (two updates), got %d", fs.updateCalls)
	}
	if fs.updatedIn[0].ID != "a" || fs.updatedIn[0].Active {
		t.Fatalf("phase one must deactivate the current item: %+v", fs.updatedIn[0])
	}
	if fs.updatedIn[1].ID != "b" || !fs.updatedIn[1].Active {
		t.Fatalf("phase two must activate the target: %+v", fs.updatedIn[1])
	}

	items := c.Items()
	if items[0].Active || !items[1].Active {
		t.Fatalf("exactly the target must be active locally: %+v", items)
	}
}

func TestSetExclusiveActiveUnknownTarget(t *testing.T) {
	t.Parallel()
	fs := &fakeStore{}
	c := New[item](fs, itemOpts)
	seed(t, c, []item{{ID: "a", Active: true}}, 1)

	err := c.SetExclusiveActive(context.Background(), "zz")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if fs.updateCalls != 0 {
		t.Fatalf("no store calls for an unknown target")
	}
}

func TestQueryNormalization(t *testing.T) {
	t.Parallel()
	fs := &fakeStore{}
	var seen Query
	fs.listFn = func(_ context.Context, q Query) (Page[item], error) {
		seen = q
		return Page[item]{Items: []item{}}, nil
	}
	c := New[item](fs, itemOpts)

	<-c.SetQuery(context.Background(), Query{Page: -3, Limit: 9999})
	if seen.Page != 1 {
		t.Fatalf("page must normalize to 1, got %d", seen.Page)
	}
	if seen.Limit != MaxLimit {
		t.Fatalf("limit must clamp to %d, got %d", MaxLimit, seen.Limit)
	}
}

func TestSearchRewindsPage(t *testing.T) {
	t.Parallel()
	fs := &fakeStore{}
	c := New[item](fs, itemOpts)

	<-c.SetPage(context.Background(), 5)
	<-c.SetSearch(context.Background(), "term")
	q := c.Query()
	if q.Page != 1 || q.Search != "term" {
		t.Fatalf("search must rewind to page 1: %+v", q)
	}
}

func TestFetchingFlagDuringList(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	fs := &fakeStore{}
	fs.listFn = func(ctx context.Context, _ Query) (Page[item], error) {
		select {
		case <-release:
		case <-ctx.Done():
			return Page[item]{}, ctx.Err()
		}
		return Page[item]{Items: []item{}}, nil
	}
	c := New[item](fs, itemOpts)

	done := c.Refresh(context.Background())
	waitUntil(t, func() bool { return c.Fetching() })
	close(release)
	<-done
	if c.Fetching() {
		t.Fatalf("fetching must clear once the list settles")
	}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not reached")
}
