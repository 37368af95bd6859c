// Package sync keeps one page of a remote resource collection consistent
// with user actions and the collection store.
//
// A Controller owns the client-side copy of a single collection page:
// items, total, and the query that produced them. Query changes trigger a
// background list where only the most recently issued request may update
// state (last intent wins); superseded requests are cancelled and their
// results discarded. Mutations are fire-once, guarded so at most one is in
// flight per controller, and only touch local state after the store
// confirms them.
package sync

import (
	"context"
	"errors"
	"net/url"
	stdsync "sync"

	"github.com/kamensky/folio/internal/errs"
)

// DefaultLimit is the page size used when the query does not set one.
const DefaultLimit = 10

// MaxLimit mirrors the store-side clamp on page size.
const MaxLimit = 100

// Query selects a page of a collection.
type Query struct {
	Page   int
	Limit  int
	Search string
	Filter url.Values // resource-specific filter fields (type, category, ...)
}

func (q Query) normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

// Page is one page of a collection plus the predicate-wide total.
type Page[M any] struct {
	Items []M
	Total int
}

// Store is the remote collection surface a Controller drives.
type Store[M any] interface {
	List(ctx context.Context, q Query) (Page[M], error)
	Create(ctx context.Context, draft M) (M, error)
	Update(ctx context.Context, m M) (M, error)
	Delete(ctx context.Context, id string) error
}

// Options adapts a model type to the controller. ID is required; IsActive
// and SetActive are required when ExclusiveActive is set.
type Options[M any] struct {
	ID        func(M) string
	IsActive  func(M) bool
	SetActive func(*M, bool)

	// ExclusiveActive marks collections where exactly one item is active
	// (resumes). Deleting the active item promotes the first remaining one.
	ExclusiveActive bool
}

// Controller mediates all reads and writes of one collection instance.
type Controller[M any] struct {
	store Store[M]
	opts  Options[M]

	mu       stdsync.Mutex
	query    Query
	items    []M
	total    int
	fetching bool
	err      error
	gen      uint64
	cancel   context.CancelFunc
	mutating bool
}

// New constructs a Controller over the given store.
func New[M any](store Store[M], opts Options[M]) *Controller[M] {
	return &Controller[M]{store: store, opts: opts, query: Query{}.normalized()}
}

// --- queries ---

// SetQuery replaces the query and issues a background list. The returned
// channel closes when that list settles: merged into state, failed, or
// discarded because a newer query superseded it.
func (c *Controller[M]) SetQuery(ctx context.Context, q Query) <-chan struct{} {
	return c.issue(ctx, q.normalized())
}

// Refresh re-issues the current query.
func (c *Controller[M]) Refresh(ctx context.Context) <-chan struct{} {
	c.mu.Lock()
	q := c.query
	c.mu.Unlock()
	return c.issue(ctx, q)
}

// SetPage moves to another page of the current predicate.
func (c *Controller[M]) SetPage(ctx context.Context, page int) <-chan struct{} {
	c.mu.Lock()
	q := c.query
	c.mu.Unlock()
	q.Page = page
	return c.issue(ctx, q.normalized())
}

// SetSearch changes the search term and rewinds to the first page.
func (c *Controller[M]) SetSearch(ctx context.Context, search string) <-chan struct{} {
	c.mu.Lock()
	q := c.query
	c.mu.Unlock()
	q.Search = search
	q.Page = 1
	return c.issue(ctx, q.normalized())
}

// SetFilter sets one resource-specific filter field (empty value removes
// it) and rewinds to the first page.
func (c *Controller[M]) SetFilter(ctx context.Context, key, value string) <-chan struct{} {
	c.mu.Lock()
	q := c.query
	c.mu.Unlock()
	f := url.Values{}
	for k, vs := range q.Filter {
		f[k] = vs
	}
	if value == "" {
		f.Del(key)
	} else {
		f.Set(key, value)
	}
	q.Filter = f
	q.Page = 1
	return c.issue(ctx, q.normalized())
}

// issue cancels any outstanding list and starts a new one for q.
func (c *Controller[M]) issue(ctx context.Context, q Query) <-chan struct{} {
	c.mu.Lock()
	c.query = q
	c.gen++
	gen := c.gen
	if c.cancel != nil {
		c.cancel()
	}
	lctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.fetching = true
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		c.list(lctx, gen, q)
	}()
	return done
}

// list performs the fetch and merges the result if it is still the newest intent.
func (c *Controller[M]) list(ctx context.Context, gen uint64, q Query) {
	page, err := c.store.List(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		// superseded: a newer request owns the state now
		return
	}
	c.fetching = false
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// deliberate cancellation is not an error
			return
		}
		c.err = err
		return
	}
	c.err = nil
	c.items = page.Items
	c.total = page.Total
}

// --- state accessors ---

// Items returns a copy of the current page.
func (c *Controller[M]) Items() []M {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]M, len(c.items))
	copy(out, c.items)
	return out
}

// Total returns the predicate-wide row count from the last list. It may be
// stale by one after a create until the next list corrects it.
func (c *Controller[M]) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Fetching reports whether a list request is outstanding.
func (c *Controller[M]) Fetching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetching
}

// Err returns the last list/mutation failure, or nil.
func (c *Controller[M]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Query returns the current query.
func (c *Controller[M]) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// --- mutations ---

// beginMutation enforces the one-mutation-in-flight rule.
func (c *Controller[M]) beginMutation() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mutating {
		return false
	}
	c.mutating = true
	return true
}

func (c *Controller[M]) endMutation() {
	c.mu.Lock()
	c.mutating = false
	c.mu.Unlock()
}

func (c *Controller[M]) setErr(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

// Create submits a draft; on confirmation the stored model is appended to
// the page. Total is intentionally left as reported by the last list.
func (c *Controller[M]) Create(ctx context.Context, draft M) (M, error) {
	var zero M
	if !c.beginMutation() {
		return zero, errs.ErrMutationInFlight
	}
	defer c.endMutation()

	created, err := c.store.Create(ctx, draft)
	if err != nil {
		c.setErr(err)
		return zero, err
	}
	c.mu.Lock()
	c.items = append(c.items, created)
	c.err = nil
	c.mu.Unlock()
	return created, nil
}

// Update sends the full payload and replaces the matching entry. An entry
// outside the current page updates remotely without touching local state.
func (c *Controller[M]) Update(ctx context.Context, m M) error {
	if !c.beginMutation() {
		return errs.ErrMutationInFlight
	}
	defer c.endMutation()

	updated, err := c.store.Update(ctx, m)
	if err != nil {
		c.setErr(err)
		return err
	}
	c.mu.Lock()
	c.replaceLocked(updated)
	c.err = nil
	c.mu.Unlock()
	return nil
}

// Delete removes the entry by id. For exclusive-active collections the
// first remaining item is promoted locally when the active one was removed.
func (c *Controller[M]) Delete(ctx context.Context, id string) error {
	if !c.beginMutation() {
		return errs.ErrMutationInFlight
	}
	defer c.endMutation()

	if err := c.store.Delete(ctx, id); err != nil {
		c.setErr(err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	removedActive := false
	kept := c.items[:0:0]
	for _, it := range c.items {
		if c.opts.ID(it) == id {
			if c.opts.IsActive != nil && c.opts.IsActive(it) {
				removedActive = true
			}
			continue
		}
		kept = append(kept, it)
	}
	c.items = kept
	if c.total > 0 {
		c.total--
	}
	c.err = nil

	if c.opts.ExclusiveActive && removedActive && len(c.items) > 0 {
		anyActive := false
		for _, it := range c.items {
			if c.opts.IsActive(it) {
				anyActive = true
				break
			}
		}
		if !anyActive {
			c.opts.SetActive(&c.items[0], true)
		}
	}
	return nil
}

// SetExclusiveActive makes the identified item the only active one via two
// store updates: clear the currently active item, then set the target.
// The sequence is not atomic; a failure between phases can leave zero
// active items, which the next activation repairs (at-least-once, not
// exactly-once).
func (c *Controller[M]) SetExclusiveActive(ctx context.Context, id string) error {
	if !c.beginMutation() {
		return errs.ErrMutationInFlight
	}
	defer c.endMutation()

	c.mu.Lock()
	var current *M
	var target *M
	for i := range c.items {
		it := c.items[i]
		if c.opts.ID(it) == id {
			tcopy := it
			target = &tcopy
		} else if c.opts.IsActive(it) {
			ccopy := it
			current = &ccopy
		}
	}
	c.mu.Unlock()

	if target == nil {
		err := errs.ErrNotFound
		c.setErr(err)
		return err
	}

	if current != nil {
		c.opts.SetActive(current, false)
		updated, err := c.store.Update(ctx, *current)
		if err != nil {
			c.setErr(err)
			return err
		}
		c.mu.Lock()
		c.replaceLocked(updated)
		c.mu.Unlock()
	}

	c.opts.SetActive(target, true)
	updated, err := c.store.Update(ctx, *target)
	if err != nil {
		c.setErr(err)
		return err
	}
	c.mu.Lock()
	c.replaceLocked(updated)
	c.err = nil
	c.mu.Unlock()
	return nil
}

func (c *Controller[M]) replaceLocked(m M) {
	id := c.opts.ID(m)
	for i := range c.items {
		if c.opts.ID(c.items[i]) == id {
			c.items[i] = m
			return
		}
	}
}
