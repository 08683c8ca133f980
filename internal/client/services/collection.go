package services

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/studysync/internal/client/client"
	"github.com/dmitrijs2005/studysync/internal/client/models"
	"github.com/dmitrijs2005/studysync/internal/common"
)

// DefaultPageSize is used when a service is built with a non-positive page
// size.
const DefaultPageSize = 20

// collection is the cached, paginated state shared by the resource services.
type collection[T any] struct {
	key      func(T) string
	pageSize int
	tokens   TokenSource

	mu      sync.Mutex
	items   []T
	cursor  models.Cursor
	loading bool
	lastErr error
}

func newCollection[T any](tokens TokenSource, pageSize int, key func(T) string) *collection[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &collection[T]{
		key:      key,
		pageSize: pageSize,
		tokens:   tokens,
		cursor:   models.Cursor{PageSize: pageSize},
	}
}

// authorize attaches a fresh bearer token to ctx.
func authorize(ctx context.Context, tokens TokenSource) (context.Context, error) {
	tok := tokens.Token(ctx)
	if tok == "" {
		return nil, common.ErrUnauthenticated
	}
	return client.WithBearerToken(ctx, tok), nil
}

type pageFetcher[T any] func(ctx context.Context, page models.PageRequest) (*models.Page[T], error)

// list loads one page. reset (or an empty cursor) loads page 1 and replaces
// the items; otherwise the next page is appended when the last response said
// there is more. A call made while another is in flight is dropped and
// returns nil. Failures leave items and cursor untouched and are stored in
// the error slot.
func (c *collection[T]) list(ctx context.Context, reset bool, fetch pageFetcher[T]) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return nil
	}
	next := 1
	if !reset && c.cursor.Page > 0 {
		if !c.cursor.HasMore {
			c.mu.Unlock()
			return nil
		}
		next = c.cursor.Page + 1
	}
	c.loading = true
	c.mu.Unlock()

	actx, err := authorize(ctx, c.tokens)
	if err != nil {
		c.finish(err)
		return err
	}

	page, err := fetch(actx, models.PageRequest{Page: next, PageSize: c.pageSize})
	if err != nil {
		c.finish(err)
		return err
	}

	c.mu.Lock()
	if next == 1 {
		c.items = slices.Clone(page.Items)
	} else {
		c.items = append(c.items, page.Items...)
	}
	c.cursor = models.Cursor{Page: next, PageSize: c.pageSize, HasMore: page.HasMore, Total: page.Total}
	c.loading = false
	c.lastErr = nil
	c.mu.Unlock()
	return nil
}

func (c *collection[T]) finish(err error) {
	c.mu.Lock()
	c.loading = false
	c.lastErr = err
	c.mu.Unlock()
}

// fail records err in the error slot and returns it.
func (c *collection[T]) fail(err error) error {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	return err
}

// insert adds a server-confirmed item at the front and counts it.
func (c *collection[T]) insert(item T) {
	c.mu.Lock()
	c.items = slices.Insert(c.items, 0, item)
	c.cursor.Total++
	c.mu.Unlock()
}

// remove drops the first item with id and decrements the total. It reports
// whether an item was found.
func (c *collection[T]) remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.items, func(it T) bool { return c.key(it) == id })
	if i < 0 {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	if c.cursor.Total > 0 {
		c.cursor.Total--
	}
	return true
}

// update applies fn to the item with id under the lock.
func (c *collection[T]) update(id string, fn func(*T) error) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.items, func(it T) bool { return c.key(it) == id })
	if i < 0 {
		return false, nil
	}
	return true, fn(&c.items[i])
}

// find returns a copy of the item with id.
func (c *collection[T]) find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.items, func(it T) bool { return c.key(it) == id })
	if i < 0 {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

// deleteOptimistic removes id from the cache before the request is sent and
// does not restore it if the request fails. An unknown id fails with
// ErrNotFound without a request.
func (c *collection[T]) deleteOptimistic(ctx context.Context, id string, del func(ctx context.Context, id string) error) error {
	actx, err := authorize(ctx, c.tokens)
	if err != nil {
		return c.fail(err)
	}
	if !c.remove(id) {
		return common.ErrNotFound
	}
	if err := del(actx, id); err != nil {
		return c.fail(err)
	}
	return nil
}

func (c *collection[T]) snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

func (c *collection[T]) each(fn func(T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		fn(it)
	}
}

func (c *collection[T]) getCursor() models.Cursor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

func (c *collection[T]) isLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *collection[T]) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *collection[T]) length() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// clear drops cached items, cursor and error. An in-flight list still
// applies its result when it returns.
func (c *collection[T]) clear() {
	c.mu.Lock()
	c.items = nil
	c.cursor = models.Cursor{PageSize: c.pageSize}
	c.lastErr = nil
	c.mu.Unlock()
}
